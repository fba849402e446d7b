package comments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/user/inkwell-go/db"
)

// ErrPostNotFound is returned by Create when the post does not exist.
var ErrPostNotFound = errors.New("post not found")

// Store persists comments.
type Store interface {
	Create(ctx context.Context, c *Comment) (*Comment, error)
	ListByPost(ctx context.Context, postID string) ([]Comment, error)
}

// PostChecker reports whether a post exists.
type PostChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// PostgresStore is the pgx implementation of Store.
type PostgresStore struct {
	db db.DBTX
}

func NewPostgresStore(conn db.DBTX) *PostgresStore {
	return &PostgresStore{db: conn}
}

func scanComment(row pgx.Row) (*Comment, error) {
	var c Comment
	if err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Author.Username, &c.Content, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Author.ID = c.AuthorID
	return &c, nil
}

// Create inserts the comment and returns it with its author resolved in one round trip.
func (s *PostgresStore) Create(ctx context.Context, c *Comment) (*Comment, error) {
	row := s.db.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO comments (post_id, author_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, post_id, author_id, content, created_at
		)
		SELECT i.id::text, i.post_id::text, COALESCE(i.author_id::text, ''),
		       COALESCE(u.username, '`+UnknownAuthor+`'), i.content, i.created_at
		FROM inserted i
		LEFT JOIN users u ON u.id = i.author_id`,
		c.PostID, c.AuthorID, c.Content)

	created, err := scanComment(row)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return created, nil
}

// ListByPost returns the comments of a post, oldest first.
func (s *PostgresStore) ListByPost(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id::text, c.post_id::text, COALESCE(c.author_id::text, ''),
		       COALESCE(u.username, '`+UnknownAuthor+`'), c.content, c.created_at
		FROM comments c
		LEFT JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := make([]Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return out, nil
}
