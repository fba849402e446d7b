package posts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/user/inkwell-go/db"
)

// ErrPostNotFound is returned when no post has the requested id.
var ErrPostNotFound = errors.New("post not found")

// Store persists posts.
type Store interface {
	Create(ctx context.Context, p *Post) (*Post, error)
	GetByID(ctx context.Context, id string) (*Post, error)
	List(ctx context.Context, limit int) ([]Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]Post, error)
	Update(ctx context.Context, id string, patch Patch) (*Post, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// SearchIndex ranks posts against a free-text query.
type SearchIndex interface {
	Search(ctx context.Context, query string, limit int) ([]Post, error)
}

// PostgresStore implements Store and SearchIndex with pgx.
type PostgresStore struct {
	db db.DBTX
}

func NewPostgresStore(conn db.DBTX) *PostgresStore {
	return &PostgresStore{db: conn}
}

// selectPosts resolves the author; a deleted author yields an empty id
// and UnknownAuthor.
const selectPosts = `
	SELECT p.id::text, p.title, p.content, p.cover_image, p.category,
	       COALESCE(p.author_id::text, ''),
	       COALESCE(u.username, '` + UnknownAuthor + `'),
	       p.created_at, p.updated_at
	FROM posts p
	LEFT JOIN users u ON u.id = p.author_id`

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.CoverImage, &p.Category,
		&p.AuthorID, &p.Author.Username, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Author.ID = p.AuthorID
	return &p, nil
}

func collectPosts(rows pgx.Rows) ([]Post, error) {
	defer rows.Close()
	out := make([]Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *Post) (*Post, error) {
	var id string
	err := s.db.QueryRow(ctx, `
		INSERT INTO posts (title, content, cover_image, category, author_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text`,
		p.Title, p.Content, p.CoverImage, p.Category, p.AuthorID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Post, error) {
	p, err := scanPost(s.db.QueryRow(ctx, selectPosts+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("query post: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Post, error) {
	rows, err := s.db.Query(ctx, selectPosts+` ORDER BY p.created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return collectPosts(rows)
}

func (s *PostgresStore) ListByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	rows, err := s.db.Query(ctx, selectPosts+` WHERE p.author_id = $1 ORDER BY p.created_at DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return collectPosts(rows)
}

func (s *PostgresStore) Update(ctx context.Context, id string, patch Patch) (*Post, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE posts SET
			title       = COALESCE($2, title),
			content     = COALESCE($3, content),
			cover_image = COALESCE($4, cover_image),
			category    = COALESCE($5, category),
			updated_at  = now()
		WHERE id = $1`,
		id, patch.Title, patch.Content, patch.CoverImage, patch.Category)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrPostNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check post existence: %w", err)
	}
	return exists, nil
}

// Search matches against the weighted title/content vector and orders by rank.
func (s *PostgresStore) Search(ctx context.Context, query string, limit int) ([]Post, error) {
	rows, err := s.db.Query(ctx, selectPosts+`
		WHERE p.search_vector @@ websearch_to_tsquery('english', $1)
		ORDER BY ts_rank(p.search_vector, websearch_to_tsquery('english', $1)) DESC, p.created_at DESC
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return collectPosts(rows)
}
