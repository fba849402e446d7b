package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDB captures the SQL sent to QueryRow and answers with no rows.
type recordingDB struct {
	queries []string
	args    [][]any
}

func (d *recordingDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not implemented")
}

func (d *recordingDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (d *recordingDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	d.queries = append(d.queries, sql)
	d.args = append(d.args, args)
	return noRow{}
}

type noRow struct{}

func (noRow) Scan(...any) error { return pgx.ErrNoRows }

func TestPostgresUserStore_GetByIDUsesPrimaryKey(t *testing.T) {
	conn := &recordingDB{}
	store := NewPostgresUserStore(conn)

	_, err := store.GetByID(context.Background(), "6f1c2a9e-0b7d-4a53-9d0c-2b1e8f3a4c5d")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.Len(t, conn.queries, 1)
	assert.Contains(t, conn.queries[0], "WHERE id = $1")
	assert.NotContains(t, conn.queries[0], "id::text =")
	assert.Equal(t, []any{"6f1c2a9e-0b7d-4a53-9d0c-2b1e8f3a4c5d"}, conn.args[0])
}

func TestPostgresUserStore_LookupsAreCaseInsensitive(t *testing.T) {
	conn := &recordingDB{}
	store := NewPostgresUserStore(conn)

	_, err := store.GetByEmail(context.Background(), "A@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = store.GetByUsername(context.Background(), "Alice")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.Len(t, conn.queries, 2)
	assert.Contains(t, conn.queries[0], "lower(email) = lower($1)")
	assert.Contains(t, conn.queries[1], "lower(username) = lower($1)")
}
