package comments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/logging"
	"github.com/user/inkwell-go/notify"
)

type memStore struct {
	mu       sync.Mutex
	comments []Comment
	err      error
}

func (m *memStore) Create(_ context.Context, c *Comment) (*Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	created := *c
	created.ID = uuid.NewString()
	created.Author = Author{ID: c.AuthorID, Username: "alice"}
	created.CreatedAt = time.Now().Add(time.Duration(len(m.comments)) * time.Second)
	m.comments = append(m.comments, created)
	return &created, nil
}

func (m *memStore) ListByPost(_ context.Context, postID string) ([]Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Comment, 0)
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

type postSet map[string]bool

func (p postSet) Exists(_ context.Context, id string) (bool, error) { return p[id], nil }

type eventLog struct {
	mu     sync.Mutex
	events []notify.Event
}

func (l *eventLog) Notify(_ context.Context, ev notify.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	return nil
}

func newTestCommentService(store *memStore, posts postSet, events *eventLog) CommentService {
	return NewCommentService(store, posts, events, logging.Nop())
}

func TestAddComment(t *testing.T) {
	postID := uuid.NewString()
	store, events := &memStore{}, &eventLog{}
	svc := newTestCommentService(store, postSet{postID: true}, events)
	session := &auth.Claims{UserID: uuid.NewString(), Email: "a@x.com"}

	c, err := svc.AddComment(context.Background(), session, postID, NewCommentRequest{Content: "  nice post  "})
	require.NoError(t, err)
	assert.Equal(t, "nice post", c.Content)
	assert.Equal(t, session.UserID, c.AuthorID)
	assert.Equal(t, postID, c.PostID)

	require.Len(t, events.events, 1)
	assert.Equal(t, notify.TopicComments, events.events[0].Topic)
	assert.Equal(t, notify.Change{Type: notify.Created, PostID: postID, ID: c.ID}, events.events[0].Data)
}

func TestAddComment_Errors(t *testing.T) {
	postID := uuid.NewString()
	session := &auth.Claims{UserID: uuid.NewString(), Email: "a@x.com"}

	tests := []struct {
		name    string
		session *auth.Claims
		postID  string
		content string
		status  int
	}{
		{"anonymous", nil, postID, "hi", http.StatusUnauthorized},
		{"bad id", session, "nope", "hi", http.StatusBadRequest},
		{"empty content", session, postID, "   ", http.StatusBadRequest},
		{"too long", session, postID, strings.Repeat("x", 5001), http.StatusBadRequest},
		{"missing post", session, uuid.NewString(), "hi", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestCommentService(&memStore{}, postSet{postID: true}, &eventLog{})
			_, err := svc.AddComment(context.Background(), tt.session, tt.postID, NewCommentRequest{Content: tt.content})
			appErr, ok := apperror.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, appErr.StatusCode())
		})
	}
}

func TestAddComment_PostDeletedConcurrently(t *testing.T) {
	postID := uuid.NewString()
	svc := newTestCommentService(&memStore{err: ErrPostNotFound}, postSet{postID: true}, &eventLog{})

	_, err := svc.AddComment(context.Background(), &auth.Claims{UserID: uuid.NewString()}, postID, NewCommentRequest{Content: "hi"})
	assert.True(t, apperror.IsNotFound(err))
}

func TestAddComment_StoreFailure(t *testing.T) {
	postID := uuid.NewString()
	events := &eventLog{}
	svc := newTestCommentService(&memStore{err: errors.New("db down")}, postSet{postID: true}, events)

	_, err := svc.AddComment(context.Background(), &auth.Claims{UserID: uuid.NewString()}, postID, NewCommentRequest{Content: "hi"})
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.DatabaseError, appErr.Type)
	assert.Empty(t, events.events)
}

func TestCommentHandler(t *testing.T) {
	postID := uuid.NewString()
	svc := newTestCommentService(&memStore{}, postSet{postID: true}, &eventLog{})
	r := chi.NewRouter()
	NewCommentHandler(svc).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/posts/"+postID+"/comments", strings.NewReader(`{"content":"hi"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	session := &auth.Claims{UserID: uuid.NewString(), Email: "a@x.com"}
	for _, content := range []string{"first", "second"} {
		req := httptest.NewRequest(http.MethodPost, "/api/posts/"+postID+"/comments", strings.NewReader(`{"content":"`+content+`"}`))
		req = req.WithContext(auth.NewContextWithClaims(req.Context(), session))
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts/"+postID+"/comments", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Less(t, strings.Index(body, "first"), strings.Index(body, "second"))
}
