// Package posts implements blog posts: the home feed, listing, detail,
// authoring with ownership checks, and full-text search.
package posts

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/background"
	"github.com/user/inkwell-go/comments"
	"github.com/user/inkwell-go/logging"
	"github.com/user/inkwell-go/notify"
	"github.com/user/inkwell-go/validation"
)

const (
	listLimit   = 100
	searchLimit = 10
)

// CommentLister loads the comments of a post for the detail view.
type CommentLister interface {
	ListByPost(ctx context.Context, postID string) ([]comments.Comment, error)
}

// Service is the posts business logic.
type Service interface {
	Feed(ctx context.Context, session *auth.Claims) (*Feed, error)
	List(ctx context.Context) ([]Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]Post, error)
	Get(ctx context.Context, session *auth.Claims, id string) (*Detail, error)
	Create(ctx context.Context, session *auth.Claims, req CreatePostRequest) (*Post, error)
	Update(ctx context.Context, session *auth.Claims, id string, req UpdatePostRequest) (*Post, error)
	Delete(ctx context.Context, session *auth.Claims, id string) error
	Search(ctx context.Context, session *auth.Claims, query string) ([]Post, error)
}

type postServiceImpl struct {
	store    Store
	index    SearchIndex
	comments CommentLister
	notifier notify.Notifier
	log      logging.Logger
}

// NewService wires the posts service. A nil notifier discards events.
func NewService(store Store, index SearchIndex, comments CommentLister, notifier notify.Notifier, log logging.Logger) Service {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &postServiceImpl{
		store:    store,
		index:    index,
		comments: comments,
		notifier: notifier,
		log:      log.With("component", "posts"),
	}
}

// ParseID validates a post id from the URL.
func ParseID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", apperror.NewBadRequestError("invalid post id", err)
	}
	return parsed.String(), nil
}

// StripQuery drops the query string and fragment from an image URL.
func StripQuery(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

func (s *postServiceImpl) Feed(ctx context.Context, session *auth.Claims) (*Feed, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return &Feed{
		User:  FeedUser{ID: session.UserID, Email: session.Email, Username: session.UserName},
		Posts: list,
	}, nil
}

func (s *postServiceImpl) List(ctx context.Context) ([]Post, error) {
	list, err := s.store.List(ctx, listLimit)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts", err)
	}
	return list, nil
}

func (s *postServiceImpl) ListByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	list, err := s.store.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts", err)
	}
	return list, nil
}

func (s *postServiceImpl) load(ctx context.Context, id string) (*Post, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, apperror.NewNotFoundError("post not found", err)
		}
		return nil, apperror.NewDatabaseError("failed to load post", err)
	}
	return p, nil
}

func (s *postServiceImpl) Get(ctx context.Context, session *auth.Claims, id string) (*Detail, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	list, err := s.comments.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Post: *p, Comments: list}
	if session != nil {
		detail.CurrentUserID = session.UserID
	}
	return detail, nil
}

func (s *postServiceImpl) Create(ctx context.Context, session *auth.Claims, req CreatePostRequest) (*Post, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	req.CoverImage = StripQuery(req.CoverImage)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, &Post{
		Title:      req.Title,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Category:   req.Category,
		AuthorID:   session.UserID,
	})
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create post", err)
	}

	s.log.Info(ctx, "post created", "post_id", created.ID, "author_id", session.UserID)
	s.notify(ctx, notify.Created, created.ID)
	return created, nil
}

// Update applies a partial update. Checks run in order: session (401),
// existence (404), ownership (403).
func (s *postServiceImpl) Update(ctx context.Context, session *auth.Claims, id string, req UpdatePostRequest) (*Post, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(session, existing.AuthorID); err != nil {
		return nil, err
	}

	patch, err := toPatch(req)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return existing, nil
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, apperror.NewNotFoundError("post not found", err)
		}
		return nil, apperror.NewDatabaseError("failed to update post", err)
	}

	s.log.Info(ctx, "post updated", "post_id", id)
	s.notify(ctx, notify.Updated, id)
	return updated, nil
}

func toPatch(req UpdatePostRequest) (Patch, error) {
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		return &v
	}
	req.Title = trim(req.Title)
	req.Category = trim(req.Category)
	if req.CoverImage != nil {
		v := StripQuery(*req.CoverImage)
		req.CoverImage = &v
	}

	fields := map[string]string{}
	for name, v := range map[string]*string{
		"title":       req.Title,
		"content":     req.Content,
		"category":    req.Category,
		"cover_image": req.CoverImage,
	} {
		if v != nil && strings.TrimSpace(*v) == "" {
			fields[name] = name + " must not be empty"
		}
	}
	if len(fields) > 0 {
		return Patch{}, apperror.NewValidationError("invalid input data", fields)
	}
	if err := validation.Struct(req); err != nil {
		return Patch{}, err
	}
	return Patch{Title: req.Title, Content: req.Content, CoverImage: req.CoverImage, Category: req.Category}, nil
}

func (s *postServiceImpl) Delete(ctx context.Context, session *auth.Claims, id string) error {
	if err := auth.RequireSession(session); err != nil {
		return err
	}
	id, err := ParseID(id)
	if err != nil {
		return err
	}
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwner(session, existing.AuthorID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return apperror.NewNotFoundError("post not found", err)
		}
		return apperror.NewDatabaseError("failed to delete post", err)
	}

	s.log.Info(ctx, "post deleted", "post_id", id)
	s.notify(ctx, notify.Deleted, id)
	return nil
}

func (s *postServiceImpl) Search(ctx context.Context, session *auth.Claims, query string) ([]Post, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.NewValidationError("search query is required", map[string]string{"q": "q is required"})
	}
	results, err := s.index.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to search posts", err)
	}
	return results, nil
}

// notify publishes a change; the dispatcher already logs dropped events.
func (s *postServiceImpl) notify(ctx context.Context, changeType, postID string) {
	err := s.notifier.Notify(ctx, notify.Changed(notify.TopicBlogs, changeType, postID))
	if err != nil && !errors.Is(err, background.ErrQueueFull) {
		s.log.Warn(ctx, "failed to publish post change", "post_id", postID, "error", err)
	}
}
