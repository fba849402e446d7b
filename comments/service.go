// Package comments implements comments on posts.
package comments

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/logging"
	"github.com/user/inkwell-go/notify"
	"github.com/user/inkwell-go/validation"
)

// CommentService defines the comment operations used by the handlers and
// by the post detail view.
type CommentService interface {
	AddComment(ctx context.Context, session *auth.Claims, postID string, req NewCommentRequest) (*Comment, error)
	ListByPost(ctx context.Context, postID string) ([]Comment, error)
}

type commentServiceImpl struct {
	store    Store
	posts    PostChecker
	notifier notify.Notifier
	log      logging.Logger
}

func NewCommentService(store Store, posts PostChecker, notifier notify.Notifier, log logging.Logger) CommentService {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &commentServiceImpl{store: store, posts: posts, notifier: notifier, log: log.With("component", "comments")}
}

func parsePostID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", apperror.NewBadRequestError("invalid post id", err)
	}
	return parsed.String(), nil
}

// AddComment requires a session (401), valid content (400) and an existing post (404).
func (s *commentServiceImpl) AddComment(ctx context.Context, session *auth.Claims, postID string, req NewCommentRequest) (*Comment, error) {
	if !auth.CanComment(session) {
		return nil, apperror.NewAuthenticationError("you must be signed in to comment", nil)
	}
	postID, err := parsePostID(postID)
	if err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to check post", err)
	}
	if !exists {
		return nil, apperror.NewNotFoundError("post not found", nil)
	}

	created, err := s.store.Create(ctx, &Comment{PostID: postID, AuthorID: session.UserID, Content: req.Content})
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, apperror.NewNotFoundError("post not found", err)
		}
		return nil, apperror.NewDatabaseError("failed to add comment", err)
	}

	s.log.Info(ctx, "comment added", "comment_id", created.ID, "post_id", postID, "author_id", session.UserID)
	ev := notify.Event{
		Topic: notify.TopicComments,
		Name:  notify.EventChanged,
		Data:  notify.Change{Type: notify.Created, PostID: postID, ID: created.ID},
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.log.Debug(ctx, "comment notification not queued", "comment_id", created.ID, "error", err)
	}
	return created, nil
}

func (s *commentServiceImpl) ListByPost(ctx context.Context, postID string) ([]Comment, error) {
	postID, err := parsePostID(postID)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListByPost(ctx, postID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list comments", err)
	}
	return list, nil
}
