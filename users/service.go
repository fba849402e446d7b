// Package users serves public profiles: an account and the posts it wrote.
package users

import (
	"context"
	"errors"
	"strings"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/posts"
)

// PostLister lists the posts written by an account, newest first.
type PostLister interface {
	ListByAuthor(ctx context.Context, authorID string) ([]posts.Post, error)
}

// UserService builds profiles from the account store and the posts service.
type UserService struct {
	users auth.UserStore
	posts PostLister
}

func NewUserService(users auth.UserStore, posts PostLister) *UserService {
	return &UserService{users: users, posts: posts}
}

// GetProfile looks the account up case-insensitively by username.
func (s *UserService) GetProfile(ctx context.Context, username string) (*ProfileResponse, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperror.NewBadRequestError("username is required", nil)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, apperror.NewNotFoundError("user not found", err)
		}
		return nil, apperror.NewDatabaseError("failed to load user", err)
	}

	written, err := s.posts.ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	summaries := make([]posts.Summary, 0, len(written))
	for _, p := range written {
		summaries = append(summaries, posts.Summary{
			ID:         p.ID,
			Title:      p.Title,
			CoverImage: p.CoverImage,
			Category:   p.Category,
			CreatedAt:  p.CreatedAt,
		})
	}

	return &ProfileResponse{
		User: ProfileUser{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
		Posts: summaries,
	}, nil
}
