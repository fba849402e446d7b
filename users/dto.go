package users

import (
	"time"

	"github.com/user/inkwell-go/posts"
)

// ProfileUser is the public part of an account shown on its profile.
type ProfileUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileResponse is returned by GET /api/profile/{username}.
type ProfileResponse struct {
	User  ProfileUser     `json:"user"`
	Posts []posts.Summary `json:"posts"`
}
