package posts

import (
	"time"

	"github.com/user/inkwell-go/comments"
)

// UnknownAuthor is shown for posts whose author account no longer exists.
const UnknownAuthor = "Unknown User"

// Author is the public projection of a post's author.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Post is a blog post with its author resolved.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CoverImage string    `json:"cover_image"`
	Category   string    `json:"category"`
	AuthorID   string    `json:"author_id"`
	Author     Author    `json:"author"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Summary is the short form used on profile pages.
type Summary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	CoverImage string    `json:"cover_image"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
}

// Detail is a post with its comments and the id of the viewer, if any.
type Detail struct {
	Post
	Comments      []comments.Comment `json:"comments"`
	CurrentUserID string             `json:"current_user_id"`
}

// FeedUser is the signed-in user shown on the home feed.
type FeedUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Feed is the protected home page payload.
type Feed struct {
	User  FeedUser `json:"user"`
	Posts []Post   `json:"posts"`
}

// Patch holds the optional columns of an update; nil leaves a column as is.
type Patch struct {
	Title      *string
	Content    *string
	CoverImage *string
	Category   *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.CoverImage == nil && p.Category == nil
}
