package comments

import "time"

// UnknownAuthor is shown for comments whose author account no longer exists.
const UnknownAuthor = "Unknown User"

// Author is the public projection of a comment's author.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Comment is a comment on a post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentRequest is the body of POST /api/posts/{id}/comments.
type NewCommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// ListResponse wraps the comments of a post.
type ListResponse struct {
	Comments []Comment `json:"comments"`
}
