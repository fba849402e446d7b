package posts

// CreatePostRequest is the body of POST /api/posts.
type CreatePostRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	Content    string `json:"content" validate:"required"`
	Category   string `json:"category" validate:"required,max=50"`
	CoverImage string `json:"cover_image" validate:"required,url"`
}

// UpdatePostRequest is the body of PATCH /api/posts/{id}. Absent fields are kept.
type UpdatePostRequest struct {
	Title      *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content    *string `json:"content,omitempty" validate:"omitempty,min=1"`
	Category   *string `json:"category,omitempty" validate:"omitempty,min=1,max=50"`
	CoverImage *string `json:"cover_image,omitempty" validate:"omitempty,url"`
}

// ListResponse wraps a list of posts.
type ListResponse struct {
	Posts []Post `json:"posts"`
}

// DeleteResponse is returned by DELETE /api/posts/{id}.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
