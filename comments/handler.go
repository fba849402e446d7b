package comments

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/validation"
)

// CommentHandler handles comment-related HTTP requests.
type CommentHandler struct {
	service CommentService
}

func NewCommentHandler(service CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// RegisterRoutes mounts the comment routes beneath /api/posts/{id}.
func (h *CommentHandler) RegisterRoutes(router chi.Router) {
	router.Get("/api/posts/{id}/comments", h.listComments)
	router.Post("/api/posts/{id}/comments", h.addComment)
}

// addComment godoc
// @Summary Comment on a post
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "Post id"
// @Param body body comments.NewCommentRequest true "Comment"
// @Success 201 {object} comments.Comment
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Not signed in"
// @Failure 404 {object} apperror.ErrorResponse "Post not found"
// @Router /api/posts/{id}/comments [post]
func (h *CommentHandler) addComment(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if !auth.CanComment(session) {
		apperror.WriteError(w, r, apperror.NewAuthenticationError("you must be signed in to comment", nil))
		return
	}

	var req NewCommentRequest
	if err := validation.DecodeJSON(w, r, &req); err != nil {
		apperror.WriteError(w, r, err)
		return
	}

	comment, err := h.service.AddComment(r.Context(), session, chi.URLParam(r, "id"), req)
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, comment)
}

// listComments godoc
// @Summary List the comments of a post
// @Tags Comments
// @Produce json
// @Param id path string true "Post id"
// @Success 200 {object} comments.ListResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid id"
// @Router /api/posts/{id}/comments [get]
func (h *CommentHandler) listComments(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListByPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, ListResponse{Comments: list})
}
