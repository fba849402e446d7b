package posts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/validation"
)

// Handler exposes the posts service over HTTP.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the home feed and the /api/posts routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.feed)
	r.Get("/api/posts", h.list)
	r.Post("/api/posts", h.create)
	r.Get("/api/posts/search", h.search)
	r.Get("/api/posts/{id}", h.get)
	r.Patch("/api/posts/{id}", h.update)
	r.Delete("/api/posts/{id}", h.remove)
}

// feed godoc
// @Summary Home feed
// @Description Protected. Anonymous callers are redirected to /login.
// @Tags Posts
// @Produce json
// @Success 200 {object} posts.Feed
// @Success 303
// @Router / [get]
func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.service.Feed(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, feed)
}

// list godoc
// @Summary List posts
// @Tags Posts
// @Produce json
// @Success 200 {object} posts.ListResponse
// @Router /api/posts [get]
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, ListResponse{Posts: list})
}

// get godoc
// @Summary Post detail
// @Tags Posts
// @Produce json
// @Param id path string true "Post id"
// @Success 200 {object} posts.Detail
// @Failure 400 {object} apperror.ErrorResponse "Invalid id"
// @Failure 404 {object} apperror.ErrorResponse "Not found"
// @Router /api/posts/{id} [get]
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, detail)
}

// create godoc
// @Summary Create a post
// @Tags Posts
// @Accept json
// @Produce json
// @Param body body posts.CreatePostRequest true "Post"
// @Success 201 {object} posts.Post
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Not signed in"
// @Router /api/posts [post]
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if err := auth.RequireSession(session); err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	var req CreatePostRequest
	if err := validation.DecodeJSON(w, r, &req); err != nil {
		apperror.WriteError(w, r, err)
		return
	}

	post, err := h.service.Create(r.Context(), session, req)
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, post)
}

// update godoc
// @Summary Update a post
// @Description Author only. Absent fields are left unchanged.
// @Tags Posts
// @Accept json
// @Produce json
// @Param id path string true "Post id"
// @Param body body posts.UpdatePostRequest true "Fields to change"
// @Success 200 {object} posts.Post
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Not signed in"
// @Failure 403 {object} apperror.ErrorResponse "Not the author"
// @Failure 404 {object} apperror.ErrorResponse "Not found"
// @Router /api/posts/{id} [patch]
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if err := auth.RequireSession(session); err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	var req UpdatePostRequest
	if err := validation.DecodeJSON(w, r, &req); err != nil {
		apperror.WriteError(w, r, err)
		return
	}

	post, err := h.service.Update(r.Context(), session, chi.URLParam(r, "id"), req)
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, post)
}

// remove godoc
// @Summary Delete a post
// @Tags Posts
// @Produce json
// @Param id path string true "Post id"
// @Success 200 {object} posts.DeleteResponse
// @Failure 401 {object} apperror.ErrorResponse "Not signed in"
// @Failure 403 {object} apperror.ErrorResponse "Not the author"
// @Failure 404 {object} apperror.ErrorResponse "Not found"
// @Router /api/posts/{id} [delete]
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, DeleteResponse{Success: true, Message: "post deleted"})
}

// search godoc
// @Summary Search posts
// @Description Signed-in users only. Returns the ten best matches.
// @Tags Posts
// @Produce json
// @Param q query string true "Search terms"
// @Success 200 {object} posts.ListResponse
// @Failure 400 {object} apperror.ErrorResponse "Missing query"
// @Failure 401 {object} apperror.ErrorResponse "Not signed in"
// @Router /api/posts/search [get]
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Search(r.Context(), auth.SessionFromContext(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, ListResponse{Posts: results})
}
