package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/inkwell-go/apperror"
)

// UserHandlers exposes profiles over HTTP.
type UserHandlers struct {
	service *UserService
}

func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

func (h *UserHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/api/profile/{username}", h.HandleGetProfile())
}

// HandleGetProfile godoc
// @Summary Public profile
// @Tags Users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} users.ProfileResponse
// @Failure 404 {object} apperror.ErrorResponse "Unknown user"
// @Router /api/profile/{username} [get]
func (h *UserHandlers) HandleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, profile)
	}
}
