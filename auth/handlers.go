package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/gateway"
	"github.com/user/inkwell-go/validation"
)

// Handlers exposes AuthService over HTTP.
type Handlers struct {
	service *AuthService
	cookies *CookieManager
}

func NewHandlers(service *AuthService, cookies *CookieManager) *Handlers {
	return &Handlers{service: service, cookies: cookies}
}

// RegisterRoutes mounts the account routes on r.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/login", h.HandleLoginPage())
	r.Post("/login", h.HandleLogin())
	r.Get("/register", h.HandleRegisterPage())
	r.Post("/register", h.HandleRegister())
	r.Post("/logout", h.HandleLogout())
	r.Get("/api/me", h.HandleMe())
}

// HandleRegister godoc
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body auth.RegisterRequest true "Account details"
// @Success 201 {object} auth.RegisterResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 403 {object} apperror.ErrorResponse "Blocked by abuse protection"
// @Failure 409 {object} apperror.ErrorResponse "Username or email already in use"
// @Failure 429 {object} apperror.ErrorResponse "Too many attempts"
// @Router /register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := validation.DecodeJSON(w, r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		user, err := h.service.Register(r.Context(), req, gateway.RequestFromHTTP(r, gateway.RuleAuth))
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		apperror.WriteJSON(w, http.StatusCreated, RegisterResponse{
			Message: "account created successfully",
			User:    user,
		})
	}
}

// HandleLogin godoc
// @Summary Sign in
// @Description Verifies the credentials and sets the session cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.LoginResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Invalid email or password"
// @Failure 403 {object} apperror.ErrorResponse "Blocked by abuse protection"
// @Failure 429 {object} apperror.ErrorResponse "Too many attempts"
// @Router /login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := validation.DecodeJSON(w, r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		res, err := h.service.Login(r.Context(), req, gateway.RequestFromHTTP(r, gateway.RuleAuth))
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		h.cookies.Set(w, r, res.Token)
		apperror.WriteJSON(w, http.StatusOK, LoginResponse{
			Message: "login successful",
			User:    res.User,
		})
	}
}

// HandleLogout godoc
// @Summary Sign out
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.LogoutResponse
// @Router /logout [post]
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.cookies.Clear(w, r)
		apperror.WriteJSON(w, http.StatusOK, LogoutResponse{Success: true, Message: "logout successful"})
	}
}

// HandleMe godoc
// @Summary Current user
// @Description Always 200; user is null without a valid session.
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.MeResponse
// @Router /api/me [get]
func (h *Handlers) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session == nil {
			if token, ok := h.cookies.Read(r); ok {
				session = h.service.tokens.Verify(token)
			}
		}
		apperror.WriteJSON(w, http.StatusOK, MeResponse{User: h.service.Me(r.Context(), session)})
	}
}

// HandleLoginPage godoc
// @Summary Login page descriptor
// @Description Guest only. A signed-in caller is redirected to "from" or "/".
// @Tags Auth
// @Produce json
// @Param from query string false "Local path to return to"
// @Success 200 {object} auth.PageResponse
// @Success 303
// @Router /login [get]
func (h *Handlers) HandleLoginPage() http.HandlerFunc {
	return h.guestPage("login")
}

// HandleRegisterPage godoc
// @Summary Registration page descriptor
// @Description Guest only. A signed-in caller is redirected to "from" or "/".
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.PageResponse
// @Success 303
// @Router /register [get]
func (h *Handlers) HandleRegisterPage() http.HandlerFunc {
	return h.guestPage("register")
}

func (h *Handlers) guestPage(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from := r.URL.Query().Get("from")
		if token, ok := h.cookies.Read(r); ok && h.service.CurrentUser(token).Authenticated() {
			http.Redirect(w, r, safeRedirect(from), http.StatusSeeOther)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, PageResponse{Page: page, From: safeRedirect(from)})
	}
}

// safeRedirect returns from when it is a local absolute path and "/" otherwise.
func safeRedirect(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return "/"
	}
	return from
}
