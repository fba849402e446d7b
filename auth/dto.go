package auth

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse is returned by register.
type RegisterResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// LoginResponse is returned by login.
type LoginResponse struct {
	Message string     `json:"message"`
	User    PublicUser `json:"user"`
}

// LogoutResponse is returned by logout.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MeResponse is returned by GET /api/me. User is null when anonymous.
type MeResponse struct {
	User *PublicUser `json:"user"`
}

// PageResponse describes a guest-only page for an anonymous caller.
type PageResponse struct {
	Page string `json:"page"`
	From string `json:"from"`
}
