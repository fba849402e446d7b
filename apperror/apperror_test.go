package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"validation", NewValidationError("bad", nil), http.StatusBadRequest},
		{"bad request", NewBadRequestError("bad", nil), http.StatusBadRequest},
		{"authentication", NewAuthenticationError("who", nil), http.StatusUnauthorized},
		{"authorization", NewAuthorizationError("no", nil), http.StatusForbidden},
		{"not found", NewNotFoundError("gone", nil), http.StatusNotFound},
		{"conflict", NewConflictError("dup", nil), http.StatusConflict},
		{"rate limit", NewRateLimitError("slow down"), http.StatusTooManyRequests},
		{"abuse", NewAbuseError("blocked"), http.StatusForbidden},
		{"database", NewDatabaseError("db", nil), http.StatusInternalServerError},
		{"external", NewExternalServiceError("upstream", nil), http.StatusBadGateway},
		{"unknown", NewAppError(UnknownError, "?", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestFromError_Wrapped(t *testing.T) {
	base := NewConflictError("email already exists", nil)
	wrapped := fmt.Errorf("register: %w", base)

	got, ok := FromError(wrapped)
	require.True(t, ok)
	assert.Same(t, base, got)
	assert.True(t, IsConflictError(wrapped))
	assert.False(t, IsNotFound(wrapped))

	_, ok = FromError(errors.New("plain"))
	assert.False(t, ok)
	_, ok = FromError(nil)
	assert.False(t, ok)
}

func TestWriteError_ClientErrorKeepsMessageAndFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", nil)

	WriteError(rec, req, NewValidationError("invalid input data", map[string]string{"email": "invalid email address"}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "invalid input data", body.Error)
	assert.Equal(t, "invalid email address", body.Errors["email"])
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)

	WriteError(rec, req, errors.New("pq: connection refused to 10.0.0.3"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
	assert.Contains(t, rec.Body.String(), genericInternalMessage)

	rec = httptest.NewRecorder()
	WriteError(rec, req, NewDatabaseError("failed to create user", errors.New("secret detail")))
	assert.NotContains(t, rec.Body.String(), "secret detail")
	assert.NotContains(t, rec.Body.String(), "failed to create user")
}
