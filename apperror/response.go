package apperror

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

const genericInternalMessage = "an unexpected error occurred"

// WriteJSON serializes data to JSON and writes it with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// WriteError converts any error into a standardized ErrorResponse.
// Errors that are not AppErrors become InternalErrors. Server-side failures are
// logged with the request id and their message is replaced by a generic one, so
// store and signing errors never reach the client verbatim.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := FromError(err)
	if !ok {
		appErr = NewInternalError(genericInternalMessage, err)
	}

	if appErr.IsServerError() {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", appErr.Error(),
		)
		WriteJSON(w, appErr.StatusCode(), ErrorResponse{Error: publicServerMessage(appErr)})
		return
	}

	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}

func publicServerMessage(e *AppError) string {
	switch e.Type {
	case InternalError, DatabaseError, ConfigError:
		return genericInternalMessage
	default:
		return e.Message
	}
}
