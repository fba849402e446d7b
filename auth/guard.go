package auth

import (
	"strings"

	"github.com/user/inkwell-go/apperror"
)

// CanModify reports whether session belongs to the author authorID.
// Ids are compared trimmed and case-insensitively; an empty author never matches.
func CanModify(session *Claims, authorID string) bool {
	if session == nil {
		return false
	}
	owner := strings.TrimSpace(authorID)
	user := strings.TrimSpace(session.UserID)
	return owner != "" && user != "" && strings.EqualFold(owner, user)
}

// CanComment reports whether session may comment. Any session may.
func CanComment(session *Claims) bool {
	return session != nil
}

// RequireSession returns a 401 AppError for an anonymous caller.
func RequireSession(session *Claims) error {
	if session == nil {
		return apperror.NewAuthenticationError("authentication required", nil)
	}
	return nil
}

// RequireOwner returns 401 for an anonymous caller and 403 for a caller
// who is not the author.
func RequireOwner(session *Claims, authorID string) error {
	if err := RequireSession(session); err != nil {
		return err
	}
	if !CanModify(session, authorID) {
		return apperror.NewAuthorizationError("you are not allowed to modify this resource", nil)
	}
	return nil
}
