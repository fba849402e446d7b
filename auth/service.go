// Package auth implements accounts and sessions: registration, login,
// signed session tokens carried in a cookie, the request gate and the
// ownership guard used by the content packages.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/config"
	"github.com/user/inkwell-go/gateway"
	"github.com/user/inkwell-go/logging"
	"github.com/user/inkwell-go/validation"
)

// invalidCredentials is the single message for an unknown email and a wrong
// password so the two cannot be told apart.
const invalidCredentials = "invalid email or password"

// AuthService holds the account and session business logic.
type AuthService struct {
	users     UserStore
	hasher    PasswordHasher
	tokens    *TokenCodec
	ttl       time.Duration
	protector gateway.Protector
	log       logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService wires the service. A nil protector allows every request.
func NewAuthService(
	users UserStore,
	hasher PasswordHasher,
	tokens *TokenCodec,
	cfg *config.AuthConfig,
	protector gateway.Protector,
	log logging.Logger,
) *AuthService {
	if protector == nil {
		protector = gateway.AllowAll
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		ttl:       cfg.SessionTTL,
		protector: protector,
		log:       log.With("component", "auth"),
	}
}

// LoginResult is a successful login: the user and the token to put in the cookie.
type LoginResult struct {
	User      PublicUser
	Token     string
	ExpiresAt time.Time
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register validates the input, consults the gateway under the auth rule and
// creates the account. It does not sign the user in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, client gateway.Request) (*User, error) {
	req.Username = normalize(req.Username)
	req.Email = normalize(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if len(req.Password) > MaxPasswordBytes {
		return nil, apperror.NewValidationError("invalid input data", map[string]string{
			"password": fmt.Sprintf("password must be at most %d bytes long", MaxPasswordBytes),
		})
	}

	client.Rule = gateway.RuleAuth
	client.Email = req.Email
	if err := gateway.Check(ctx, s.protector, s.log, client); err != nil {
		s.log.Info(ctx, "registration denied by gateway", "email", req.Email, "ip", client.IP)
		return nil, err
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to check existing users", err)
	}
	if exists {
		return nil, apperror.NewConflictError(ErrDuplicateUser.Error(), nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	created, err := s.users.Create(ctx, &User{Username: req.Username, Email: req.Email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return nil, apperror.NewConflictError(ErrDuplicateUser.Error(), err)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	s.log.Info(ctx, "user registered", "user_id", created.ID)
	created.PasswordHash = ""
	return created, nil
}

// Login checks the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, client gateway.Request) (*LoginResult, error) {
	req.Email = normalize(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	client.Rule = gateway.RuleAuth
	client.Email = req.Email
	if err := gateway.Check(ctx, s.protector, s.log, client); err != nil {
		s.log.Info(ctx, "login denied by gateway", "email", req.Email, "ip", client.IP)
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Same bcrypt work as a wrong password, so timing does not reveal accounts.
			s.hasher.Verify(req.Password, s.unknownUserHash())
			return nil, apperror.NewAuthenticationError(invalidCredentials, nil)
		}
		return nil, apperror.NewDatabaseError("failed to load user", err)
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, apperror.NewAuthenticationError(invalidCredentials, nil)
	}

	token, err := s.tokens.Issue(Claims{
		UserID:   user.ID,
		Email:    user.Email,
		UserName: user.Username,
	}, s.ttl)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue session token", err)
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{
		User:      user.Public(),
		Token:     token,
		ExpiresAt: s.tokens.now().Add(s.ttl),
	}, nil
}

// unknownUserHash is a hash at the configured cost that no login can match.
func (s *AuthService) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("unknown-user-placeholder")
		if err != nil {
			s.log.Warn(context.Background(), "failed to prepare placeholder hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// CurrentUser resolves the identity carried by a token. Any failure yields
// the anonymous zero value.
func (s *AuthService) CurrentUser(token string) CurrentUser {
	claims := s.tokens.Verify(token)
	if claims == nil {
		return CurrentUser{}
	}
	return CurrentUser{UserID: claims.UserID, Email: claims.Email, Username: claims.UserName}
}

// Me returns the public profile of the session's user, or nil when there is
// no session or the user cannot be loaded.
func (s *AuthService) Me(ctx context.Context, session *Claims) *PublicUser {
	if session == nil {
		return nil
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.log.Warn(ctx, "failed to load current user", "user_id", session.UserID, "error", err)
		}
		return nil
	}
	pub := user.Public()
	return &pub
}
