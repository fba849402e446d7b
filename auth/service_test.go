package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/gateway"
	"github.com/user/inkwell-go/logging"
)

var testClient = gateway.Request{IP: "192.0.2.10", Method: "POST", Path: "/login", UserAgent: "go-test"}

func registerAlice(t *testing.T, svc *AuthService) *User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice", Email: "a@x.com", Password: "secret1",
	}, testClient)
	require.NoError(t, err)
	return u
}

func TestRegisterThenLogin_SameSubject(t *testing.T) {
	svc := newTestService(t, newMemUserStore(), nil)

	created := registerAlice(t, svc)
	assert.Empty(t, created.PasswordHash)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	res, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "secret1"}, testClient)
	require.NoError(t, err)

	claims := svc.tokens.Verify(res.Token)
	require.NotNil(t, claims)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, "alice", claims.UserName)
	assert.Equal(t, created.ID, res.User.ID)
}

func TestRegister_NormalizesAndRejectsCaseInsensitiveDuplicate(t *testing.T) {
	svc := newTestService(t, newMemUserStore(), nil)

	u, err := svc.Register(context.Background(), RegisterRequest{
		Username: "  Alice ", Email: "A@x.com", Password: "secret1",
	}, testClient)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "a@x.com", u.Email)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Username: "bob", Email: "a@x.com", Password: "secret1",
	}, testClient)
	assert.True(t, apperror.IsConflictError(err))

	_, err = svc.Register(context.Background(), RegisterRequest{
		Username: "ALICE", Email: "other@x.com", Password: "secret1",
	}, testClient)
	assert.True(t, apperror.IsConflictError(err))
}

func TestRegister_StoreUniqueViolationIsConflict(t *testing.T) {
	store := newMemUserStore()
	store.createErr = ErrDuplicateUser
	svc := newTestService(t, store, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice", Email: "a@x.com", Password: "secret1",
	}, testClient)
	assert.True(t, apperror.IsConflictError(err))
}

func TestRegister_StoreFailureIsServerError(t *testing.T) {
	store := newMemUserStore()
	store.createErr = errors.New("connection reset")
	svc := newTestService(t, store, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice", Email: "a@x.com", Password: "secret1",
	}, testClient)
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.DatabaseError, appErr.Type)
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(t, newMemUserStore(), nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "al", Email: "not-an-email", Password: "123",
	}, testClient)
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ValidationError, appErr.Type)
	assert.Contains(t, appErr.Fields, "username")
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "password")
}

func TestLogin_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	svc := newTestService(t, newMemUserStore(), nil)
	registerAlice(t, svc)

	_, errUnknown := svc.Login(context.Background(), LoginRequest{Email: "nobody@x.com", Password: "secret1"}, testClient)
	_, errWrong := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "wrong-pass"}, testClient)

	unknown, ok := apperror.FromError(errUnknown)
	require.True(t, ok)
	wrong, ok := apperror.FromError(errWrong)
	require.True(t, ok)

	assert.Equal(t, unknown.StatusCode(), wrong.StatusCode())
	assert.Equal(t, unknown.Message, wrong.Message)
	assert.Equal(t, 401, wrong.StatusCode())
}

func TestRegister_PasswordLimitCountsBytes(t *testing.T) {
	svc := newTestService(t, newMemUserStore(), nil)

	// 40 characters, 80 bytes.
	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice", Email: "a@x.com", Password: strings.Repeat("é", 40),
	}, testClient)
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ValidationError, appErr.Type)
	assert.Equal(t, 400, appErr.StatusCode())
	assert.Contains(t, appErr.Fields, "password")

	_, err = svc.Register(context.Background(), RegisterRequest{
		Username: "alice", Email: "a@x.com", Password: strings.Repeat("é", 36),
	}, testClient)
	require.NoError(t, err)
}

func TestLogin_UnknownEmailStillVerifiesPassword(t *testing.T) {
	hasher := &countingHasher{PasswordHasher: NewBcryptHasher(bcrypt.MinCost)}
	svc := NewAuthService(newMemUserStore(), hasher, newTestCodec(t), testAuthConfig(), nil, logging.Nop())
	registerAlice(t, svc)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@x.com", Password: "secret1"}, testClient)
	assert.True(t, apperror.IsAuthenticationError(err))
	assert.Equal(t, 1, hasher.verifyCount())

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "wrong-pass"}, testClient)
	assert.True(t, apperror.IsAuthenticationError(err))
	assert.Equal(t, 2, hasher.verifyCount())

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@x.com", Password: "unknown-user-placeholder"}, testClient)
	assert.True(t, apperror.IsAuthenticationError(err))
	assert.Equal(t, 3, hasher.verifyCount())
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	svc := newTestService(t, newMemUserStore(), nil)
	registerAlice(t, svc)

	_, err := svc.Login(context.Background(), LoginRequest{Email: " A@X.com", Password: "secret1"}, testClient)
	assert.NoError(t, err)
}

func TestLogin_GatewayUsesAuthRuleAndEmail(t *testing.T) {
	p := &countingProtector{decision: gateway.Decision{Conclusion: gateway.RateLimited}}
	svc := newTestService(t, newMemUserStore(), p)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "secret1"}, testClient)
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, 429, appErr.StatusCode())

	require.Equal(t, 1, p.count())
	assert.Equal(t, gateway.RuleAuth, p.calls[0].Rule)
	assert.Equal(t, "a@x.com", p.calls[0].Email)
}

func TestRegister_GatewayBlock(t *testing.T) {
	p := &countingProtector{decision: gateway.Decision{Conclusion: gateway.Blocked}}
	store := newMemUserStore()
	svc := newTestService(t, store, p)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice", Email: "a@x.com", Password: "secret1",
	}, testClient)
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.StatusCode())
	assert.Empty(t, store.users)
}

func TestCurrentUser(t *testing.T) {
	svc := newTestService(t, newMemUserStore(), nil)
	registerAlice(t, svc)
	res, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "secret1"}, testClient)
	require.NoError(t, err)

	cu := svc.CurrentUser(res.Token)
	assert.True(t, cu.Authenticated())
	assert.Equal(t, res.User.ID, cu.UserID)
	assert.Equal(t, "alice", cu.Username)
	assert.Equal(t, "a@x.com", cu.Email)

	assert.False(t, svc.CurrentUser("").Authenticated())
	assert.False(t, svc.CurrentUser("bogus").Authenticated())
}

func TestMe(t *testing.T) {
	store := newMemUserStore()
	svc := newTestService(t, store, nil)
	alice := registerAlice(t, svc)
	session := &Claims{UserID: alice.ID, Email: alice.Email}

	me := svc.Me(context.Background(), session)
	require.NotNil(t, me)
	assert.Equal(t, "alice", me.Username)

	assert.Nil(t, svc.Me(context.Background(), nil))
	assert.Nil(t, svc.Me(context.Background(), &Claims{UserID: "8b1f2f1e-0000-4000-8000-000000000000"}))

	store.getErr = errors.New("db down")
	assert.Nil(t, svc.Me(context.Background(), session))
}
