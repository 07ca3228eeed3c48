package service

import (
	"context"
	"testing"
	"time"

	"shortly-platform/internal/store"
	"shortly-platform/internal/testutil"
	auth "shortly-platform/pkg/jwt"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAuth(t *testing.T) *AuthService {
	return newTestAuthWithCache(t, nil)
}

func newTestAuthWithCache(t *testing.T, cache *redis.Client) *AuthService {
	t.Helper()
	users := store.NewUserStore(testutil.NewTestDB(t))
	return NewAuthService(users, auth.NewManager("test-secret", "shortly", 1), cache, 8, zap.NewNop().Sugar())
}

func TestAuth_RegisterLoginAuthenticate(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Ada", "ada@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, loginToken, err := svc.Login(ctx, "ada@example.com", "correct-horse")
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, loginToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Ada", got.Name)
}

func TestAuth_RegisterValidation(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Ada", "not-an-email", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, _, err = svc.Register(ctx, "Ada", "ada@example.com", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, _, err = svc.Register(ctx, "Ada", "ada@example.com", "correct-horse")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "Ada Again", "ada@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuth_LoginFailures(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "ghost@example.com", "whatever1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, _, err = svc.Register(ctx, "Ada", "ada@example.com", "correct-horse")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "ada@example.com", "wrong-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_AuthenticateRejectsBadTokens(t *testing.T) {
	svc := newTestAuth(t)

	_, err := svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// 用户不存在的合法令牌
	token, err := auth.NewManager("test-secret", "shortly", 1).GenerateToken(404)
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuth_ChangePassword(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Ada", "ada@example.com", "correct-horse")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "wrong-horse", "battery-staple"), ErrInvalidCredentials)
	assert.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "correct-horse", "short"), ErrWeakPassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "correct-horse", "correct-horse"), ErrSamePassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "correct-horse", "battery-staple"))

	_, _, err = svc.Login(ctx, "ada@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "ada@example.com", "battery-staple")
	assert.NoError(t, err)
}

func TestAuth_LogoutRevokesToken(t *testing.T) {
	mr, rdb := testutil.NewTestRedis(t)
	svc := newTestAuthWithCache(t, rdb)
	ctx := context.Background()

	_, token, err := svc.Register(ctx, "Ada", "ada@example.com", "correct-horse")
	require.NoError(t, err)
	_, other, err := svc.Login(ctx, "ada@example.com", "correct-horse")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	require.NoError(t, err)

	svc.Logout(ctx, token)
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// 只吊销退出的会话，且吊销记录随令牌过期
	_, err = svc.Authenticate(ctx, other)
	assert.NoError(t, err)
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))
}

func TestAuth_LogoutWithoutCacheOnlyClearsCookie(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	_, token, err := svc.Register(ctx, "Ada", "ada@example.com", "correct-horse")
	require.NoError(t, err)

	svc.Logout(ctx, token)
	_, err = svc.Authenticate(ctx, token)
	assert.NoError(t, err)
}
