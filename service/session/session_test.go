package session

import (
	"context"
	"testing"
	"time"

	"creditpool/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueLogin(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := core.ClockFunc(func() time.Time { return now })

	for _, capacity := range []int{0, 16} {
		s := New(Config{Secret: "s3cret", Issuer: "creditpool", Capacity: capacity, Admins: []string{"root"}, Clock: clock})

		token, err := s.Issue(ctx, "alice", time.Hour)
		require.NoError(t, err)

		user, err := s.Login(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Identity)
		assert.Equal(t, "user", user.Role)
		assert.Equal(t, now.Add(time.Hour).Unix(), user.ExpiresAt.Unix())

		token, _ = s.Issue(ctx, "root", time.Hour)
		user, err = s.Login(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "admin", user.Role)

		_, err = s.Login(ctx, token+"x")
		assert.Error(t, err)

		_, err = s.Issue(ctx, "", time.Hour)
		assert.Equal(t, core.ErrInvalidIdentity, err)
	}
}

func TestLoginRejects(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer := New(Config{Secret: "a", Issuer: "creditpool", Clock: core.ClockFunc(func() time.Time { return now })})

	token, err := issuer.Issue(ctx, "alice", time.Minute)
	require.NoError(t, err)

	other := New(Config{Secret: "b", Issuer: "creditpool", Clock: core.ClockFunc(func() time.Time { return now })})
	_, err = other.Login(ctx, token)
	assert.Error(t, err, "wrong secret")

	wrongIssuer := New(Config{Secret: "a", Issuer: "elsewhere", Clock: core.ClockFunc(func() time.Time { return now })})
	_, err = wrongIssuer.Login(ctx, token)
	assert.Error(t, err, "wrong issuer")

	later := New(Config{Secret: "a", Issuer: "creditpool", Clock: core.ClockFunc(func() time.Time { return now.Add(time.Hour) })})
	_, err = later.Login(ctx, token)
	assert.Error(t, err, "expired")
}
