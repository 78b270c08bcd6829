package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residency/pkg/domain"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)

	ok, err := CheckPassword(hash, "admin123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "admin124")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	_, err := CheckPassword("plain", "plain")
	require.Error(t, err)
}

func TestTokenIssueAndValidate(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	user := domain.User{ID: "u-1", Username: "truongkp", Role: domain.RoleChief, FullName: "Nguyễn Văn An"}

	token, err := svc.Issue(user)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "truongkp", claims.Username)
	assert.Equal(t, domain.RoleChief, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenValidateRejects(t *testing.T) {
	issued := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	svc := NewTokenService("secret", time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.Issue(domain.User{ID: "u-1", Role: domain.RoleMember})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		late := NewTokenService("secret", time.Hour)
		late.now = func() time.Time { return issued.Add(2 * time.Hour) }
		_, err := late.Validate(token)
		require.Error(t, err)
		assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewTokenService("other", time.Hour)
		other.now = svc.now
		_, err := other.Validate(token)
		require.Error(t, err)
		assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not-a-token")
		require.Error(t, err)
		assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	})
}
