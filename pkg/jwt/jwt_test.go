package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v4"
	"github.com/martinmanurung/account-service/pkg/apperror"
	"github.com/martinmanurung/account-service/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestIssueAccess(t *testing.T) {
	svc := jwt.NewJWTService(secret, jwt.Expiry{})

	token, err := svc.IssueAccess("user-1", "group-1")
	require.NoError(t, err)

	claims, err := svc.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "group-1", claims.GroupID)
	assert.Equal(t, jwt.ModeAccess, claims.Mode)
	assert.WithinDuration(t, time.Now().Add(jwt.DefaultAccessExpiry), claims.ExpiresAt.Time, 5*time.Second)

	_, err = svc.IssueAccess("", "")
	assert.Error(t, err)
}

func TestIssueRefreshIsUnique(t *testing.T) {
	svc := jwt.NewJWTService(secret, jwt.Expiry{})

	first, err := svc.IssueRefresh("user-1")
	require.NoError(t, err)
	second, err := svc.IssueRefresh("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	claims, err := svc.Decode(first)
	require.NoError(t, err)
	assert.Equal(t, jwt.ModeRefresh, claims.Mode)
	assert.Equal(t, "user-1", claims.UserID)
	assert.NotNil(t, claims.IssuedAt)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, jwt.DefaultRefreshExpiry, svc.RefreshExpiry())
}

func TestIssueLink(t *testing.T) {
	svc := jwt.NewJWTService(secret, jwt.Expiry{})

	token, err := svc.IssueLink(jwt.LinkClaims{Email: "john@example.com", Purpose: "reset_password"})
	require.NoError(t, err)

	claims, err := svc.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, jwt.ModeLink, claims.Mode)
	assert.Equal(t, "john@example.com", claims.Email)
	assert.Equal(t, "reset_password", claims.Purpose)
	assert.WithinDuration(t, time.Now().Add(jwt.DefaultLinkExpiry), claims.ExpiresAt.Time, 5*time.Second)
}

func TestDecodeRejects(t *testing.T) {
	svc := jwt.NewJWTService(secret, jwt.Expiry{})
	expired := jwt.NewJWTService(secret, jwt.Expiry{Access: time.Minute})
	other := jwt.NewJWTService("another-secret", jwt.Expiry{})

	valid, err := svc.IssueAccess("user-1", "")
	require.NoError(t, err)
	foreign, err := other.IssueAccess("user-1", "")
	require.NoError(t, err)
	pastLink, err := expired.IssueLink(jwt.LinkClaims{Email: "a@b.c", ExpiresAt: time.Now().Add(-time.Hour)})
	require.NoError(t, err)

	none := gojwt.NewWithClaims(gojwt.SigningMethodNone, jwt.MyClaims{UserID: "user-1", Mode: jwt.ModeAccess})
	unsigned, err := none.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "wrong secret", token: foreign},
		{name: "expired", token: pastLink},
		{name: "alg none", token: unsigned},
		{name: "tampered", token: valid + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Decode(tt.token)
			assert.ErrorIs(t, err, apperror.ErrInvalidToken)
		})
	}
}
