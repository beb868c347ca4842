package auth

import (
	"testing"
	"time"

	"staygrow/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerifier_RequiresSecret(t *testing.T) {
	_, err := NewVerifier("")
	assert.Error(t, err)
}

func TestVerifier_IssueAndVerify(t *testing.T) {
	v, err := NewVerifier("test-secret")
	require.NoError(t, err)

	userID := uuid.New()
	token, err := v.Issue(userID, models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	viewer, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, models.Identified{UserID: userID, Role: models.RoleAdmin}, viewer)
}

func TestVerifier_UnknownRoleIsUser(t *testing.T) {
	v, err := NewVerifier("test-secret")
	require.NoError(t, err)

	token, err := v.Issue(uuid.New(), models.Role("SUPERUSER"), time.Hour)
	require.NoError(t, err)

	viewer, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, viewer.Role)
}

func TestVerifier_Rejects(t *testing.T) {
	v, err := NewVerifier("test-secret")
	require.NoError(t, err)
	other, err := NewVerifier("other-secret")
	require.NoError(t, err)

	expired, err := v.Issue(uuid.New(), models.RoleUser, -time.Minute)
	require.NoError(t, err)

	foreign, err := other.Issue(uuid.New(), models.RoleUser, time.Hour)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":     expired,
		"foreign key": foreign,
		"bad subject": badSubject,
		"no expiry":   noExpiry,
		"wrong alg":   wrongAlg,
		"garbage":     "not.a.jwt",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.Error(t, err)
			assert.Equal(t, models.Anonymous{}, v.Resolve(token))
		})
	}
}

func TestVerifier_ResolveEmpty(t *testing.T) {
	v, err := NewVerifier("test-secret")
	require.NoError(t, err)

	assert.Equal(t, models.Anonymous{}, v.Resolve(""))
}
