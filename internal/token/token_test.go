package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewService("test-secret", 0)

	raw, err := svc.Issue("sub-123", "amy@example.com")
	require.NoError(t, err)
	assert.Len(t, strings.Split(raw, "."), 3)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "sub-123", claims.SubscriberID)
	assert.Equal(t, "amy@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.ExpiresAt, time.Minute)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	raw, err := svc.Issue("sub-123", "amy@example.com")
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	_, err = svc.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	raw, err := NewService("secret-a", time.Hour).Issue("sub-123", "amy@example.com")
	require.NoError(t, err)

	_, err = NewService("secret-b", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := svc.Issue("sub-123", "amy@example.com")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsAlgNone(t *testing.T) {
	// A token claiming the "none" algorithm must never verify, even with a
	// structurally valid payload.
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "sub-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewService("test-secret", time.Hour).Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", raw)
	}
}

func TestNoSecretFailsClosed(t *testing.T) {
	svc := NewService("", time.Hour)

	_, err := svc.Issue("sub-123", "amy@example.com")
	assert.ErrorIs(t, err, ErrNoSecret)

	raw, err := NewService("test-secret", time.Hour).Issue("sub-123", "amy@example.com")
	require.NoError(t, err)
	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestVerifyRequiresSubject(t *testing.T) {
	secret := []byte("test-secret")
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "amy@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewService("test-secret", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
