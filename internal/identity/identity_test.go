package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueThenResolveRoundTrips(t *testing.T) {
	adapter := NewAdapter("test-secret", "event-reg", time.Hour)

	token, err := adapter.Issue(42, false)
	require.NoError(t, err)

	principal := adapter.Resolve("Bearer " + token)
	assert.False(t, principal.Anonymous)
	assert.Equal(t, int64(42), principal.UserID)
	assert.False(t, principal.Elevated)
}

func TestIssueElevatedCarriesCapability(t *testing.T) {
	adapter := NewAdapter("test-secret", "event-reg", time.Hour)

	token, err := adapter.Issue(7, true)
	require.NoError(t, err)

	principal := adapter.Resolve("Bearer " + token)
	assert.True(t, principal.Elevated)
}

func TestResolveFallsBackToAnonymous(t *testing.T) {
	adapter := NewAdapter("test-secret", "event-reg", time.Hour)

	cases := []string{
		"",
		"not-a-bearer-token",
		"Bearer",
		"Bearer malformed.token.here",
		"Basic dXNlcjpwYXNz",
	}
	for _, header := range cases {
		assert.Equal(t, Anon, adapter.Resolve(header))
	}
}

func TestResolveRejectsWrongSecret(t *testing.T) {
	issuer := NewAdapter("secret-a", "event-reg", time.Hour)
	verifier := NewAdapter("secret-b", "event-reg", time.Hour)

	token, err := issuer.Issue(1, false)
	require.NoError(t, err)

	assert.Equal(t, Anon, verifier.Resolve("Bearer "+token))
}

func TestResolveRejectsExpiredToken(t *testing.T) {
	adapter := NewAdapter("test-secret", "event-reg", -time.Hour)

	token, err := adapter.Issue(9, false)
	require.NoError(t, err)

	assert.Equal(t, Anon, adapter.Resolve("Bearer "+token))
}

func TestResolveRejectsNonHMACSigningMethod(t *testing.T) {
	adapter := NewAdapter("test-secret", "event-reg", time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.Equal(t, Anon, adapter.Resolve("Bearer "+signed))
}
