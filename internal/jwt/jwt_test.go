package jwt_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/payamancoders/trustcheck/internal/domain"
	customjwt "github.com/payamancoders/trustcheck/internal/jwt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newGenerator(t *testing.T, secret string) *customjwt.Generator {
	t.Helper()
	g, err := customjwt.NewGenerator(secret, "trustcheck", time.Hour)
	require.NoError(t, err)
	return g
}

func TestGeneratorRoundTrip(t *testing.T) {
	g := newGenerator(t, testSecret)

	token, err := g.Issue(domain.Identity{UserID: 99, Role: domain.RoleEmployer})
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	identity, err := g.Verify("  " + token + " ")
	require.NoError(t, err)
	require.Equal(t, domain.Identity{UserID: 99, Role: domain.RoleEmployer}, identity)
}

func TestNewGeneratorRejectsShortSecret(t *testing.T) {
	_, err := customjwt.NewGenerator("short", "trustcheck", time.Hour)
	require.Error(t, err)
}

func TestIssueRejectsUnknownIdentity(t *testing.T) {
	g := newGenerator(t, testSecret)

	_, err := g.Issue(domain.Identity{UserID: 0, Role: domain.RoleAdmin})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = g.Issue(domain.Identity{UserID: 5, Role: "root"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVerifyFailures(t *testing.T) {
	g := newGenerator(t, testSecret)
	token, err := g.Issue(domain.Identity{UserID: 7, Role: domain.RoleAdmin})
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := g.Verify("not-a-token")
		require.ErrorIs(t, err, customjwt.ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := newGenerator(t, strings.Repeat("z", customjwt.MinSecretLength))
		_, err := other.Verify(token)
		require.ErrorIs(t, err, customjwt.ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		other, err := customjwt.NewGenerator(testSecret, "someone-else", time.Hour)
		require.NoError(t, err)
		_, err = other.Verify(token)
		require.ErrorIs(t, err, customjwt.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := newGenerator(t, testSecret).WithClock(func() time.Time { return time.Now().Add(3 * time.Hour) })
		_, err := later.Verify(token)
		require.ErrorIs(t, err, customjwt.ErrInvalidToken)
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		parts[1] = parts[1] + "x"
		_, err := g.Verify(strings.Join(parts, "."))
		require.ErrorIs(t, err, customjwt.ErrInvalidToken)
	})
}
