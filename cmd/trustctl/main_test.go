package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/payamancoders/trustcheck/internal/domain"
	"github.com/payamancoders/trustcheck/internal/jwt"
)

const cliSecret = "trustctl-test-secret-0123456789abcdef"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestTokenCommandIssuesVerifiableToken(t *testing.T) {
	t.Setenv("JWT_SECRET", cliSecret)
	t.Setenv("JWT_ISSUER", "trustcheck")

	token, err := runCLI(t, "token", "--user", "42", "--role", "ADMIN", "--ttl", "5m")
	require.NoError(t, err)

	verifier, err := jwt.NewGenerator(cliSecret, "trustcheck", time.Hour)
	require.NoError(t, err)
	identity, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, domain.Identity{UserID: 42, Role: domain.RoleAdmin}, identity)
}

func TestTokenCommandErrors(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := runCLI(t, "token", "--user", "42")
	require.Error(t, err, "missing secret")

	_, err = runCLI(t, "token", "--user", "42", "--secret", cliSecret, "--role", "superuser")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = runCLI(t, "token", "--secret", cliSecret)
	require.ErrorContains(t, err, "user")
}
