package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"

	"github.com/payamancoders/trustcheck/internal/domain"
)

// MinSecretLength is the shortest HS256 secret accepted (RFC 7518 §3.2).
const MinSecretLength = 32

// ErrInvalidToken is returned for any token that fails parsing, signature or claim checks.
var ErrInvalidToken = errors.New("jwt: invalid token")

var signatureAlgorithms = []gojose.SignatureAlgorithm{gojose.HS256}

// SessionClaims carry the platform role next to the registered claims.
type SessionClaims struct {
	Role domain.Role `json:"role"`
}

// Generator signs and validates HS256 session tokens shared with the platform's auth service.
type Generator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewGenerator constructs a token generator. An empty issuer disables the issuer check.
func NewGenerator(secret, issuer string, ttl time.Duration) (*Generator, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Generator{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the time source used for issuing and validating.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Issue produces a signed token for the identity.
func (g *Generator) Issue(identity domain.Identity) (string, error) {
	if identity.UserID <= 0 || !identity.Role.Valid() {
		return "", fmt.Errorf("issue token for user %d role %q: %w", identity.UserID, identity.Role, domain.ErrInvalidInput)
	}

	signer, err := gojose.NewSigner(gojose.SigningKey{Algorithm: gojose.HS256, Key: g.secret}, (&gojose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", fmt.Errorf("new signer: %w", err)
	}

	now := g.now().UTC()
	std := gojwt.Claims{
		Subject:   strconv.FormatInt(identity.UserID, 10),
		Issuer:    g.issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		NotBefore: gojwt.NewNumericDate(now),
		Expiry:    gojwt.NewNumericDate(now.Add(g.ttl)),
	}

	token, err := gojwt.Signed(signer).Claims(std).Claims(SessionClaims{Role: identity.Role}).Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize jwt: %w", err)
	}
	return token, nil
}

// Verify checks the token signature and claims and resolves the caller identity.
func (g *Generator) Verify(token string) (domain.Identity, error) {
	parsed, err := gojwt.ParseSigned(strings.TrimSpace(token), signatureAlgorithms)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("parse token: %w", ErrInvalidToken)
	}

	var std gojwt.Claims
	var custom SessionClaims
	if err := parsed.Claims(g.secret, &std, &custom); err != nil {
		return domain.Identity{}, fmt.Errorf("verify token: %w", ErrInvalidToken)
	}

	if err := std.ValidateWithLeeway(gojwt.Expected{Issuer: g.issuer, Time: g.now()}, gojwt.DefaultLeeway); err != nil {
		return domain.Identity{}, fmt.Errorf("validate claims: %v: %w", err, ErrInvalidToken)
	}

	userID, err := strconv.ParseInt(std.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return domain.Identity{}, fmt.Errorf("subject %q: %w", std.Subject, ErrInvalidToken)
	}
	role := domain.Role(strings.ToLower(string(custom.Role)))
	if !role.Valid() {
		return domain.Identity{}, fmt.Errorf("role %q: %w", custom.Role, ErrInvalidToken)
	}

	return domain.Identity{UserID: userID, Role: role}, nil
}
