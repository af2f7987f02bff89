// Package checker holds the deterministic employer checks: email domain legitimacy,
// website/domain match, LinkedIn URL shape and suspicious profile patterns.
package checker

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/net/idna"
)

const (
	defaultLookupTimeout = 3 * time.Second
	defaultCacheTTL      = 10 * time.Minute
)

// MXResolver is satisfied by *net.Resolver.
type MXResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Checker runs the email domain check against DNS. All other checks are pure functions.
type Checker struct {
	resolver MXResolver
	timeout  time.Duration
	cache    *cache.Cache
	logger   *zap.Logger
}

// New constructs a Checker. A nil resolver uses net.DefaultResolver.
func New(resolver MXResolver, timeout, cacheTTL time.Duration, logger *zap.Logger) *Checker {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Checker{
		resolver: resolver,
		timeout:  timeout,
		cache:    cache.New(cacheTTL, cacheTTL*2),
		logger:   logger,
	}
}

// VerifyEmailDomain returns true iff the address is not at a free provider and its
// domain resolves at least one MX record. Lookup failures count as not verified.
func (c *Checker) VerifyEmailDomain(ctx context.Context, email string) bool {
	domainName := EmailDomain(email)
	if domainName == "" {
		return false
	}
	if IsFreeProvider(domainName) {
		return false
	}

	ascii := normalizeDomain(domainName)
	if cached, found := c.cache.Get(ascii); found {
		return cached.(bool)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	records, err := c.resolver.LookupMX(lookupCtx, ascii)
	if err != nil {
		c.logger.Warn("mx lookup failed", zap.String("domain", ascii), zap.Error(err))
		// Timeouts and cancellations are not cached so a later attempt can succeed.
		if lookupCtx.Err() == nil {
			c.cache.Set(ascii, false, cache.DefaultExpiration)
		}
		return false
	}

	verified := false
	for _, mx := range records {
		if mx != nil && strings.TrimSuffix(mx.Host, ".") != "" {
			verified = true
			break
		}
	}
	c.cache.Set(ascii, verified, cache.DefaultExpiration)
	return verified
}

// EmailDomain returns the lower-cased part after the last '@', or "" when absent.
func EmailDomain(email string) string {
	trimmed := strings.TrimSpace(email)
	idx := strings.LastIndex(trimmed, "@")
	if idx < 0 || idx == len(trimmed)-1 {
		return ""
	}
	return strings.ToLower(trimmed[idx+1:])
}

func normalizeDomain(name string) string {
	lower := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
	ascii, err := idna.Lookup.ToASCII(lower)
	if err != nil {
		return lower
	}
	return ascii
}
