package checker_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/payamancoders/trustcheck/internal/checker"
	"github.com/payamancoders/trustcheck/internal/domain"
)

func TestVerifyEmailDomainRejectsFreeProviders(t *testing.T) {
	resolver := &fakeResolver{records: []*net.MX{{Host: "mx.example.net.", Pref: 10}}}
	c := checker.New(resolver, time.Second, time.Minute, zap.NewNop())

	for _, email := range []string{"a@gmail.com", "b@YAHOO.com", "c@hotmail.com", "d@outlook.com", "e@aol.com"} {
		require.False(t, c.VerifyEmailDomain(context.Background(), email), email)
	}
	require.Zero(t, resolver.callCount(), "free providers must not hit DNS")
}

func TestVerifyEmailDomainRequiresMXRecord(t *testing.T) {
	ctx := context.Background()

	withMX := checker.New(&fakeResolver{records: []*net.MX{{Host: "mail.acme.com.", Pref: 1}}}, time.Second, time.Minute, zap.NewNop())
	require.True(t, withMX.VerifyEmailDomain(ctx, "ceo@acme.com"))

	noMX := checker.New(&fakeResolver{}, time.Second, time.Minute, zap.NewNop())
	require.False(t, noMX.VerifyEmailDomain(ctx, "ceo@acme.com"))

	failing := checker.New(&fakeResolver{err: errors.New("no such host")}, time.Second, time.Minute, zap.NewNop())
	require.False(t, failing.VerifyEmailDomain(ctx, "ceo@acme.com"))

	require.False(t, withMX.VerifyEmailDomain(ctx, "not-an-email"))
	require.False(t, withMX.VerifyEmailDomain(ctx, "trailing@"))
}

func TestVerifyEmailDomainTimesOut(t *testing.T) {
	resolver := &fakeResolver{block: true}
	c := checker.New(resolver, 20*time.Millisecond, time.Minute, zap.NewNop())

	start := time.Now()
	require.False(t, c.VerifyEmailDomain(context.Background(), "hr@slow.example"))
	require.Less(t, time.Since(start), time.Second)
}

func TestVerifyEmailDomainCachesResults(t *testing.T) {
	resolver := &fakeResolver{records: []*net.MX{{Host: "mx.acme.com.", Pref: 5}}}
	c := checker.New(resolver, time.Second, time.Minute, zap.NewNop())

	require.True(t, c.VerifyEmailDomain(context.Background(), "a@acme.com"))
	require.True(t, c.VerifyEmailDomain(context.Background(), "b@ACME.com"))
	require.Equal(t, 1, resolver.callCount())
}

func TestVerifyDomainMatch(t *testing.T) {
	cases := []struct {
		name    string
		email   string
		website string
		want    bool
	}{
		{"bare host", "hr@acme.com", "acme.com", true},
		{"www and scheme", "hr@acme.com", "https://www.acme.com/careers", true},
		{"case insensitive", "hr@Acme.com", "HTTP://WWW.ACME.COM", true},
		{"different host", "hr@acme.com", "https://acme.io", false},
		{"subdomain differs", "hr@acme.com", "https://jobs.acme.com", false},
		{"malformed url", "hr@acme.com", "http://[::1", false},
		{"empty website", "hr@acme.com", "", false},
		{"missing email domain", "hr", "acme.com", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, checker.VerifyDomainMatch(tc.email, tc.website))
		})
	}
}

func TestValidateLinkedInProfile(t *testing.T) {
	require.True(t, checker.ValidateLinkedInProfile("https://www.linkedin.com/company/acme"))
	require.True(t, checker.ValidateLinkedInProfile("http://linkedin.com/in/jane"))
	require.True(t, checker.ValidateLinkedInProfile("HTTPS://LinkedIn.com/Company/acme"))
	require.False(t, checker.ValidateLinkedInProfile("https://linkedin.com/acme"))
	require.False(t, checker.ValidateLinkedInProfile("https://notlinkedin.com/company/acme"))
	require.False(t, checker.ValidateLinkedInProfile("https://linkedin.com/company/"))
	require.False(t, checker.ValidateLinkedInProfile(""))
}

func TestDetectSuspiciousPatterns(t *testing.T) {
	longDescription := "We build logistics software for mid-sized retailers across the region."

	clean := checker.DetectSuspiciousPatterns("Acme Logistics", "https://acme.com", longDescription)
	require.Empty(t, clean)

	all := checker.DetectSuspiciousPatterns("Fake Test Corp", "", "tiny")
	require.Len(t, all, 3)
	for _, f := range all {
		require.Equal(t, domain.FlagSuspiciousPattern, f.Type)
	}

	onlyName := checker.DetectSuspiciousPatterns("DEMO Industries", "acme.com", longDescription)
	require.Len(t, onlyName, 1)
	require.Contains(t, onlyName[0].Description, "demo")

	missingDescription := checker.DetectSuspiciousPatterns("Acme", "acme.com", "")
	require.Len(t, missingDescription, 1)
}

func TestLookalikeProvider(t *testing.T) {
	provider, ok := checker.LookalikeProvider("gmai1.com")
	require.True(t, ok)
	require.Equal(t, "gmail.com", provider)

	_, ok = checker.LookalikeProvider("gmail.com")
	require.False(t, ok)

	_, ok = checker.LookalikeProvider("acme.com")
	require.False(t, ok)
}

type fakeResolver struct {
	mu      sync.Mutex
	calls   int
	records []*net.MX
	err     error
	block   bool
}

func (f *fakeResolver) LookupMX(ctx context.Context, name string) ([]*net.MX, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.records, f.err
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
