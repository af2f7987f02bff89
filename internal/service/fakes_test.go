package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/payamancoders/trustcheck/internal/credibility"
	"github.com/payamancoders/trustcheck/internal/domain"
	"github.com/payamancoders/trustcheck/internal/service"
)

type memoryEmployerRepo struct {
	mu        sync.Mutex
	employers map[int64]domain.Employer
	updates   int
	// beforeUpdate runs inside UpdateVerification before the version check.
	beforeUpdate func(r *memoryEmployerRepo, id int64)
}

func newMemoryEmployerRepo(employers ...domain.Employer) *memoryEmployerRepo {
	repo := &memoryEmployerRepo{employers: make(map[int64]domain.Employer)}
	for _, e := range employers {
		if e.Verification.Status == "" {
			e.Verification = domain.NewVerificationRecord()
		}
		repo.employers[e.ID] = e
	}
	return repo
}

func (r *memoryEmployerRepo) GetByID(_ context.Context, id int64) (domain.Employer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employers[id]
	if !ok {
		return domain.Employer{}, fmt.Errorf("get employer %d: %w", id, domain.ErrEmployerNotFound)
	}
	e.Verification = e.Verification.Clone()
	return e, nil
}

func (r *memoryEmployerRepo) ListByStatus(_ context.Context, status domain.VerificationStatus) ([]domain.Employer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Employer, 0)
	for _, e := range r.employers {
		if e.Verification.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryEmployerRepo) UpdateVerification(_ context.Context, id int64, record domain.VerificationRecord, expectedVersion int64) (int64, error) {
	if r.beforeUpdate != nil {
		r.beforeUpdate(r, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employers[id]
	if !ok {
		return 0, domain.ErrEmployerNotFound
	}
	if e.Version != expectedVersion {
		return 0, domain.ErrConflict
	}
	e.Verification = record.Clone()
	e.Version++
	r.employers[id] = e
	r.updates++
	return e.Version, nil
}

func (r *memoryEmployerRepo) Save(_ context.Context, employer domain.Employer) (domain.Employer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employers[employer.ID] = employer
	return employer, nil
}

func (r *memoryEmployerRepo) get(t *testing.T, id int64) domain.Employer {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employers[id]
	require.True(t, ok)
	return e
}

type countingLocker struct {
	mu       sync.Mutex
	acquired int
	released int
	err      error
}

func (l *countingLocker) Acquire(context.Context, int64) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.acquired++
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, nil
}

func (l *countingLocker) held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acquired != l.released
}

type staticEmailChecker map[string]bool

func (c staticEmailChecker) VerifyEmailDomain(_ context.Context, email string) bool {
	return c[email]
}

type stubAnalyzer struct {
	analysis domain.CredibilityAnalysis
	calls    int
	last     credibility.CompanyData
}

func (a *stubAnalyzer) Analyze(_ context.Context, data credibility.CompanyData) domain.CredibilityAnalysis {
	a.calls++
	a.last = data
	return a.analysis
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.VerificationEvent
	err    error

	locker    *countingLocker
	underLock int
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.VerificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	if p.locker != nil && p.locker.held() {
		p.underLock++
	}
	return p.err
}

type fixture struct {
	repo      *memoryEmployerRepo
	locker    *countingLocker
	analyzer  service.CredibilityAnalyzer
	publisher *recordingPublisher
	svc       *service.VerificationService
}

func newFixture(t *testing.T, emails staticEmailChecker, analyzer service.CredibilityAnalyzer, employers ...domain.Employer) *fixture {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f := &fixture{
		repo:     newMemoryEmployerRepo(employers...),
		locker:   &countingLocker{},
		analyzer: analyzer,
	}
	f.publisher = &recordingPublisher{locker: f.locker}
	orchestrator := service.NewOrchestrator(emails, node)
	f.svc = service.NewVerificationService(f.repo, f.locker, orchestrator, analyzer, f.publisher, node, zap.NewNop())
	return f
}

func modelVerdict(score int, rec domain.Recommendation) *stubAnalyzer {
	level, _ := credibility.Verdict(score)
	return &stubAnalyzer{analysis: domain.CredibilityAnalysis{
		CredibilityScore: score,
		CredibilityLevel: level,
		Recommendation:   rec,
		Analysis: domain.AnalysisDetail{
			Strengths: []string{}, Weaknesses: []string{}, RiskFactors: []string{}, Recommendations: []string{},
		},
		Source: domain.SourceModel,
	}}
}
