// Package credibility produces a credibility verdict for an employer, using a
// text-completion backend when one is configured and a rule-based heuristic otherwise.
package credibility

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/payamancoders/trustcheck/internal/domain"
)

const defaultTimeout = 5 * time.Second

// Analyzer wraps a Completer with a time bound and a deterministic fallback.
type Analyzer struct {
	completer Completer
	timeout   time.Duration
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewAnalyzer wires dependencies. A nil completer always uses the heuristic.
func NewAnalyzer(completer Completer, timeout time.Duration, logger *zap.Logger) *Analyzer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Analyzer{
		completer: completer,
		timeout:   timeout,
		logger:    logger,
		tracer:    otel.Tracer("github.com/payamancoders/trustcheck/internal/credibility"),
	}
}

type completion struct {
	reply Reply
	err   error
}

// Analyze never fails: backend errors, timeouts and unusable replies resolve to Heuristic.
// A single attempt is made.
func (a *Analyzer) Analyze(ctx context.Context, data CompanyData) domain.CredibilityAnalysis {
	if a == nil || a.completer == nil {
		return Heuristic(data)
	}

	ctx, span := a.tracer.Start(ctx, "Analyzer.Analyze")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	messages := BuildMessages(data)
	done := make(chan completion, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- completion{err: fmt.Errorf("completer panic: %v", r)}
			}
		}()
		reply, err := a.completer.Complete(ctx, messages)
		done <- completion{reply: reply, err: err}
	}()

	var res completion
	select {
	case <-ctx.Done():
		a.logger.Warn("credibility analysis timed out, using heuristic",
			zap.String("company", data.CompanyName), zap.Duration("timeout", a.timeout), zap.Error(ctx.Err()))
		span.SetAttributes(attribute.String("credibility.source", string(domain.SourceHeuristic)))
		return Heuristic(data)
	case res = <-done:
	}

	if res.err != nil {
		span.RecordError(res.err)
		a.logger.Warn("credibility completion failed, using heuristic",
			zap.String("company", data.CompanyName), zap.Error(res.err))
		span.SetAttributes(attribute.String("credibility.source", string(domain.SourceHeuristic)))
		return Heuristic(data)
	}

	analysis, err := Normalize(res.reply, Facts(data))
	if err != nil {
		span.RecordError(err)
		a.logger.Warn("credibility reply unusable, using heuristic",
			zap.String("company", data.CompanyName), zap.Error(err))
		span.SetAttributes(attribute.String("credibility.source", string(domain.SourceHeuristic)))
		return Heuristic(data)
	}

	span.SetAttributes(
		attribute.String("credibility.source", string(domain.SourceModel)),
		attribute.Int("credibility.score", analysis.CredibilityScore),
	)
	return analysis
}
