// Package service orchestrates decision finalization: one banker action per
// attempt, applied atomically with its audit record.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"veriface/internal/verification"
	vports "veriface/internal/verification/ports"
	"veriface/internal/workflow"
	"veriface/internal/workflow/metrics"
	"veriface/internal/workflow/ports"
	id "veriface/pkg/domain"
	dErrors "veriface/pkg/domain-errors"
	"veriface/pkg/platform/audit"
	"veriface/pkg/platform/sentinel"
	txcontext "veriface/pkg/platform/tx"
	"veriface/pkg/requestcontext"
)

// FinalizeRequest carries one finalize call's inputs, already decoded and
// authenticated by the transport layer.
type FinalizeRequest struct {
	AttemptID   id.AttemptID
	FinalAction workflow.FinalAction
	Reasoning   string
}

// Case joins an attempt with its decision, when one exists. Decision is nil
// until a banker finalizes the attempt.
type Case struct {
	Attempt  *verification.Attempt
	Decision *workflow.Decision
}

// Service applies banker decisions to scored attempts. All writes of a
// finalize call run inside one transaction boundary supplied by the Runner,
// so the attempt transition, the decision row, and the audit record land
// together or not at all.
type Service struct {
	attempts  vports.AttemptStore
	decisions ports.DecisionStore
	auditor   ports.AuditPort
	txRunner  txcontext.Runner

	cache   vports.AttemptCache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithCache installs the attempt cache so finalize can invalidate stale
// SCORED entries.
func WithCache(cache vports.AttemptCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the workflow service.
func New(attempts vports.AttemptStore, decisions ports.DecisionStore, auditor ports.AuditPort, txRunner txcontext.Runner, opts ...Option) (*Service, error) {
	if attempts == nil || decisions == nil || auditor == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "attempt store, decision store, and audit port are required")
	}
	if txRunner == nil {
		txRunner = txcontext.NoopRunner{}
	}
	s := &Service{
		attempts:  attempts,
		decisions: decisions,
		auditor:   auditor,
		txRunner:  txRunner,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Finalize records the banker's final action on a scored attempt, exactly
// once. The attempt transition, the decision row, and the audit record are
// one atomic unit: if any write fails, the attempt stays SCORED and
// finalizable.
//
// Errors:
//   - CodeNotFound when the attempt does not exist
//   - CodeConflict when the attempt is FAILED, already CLOSED, or a
//     concurrent finalize won the race
//   - CodeStorage when persistence fails
func (s *Service) Finalize(ctx context.Context, req FinalizeRequest) (*workflow.Decision, error) {
	start := time.Now()

	attempt, err := s.attempts.FindByID(ctx, req.AttemptID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "attempt not found: "+req.AttemptID.String())
		}
		return nil, dErrors.Wrap(dErrors.CodeStorage, "failed to load attempt", err)
	}

	// Pre-checks give precise messages; the store CAS remains the authority
	// under concurrency.
	switch attempt.Status {
	case verification.StatusFailed:
		s.metrics.IncrementConflicts()
		return nil, attempt.ErrNotFinalizable()
	case verification.StatusClosed:
		s.metrics.IncrementConflicts()
		s.emitConflict(ctx, req)
		return nil, dErrors.New(dErrors.CodeConflict, "attempt "+req.AttemptID.String()+" is already finalized")
	}

	decision := &workflow.Decision{
		ID:          req.AttemptID,
		FinalAction: req.FinalAction,
		Reasoning:   req.Reasoning,
		DecidedAt:   requestcontext.Now(ctx).UTC(),
		DecidedBy:   requestcontext.BankerID(ctx),
		ClientIP:    requestcontext.ClientIP(ctx),
		DeviceInfo:  requestcontext.DeviceInfo(ctx),
	}

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.decisions.Finalize(ctx, decision); err != nil {
			return err
		}
		return s.auditor.Emit(ctx, s.finalizedEvent(ctx, attempt, decision))
	})
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "attempt not found: "+req.AttemptID.String())
		case errors.Is(err, sentinel.ErrAlreadyFinalized), errors.Is(err, sentinel.ErrInvalidState):
			s.metrics.IncrementConflicts()
			s.emitConflict(ctx, req)
			return nil, dErrors.New(dErrors.CodeConflict, "attempt "+req.AttemptID.String()+" is already finalized")
		default:
			return nil, dErrors.Wrap(dErrors.CodeStorage, "failed to finalize decision", err)
		}
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, req.AttemptID)
	}

	s.metrics.IncrementFinalized(decision.FinalAction.String())
	s.metrics.ObserveFinalizeLatency(time.Since(start))
	s.logger.InfoContext(ctx, "decision finalized",
		"attempt_id", decision.ID.String(),
		"final_action", decision.FinalAction.String(),
		"decided_by", decision.DecidedBy.String(),
		"recommendation", string(attempt.Recommendation),
	)

	return decision, nil
}

// GetDecision loads one decision by its ID (the attempt ID).
func (s *Service) GetDecision(ctx context.Context, decisionID id.AttemptID) (*workflow.Decision, error) {
	decision, err := s.decisions.FindByID(ctx, decisionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "decision not found: "+decisionID.String())
		}
		return nil, dErrors.Wrap(dErrors.CodeStorage, "failed to load decision", err)
	}
	return decision, nil
}

// ListDecisions queries decisions for review dashboards.
func (s *Service) ListDecisions(ctx context.Context, filter ports.DecisionFilter) ([]*workflow.Decision, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	decisions, err := s.decisions.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStorage, "failed to list decisions", err)
	}
	return decisions, nil
}

// GetCase loads the attempt and, when present, its decision. The two lookups
// hit independent stores, so they run concurrently.
func (s *Service) GetCase(ctx context.Context, attemptID id.AttemptID) (*Case, error) {
	var c Case
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		attempt, err := s.attempts.FindByID(gctx, attemptID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "attempt not found: "+attemptID.String())
			}
			return dErrors.Wrap(dErrors.CodeStorage, "failed to load attempt", err)
		}
		c.Attempt = attempt
		return nil
	})

	g.Go(func() error {
		decision, err := s.decisions.FindByID(gctx, attemptID)
		if err != nil {
			// No decision yet is a normal state for SCORED and FAILED
			// attempts.
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return dErrors.Wrap(dErrors.CodeStorage, "failed to load decision", err)
		}
		c.Decision = decision
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &c, nil
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func (s *Service) finalizedEvent(ctx context.Context, attempt *verification.Attempt, decision *workflow.Decision) audit.Event {
	action := audit.ActionDecisionFinalized
	if decision.FinalAction == workflow.ActionRequestRecapture {
		action = audit.ActionRecaptureRequested
	}
	return audit.Event{
		Timestamp:  decision.DecidedAt,
		BankerID:   decision.DecidedBy,
		AttemptID:  decision.ID,
		Action:     action,
		Decision:   decision.FinalAction.String(),
		Reason:     decision.Reasoning,
		SubjectRef: attempt.SubjectRef,
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   decision.ClientIP,
		DeviceInfo: decision.DeviceInfo,
	}
}

// emitConflict records refused double-finalizations for the security trail.
// Best effort: the caller already has its conflict error.
func (s *Service) emitConflict(ctx context.Context, req FinalizeRequest) {
	event := audit.Event{
		BankerID:   requestcontext.BankerID(ctx),
		AttemptID:  req.AttemptID,
		Action:     audit.ActionFinalizeConflict,
		Decision:   req.FinalAction.String(),
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		DeviceInfo: requestcontext.DeviceInfo(ctx),
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to record finalize conflict", "attempt_id", req.AttemptID.String(), "error", err)
	}
}
