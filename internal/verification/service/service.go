// Package service orchestrates the scoring path: vision signals in, a
// persisted, explained, auditable attempt out. Scoring is stateless over its
// inputs, so any number of attempts may run concurrently.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"veriface/internal/verification"
	"veriface/internal/verification/metrics"
	"veriface/internal/verification/ports"
	id "veriface/pkg/domain"
	dErrors "veriface/pkg/domain-errors"
	"veriface/pkg/platform/audit"
	"veriface/pkg/requestcontext"
)

const defaultVisionTimeout = 10 * time.Second

// VerifyRequest carries one verification call's inputs, already decoded from
// the transport layer.
type VerifyRequest struct {
	LiveImage      []byte
	ReferenceImage []byte
	SubjectRef     string
}

// Service runs the Threshold Policy / Classifier / Explanation chain over
// vision signals and persists the resulting attempt.
type Service struct {
	policy   verification.Policy
	vision   ports.VisionClient
	attempts ports.AttemptStore
	auditor  ports.AuditPort

	cache         ports.AttemptCache
	logger        *slog.Logger
	metrics       *metrics.Metrics
	visionTimeout time.Duration
	tracer        trace.Tracer
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithCache installs a best-effort attempt cache in front of lookups.
func WithCache(cache ports.AttemptCache) Option {
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

// WithVisionTimeout overrides the vision call timeout.
func WithVisionTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.visionTimeout = d
		}
	}
}

// New constructs the scoring service. The policy is validated here so an
// invalid configuration fails at startup rather than on the first attempt.
func New(policy verification.Policy, vision ports.VisionClient, attempts ports.AttemptStore, auditor ports.AuditPort, opts ...Option) (*Service, error) {
	if err := policy.Validate(); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "invalid threshold policy", err)
	}
	if vision == nil || attempts == nil || auditor == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "vision client, attempt store, and audit port are required")
	}
	s := &Service{
		policy:        policy,
		vision:        vision,
		attempts:      attempts,
		auditor:       auditor,
		logger:        slog.Default(),
		visionTimeout: defaultVisionTimeout,
		tracer:        otel.Tracer("veriface/verification"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Verify runs the full scoring path. Validation failures return an error and
// create no attempt; vision failures create a FAILED attempt so every call
// that reaches the vision subsystem leaves an explainable trace.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*verification.Attempt, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "verification.verify")
	defer span.End()

	start := time.Now()
	attempt := &verification.Attempt{
		ID:         id.NewAttemptID(),
		BankerID:   requestcontext.BankerID(ctx),
		CreatedAt:  requestcontext.Now(ctx).UTC(),
		SubjectRef: req.SubjectRef,
	}

	signals, err := s.callVision(ctx, req)
	if err == nil {
		err = validateSignals(signals)
	}
	if err != nil {
		return s.failAttempt(ctx, attempt, err, start)
	}

	attempt.SimilarityScore = signals.SimilarityScore
	attempt.ConfidenceProbability = signals.ConfidenceProbability
	attempt.DetectedVariations = verification.NormalizeVariations(signals.DetectedVariations)
	attempt.Quality = signals.Quality

	thresholds := s.policy.Effective(attempt.DetectedVariations, attempt.Quality)
	attempt.EffectiveApprove = thresholds.Approve
	attempt.EffectiveReject = thresholds.Reject
	attempt.RelaxationApplied = thresholds.RelaxationApplied

	attempt.Recommendation = verification.Classify(attempt.SimilarityScore, thresholds)
	attempt.ConfidenceLevel = s.policy.BucketConfidence(attempt.ConfidenceProbability)
	attempt.Anomaly = verification.DetectAnomaly(attempt.SimilarityScore, attempt.DetectedVariations)
	attempt.Explanation, attempt.FeatureImportance = s.policy.Explain(
		attempt.SimilarityScore,
		attempt.DetectedVariations,
		thresholds,
		attempt.Recommendation,
		attempt.Anomaly,
	)
	attempt.Status = verification.StatusScored
	attempt.ProcessingTimeMS = time.Since(start).Milliseconds()

	if err := s.attempts.Save(ctx, attempt); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStorage, "persist attempt", err)
	}
	if err := s.emitScored(ctx, attempt); err != nil {
		// Compliance requires every attempt to leave a trace; surface the
		// append failure instead of silently succeeding.
		return nil, dErrors.Wrap(dErrors.CodeStorage, "append audit record", err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, attempt)
	}

	span.SetAttributes(
		attribute.String("verification.recommendation", string(attempt.Recommendation)),
		attribute.Bool("verification.anomaly", attempt.Anomaly),
	)
	s.metrics.IncrementOutcome(string(attempt.Recommendation), string(attempt.Status))
	if attempt.Anomaly {
		s.metrics.IncrementAnomalies()
	}
	s.metrics.ObserveVerifyLatency(time.Since(start))

	s.logger.InfoContext(ctx, "attempt scored",
		"request_id", requestcontext.RequestID(ctx),
		"attempt_id", attempt.ID,
		"recommendation", attempt.Recommendation,
		"confidence_level", attempt.ConfidenceLevel,
		"duration_ms", attempt.ProcessingTimeMS,
	)
	return attempt, nil
}

// GetAttempt returns one attempt, consulting the cache first.
func (s *Service) GetAttempt(ctx context.Context, attemptID id.AttemptID) (*verification.Attempt, error) {
	if s.cache != nil {
		if attempt, ok := s.cache.Get(ctx, attemptID); ok {
			return attempt, nil
		}
	}
	attempt, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, attempt)
	}
	return attempt, nil
}

// ListAttempts returns attempts matching the filter, newest first.
func (s *Service) ListAttempts(ctx context.Context, filter ports.AttemptFilter) ([]*verification.Attempt, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	return s.attempts.List(ctx, filter)
}

func (s *Service) callVision(ctx context.Context, req VerifyRequest) (*ports.Signals, error) {
	ctx, cancel := context.WithTimeout(ctx, s.visionTimeout)
	defer cancel()

	start := time.Now()
	signals, err := s.vision.Analyze(ctx, req.LiveImage, req.ReferenceImage, req.SubjectRef)
	s.metrics.ObserveVisionLatency(time.Since(start))
	return signals, err
}

// failAttempt records a FAILED attempt for any vision-side failure. The
// attempt is terminal: it cannot be finalized and must be retried as a new
// attempt.
func (s *Service) failAttempt(ctx context.Context, attempt *verification.Attempt, cause error, start time.Time) (*verification.Attempt, error) {
	switch {
	case errors.Is(cause, ports.ErrNoFace):
		attempt.FailureReason = verification.FailureNoFace
	case errors.Is(cause, context.DeadlineExceeded):
		attempt.FailureReason = verification.FailureTimeout
	default:
		attempt.FailureReason = verification.FailureProcessing
	}
	attempt.Status = verification.StatusFailed
	attempt.Explanation = verification.FailureExplanation(attempt.FailureReason)
	attempt.ProcessingTimeMS = time.Since(start).Milliseconds()

	if err := s.attempts.Save(ctx, attempt); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStorage, "persist failed attempt", err)
	}
	if err := s.auditor.Emit(ctx, audit.Event{
		BankerID:   attempt.BankerID,
		AttemptID:  attempt.ID,
		Action:     audit.ActionVerificationFailed,
		Reason:     string(attempt.FailureReason),
		SubjectRef: attempt.SubjectRef,
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		DeviceInfo: requestcontext.DeviceInfo(ctx),
	}); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStorage, "append audit record", err)
	}

	s.metrics.IncrementOutcome("", string(verification.StatusFailed))
	s.logger.WarnContext(ctx, "attempt failed scoring",
		"request_id", requestcontext.RequestID(ctx),
		"attempt_id", attempt.ID,
		"reason", attempt.FailureReason,
		"error", cause,
	)
	return attempt, nil
}

func (s *Service) emitScored(ctx context.Context, attempt *verification.Attempt) error {
	return s.auditor.Emit(ctx, audit.Event{
		BankerID:   attempt.BankerID,
		AttemptID:  attempt.ID,
		Action:     audit.ActionVerificationScored,
		Decision:   string(attempt.Recommendation),
		Reason:     attempt.Explanation,
		SubjectRef: attempt.SubjectRef,
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		DeviceInfo: requestcontext.DeviceInfo(ctx),
	})
}

func validateRequest(req VerifyRequest) error {
	if len(req.LiveImage) == 0 {
		return dErrors.New(dErrors.CodeValidation, "live_image is required")
	}
	if len(req.ReferenceImage) == 0 && req.SubjectRef == "" {
		return dErrors.New(dErrors.CodeValidation, "reference_image or subject_ref is required")
	}
	if len(req.SubjectRef) > 100 {
		return dErrors.New(dErrors.CodeValidation, "subject_ref must be at most 100 characters")
	}
	return nil
}

// validateSignals range-checks untrusted vision output. Out-of-range values
// are a processing error, not input to the classifier.
func validateSignals(s *ports.Signals) error {
	if s == nil {
		return ports.ErrProcessing
	}
	if s.SimilarityScore < 0 || s.SimilarityScore > 1 {
		return ports.ErrProcessing
	}
	if s.ConfidenceProbability != nil && (*s.ConfidenceProbability < 0 || *s.ConfidenceProbability > 1) {
		return ports.ErrProcessing
	}
	for _, v := range s.Quality {
		if v < 0 {
			return ports.ErrProcessing
		}
	}
	return nil
}
