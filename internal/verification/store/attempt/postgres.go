package attempt

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"veriface/internal/verification"
	"veriface/internal/verification/ports"
	id "veriface/pkg/domain"
	"veriface/pkg/platform/sentinel"
)

// Postgres persists attempts in the attempts table. Variation sets and the
// quality / feature-importance maps are stored as JSONB so the audit trail
// keeps the exact signals that produced each explanation.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Save(ctx context.Context, a *verification.Attempt) error {
	variations, err := json.Marshal(a.DetectedVariations)
	if err != nil {
		return fmt.Errorf("marshal variations: %w", err)
	}
	quality, err := json.Marshal(a.Quality)
	if err != nil {
		return fmt.Errorf("marshal quality: %w", err)
	}
	importance, err := json.Marshal(a.FeatureImportance)
	if err != nil {
		return fmt.Errorf("marshal feature importance: %w", err)
	}

	query := `
		INSERT INTO attempts (
			id, banker_id, created_at, subject_ref,
			similarity_score, confidence_probability, detected_variations, quality,
			recommendation, confidence_level, explanation, feature_importance,
			effective_approve, effective_reject, relaxation_applied,
			anomaly, status, failure_reason, processing_time_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(a.ID),
		uuid.UUID(a.BankerID),
		a.CreatedAt,
		a.SubjectRef,
		a.SimilarityScore,
		a.ConfidenceProbability,
		variations,
		quality,
		string(a.Recommendation),
		string(a.ConfidenceLevel),
		a.Explanation,
		importance,
		a.EffectiveApprove,
		a.EffectiveReject,
		a.RelaxationApplied,
		a.Anomaly,
		string(a.Status),
		string(a.FailureReason),
		a.ProcessingTimeMS,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, attemptID id.AttemptID) (*verification.Attempt, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = $1", uuid.UUID(attemptID))
	attempt, err := scanAttempt(row)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query attempt: %w", err)
	}
	return attempt, nil
}

func (s *Postgres) List(ctx context.Context, filter ports.AttemptFilter) ([]*verification.Attempt, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if !filter.From.IsZero() {
		conds = append(conds, "created_at >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "created_at <= "+arg(filter.To))
	}
	if filter.Recommendation != "" {
		conds = append(conds, "recommendation = "+arg(string(filter.Recommendation)))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(string(filter.Status)))
	}
	if !filter.BankerID.IsNil() {
		conds = append(conds, "banker_id = "+arg(uuid.UUID(filter.BankerID)))
	}

	query := selectColumns
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []*verification.Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

const selectColumns = `
	SELECT id, banker_id, created_at, subject_ref,
		   similarity_score, confidence_probability, detected_variations, quality,
		   recommendation, confidence_level, explanation, feature_importance,
		   effective_approve, effective_reject, relaxation_applied,
		   anomaly, status, failure_reason, processing_time_ms
	FROM attempts
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (*verification.Attempt, error) {
	var (
		a              verification.Attempt
		attemptID      uuid.UUID
		bankerID       uuid.UUID
		variations     []byte
		quality        []byte
		importance     []byte
		recommendation string
		level          string
		status         string
		failureReason  string
	)
	err := row.Scan(
		&attemptID,
		&bankerID,
		&a.CreatedAt,
		&a.SubjectRef,
		&a.SimilarityScore,
		&a.ConfidenceProbability,
		&variations,
		&quality,
		&recommendation,
		&level,
		&a.Explanation,
		&importance,
		&a.EffectiveApprove,
		&a.EffectiveReject,
		&a.RelaxationApplied,
		&a.Anomaly,
		&status,
		&failureReason,
		&a.ProcessingTimeMS,
	)
	if err != nil {
		return nil, err
	}

	a.ID = id.AttemptID(attemptID)
	a.BankerID = id.BankerID(bankerID)
	a.Recommendation = verification.Recommendation(recommendation)
	a.ConfidenceLevel = verification.ConfidenceLevel(level)
	a.Status = verification.Status(status)
	a.FailureReason = verification.FailureReason(failureReason)

	if err := json.Unmarshal(variations, &a.DetectedVariations); err != nil {
		return nil, fmt.Errorf("unmarshal variations: %w", err)
	}
	if err := json.Unmarshal(quality, &a.Quality); err != nil {
		return nil, fmt.Errorf("unmarshal quality: %w", err)
	}
	if err := json.Unmarshal(importance, &a.FeatureImportance); err != nil {
		return nil, fmt.Errorf("unmarshal feature importance: %w", err)
	}
	return &a, nil
}
