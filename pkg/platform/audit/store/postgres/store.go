package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	id "veriface/pkg/domain"
	audit "veriface/pkg/platform/audit"
	txcontext "veriface/pkg/platform/tx"
)

// Store persists audit events in the audit_events table. Appends are
// idempotent via ON CONFLICT DO NOTHING so a retried finalize cannot
// duplicate its record.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// execer joins the caller's transaction when one is carried in the context.
// Finalize requires the audit append to commit atomically with the decision.
func (s *Store) execer(ctx context.Context) dbExecutor {
	if t, ok := txcontext.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := event.ID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	var bankerID *uuid.UUID
	if !event.BankerID.IsNil() {
		u := uuid.UUID(event.BankerID)
		bankerID = &u
	}
	var attemptID *uuid.UUID
	if !event.AttemptID.IsNil() {
		u := uuid.UUID(event.AttemptID)
		attemptID = &u
	}

	query := `
		INSERT INTO audit_events (
			id, timestamp, banker_id, attempt_id, action,
			decision, reason, subject_ref, request_id, client_ip, device_info
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		eventID,
		ts,
		bankerID,
		attemptID,
		string(event.Action),
		event.Decision,
		event.Reason,
		event.SubjectRef,
		event.RequestID,
		event.ClientIP,
		event.DeviceInfo,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByBanker(ctx context.Context, bankerID id.BankerID, limit int) ([]audit.Event, error) {
	query := selectColumns + `
		WHERE banker_id = $1
		ORDER BY timestamp DESC
	`
	args := []any{uuid.UUID(bankerID)}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Store) List(ctx context.Context, filter audit.Filter) ([]audit.Event, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if !filter.From.IsZero() {
		conds = append(conds, "timestamp >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "timestamp <= "+arg(filter.To))
	}
	if filter.Action != "" {
		conds = append(conds, "action = "+arg(string(filter.Action)))
	}

	query := selectColumns
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

const selectColumns = `
	SELECT id, timestamp, banker_id, attempt_id, action,
		   decision, reason, subject_ref, request_id, client_ip, device_info
	FROM audit_events
`

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			event     audit.Event
			action    string
			bankerID  *uuid.UUID
			attemptID *uuid.UUID
		)
		err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&bankerID,
			&attemptID,
			&action,
			&event.Decision,
			&event.Reason,
			&event.SubjectRef,
			&event.RequestID,
			&event.ClientIP,
			&event.DeviceInfo,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.Action = audit.Action(action)
		if bankerID != nil {
			event.BankerID = id.BankerID(*bankerID)
		}
		if attemptID != nil {
			event.AttemptID = id.AttemptID(*attemptID)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
