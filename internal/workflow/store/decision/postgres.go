package decision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"veriface/internal/workflow"
	"veriface/internal/workflow/ports"
	id "veriface/pkg/domain"
	"veriface/pkg/platform/sentinel"
	txcontext "veriface/pkg/platform/tx"
)

// Postgres persists decisions in the decisions table. Finalize joins the
// transaction carried in the context, so the attempt transition, the
// decision insert, and the caller's audit append commit together.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if t, ok := txcontext.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *Postgres) Finalize(ctx context.Context, d *workflow.Decision) error {
	ex := s.execer(ctx)
	attemptID := uuid.UUID(d.ID)

	// CAS on the attempt row. A concurrent finalize inside another
	// transaction blocks here until that transaction resolves, then sees
	// zero rows.
	res, err := ex.ExecContext(ctx,
		`UPDATE attempts SET status = 'CLOSED' WHERE id = $1 AND status = 'SCORED'`,
		attemptID,
	)
	if err != nil {
		return fmt.Errorf("close attempt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close attempt rows affected: %w", err)
	}
	if affected == 0 {
		return s.classifyRefusal(ctx, attemptID)
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO decisions (id, final_action, reasoning, decided_at, decided_by, client_ip, device_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		attemptID,
		d.FinalAction.String(),
		d.Reasoning,
		d.DecidedAt,
		uuid.UUID(d.DecidedBy),
		d.ClientIP,
		d.DeviceInfo,
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// classifyRefusal distinguishes why the CAS matched no row: missing attempt,
// already finalized, or a non-SCORED status such as FAILED.
func (s *Postgres) classifyRefusal(ctx context.Context, attemptID uuid.UUID) error {
	var status string
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT status FROM attempts WHERE id = $1`, attemptID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load attempt status: %w", err)
	}
	if status == "CLOSED" {
		return sentinel.ErrAlreadyFinalized
	}
	return sentinel.ErrInvalidState
}

func (s *Postgres) FindByID(ctx context.Context, decisionID id.AttemptID) (*workflow.Decision, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, final_action, reasoning, decided_at, decided_by, client_ip, device_info
		FROM decisions
		WHERE id = $1
	`, uuid.UUID(decisionID))

	d, err := scanDecision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find decision: %w", err)
	}
	return d, nil
}

func (s *Postgres) List(ctx context.Context, filter ports.DecisionFilter) ([]*workflow.Decision, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if !filter.From.IsZero() {
		where = append(where, "decided_at >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "decided_at <= "+arg(filter.To))
	}
	if filter.FinalAction != "" {
		where = append(where, "final_action = "+arg(filter.FinalAction.String()))
	}
	if !filter.DecidedBy.IsNil() {
		where = append(where, "decided_by = "+arg(uuid.UUID(filter.DecidedBy)))
	}

	query := `
		SELECT id, final_action, reasoning, decided_at, decided_by, client_ip, device_info
		FROM decisions
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY decided_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []*workflow.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (*workflow.Decision, error) {
	var (
		d           workflow.Decision
		decisionID  uuid.UUID
		finalAction string
		decidedAt   time.Time
		decidedBy   uuid.UUID
	)
	err := row.Scan(&decisionID, &finalAction, &d.Reasoning, &decidedAt, &decidedBy, &d.ClientIP, &d.DeviceInfo)
	if err != nil {
		return nil, err
	}
	d.ID = id.AttemptID(decisionID)
	d.FinalAction = workflow.FinalAction(finalAction)
	d.DecidedAt = decidedAt
	d.DecidedBy = id.BankerID(decidedBy)
	return &d, nil
}
