package ports

import (
	"context"

	"veriface/pkg/platform/audit"
)

// AuditPort defines the interface for emitting audit events. This matches
// the audit.Emitter but is defined here to keep the hexagonal boundary.
type AuditPort interface {
	Emit(ctx context.Context, event audit.Event) error
}
