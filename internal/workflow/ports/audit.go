package ports

import (
	"context"

	"veriface/pkg/platform/audit"
)

// AuditPort defines the interface for emitting audit events. Defined here
// rather than importing the emitter directly to keep the hexagonal boundary.
type AuditPort interface {
	Emit(ctx context.Context, event audit.Event) error
}
