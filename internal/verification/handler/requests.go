package handler

import (
	"net/http"
	"strconv"
	"time"

	"veriface/internal/verification"
	"veriface/internal/verification/ports"
	dErrors "veriface/pkg/domain-errors"
)

// parseAttemptFilter reads the list query parameters. Unknown enum values are
// rejected rather than silently matching nothing.
func parseAttemptFilter(r *http.Request) (ports.AttemptFilter, error) {
	q := r.URL.Query()
	var filter ports.AttemptFilter

	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeValidation, "from must be RFC3339")
		}
		filter.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeValidation, "to must be RFC3339")
		}
		filter.To = t
	}
	if raw := q.Get("recommendation"); raw != "" {
		rec := verification.Recommendation(raw)
		if rec.Rank() < 0 {
			return filter, dErrors.New(dErrors.CodeValidation, "invalid recommendation: "+raw)
		}
		filter.Recommendation = rec
	}
	if raw := q.Get("status"); raw != "" {
		switch verification.Status(raw) {
		case verification.StatusScored, verification.StatusFailed, verification.StatusClosed:
			filter.Status = verification.Status(raw)
		default:
			return filter, dErrors.New(dErrors.CodeValidation, "invalid status: "+raw)
		}
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}
