package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"veriface/internal/workflow"
	"veriface/internal/workflow/ports"
	"veriface/internal/workflow/service"
	id "veriface/pkg/domain"
	dErrors "veriface/pkg/domain-errors"
	"veriface/pkg/platform/httputil"
	"veriface/pkg/requestcontext"
)

// Service defines the workflow operations the handler needs.
type Service interface {
	Finalize(ctx context.Context, req service.FinalizeRequest) (*workflow.Decision, error)
	GetDecision(ctx context.Context, decisionID id.AttemptID) (*workflow.Decision, error)
	ListDecisions(ctx context.Context, filter ports.DecisionFilter) ([]*workflow.Decision, error)
	GetCase(ctx context.Context, attemptID id.AttemptID) (*service.Case, error)
}

// Handler wires decision workflow endpoints to the workflow service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a workflow handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts workflow endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/decide", h.HandleDecide)
	r.Get("/decisions", h.HandleListDecisions)
	r.Get("/decisions/{decisionID}", h.HandleGetDecision)
	r.Get("/cases/{attemptID}", h.HandleGetCase)
}

// HandleDecide handles POST /decide requests.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	bankerID := requestcontext.BankerID(ctx)
	if bankerID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[DecideRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	decision, err := h.service.Finalize(ctx, service.FinalizeRequest{
		AttemptID:   req.ParsedAttemptID(),
		FinalAction: req.ParsedAction(),
		Reasoning:   req.Reasoning,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "decision finalize failed",
			"request_id", requestID,
			"banker_id", bankerID.String(),
			"decision_id", req.DecisionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "decision recorded",
		"request_id", requestID,
		"banker_id", bankerID.String(),
		"attempt_id", decision.ID.String(),
		"final_action", decision.FinalAction.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusCreated, FromDecision(decision))
}

// HandleListDecisions handles GET /decisions with optional from/to, action,
// mine, and limit query parameters.
func (h *Handler) HandleListDecisions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseDecisionFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if r.URL.Query().Get("mine") == "true" {
		filter.DecidedBy = requestcontext.BankerID(ctx)
	}

	decisions, err := h.service.ListDecisions(ctx, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDecisions(decisions))
}

// HandleGetDecision handles GET /decisions/{decisionID}.
func (h *Handler) HandleGetDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	decisionID, err := id.ParseAttemptID(chi.URLParam(r, "decisionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	decision, err := h.service.GetDecision(ctx, decisionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDecision(decision))
}

// HandleGetCase handles GET /cases/{attemptID}, returning the attempt joined
// with its decision when one exists.
func (h *Handler) HandleGetCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attemptID, err := id.ParseAttemptID(chi.URLParam(r, "attemptID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.service.GetCase(ctx, attemptID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCase(c))
}
