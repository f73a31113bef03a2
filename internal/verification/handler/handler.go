package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"veriface/internal/verification"
	"veriface/internal/verification/ports"
	"veriface/internal/verification/service"
	id "veriface/pkg/domain"
	dErrors "veriface/pkg/domain-errors"
	"veriface/pkg/platform/httputil"
	"veriface/pkg/requestcontext"
)

// maxImageBytes bounds each uploaded image; the multipart form as a whole is
// capped at twice that plus slack for the text fields.
const maxImageBytes = 10 << 20

// Service defines the scoring operations the handler needs.
type Service interface {
	Verify(ctx context.Context, req service.VerifyRequest) (*verification.Attempt, error)
	GetAttempt(ctx context.Context, attemptID id.AttemptID) (*verification.Attempt, error)
	ListAttempts(ctx context.Context, filter ports.AttemptFilter) ([]*verification.Attempt, error)
}

// Handler wires verification endpoints to the scoring service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a verification handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verify", h.HandleVerify)
	r.Get("/attempts", h.HandleListAttempts)
	r.Get("/attempts/{attemptID}", h.HandleGetAttempt)
}

// HandleVerify handles POST /verify multipart requests. The two images
// arrive as file parts; subject_ref is an optional text field.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, 2*maxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected multipart form with live_image and reference_image"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	live, err := readImagePart(r, "live_image")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	// The reference image is optional when a subject_ref lets the vision
	// subsystem resolve the enrolled photo itself.
	reference, err := readOptionalImagePart(r, "reference_image")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req := service.VerifyRequest{
		LiveImage:      live,
		ReferenceImage: reference,
		SubjectRef:     strings.TrimSpace(r.FormValue("subject_ref")),
	}

	attempt, err := h.service.Verify(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification handled",
		"request_id", requestID,
		"attempt_id", attempt.ID.String(),
		"status", string(attempt.Status),
		"recommendation", string(attempt.Recommendation),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusCreated, FromAttempt(attempt))
}

// HandleGetAttempt handles GET /attempts/{attemptID}.
func (h *Handler) HandleGetAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attemptID, err := id.ParseAttemptID(chi.URLParam(r, "attemptID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	attempt, err := h.service.GetAttempt(ctx, attemptID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAttempt(attempt))
}

// HandleListAttempts handles GET /attempts with optional from/to,
// recommendation, status, mine, and limit query parameters.
func (h *Handler) HandleListAttempts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseAttemptFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if r.URL.Query().Get("mine") == "true" {
		filter.BankerID = requestcontext.BankerID(ctx)
	}

	attempts, err := h.service.ListAttempts(ctx, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAttempts(attempts))
}

func readImagePart(r *http.Request, field string) ([]byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, dErrors.New(dErrors.CodeValidation, field+" is required")
		}
		return nil, dErrors.New(dErrors.CodeBadRequest, "malformed multipart part: "+field)
	}
	defer closePart(file)

	if header.Size > maxImageBytes {
		return nil, dErrors.New(dErrors.CodeValidation, field+" exceeds the 10MB limit")
	}
	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "failed to read "+field)
	}
	if len(data) > maxImageBytes {
		return nil, dErrors.New(dErrors.CodeValidation, field+" exceeds the 10MB limit")
	}
	if len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, field+" is empty")
	}
	return data, nil
}

func readOptionalImagePart(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err == nil {
		closePart(file)
	}
	return readImagePart(r, field)
}

func closePart(file multipart.File) {
	_ = file.Close()
}
