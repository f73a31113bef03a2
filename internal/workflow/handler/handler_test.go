package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"veriface/internal/verification"
	"veriface/internal/workflow"
	"veriface/internal/workflow/ports"
	"veriface/internal/workflow/service"
	id "veriface/pkg/domain"
	dErrors "veriface/pkg/domain-errors"
	"veriface/pkg/requestcontext"
)

// fakeService scripts the workflow service for handler tests.
type fakeService struct {
	finalize    func(ctx context.Context, req service.FinalizeRequest) (*workflow.Decision, error)
	getDecision func(ctx context.Context, decisionID id.AttemptID) (*workflow.Decision, error)
	list        func(ctx context.Context, filter ports.DecisionFilter) ([]*workflow.Decision, error)
	getCase     func(ctx context.Context, attemptID id.AttemptID) (*service.Case, error)
	lastFinal   *service.FinalizeRequest
	lastFilter  *ports.DecisionFilter
}

func (f *fakeService) Finalize(ctx context.Context, req service.FinalizeRequest) (*workflow.Decision, error) {
	f.lastFinal = &req
	return f.finalize(ctx, req)
}

func (f *fakeService) GetDecision(ctx context.Context, decisionID id.AttemptID) (*workflow.Decision, error) {
	return f.getDecision(ctx, decisionID)
}

func (f *fakeService) ListDecisions(ctx context.Context, filter ports.DecisionFilter) ([]*workflow.Decision, error) {
	f.lastFilter = &filter
	return f.list(ctx, filter)
}

func (f *fakeService) GetCase(ctx context.Context, attemptID id.AttemptID) (*service.Case, error) {
	return f.getCase(ctx, attemptID)
}

// HandlerSuite tests the workflow HTTP endpoints.
type HandlerSuite struct {
	suite.Suite

	service  *fakeService
	router   chi.Router
	bankerID id.BankerID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.service = &fakeService{}
	s.bankerID = id.NewBankerID()
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) postDecide(body map[string]any, authenticated bool) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/decide", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req = req.WithContext(requestcontext.WithBankerID(req.Context(), s.bankerID))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestDecide() {
	attemptID := id.NewAttemptID()

	s.Run("valid approve finalizes", func() {
		decision := &workflow.Decision{
			ID:          attemptID,
			FinalAction: workflow.ActionBankerApprove,
			DecidedAt:   time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
			DecidedBy:   s.bankerID,
		}
		s.service.finalize = func(_ context.Context, _ service.FinalizeRequest) (*workflow.Decision, error) {
			return decision, nil
		}

		rec := s.postDecide(map[string]any{
			"decision_id": attemptID.String(),
			"action":      "BANKER_APPROVE",
			"reasoning":   "verified in branch",
		}, true)

		s.Equal(http.StatusCreated, rec.Code)
		s.Equal(attemptID, s.service.lastFinal.AttemptID)
		s.Equal(workflow.ActionBankerApprove, s.service.lastFinal.FinalAction)
		s.Equal("verified in branch", s.service.lastFinal.Reasoning)

		var resp DecisionResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("BANKER_APPROVE", resp.FinalAction)
		s.Equal(s.bankerID.String(), resp.DecidedBy)
	})

	s.Run("unauthenticated rejected", func() {
		rec := s.postDecide(map[string]any{
			"decision_id": attemptID.String(),
			"action":      "BANKER_APPROVE",
		}, false)

		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("unknown action rejected", func() {
		rec := s.postDecide(map[string]any{
			"decision_id": attemptID.String(),
			"action":      "SHRUG",
		}, true)

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "invalid action")
	})

	s.Run("reject requires reasoning", func() {
		rec := s.postDecide(map[string]any{
			"decision_id": attemptID.String(),
			"action":      "BANKER_REJECT",
		}, true)

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "reasoning is required")
	})

	s.Run("malformed attempt id rejected", func() {
		rec := s.postDecide(map[string]any{
			"decision_id": "not-a-uuid",
			"action":      "BANKER_APPROVE",
		}, true)

		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("conflict surfaces as 409", func() {
		s.service.finalize = func(_ context.Context, _ service.FinalizeRequest) (*workflow.Decision, error) {
			return nil, dErrors.New(dErrors.CodeConflict, "attempt is already finalized")
		}

		rec := s.postDecide(map[string]any{
			"decision_id": attemptID.String(),
			"action":      "BANKER_APPROVE",
		}, true)

		s.Equal(http.StatusConflict, rec.Code)
		s.Contains(rec.Body.String(), "conflict")
	})
}

func (s *HandlerSuite) TestListDecisions() {
	s.service.list = func(_ context.Context, _ ports.DecisionFilter) ([]*workflow.Decision, error) {
		return []*workflow.Decision{{ID: id.NewAttemptID(), FinalAction: workflow.ActionBankerApprove}}, nil
	}

	s.Run("filters parsed", func() {
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
			"/decisions?action=BANKER_APPROVE&limit=5", nil))

		s.Equal(http.StatusOK, rec.Code)
		s.Equal(workflow.ActionBankerApprove, s.service.lastFilter.FinalAction)
		s.Equal(5, s.service.lastFilter.Limit)
	})

	s.Run("mine scopes to the authenticated banker", func() {
		req := httptest.NewRequest(http.MethodGet, "/decisions?mine=true", nil)
		req = req.WithContext(requestcontext.WithBankerID(req.Context(), s.bankerID))
		rec := httptest.NewRecorder()

		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusOK, rec.Code)
		s.Equal(s.bankerID, s.service.lastFilter.DecidedBy)
	})

	s.Run("invalid action rejected", func() {
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/decisions?action=nope", nil))

		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestGetDecision() {
	decisionID := id.NewAttemptID()

	s.Run("found", func() {
		s.service.getDecision = func(_ context.Context, got id.AttemptID) (*workflow.Decision, error) {
			s.Equal(decisionID, got)
			return &workflow.Decision{ID: decisionID, FinalAction: workflow.ActionRequestRecapture}, nil
		}

		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/decisions/"+decisionID.String(), nil))

		s.Equal(http.StatusOK, rec.Code)

		var resp DecisionResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(decisionID.String(), resp.DecisionID)
		s.Equal("REQUEST_RECAPTURE", resp.FinalAction)
	})

	s.Run("not found", func() {
		s.service.getDecision = func(_ context.Context, _ id.AttemptID) (*workflow.Decision, error) {
			return nil, dErrors.New(dErrors.CodeNotFound, "decision not found")
		}

		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/decisions/"+decisionID.String(), nil))

		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("malformed id", func() {
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/decisions/nope", nil))

		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestGetCase() {
	attemptID := id.NewAttemptID()

	s.Run("attempt with decision", func() {
		s.service.getCase = func(_ context.Context, got id.AttemptID) (*service.Case, error) {
			s.Equal(attemptID, got)
			return &service.Case{
				Attempt:  &verification.Attempt{ID: attemptID, Status: verification.StatusClosed},
				Decision: &workflow.Decision{ID: attemptID, FinalAction: workflow.ActionBankerApprove},
			}, nil
		}

		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cases/"+attemptID.String(), nil))

		s.Equal(http.StatusOK, rec.Code)

		var resp CaseResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Require().NotNil(resp.Decision)
		s.Equal("BANKER_APPROVE", resp.Decision.FinalAction)
	})

	s.Run("pending case has null decision", func() {
		s.service.getCase = func(_ context.Context, _ id.AttemptID) (*service.Case, error) {
			return &service.Case{
				Attempt: &verification.Attempt{ID: attemptID, Status: verification.StatusScored},
			}, nil
		}

		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cases/"+attemptID.String(), nil))

		s.Equal(http.StatusOK, rec.Code)

		var resp CaseResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Nil(resp.Decision)
	})

	s.Run("malformed id", func() {
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cases/nope", nil))

		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
