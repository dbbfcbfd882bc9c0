package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"giggate/internal/verification/center"
	"giggate/internal/verification/handler/mocks"
	"giggate/internal/verification/models"
	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
)

const (
	testIdentity id.Identity = "0xab5801a7d398351b8be11c439e05c5b3259aec9b"
	centerSecret             = "center-secret"
)

type VerificationHandlerSuite struct {
	suite.Suite
}

func TestVerificationHandlerSuite(t *testing.T) {
	suite.Run(t, new(VerificationHandlerSuite))
}

type staticValidator struct{}

func (staticValidator) ValidateToken(token string) (id.Identity, error) {
	if token != "valid-token" {
		return "", derrors.New(derrors.CodeUnauthorized, "invalid token")
	}
	return testIdentity, nil
}

func newTestRouter(t *testing.T) (*mocks.MockService, *chi.Mux) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(mockService, logger, staticValidator{}, centerSecret)
	r := chi.NewRouter()
	h.Register(r)
	return mockService, r
}

func pendingRequest() *models.Request {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.Request{
		ID:         id.NewRequestID(),
		Identity:   testIdentity,
		Level:      id.LevelEnhanced,
		Commitment: id.ComputeCommitment([]byte("material")),
		Deposit:    id.LevelEnhanced.MinDeposit(),
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer valid-token")
	return req
}

func (s *VerificationHandlerSuite) TestHandleSubmit() {
	s.Run("submits a request", func() {
		mockService, router := newTestRouter(s.T())
		req := pendingRequest()
		mockService.EXPECT().Submit(
			gomock.Any(), testIdentity, id.LevelEnhanced, req.Commitment, id.LevelEnhanced.MinDeposit(),
		).Return(req, nil)

		body, err := json.Marshal(SubmitRequest{
			Level:      1,
			Commitment: req.Commitment.String(),
			DepositWei: req.Deposit.Int64(),
		})
		s.Require().NoError(err)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authed(httptest.NewRequest(http.MethodPost, "/verification/requests", bytes.NewReader(body))))

		s.Equal(http.StatusCreated, w.Code)
		var resp RequestResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("pending", resp.Status)
		s.Equal("enhanced", resp.LevelName)
	})

	s.Run("rejects invalid level before touching the service", func() {
		_, router := newTestRouter(s.T())

		body := []byte(`{"level":7,"commitment":"` + id.ComputeCommitment([]byte("x")).String() + `","deposit_wei":1}`)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authed(httptest.NewRequest(http.MethodPost, "/verification/requests", bytes.NewReader(body))))

		s.Equal(http.StatusUnprocessableEntity, w.Code)
		var resp map[string]string
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("invalid_level", resp["error"])
	})

	s.Run("maps insufficient deposit to 422", func() {
		mockService, router := newTestRouter(s.T())
		commitment := id.ComputeCommitment([]byte("x"))
		mockService.EXPECT().Submit(gomock.Any(), testIdentity, id.LevelFull, commitment, id.Wei(1)).
			Return(nil, derrors.New(derrors.CodeInsufficientDeposit, "deposit below the required minimum for the requested level"))

		body := []byte(`{"level":2,"commitment":"` + commitment.String() + `","deposit_wei":1}`)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authed(httptest.NewRequest(http.MethodPost, "/verification/requests", bytes.NewReader(body))))

		s.Equal(http.StatusUnprocessableEntity, w.Code)
		var resp map[string]string
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("insufficient_deposit", resp["error"])
	})

	s.Run("rejects unauthenticated caller", func() {
		_, router := newTestRouter(s.T())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/verification/requests", bytes.NewReader([]byte(`{}`))))

		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *VerificationHandlerSuite) TestHandleRequestDecision() {
	s.Run("accepts and returns 202", func() {
		mockService, router := newTestRouter(s.T())
		requestID := id.NewRequestID()
		mockService.EXPECT().RequestDecision(gomock.Any(), requestID).Return(nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authed(httptest.NewRequest(http.MethodPost,
			"/verification/requests/"+requestID.String()+"/decision", nil)))

		s.Equal(http.StatusAccepted, w.Code)
	})

	s.Run("maps already decided to 409", func() {
		mockService, router := newTestRouter(s.T())
		requestID := id.NewRequestID()
		mockService.EXPECT().RequestDecision(gomock.Any(), requestID).
			Return(derrors.New(derrors.CodeConflict, "request is already decided"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authed(httptest.NewRequest(http.MethodPost,
			"/verification/requests/"+requestID.String()+"/decision", nil)))

		s.Equal(http.StatusConflict, w.Code)
	})
}

func (s *VerificationHandlerSuite) TestHandleCallback() {
	s.Run("records the center decision", func() {
		mockService, router := newTestRouter(s.T())
		req := pendingRequest()
		req.Status = models.StatusApproved
		mockService.EXPECT().RecordDecision(gomock.Any(), req.ID, true, "center-1", "").
			Return(req, nil)

		body := []byte(`{"approved":true,"verifier":"center-1"}`)
		httpReq := httptest.NewRequest(http.MethodPost,
			"/verification/requests/"+req.ID.String()+"/callback", bytes.NewReader(body))
		httpReq.Header.Set(center.SecretHeader, centerSecret)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httpReq)

		s.Equal(http.StatusOK, w.Code)
		var resp RequestResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("approved", resp.Status)
	})

	s.Run("rejects a wrong shared secret", func() {
		_, router := newTestRouter(s.T())

		httpReq := httptest.NewRequest(http.MethodPost,
			"/verification/requests/"+id.NewRequestID().String()+"/callback",
			bytes.NewReader([]byte(`{"approved":true,"verifier":"center-1"}`)))
		httpReq.Header.Set(center.SecretHeader, "wrong")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httpReq)

		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("maps late callback to 409", func() {
		mockService, router := newTestRouter(s.T())
		requestID := id.NewRequestID()
		mockService.EXPECT().RecordDecision(gomock.Any(), requestID, false, "center-1", "late").
			Return(nil, derrors.New(derrors.CodeConflict, "request is already decided"))

		body := []byte(`{"approved":false,"verifier":"center-1","reason":"late"}`)
		httpReq := httptest.NewRequest(http.MethodPost,
			"/verification/requests/"+requestID.String()+"/callback", bytes.NewReader(body))
		httpReq.Header.Set(center.SecretHeader, centerSecret)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httpReq)

		s.Equal(http.StatusConflict, w.Code)
	})
}

func (s *VerificationHandlerSuite) TestHandleWithdraw() {
	mockService, router := newTestRouter(s.T())
	req := pendingRequest()
	req.Status = models.StatusWithdrawn
	mockService.EXPECT().Withdraw(gomock.Any(), req.ID, testIdentity).Return(req, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authed(httptest.NewRequest(http.MethodPost,
		"/verification/requests/"+req.ID.String()+"/withdraw", nil)))

	s.Equal(http.StatusOK, w.Code)
	var resp RequestResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("withdrawn", resp.Status)
}

func (s *VerificationHandlerSuite) TestHandleCurrent() {
	s.Run("returns the current request", func() {
		mockService, router := newTestRouter(s.T())
		req := pendingRequest()
		mockService.EXPECT().Current(gomock.Any(), testIdentity).Return(req, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authed(httptest.NewRequest(http.MethodGet, "/verification/current", nil)))

		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("no submissions maps to 404", func() {
		mockService, router := newTestRouter(s.T())
		mockService.EXPECT().Current(gomock.Any(), testIdentity).Return(nil, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authed(httptest.NewRequest(http.MethodGet, "/verification/current", nil)))

		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *VerificationHandlerSuite) TestHandleHistory() {
	mockService, router := newTestRouter(s.T())
	first := pendingRequest()
	second := pendingRequest()
	mockService.EXPECT().History(gomock.Any(), testIdentity).
		Return([]*models.Request{first, second}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authed(httptest.NewRequest(http.MethodGet, "/verification/history", nil)))

	s.Equal(http.StatusOK, w.Code)
	var resp HistoryResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(2, resp.Count)
}
