// Command verification-center is a stand-in for the off-chain verification
// center, for local development and end-to-end testing. It accepts decision
// requests from the gateway and reports a verdict back on the callback
// endpoint after a short delay.
//
// Verdicts are deterministic: commitments starting with "00" are declined,
// everything else is approved. That gives tests a stable way to exercise both
// paths without configuration.
package main

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const secretHeader = "X-Center-Secret"

type decisionRequest struct {
	RequestID  string `json:"request_id"`
	Commitment string `json:"commitment"`
	Level      int    `json:"level"`
}

type callbackPayload struct {
	Approved bool   `json:"approved"`
	Verifier string `json:"verifier"`
	Reason   string `json:"reason,omitempty"`
}

type server struct {
	secret       string
	callbackBase string
	delay        time.Duration
	verifier     string
	logger       *slog.Logger
	httpClient   *http.Client
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	addr := envOr("ADDR", ":9090")
	s := &server{
		secret:       envOr("CENTER_SECRET", "dev-center-secret"),
		callbackBase: envOr("CALLBACK_BASE_URL", "http://localhost:8080"),
		delay:        envDurationOr("DECISION_DELAY", 2*time.Second),
		verifier:     envOr("VERIFIER_NAME", "mock-center"),
		logger:       logger,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /decisions", s.handleDecision)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	logger.Info("mock verification center listening", "addr", addr, "delay", s.delay.String())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func (s *server) handleDecision(w http.ResponseWriter, r *http.Request) {
	if subtle.ConstantTimeCompare([]byte(r.Header.Get(secretHeader)), []byte(s.secret)) != 1 {
		http.Error(w, "invalid center secret", http.StatusUnauthorized)
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RequestID == "" {
		http.Error(w, "invalid decision request", http.StatusBadRequest)
		return
	}

	s.logger.Info("decision request accepted",
		"request_id", req.RequestID,
		"level", req.Level,
	)
	go s.deliverVerdict(req)

	w.WriteHeader(http.StatusAccepted)
}

func (s *server) deliverVerdict(req decisionRequest) {
	time.Sleep(s.delay)

	verdict := callbackPayload{Approved: true, Verifier: s.verifier}
	if strings.HasPrefix(strings.TrimPrefix(req.Commitment, "0x"), "00") {
		verdict.Approved = false
		verdict.Reason = "verification material rejected"
	}

	body, err := json.Marshal(verdict)
	if err != nil {
		s.logger.Error("failed to marshal verdict", "error", err)
		return
	}

	url := fmt.Sprintf("%s/verification/requests/%s/callback", s.callbackBase, req.RequestID)
	httpReq, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		s.logger.Error("failed to build callback request", "error", err)
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(secretHeader, s.secret)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logger.Error("callback delivery failed",
			"request_id", req.RequestID,
			"error", err,
		)
		return
	}
	defer resp.Body.Close()

	s.logger.Info("verdict delivered",
		"request_id", req.RequestID,
		"approved", verdict.Approved,
		"status", resp.StatusCode,
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
