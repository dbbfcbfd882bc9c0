// Package e2e drives a running giggate instance over HTTP with godog
// scenarios. Point GATEWAY_URL at the instance and GATEWAY_SIGNING_KEY at its
// token key before running.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestContext carries shared state across scenario steps: the HTTP client,
// the last response, and ids saved by earlier steps.
type TestContext struct {
	baseURL    string
	signingKey []byte
	httpClient *http.Client

	lastStatus int
	lastBody   map[string]any

	bearers   map[string]string
	gigID     string
	requestID string
}

func NewTestContext(baseURL, signingKey string) *TestContext {
	return &TestContext{
		baseURL:    baseURL,
		signingKey: []byte(signingKey),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		bearers:    make(map[string]string),
	}
}

// Reset clears per-scenario state while keeping minted tokens.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.gigID = ""
	tc.requestID = ""
}

// BearerFor mints (and caches) an HS256 token for the given wallet address,
// signed with the gateway's key so the middleware accepts it.
func (tc *TestContext) BearerFor(address string) (string, error) {
	if token, ok := tc.bearers[address]; ok {
		return token, nil
	}
	claims := jwt.RegisteredClaims{
		Subject:   address,
		Issuer:    "giggate",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token for %s: %w", address, err)
	}
	tc.bearers[address] = token
	return token, nil
}

// POST sends a JSON request. An empty address sends anonymously.
func (tc *TestContext) POST(path string, body any, address string, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.send(req, address, headers)
}

// GET sends a request. An empty address sends anonymously.
func (tc *TestContext) GET(path string, address string) error {
	req, err := http.NewRequest(http.MethodGet, tc.baseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.send(req, address, nil)
}

func (tc *TestContext) send(req *http.Request, address string, headers map[string]string) error {
	if address != "" {
		token, err := tc.BearerFor(address)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody = nil
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if len(raw) > 0 {
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err == nil {
			tc.lastBody = body
		}
	}
	return nil
}

// LastStatus returns the status code of the most recent response.
func (tc *TestContext) LastStatus() int { return tc.lastStatus }

// ResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) ResponseField(field string) (any, error) {
	if tc.lastBody == nil {
		return nil, fmt.Errorf("no JSON body in the last response")
	}
	value, ok := tc.lastBody[field]
	if !ok {
		return nil, fmt.Errorf("field %q not present in response", field)
	}
	return value, nil
}

// ResponseString returns a top-level string field of the last response.
func (tc *TestContext) ResponseString(field string) (string, error) {
	value, err := tc.ResponseField(field)
	if err != nil {
		return "", err
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", field)
	}
	return s, nil
}

func (tc *TestContext) SetGigID(id string)     { tc.gigID = id }
func (tc *TestContext) GigID() string          { return tc.gigID }
func (tc *TestContext) SetRequestID(id string) { tc.requestID = id }
func (tc *TestContext) RequestID() string      { return tc.requestID }
