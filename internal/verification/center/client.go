package center

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	derrors "giggate/pkg/domain-errors"
)

const defaultTimeout = 10 * time.Second

// SecretHeader authenticates both directions of center traffic: this client
// sends it on decision requests, and the callback handler requires it back.
const SecretHeader = "X-Center-Secret"

// Client is the HTTP adapter for the off-chain verification center.
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

func NewClient(baseURL, secret string) *Client {
	return &Client{
		baseURL:    baseURL,
		secret:     secret,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type decisionRequestPayload struct {
	RequestID  string `json:"request_id"`
	Commitment string `json:"commitment"`
	Level      int    `json:"level"`
}

// RequestDecision posts the commitment to the center. A 202 means the center
// accepted the work; the approval arrives later on the callback endpoint.
func (c *Client) RequestDecision(ctx context.Context, cmd DecisionCommand) error {
	payload, err := json.Marshal(decisionRequestPayload{
		RequestID:  cmd.RequestID.String(),
		Commitment: cmd.Commitment.String(),
		Level:      int(cmd.Level),
	})
	if err != nil {
		return fmt.Errorf("marshal decision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/decisions", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build decision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SecretHeader, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return derrors.Wrap(err, derrors.CodeUnavailable, "verification center unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return derrors.New(derrors.CodeUnavailable,
			fmt.Sprintf("verification center returned status %d", resp.StatusCode))
	}
	return nil
}
