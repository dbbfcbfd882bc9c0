package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
)

const defaultTimeout = 5 * time.Second

// Client is the HTTP adapter for the external trust score oracle.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type scoreResponse struct {
	Identity string  `json:"identity"`
	Score    float64 `json:"score"`
}

// Score fetches the identity's score from the oracle. Any transport or
// protocol failure surfaces as CodeUnavailable so the evaluator can fail
// closed.
func (c *Client) Score(ctx context.Context, identity id.Identity) (id.TrustScore, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/scores/"+identity.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("build score request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, derrors.Wrap(err, derrors.CodeUnavailable, "trust score oracle unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, derrors.New(derrors.CodeUnavailable,
			fmt.Sprintf("trust score oracle returned status %d", resp.StatusCode))
	}

	var body scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, derrors.Wrap(err, derrors.CodeUnavailable, "malformed oracle response")
	}

	score, err := id.ParseTrustScore(body.Score)
	if err != nil {
		return 0, derrors.Wrap(err, derrors.CodeUnavailable, "oracle returned an out-of-range score")
	}
	return score, nil
}
