package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClient asks a remote decision service for a verdict.
//
// Wire format: POST {URL} with a JSON Request body and a bearer key; the service
// answers {"conclusion":"ALLOW"|"DENY","reason":"RATE_LIMIT"|"BOT"|"SHIELD"|...}.
type HTTPClient struct {
	url    string
	key    string
	client *http.Client
}

// NewHTTPClient creates a client whose every call is bounded by timeout.
func NewHTTPClient(url, key string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPClient{
		url:    url,
		key:    key,
		client: &http.Client{Timeout: timeout},
	}
}

type decisionResponse struct {
	Conclusion string `json:"conclusion"`
	Reason     string `json:"reason"`
}

func (c *HTTPClient) Protect(ctx context.Context, req Request) (Decision, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Decision{}, fmt.Errorf("encode decision request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Decision{}, fmt.Errorf("build decision request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Decision{}, fmt.Errorf("call decision service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Decision{}, fmt.Errorf("decision service returned status %d", resp.StatusCode)
	}

	var dr decisionResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&dr); err != nil {
		return Decision{}, fmt.Errorf("decode decision response: %w", err)
	}

	return parseDecision(dr), nil
}

func parseDecision(dr decisionResponse) Decision {
	reason := strings.ToUpper(strings.TrimSpace(dr.Reason))
	if strings.ToUpper(strings.TrimSpace(dr.Conclusion)) != "DENY" {
		return Decision{Conclusion: Allow, Reason: reason}
	}
	switch reason {
	case "RATE_LIMIT":
		return Decision{Conclusion: RateLimited, Reason: reason}
	case "BOT":
		return Decision{Conclusion: Bot, Reason: reason}
	default:
		return Decision{Conclusion: Blocked, Reason: reason}
	}
}
