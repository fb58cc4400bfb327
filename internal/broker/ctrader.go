// Package broker provides the cTrader integration client. The heavy lifting
// (OAuth token exchange, deal history paging, symbol mapping) lives behind
// three serverless endpoints; this client only speaks JSON to them.
package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tradejournal/internal/errors"
)

// DefaultTimeout bounds every broker request. Nothing is retried
// automatically; a failed call is reported and the user retries.
const DefaultTimeout = 30 * time.Second

// Client talks to the cTrader bridge endpoints.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewClient creates a broker client for the given bridge base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithCredentials attaches the cTrader OAuth application credentials.
// They are forwarded to the bridge on initiate-auth so the bridge can run
// the consent flow under the user's own application.
func (c *Client) WithCredentials(clientID, clientSecret string) *Client {
	c.clientID = clientID
	c.clientSecret = clientSecret
	return c
}

// AuthResponse is the initiate-auth endpoint payload.
type AuthResponse struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// ImportResult reports what an import or sync call brought in.
type ImportResult struct {
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Message  string `json:"message"`
}

// InitiateAuth asks the bridge for a cTrader OAuth consent URL. The user
// opens the URL in a browser; the bridge handles the callback and stores
// the tokens server-side.
func (c *Client) InitiateAuth(ctx context.Context, userID, accountID string) (*AuthResponse, error) {
	payload := map[string]string{
		"user_id":    userID,
		"account_id": accountID,
	}
	if c.clientID != "" {
		payload["client_id"] = c.clientID
	}
	if c.clientSecret != "" {
		payload["client_secret"] = c.clientSecret
	}

	var resp AuthResponse
	if err := c.post(ctx, "/ctrader/initiate-auth", payload, &resp); err != nil {
		return nil, err
	}
	if resp.AuthURL == "" {
		return nil, errors.NewBrokerError("initiate-auth", "empty auth URL in response", http.StatusOK, nil)
	}
	return &resp, nil
}

// ImportTrades pulls closed deals for a date range from the connected
// cTrader account into the journal.
func (c *Client) ImportTrades(ctx context.Context, userID, accountID string, from, to time.Time) (*ImportResult, error) {
	payload := map[string]interface{}{
		"user_id":    userID,
		"account_id": accountID,
		"from":       from.Format(time.RFC3339),
		"to":         to.Format(time.RFC3339),
	}

	var resp ImportResult
	if err := c.post(ctx, "/ctrader/import-trades", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Sync fetches deals since the last sync point. When full is true the
// bridge re-reads the whole account history instead.
func (c *Client) Sync(ctx context.Context, userID, accountID string, full bool) (*ImportResult, error) {
	payload := map[string]interface{}{
		"user_id":    userID,
		"account_id": accountID,
		"full":       full,
	}

	var resp ImportResult
	if err := c.post(ctx, "/ctrader/sync", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends a JSON body and decodes a JSON response. Non-2xx responses
// become BrokerError with the endpoint name and status attached.
func (c *Client) post(ctx context.Context, endpoint string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errors.NewBrokerError(endpoint, "request timed out", 0, errors.ErrTimeout)
		}
		return errors.NewBrokerError(endpoint, "request failed", 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.NewBrokerError(endpoint, "failed to read response", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		msg := "request failed"
		if json.Unmarshal(data, &apiErr) == nil {
			if apiErr.Error != "" {
				msg = apiErr.Error
			} else if apiErr.Message != "" {
				msg = apiErr.Message
			}
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return errors.NewBrokerError(endpoint, msg, resp.StatusCode, errors.ErrBrokerNotConnected)
		}
		return errors.NewBrokerError(endpoint, msg, resp.StatusCode, nil)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.NewBrokerError(endpoint, "failed to decode response", resp.StatusCode, err)
		}
	}
	return nil
}
