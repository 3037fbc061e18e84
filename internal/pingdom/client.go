// Package pingdom is a minimal client for the Pingdom-compatible
// monitoring API: check enumeration and per-check outage summaries.
package pingdom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hazz-dev/upreport/internal/daterange"
	"github.com/hazz-dev/upreport/internal/uptime"
)

// Sentinel errors for provider responses callers may want to branch on.
var (
	ErrUnauthorized = errors.New("authentication rejected by provider")
	ErrRateLimited  = errors.New("rate limited by provider")
)

// Check is a single monitored target as returned by the provider.
type Check struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Client talks to the provider API. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client. Pass nil logger to use the default logger.
func New(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type checksResponse struct {
	Checks []Check `json:"checks"`
}

// ListChecks enumerates all monitored checks, in provider order. That order
// is the canonical ordering of the final report.
func (c *Client) ListChecks(ctx context.Context) ([]Check, error) {
	var body checksResponse
	if err := c.get(ctx, c.baseURL+"/checks", &body); err != nil {
		return nil, fmt.Errorf("listing checks: %w", err)
	}
	return body.Checks, nil
}

type outageResponse struct {
	Summary struct {
		States []outageState `json:"states"`
	} `json:"summary"`
}

type outageState struct {
	Status   string `json:"status"`
	TimeFrom int64  `json:"timefrom"`
	TimeTo   int64  `json:"timeto"`
}

// Outages returns the down intervals for one check intersecting the range.
// The provider reports a state timeline; only "down" states count as
// outages.
func (c *Client) Outages(ctx context.Context, checkID int64, window daterange.Range) ([]uptime.Interval, error) {
	url := fmt.Sprintf("%s/summary.outage/%d?from=%d&to=%d",
		c.baseURL, checkID, window.FromUnix(), window.ToUnix())

	var body outageResponse
	if err := c.get(ctx, url, &body); err != nil {
		return nil, fmt.Errorf("fetching outages for check %d: %w", checkID, err)
	}

	var outages []uptime.Interval
	for _, st := range body.Summary.States {
		if st.Status != "down" {
			continue
		}
		outages = append(outages, uptime.Interval{
			From: time.Unix(st.TimeFrom, 0).UTC(),
			To:   time.Unix(st.TimeTo, 0).UTC(),
		})
	}
	return outages, nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("provider request", "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
