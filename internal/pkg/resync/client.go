package resync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

var (
	ErrSyncFailed    = errors.New("sync failed")
	ErrNotConfigured = errors.New("resync backend not configured")
)

// maxErrorBody bounds how much of a failed response is copied into the error.
const maxErrorBody = 4 << 10

// SourceResult is what the ingestion backend reports for one source.
type SourceResult struct {
	Source      string `json:"source"`
	Status      string `json:"status"`
	RowsWritten *int   `json:"rows_written"`
	SyncWindow  any    `json:"sync_window,omitempty"`
	Message     string `json:"message,omitempty"`
}

type Result struct {
	Success bool           `json:"success"`
	Sources []SourceResult `json:"sources"`
}

// RowsProcessed sums the rows written across sources; sources without a count add nothing.
func (r Result) RowsProcessed() int {
	return lo.SumBy(r.Sources, func(s SourceResult) int {
		if s.RowsWritten == nil {
			return 0
		}
		return *s.RowsWritten
	})
}

// Client asks the ingestion backend to pull fresh data from the providers.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: zap.L(),
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// Sync runs an incremental sync on the backend and waits for it to finish.
func (c *Client) Sync(ctx context.Context) (Result, error) {
	if !c.Configured() {
		return Result{}, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sync-data", http.NoBody)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("resync request failed", zap.Error(err))
		return Result{}, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("Sync request failed (%d)", resp.StatusCode)
		}
		c.logger.Warn("resync backend returned non-success", zap.Int("status", resp.StatusCode), zap.String("body", msg))
		return Result{}, fmt.Errorf("%w: %s", ErrSyncFailed, msg)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("%w: decode response: %w", ErrSyncFailed, err)
	}
	c.logger.Info("resync finished", zap.Int("sources", len(result.Sources)), zap.Int("rows", result.RowsProcessed()))
	return result, nil
}
