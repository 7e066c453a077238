// Package client is the resty-based client for the qah HTTP API used by qahctl.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/aggregator"
	"github.com/vonm84/qah-app/internal/domain"
)

const headerMemberName = "X-Member-Name"

// envelope mirrors the server's Result wrapper.
type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("qah api: %d %s", e.StatusCode, e.Message)
}

// Client qah API 客户端
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// New creates a client acting as member (sent in X-Member-Name).
func New(baseURL, member string, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		AddRetryCondition(retryReads).
		SetHeader("Accept", "application/json").
		SetHeader(headerMemberName, member)

	return &Client{httpClient: httpClient, logger: logger}
}

// retryReads 只重试 GET，写操作不重试
func retryReads(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || r.StatusCode() >= http.StatusInternalServerError
}

func (c *Client) do(req *resty.Request, method, path string, out any) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		if resp.IsError() {
			return &APIError{StatusCode: resp.StatusCode(), Message: resp.Status()}
		}
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	if resp.IsError() || env.Code != 2000 {
		c.logger.Debug("API returned error",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", env.Message),
		)
		return &APIError{StatusCode: resp.StatusCode(), Message: env.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("failed to decode %s %s result: %w", method, path, err)
	}
	return nil
}

// ExportSongs returns the song list as CSV.
func (c *Client) ExportSongs(ctx context.Context) (string, error) {
	resp, err := c.httpClient.R().SetContext(ctx).Get("/api/v1/songs/export")
	if err != nil {
		return "", fmt.Errorf("failed to export songs: %w", err)
	}
	if resp.IsError() {
		return "", &APIError{StatusCode: resp.StatusCode(), Message: resp.Status()}
	}
	return string(resp.Body()), nil
}

// ImportSongs replaces the song list (leader only).
func (c *Client) ImportSongs(ctx context.Context, csv string) ([]domain.Song, error) {
	var songs []domain.Song
	req := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/csv; charset=utf-8").
		SetBody(csv)
	if err := c.do(req, http.MethodPut, "/api/v1/leader/songs", &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// LeaderDates lists this and next month's dates with their enabled flag.
func (c *Client) LeaderDates(ctx context.Context) ([]domain.RehearsalDate, error) {
	var dates []domain.RehearsalDate
	if err := c.do(c.httpClient.R().SetContext(ctx), http.MethodGet, "/api/v1/leader/dates", &dates); err != nil {
		return nil, err
	}
	return dates, nil
}

func (c *Client) SetDateEnabled(ctx context.Context, date domain.Date, enabled bool) error {
	req := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]bool{"enabled": enabled})
	return c.do(req, http.MethodPut, "/api/v1/leader/dates/"+date.String(), nil)
}

// Roster fetches the freshly computed roster.
func (c *Client) Roster(ctx context.Context) ([]aggregator.DateRoster, error) {
	var roster []aggregator.DateRoster
	if err := c.do(c.httpClient.R().SetContext(ctx), http.MethodGet, "/api/v1/leader/roster", &roster); err != nil {
		return nil, err
	}
	return roster, nil
}
