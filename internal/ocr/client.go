package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/infradyn/docextract/internal/common"
)

// ClientConfig configures the HTTP implementation of API.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the OCR service over its REST API:
//
//	POST {base}/v1/text-detection/jobs          -> {"job_id": ...}
//	GET  {base}/v1/text-detection/jobs/{id}     -> PollResponse
//	POST {base}/v1/text-detection/detect        -> {"blocks": [...]}
type Client struct {
	cfg    ClientConfig
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Client) headers() map[string]string {
	if c.cfg.APIKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}

func (c *Client) Submit(ctx context.Context, bucket, key string) (string, error) {
	body := map[string]string{"bucket": bucket, "key": key}
	raw, _, err := common.SendJSON(ctx, c.http, http.MethodPost, c.cfg.BaseURL+"/v1/text-detection/jobs", body, c.headers(), c.logger)
	if err != nil {
		return "", err
	}
	var out struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if out.JobID == "" {
		return "", fmt.Errorf("submit response missing job_id")
	}
	return out.JobID, nil
}

func (c *Client) Poll(ctx context.Context, jobID, cursor string) (PollResponse, error) {
	u := c.cfg.BaseURL + "/v1/text-detection/jobs/" + url.PathEscape(jobID)
	if cursor != "" {
		u += "?cursor=" + url.QueryEscape(cursor)
	}
	raw, _, err := common.SendJSON(ctx, c.http, http.MethodGet, u, nil, c.headers(), c.logger)
	if err != nil {
		return PollResponse{}, err
	}
	var out PollResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return PollResponse{}, fmt.Errorf("decode poll response: %w", err)
	}
	return out, nil
}

func (c *Client) Detect(ctx context.Context, bucket, key string) ([]Block, error) {
	body := map[string]string{"bucket": bucket, "key": key}
	raw, _, err := common.SendJSON(ctx, c.http, http.MethodPost, c.cfg.BaseURL+"/v1/text-detection/detect", body, c.headers(), c.logger)
	if err != nil {
		return nil, err
	}
	var out struct {
		Blocks []Block `json:"blocks"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode detect response: %w", err)
	}
	return out.Blocks, nil
}
