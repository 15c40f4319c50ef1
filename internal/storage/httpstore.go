package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/infradyn/docextract/internal/common"
)

// HTTPStore is an ObjectStore over a simple object-store gateway that serves
// GET {endpoint}/{bucket}/{key}. Authentication is a bearer token.
type HTTPStore struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *slog.Logger
}

func NewHTTPStore(cfg common.StorageConfig, logger *slog.Logger) *HTTPStore {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPStore{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (s *HTTPStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	u := s.endpoint + "/" + url.PathEscape(bucket) + "/" + escapeKey(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build object request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Warn("storage.object.body_close_error", "error", err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, common.ErrNotFound
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("object store status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// escapeKey escapes each path segment of an object key while keeping the
// slashes that separate them.
func escapeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
