package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/infradyn/docextract/internal/common"
)

// ObjectStore fetches raw object bytes from a bucket/key pair.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// Resolver turns a Locator into raw bytes. It performs network I/O and does not
// retry; transient failures propagate to the orchestrator.
type Resolver struct {
	store         ObjectStore
	http          *http.Client
	defaultBucket string
	logger        *slog.Logger
}

func NewResolver(store ObjectStore, httpClient *http.Client, defaultBucket string, logger *slog.Logger) *Resolver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, http: httpClient, defaultBucket: defaultBucket, logger: logger}
}

// Fetch retrieves the byte content a Locator points at.
func (r *Resolver) Fetch(ctx context.Context, loc Locator) ([]byte, error) {
	start := time.Now()

	if bucket, key, ok := loc.ObjectRef(); ok {
		if bucket == "" {
			bucket = r.defaultBucket
		}
		content, err := r.store.Get(ctx, bucket, key)
		if err != nil {
			r.logger.Error("storage.fetch.object_error", "bucket", bucket, "key", key, "error", err)
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.NewNotFound(fmt.Sprintf("object not found: %s/%s", bucket, key), err)
			}
			return nil, common.NewTransportError(fmt.Sprintf("fetch object %s/%s", bucket, key), err)
		}
		r.logger.Debug("storage.fetch.object_ok",
			"bucket", bucket, "key", key, "bytes", len(content), "elapsed_ms", time.Since(start).Milliseconds())
		return content, nil
	}

	content, err := r.download(ctx, loc.DownloadURL)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("storage.fetch.download_ok",
		"url", loc.DownloadURL, "bytes", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}

// download performs a plain GET, used for pre-signed or external links.
func (r *Resolver) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, common.NewTransportError("build download request", err)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		r.logger.Error("storage.fetch.download_error", "url", rawURL, "error", err)
		return nil, common.NewTransportError("download document", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			r.logger.Warn("storage.fetch.body_close_error", "error", err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, common.NewNotFound(fmt.Sprintf("document not found: %s", rawURL), nil)
	}
	if resp.StatusCode/100 != 2 {
		return nil, common.NewTransportError(fmt.Sprintf("download status %d", resp.StatusCode), nil)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.NewTransportError("read download body", err)
	}
	return content, nil
}
