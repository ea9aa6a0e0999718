package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/curatist/curatist/internal/config"
)

// Uploader stores bytes at a path and returns a public URL. Implementations
// never panic; callers fall back (to the next backend, or skip the URL field)
// on error.
type Uploader interface {
	Upload(ctx context.Context, data []byte, storagePath, contentType string) (string, error)
	Name() string
}

// NewUploader builds the configured backend with a local-disk fallback
// chained behind the remote ones.
func NewUploader(cfg config.MediaConfig, logger *slog.Logger) Uploader {
	local := &LocalUploader{
		Dir:     cfg.LocalDir,
		BaseURL: cfg.LocalBase,
		logger:  logger.With("component", "local_uploader"),
	}

	switch cfg.Backend {
	case "bucket":
		return &FallbackUploader{
			primary: &BucketUploader{
				Endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
				Bucket:     cfg.Bucket,
				Token:      cfg.Token,
				PublicBase: strings.TrimRight(cfg.PublicBase, "/"),
				client:     &http.Client{Timeout: 60 * time.Second},
				logger:     logger.With("component", "bucket_uploader"),
			},
			fallback: local,
			logger:   logger,
		}
	case "cdn":
		return &FallbackUploader{
			primary: &CDNUploader{
				Endpoint: strings.TrimRight(cfg.Endpoint, "/"),
				Token:    cfg.Token,
				client:   &http.Client{Timeout: 60 * time.Second},
				logger:   logger.With("component", "cdn_uploader"),
			},
			fallback: local,
			logger:   logger,
		}
	default:
		return local
	}
}

// BucketUploader PUTs objects into a bucket-style HTTP storage API.
type BucketUploader struct {
	Endpoint   string
	Bucket     string
	Token      string
	PublicBase string
	client     *http.Client
	logger     *slog.Logger
}

func (u *BucketUploader) Name() string { return "bucket" }

func (u *BucketUploader) Upload(ctx context.Context, data []byte, storagePath, contentType string) (string, error) {
	target := fmt.Sprintf("%s/object/%s/%s", u.Endpoint, u.Bucket, strings.TrimLeft(storagePath, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	if u.Token != "" {
		req.Header.Set("Authorization", "Bearer "+u.Token)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("bucket upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("bucket upload: status %d", resp.StatusCode)
	}

	publicURL := fmt.Sprintf("%s/%s", u.PublicBase, strings.TrimLeft(storagePath, "/"))
	u.logger.Debug("uploaded to bucket", "path", storagePath, "size", len(data))
	return publicURL, nil
}

// CDNUploader POSTs a multipart form to a CDN-style ingest endpoint that
// responds with the served URL.
type CDNUploader struct {
	Endpoint string
	Token    string
	client   *http.Client
	logger   *slog.Logger
}

func (u *CDNUploader) Name() string { return "cdn" }

func (u *CDNUploader) Upload(ctx context.Context, data []byte, storagePath, contentType string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(storagePath))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	_ = w.WriteField("path", storagePath)
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.Endpoint+"/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if u.Token != "" {
		req.Header.Set("Authorization", "Bearer "+u.Token)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("cdn upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("cdn upload: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var result struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.URL == "" {
		return "", fmt.Errorf("cdn upload: unexpected response %q", string(body))
	}

	u.logger.Debug("uploaded to cdn", "path", storagePath, "size", len(data))
	return result.URL, nil
}

// LocalUploader writes files under a directory served statically. The
// degraded-mode backend when object storage is unconfigured.
type LocalUploader struct {
	Dir     string
	BaseURL string
	logger  *slog.Logger
}

func (u *LocalUploader) Name() string { return "local" }

func (u *LocalUploader) Upload(_ context.Context, data []byte, storagePath, _ string) (string, error) {
	full := filepath.Join(u.Dir, filepath.FromSlash(storagePath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("local upload: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("local upload: %w", err)
	}
	u.logger.Debug("stored locally", "path", full, "size", len(data))
	return strings.TrimRight(u.BaseURL, "/") + "/" + strings.TrimLeft(storagePath, "/"), nil
}

// FallbackUploader tries the remote backend first and falls back to local
// disk. Uploads degrade rather than failing the crawl.
type FallbackUploader struct {
	primary  Uploader
	fallback Uploader
	logger   *slog.Logger
}

func (u *FallbackUploader) Name() string { return u.primary.Name() + "+local" }

func (u *FallbackUploader) Upload(ctx context.Context, data []byte, storagePath, contentType string) (string, error) {
	url, err := u.primary.Upload(ctx, data, storagePath, contentType)
	if err == nil {
		return url, nil
	}
	u.logger.Warn("upload fell back to local disk",
		"backend", u.primary.Name(),
		"path", storagePath,
		"error", err,
	)
	return u.fallback.Upload(ctx, data, storagePath, contentType)
}
