// Package media downloads post media and moves the bytes to object storage.
package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"
)

// Download is a fetched media file held in memory until upload.
type Download struct {
	URL         string
	Filename    string
	ContentType string
	Data        []byte
	Hash        string
}

// Downloader fetches media bytes with a size cap.
type Downloader struct {
	client  *http.Client
	maxSize int64
	logger  *slog.Logger
}

// NewDownloader creates a media downloader. maxSizeMB bounds a single file.
func NewDownloader(maxSizeMB int64, logger *slog.Logger) *Downloader {
	return &Downloader{
		client:  &http.Client{Timeout: 60 * time.Second},
		maxSize: maxSizeMB * 1024 * 1024,
		logger:  logger.With("component", "media_downloader"),
	}
}

// Fetch downloads one media URL into memory.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (*Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", rawURL, resp.StatusCode)
	}
	if d.maxSize > 0 && resp.ContentLength > d.maxSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", resp.ContentLength, d.maxSize)
	}

	reader := io.Reader(resp.Body)
	if d.maxSize > 0 {
		reader = io.LimitReader(resp.Body, d.maxSize)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}

	contentType := resp.Header.Get("Content-Type")
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	d.logger.Debug("media downloaded", "url", rawURL, "size", len(data), "type", contentType)

	return &Download{
		URL:         rawURL,
		Filename:    filenameFor(rawURL, contentType, hash),
		ContentType: contentType,
		Data:        data,
		Hash:        hash,
	}, nil
}

func filenameFor(rawURL, contentType, hash string) string {
	parsed, err := url.Parse(rawURL)
	if err == nil {
		if name := path.Base(parsed.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	exts, _ := mime.ExtensionsByType(contentType)
	if len(exts) > 0 {
		return hash[:16] + exts[0]
	}
	return hash[:16]
}
