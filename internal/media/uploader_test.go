package media

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/curatist/curatist/internal/config"
)

func TestLocalUploaderWritesAndBuildsURL(t *testing.T) {
	dir := t.TempDir()
	u := &LocalUploader{Dir: dir, BaseURL: "/static/media/", logger: slog.Default()}

	url, err := u.Upload(context.Background(), []byte("png-bytes"), "x/123/screenshot-0.png", "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "/static/media/x/123/screenshot-0.png" {
		t.Errorf("url: %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "x", "123", "screenshot-0.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Error("content mismatch")
	}
}

func TestBucketUploader(t *testing.T) {
	var gotPath, gotAuth, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u := NewUploader(config.MediaConfig{
		Backend:    "bucket",
		Endpoint:   srv.URL,
		Bucket:     "media",
		Token:      "tok",
		PublicBase: "https://cdn.example/media",
	}, slog.Default())

	url, err := u.Upload(context.Background(), []byte("data"), "reddit/abc/thumb.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if gotPath != "/object/media/reddit/abc/thumb.jpg" {
		t.Errorf("path: %q", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("auth: %q", gotAuth)
	}
	if gotType != "image/jpeg" {
		t.Errorf("content type: %q", gotType)
	}
	if url != "https://cdn.example/media/reddit/abc/thumb.jpg" {
		t.Errorf("public url: %q", url)
	}
}

func TestFallbackUploaderDegradesToLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	u := &FallbackUploader{
		primary: &BucketUploader{
			Endpoint: srv.URL, Bucket: "media", PublicBase: "https://cdn.example",
			client: http.DefaultClient, logger: slog.Default(),
		},
		fallback: &LocalUploader{Dir: dir, BaseURL: "/static", logger: slog.Default()},
		logger:   slog.Default(),
	}

	url, err := u.Upload(context.Background(), []byte("x"), "p/f.png", "image/png")
	if err != nil {
		t.Fatalf("fallback must absorb the remote failure: %v", err)
	}
	if url != "/static/p/f.png" {
		t.Errorf("url: %q", url)
	}
	if _, err := os.Stat(filepath.Join(dir, "p", "f.png")); err != nil {
		t.Errorf("file not written locally: %v", err)
	}
}
