package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/curatist/curatist/internal/types"
)

func writeCookieFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCookiesFiltersExpired(t *testing.T) {
	future := float64(time.Now().Add(24 * time.Hour).Unix())
	past := float64(time.Now().Add(-24 * time.Hour).Unix())

	path := writeCookieFile(t, fmt.Sprintf(`[
		{"name":"auth","value":"v1","domain":".x.com","path":"/","sameSite":"lax","secure":true,"httpOnly":true,"expirationDate":%f},
		{"name":"stale","value":"v2","domain":".x.com","path":"/","expirationDate":%f},
		{"name":"session","value":"v3","domain":".x.com","path":"/"}
	]`, future, past))

	cookies, err := LoadCookies(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cookies) != 2 {
		t.Fatalf("expected 2 live cookies, got %d", len(cookies))
	}
	// Session cookies (no expiry) must survive the filter.
	names := map[string]bool{}
	for _, c := range cookies {
		names[c.Name] = true
	}
	if !names["auth"] || !names["session"] || names["stale"] {
		t.Errorf("wrong cookies survived: %v", names)
	}
}

func TestLoadCookiesAllExpired(t *testing.T) {
	past := float64(time.Now().Add(-time.Hour).Unix())
	path := writeCookieFile(t, fmt.Sprintf(`[
		{"name":"a","value":"1","domain":".x.com","expirationDate":%f},
		{"name":"b","value":"2","domain":".x.com","expirationDate":%f}
	]`, past, past))

	cookies, err := LoadCookies(path, "")
	if !errors.Is(err, types.ErrNoValidCookies) {
		t.Fatalf("expected ErrNoValidCookies, got %v", err)
	}
	if cookies != nil {
		t.Error("an all-expired set must return nil, not an empty slice")
	}
}

func TestLoadCookiesEnvFallback(t *testing.T) {
	future := float64(time.Now().Add(time.Hour).Unix())
	t.Setenv("TEST_COOKIES", fmt.Sprintf(`[{"name":"a","value":"1","domain":".x.com","expirationDate":%f}]`, future))

	cookies, err := LoadCookies(filepath.Join(t.TempDir(), "missing.json"), "TEST_COOKIES")
	if err != nil {
		t.Fatalf("env fallback failed: %v", err)
	}
	if len(cookies) != 1 || cookies[0].Name != "a" {
		t.Errorf("unexpected cookies: %+v", cookies)
	}
}

func TestLoadCookiesNoSource(t *testing.T) {
	_, err := LoadCookies("", "UNSET_COOKIE_VAR")
	if !errors.Is(err, types.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestLoadCookiesBadJSON(t *testing.T) {
	path := writeCookieFile(t, "not json")
	if _, err := LoadCookies(path, ""); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestSameSiteMapping(t *testing.T) {
	cases := map[string]proto.NetworkCookieSameSite{
		"strict":         proto.NetworkCookieSameSiteStrict,
		"Strict":         proto.NetworkCookieSameSiteStrict,
		"none":           proto.NetworkCookieSameSiteNone,
		"no_restriction": proto.NetworkCookieSameSiteNone,
		"lax":            proto.NetworkCookieSameSiteLax,
		"":               proto.NetworkCookieSameSiteLax,
	}
	for in, want := range cases {
		if got := sameSite(in); got != want {
			t.Errorf("sameSite(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestBoxWithinViewport(t *testing.T) {
	cases := []struct {
		name string
		box  proto.DOMRect
		h    float64
		want bool
	}{
		{"fully inside", proto.DOMRect{Y: 100, Height: 300}, 900, true},
		{"top clipped", proto.DOMRect{Y: -10, Height: 300}, 900, false},
		{"bottom clipped", proto.DOMRect{Y: 700, Height: 300}, 900, false},
		{"exact fit", proto.DOMRect{Y: 0, Height: 900}, 900, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BoxWithinViewport(&tc.box, tc.h); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
