// Package browser owns the headless-browser lifecycle: one launched Chromium
// per extractor invocation, stealth-patched pages, session cookies, and the
// low-level page primitives the collect and detail layers build on.
package browser

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/curatist/curatist/internal/config"
)

// Session is a single launched browser. Not pooled or shared across
// platforms; callers create one per crawl and Close it in a deferred path.
type Session struct {
	browser *rod.Browser
	cfg     config.BrowserConfig
	logger  *slog.Logger
}

// NewSession launches Chromium and connects to it.
func NewSession(cfg config.BrowserConfig, logger *slog.Logger) (*Session, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	if cfg.UserDataDir != "" {
		l = l.UserDataDir(cfg.UserDataDir)
	}
	if cfg.WindowSize != "" {
		l = l.Set("window-size", cfg.WindowSize)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	logger.Debug("browser session ready", "headless", cfg.Headless)

	return &Session{
		browser: browser,
		cfg:     cfg,
		logger:  logger.With("component", "browser_session"),
	}, nil
}

// NewPage opens a stealth-patched page with the given session cookies.
func (s *Session) NewPage(cookies []*proto.NetworkCookieParam) (*rod.Page, error) {
	page, err := stealth.Page(s.browser)
	if err != nil {
		return nil, fmt.Errorf("stealth page: %w", err)
	}
	if len(cookies) > 0 {
		if err := page.SetCookies(cookies); err != nil {
			return nil, fmt.Errorf("set cookies: %w", err)
		}
	}
	return page, nil
}

// Open navigates the page and waits for it to settle, bounded by the
// configured navigation timeout.
func (s *Session) Open(page *rod.Page, url string) error {
	if err := page.Timeout(s.cfg.NavTimeout).Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.Timeout(s.cfg.NavTimeout).WaitStable(500 * time.Millisecond); err != nil {
		s.logger.Warn("page stability timeout, continuing", "url", url, "error", err)
	}
	return nil
}

// NavTimeout exposes the configured navigation timeout.
func (s *Session) NavTimeout() time.Duration { return s.cfg.NavTimeout }

// Close force-closes the browser. Safe to defer even after launch errors.
func (s *Session) Close() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.logger.Warn("browser close failed", "error", err)
		}
	}
}
