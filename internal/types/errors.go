package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrNotConfigured    = errors.New("platform is not configured")
	ErrNoValidCookies   = errors.New("no valid session cookies")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrManualAnalysis   = errors.New("platform requires manual analysis")
	ErrInvalidStatus    = errors.New("invalid status transition")
)

// CrawlError wraps a failure of one platform's crawl cycle.
type CrawlError struct {
	Platform Platform
	Stage    string // cookies, navigate, collect, detail, reconcile
	Err      error
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl %s (%s): %v", e.Platform, e.Stage, e.Err)
}

func (e *CrawlError) Unwrap() error { return e.Err }

// StoreError wraps a persistence failure. These abort the batch they belong
// to and are never retried by the core.
type StoreError struct {
	Op  string // upsert, fetch, delete
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// DetailError marks best-effort detail resolution failures for a single
// post. The batch continues; the item keeps partial fields.
type DetailError struct {
	URL string
	Err error
}

func (e *DetailError) Error() string {
	return fmt.Sprintf("post detail %s: %v", e.URL, e.Err)
}

func (e *DetailError) Unwrap() error { return e.Err }
