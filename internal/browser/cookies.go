package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/curatist/curatist/internal/types"
)

// Cookie is the capture format produced by browser cookie exporters: one
// JSON object per cookie, expiry as a unix-seconds float.
type Cookie struct {
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Domain         string  `json:"domain"`
	Path           string  `json:"path"`
	SameSite       string  `json:"sameSite"`
	Secure         bool    `json:"secure"`
	HTTPOnly       bool    `json:"httpOnly"`
	ExpirationDate float64 `json:"expirationDate"`
}

// LoadCookies reads a session cookie set from a file, falling back to an
// environment variable, and filters out expired entries. A set that is empty
// after filtering is a hard "not authenticated" condition: the return is
// (nil, ErrNoValidCookies), never an empty-but-usable slice.
func LoadCookies(file, envVar string) ([]*proto.NetworkCookieParam, error) {
	raw, err := readCookieSource(file, envVar)
	if err != nil {
		return nil, err
	}

	var cookies []Cookie
	if err := json.Unmarshal(raw, &cookies); err != nil {
		return nil, fmt.Errorf("parse cookies: %w", err)
	}

	now := float64(time.Now().Unix())
	var params []*proto.NetworkCookieParam
	for _, c := range cookies {
		if c.ExpirationDate > 0 && c.ExpirationDate <= now {
			continue
		}
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: sameSite(c.SameSite),
			Expires:  proto.TimeSinceEpoch(c.ExpirationDate),
		})
	}

	if len(params) == 0 {
		return nil, types.ErrNoValidCookies
	}
	return params, nil
}

func readCookieSource(file, envVar string) ([]byte, error) {
	if file != "" {
		if raw, err := os.ReadFile(file); err == nil {
			return raw, nil
		}
	}
	if envVar != "" {
		if v := os.Getenv(envVar); v != "" {
			return []byte(v), nil
		}
	}
	return nil, fmt.Errorf("%w: no cookie file or env var", types.ErrNotConfigured)
}

func sameSite(s string) proto.NetworkCookieSameSite {
	switch s {
	case "strict", "Strict":
		return proto.NetworkCookieSameSiteStrict
	case "none", "None", "no_restriction":
		return proto.NetworkCookieSameSiteNone
	default:
		return proto.NetworkCookieSameSiteLax
	}
}
