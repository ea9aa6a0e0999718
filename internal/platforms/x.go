package platforms

import (
	"context"
	"regexp"

	"github.com/curatist/curatist/internal/browser"
	"github.com/curatist/curatist/internal/detail"
	"github.com/curatist/curatist/internal/types"
)

var xPostIDPattern = regexp.MustCompile(`/status/(\d+)`)

// X crawls the authenticated home timeline. YouTube link detection runs on
// every resolved post.
type X struct {
	crawler *feedCrawler
}

func NewX(deps *Deps) *X {
	return &X{crawler: &feedCrawler{
		deps:     deps,
		platform: types.PlatformX,
		cfg:      deps.Cfg.Platforms.X,
		rules: browser.FeedRules{
			LinkSelector: `a[href*="/status/"]`,
			PostSelector: `article[data-testid="tweet"]`,
		},
		selectors: detail.XSelectors(),
		detectYT:  true,
		idPattern: xPostIDPattern,
		baseURL:   "https://x.com",
	}}
}

func (x *X) Platform() types.Platform { return types.PlatformX }

func (x *X) Crawl(ctx context.Context, opts Options) types.Result {
	return x.crawler.crawl(ctx, opts)
}
