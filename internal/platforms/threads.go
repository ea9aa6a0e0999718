package platforms

import (
	"context"
	"regexp"

	"github.com/curatist/curatist/internal/browser"
	"github.com/curatist/curatist/internal/detail"
	"github.com/curatist/curatist/internal/types"
)

var threadsPostIDPattern = regexp.MustCompile(`/post/([A-Za-z0-9_-]+)`)

// Threads crawls the authenticated home feed.
type Threads struct {
	crawler *feedCrawler
}

func NewThreads(deps *Deps) *Threads {
	return &Threads{crawler: &feedCrawler{
		deps:     deps,
		platform: types.PlatformThreads,
		cfg:      deps.Cfg.Platforms.Threads,
		rules: browser.FeedRules{
			LinkSelector: `a[href*="/post/"]`,
			PostSelector: `div[data-pressable-container="true"]`,
		},
		selectors: detail.ThreadsSelectors(),
		idPattern: threadsPostIDPattern,
		baseURL:   "https://www.threads.net",
	}}
}

func (t *Threads) Platform() types.Platform { return types.PlatformThreads }

func (t *Threads) Crawl(ctx context.Context, opts Options) types.Result {
	return t.crawler.crawl(ctx, opts)
}
