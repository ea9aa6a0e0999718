package platforms

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/curatist/curatist/internal/browser"
	"github.com/curatist/curatist/internal/collect"
	"github.com/curatist/curatist/internal/config"
	"github.com/curatist/curatist/internal/detail"
	"github.com/curatist/curatist/internal/pace"
	"github.com/curatist/curatist/internal/types"
)

// feedCrawler is the shared machinery behind the cookie-authenticated feed
// platforms. One browser session per run; posts are resolved sequentially
// with randomized pacing between them.
type feedCrawler struct {
	deps      *Deps
	platform  types.Platform
	cfg       config.FeedConfig
	rules     browser.FeedRules
	selectors detail.Selectors
	detectYT  bool
	idPattern *regexp.Regexp
	baseURL   string
}

func (f *feedCrawler) fail(stage string, err error) types.Result {
	return types.Fail(f.platform, &types.CrawlError{Platform: f.platform, Stage: stage, Err: err})
}

func (f *feedCrawler) crawl(ctx context.Context, opts Options) types.Result {
	logger := f.deps.Logger.With("platform", string(f.platform))

	cookies, err := browser.LoadCookies(f.cfg.CookieFile, f.cfg.CookieEnv)
	if err != nil {
		return f.fail("cookies", err)
	}

	session, err := browser.NewSession(f.deps.Cfg.Browser, logger)
	if err != nil {
		return f.fail("browser", err)
	}
	defer session.Close()

	page, err := session.NewPage(cookies)
	if err != nil {
		return f.fail("page", err)
	}
	if err := session.Open(page, f.cfg.FeedURL); err != nil {
		return f.fail("navigate", err)
	}

	cc := f.deps.Cfg.Collect
	collector := collect.New(cc.MaxCycles, cc.MaxIdle, cc.ScrollStep, cc.SettleMin, cc.SettleMax, logger)
	harvest, err := collector.Run(browser.NewPageFeed(page, f.rules))
	if err != nil {
		return f.fail("collect", err)
	}
	page.MustClose()

	f.uploadFeedShot(ctx, harvest.Screenshot, logger)

	postIDs, postURLs := f.extractPostIDs(harvest.Links)
	logger.Info("feed collected",
		"links", len(harvest.Links), "posts", len(postIDs), "cycles", harvest.Cycles)
	if len(postIDs) == 0 {
		return types.Ok(f.platform, 0)
	}

	existing, err := f.deps.Store.ExistingIDs(ctx, f.platform, postIDs)
	if err != nil {
		return f.fail("dedupe", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = f.cfg.Limit
	}

	resolver := detail.NewResolver(session, f.platform, f.selectors, f.detectYT,
		f.deps.Downloader, f.deps.Uploader, logger)
	pacer := pace.NewPacer(f.cfg.DelayMin, f.cfg.DelayMax)

	var items []*types.Item
	for _, id := range postIDs {
		if existing[id] {
			continue
		}
		if len(items) >= limit {
			break
		}
		item, err := f.resolvePost(ctx, session, resolver, cookies, id, postURLs[id])
		if err != nil {
			logger.Warn("post resolve failed", "post_id", id, "error", err)
			continue
		}
		items = append(items, item)
		pacer.Wait()
	}

	count, err := f.deps.Reconciler.UpsertPlain(ctx, items)
	if err != nil {
		return f.fail("reconcile", err)
	}
	f.deps.enrichBatch(ctx, items)

	logger.Info("feed crawled", "resolved", len(items), "new", count)
	return types.Ok(f.platform, count)
}

func (f *feedCrawler) resolvePost(ctx context.Context, session *browser.Session, resolver *detail.Resolver, cookies []*proto.NetworkCookieParam, postID, postURL string) (*types.Item, error) {
	page, err := session.NewPage(cookies)
	if err != nil {
		return nil, err
	}
	defer page.MustClose()

	d := resolver.Resolve(ctx, page, postURL, postID)

	item := types.NewItem(f.platform, postID)
	item.URL = postURL
	item.ContentText = d.Content
	item.ScreenshotURL = d.ScreenshotURL
	item.MediaURLs = d.MediaURLs
	item.Author = f.authorFromURL(postURL)
	if len(d.Metrics) > 0 {
		metrics := make(map[string]any, len(d.Metrics))
		for k, v := range d.Metrics {
			metrics[k] = v
		}
		item.SetRaw("metrics", metrics)
	}
	if len(d.ScreenshotURLs) > 1 {
		item.SetRaw("screenshot_urls", d.ScreenshotURLs)
	}
	if len(d.ExternalLinks) > 0 {
		item.SetRaw("external_links", d.ExternalLinks)
	}
	if d.HasVideo {
		item.SetRaw("has_video", true)
		if d.VideoURL != "" {
			item.SetRaw("video_url", d.VideoURL)
		}
	}
	if d.YouTube != nil {
		item.SetRaw("youtube_url", d.YouTube.URL)
		item.SetRaw("youtube_video_id", d.YouTube.VideoID)
		item.SetRaw("youtube_embed_url", d.YouTube.EmbedURL)
	}
	if d.Err != nil {
		// A failed DOM read still yields a row; the screenshot, when
		// present, carries the content for manual review.
		f.deps.Logger.Warn("detail degraded", "post_id", postID, "error", d.Err)
	}
	return item, nil
}

// extractPostIDs pulls post ids out of harvested hrefs, preserving the feed
// order with the first occurrence winning.
func (f *feedCrawler) extractPostIDs(links []collect.Link) ([]string, map[string]string) {
	seen := map[string]struct{}{}
	var ids []string
	urls := map[string]string{}
	for _, l := range links {
		m := f.idPattern.FindStringSubmatch(l.Href)
		if m == nil {
			continue
		}
		id := m[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		urls[id] = f.absoluteURL(l.Href)
	}
	return ids, urls
}

func (f *feedCrawler) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return f.baseURL + href
}

// authorFromURL derives the author handle from a post permalink. Both X and
// Threads keep the handle as the first path segment.
func (f *feedCrawler) authorFromURL(postURL string) types.Author {
	trimmed := strings.TrimPrefix(postURL, f.baseURL)
	trimmed = strings.TrimPrefix(trimmed, "/")
	seg, _, _ := strings.Cut(trimmed, "/")
	if seg == "" {
		return types.Author{}
	}
	return types.Author{
		Name: strings.TrimPrefix(seg, "@"),
		URL:  f.baseURL + "/" + seg,
	}
}

func (f *feedCrawler) uploadFeedShot(ctx context.Context, shot []byte, logger *slog.Logger) {
	if len(shot) == 0 || f.deps.Uploader == nil {
		return
	}
	path := fmt.Sprintf("%s/feed/%s.png", f.platform, time.Now().UTC().Format("2006-01-02T15-04-05"))
	url, err := f.deps.Uploader.Upload(ctx, shot, path, "image/png")
	if err != nil {
		logger.Warn("feed screenshot upload failed", "error", err)
		return
	}
	logger.Debug("feed screenshot stored", "url", url)
}
