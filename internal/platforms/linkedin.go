package platforms

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/curatist/curatist/internal/browser"
	"github.com/curatist/curatist/internal/collect"
	"github.com/curatist/curatist/internal/pace"
	"github.com/curatist/curatist/internal/types"
)

// linkedinIDPattern matches the activity URN in both raw and URL-encoded
// permalink forms.
var linkedinIDPattern = regexp.MustCompile(`urn(?::|%3A)li(?::|%3A)activity(?::|%3A)(\d+)`)

const linkedinPostSelector = `div.feed-shared-update-v2`

// LinkedIn captures posts as screenshots only. The markup is too obfuscated
// to parse reliably, so every item lands in pending_analysis for a human (or
// downstream tool) to transcribe.
type LinkedIn struct {
	deps *Deps
}

func NewLinkedIn(deps *Deps) *LinkedIn {
	return &LinkedIn{deps: deps}
}

func (l *LinkedIn) Platform() types.Platform { return types.PlatformLinkedIn }

// Analyze is the automatic-parse entry point. There is none; callers get the
// sentinel and route the item to manual review.
func (l *LinkedIn) Analyze(_ context.Context, _ *types.Item) error {
	return types.ErrManualAnalysis
}

func (l *LinkedIn) Crawl(ctx context.Context, opts Options) types.Result {
	logger := l.deps.Logger.With("platform", "linkedin")
	cfg := l.deps.Cfg.Platforms.LinkedIn

	fail := func(stage string, err error) types.Result {
		return types.Fail(types.PlatformLinkedIn, &types.CrawlError{
			Platform: types.PlatformLinkedIn, Stage: stage, Err: err,
		})
	}

	cookies, err := browser.LoadCookies(cfg.CookieFile, cfg.CookieEnv)
	if err != nil {
		return fail("cookies", err)
	}

	session, err := browser.NewSession(l.deps.Cfg.Browser, logger)
	if err != nil {
		return fail("browser", err)
	}
	defer session.Close()

	page, err := session.NewPage(cookies)
	if err != nil {
		return fail("page", err)
	}
	if err := session.Open(page, cfg.FeedURL); err != nil {
		return fail("navigate", err)
	}

	cc := l.deps.Cfg.Collect
	collector := collect.New(cc.MaxCycles, cc.MaxIdle, cc.ScrollStep, cc.SettleMin, cc.SettleMax, logger)
	harvest, err := collector.Run(browser.NewPageFeed(page, browser.FeedRules{
		LinkSelector: `a[href*="/feed/update/"]`,
		PostSelector: linkedinPostSelector,
	}))
	if err != nil {
		return fail("collect", err)
	}
	page.MustClose()

	ids, urls := linkedinPostIDs(harvest.Links)
	logger.Info("feed collected", "links", len(harvest.Links), "posts", len(ids), "cycles", harvest.Cycles)
	if len(ids) == 0 {
		return types.Ok(types.PlatformLinkedIn, 0)
	}

	existing, err := l.deps.Store.ExistingIDs(ctx, types.PlatformLinkedIn, ids)
	if err != nil {
		return fail("dedupe", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = cfg.Limit
	}
	pacer := pace.NewPacer(cfg.DelayMin, cfg.DelayMax)

	var items []*types.Item
	for _, id := range ids {
		if existing[id] {
			continue
		}
		if len(items) >= limit {
			break
		}
		item, err := l.capturePost(ctx, session, cookies, id, urls[id])
		if err != nil {
			logger.Warn("post capture failed", "post_id", id, "error", err)
			continue
		}
		items = append(items, item)
		pacer.Wait()
	}

	count, err := l.deps.Reconciler.UpsertPlain(ctx, items)
	if err != nil {
		return fail("reconcile", err)
	}

	logger.Info("linkedin crawled", "captured", len(items), "new", count)
	return types.Ok(types.PlatformLinkedIn, count)
}

// capturePost opens one post permalink and stores its screenshot. No text is
// extracted; the row goes straight to pending_analysis.
func (l *LinkedIn) capturePost(ctx context.Context, session *browser.Session, cookies []*proto.NetworkCookieParam, postID, postURL string) (*types.Item, error) {
	page, err := session.NewPage(cookies)
	if err != nil {
		return nil, err
	}
	defer page.MustClose()

	if err := session.Open(page, postURL); err != nil {
		return nil, err
	}
	time.Sleep(time.Second)

	shot, err := l.elementScreenshot(page)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("linkedin/%s/screenshot.png", postID)
	url, err := l.deps.Uploader.Upload(ctx, shot, path, "image/png")
	if err != nil {
		return nil, err
	}

	item := types.NewItem(types.PlatformLinkedIn, postID)
	item.URL = postURL
	item.ScreenshotURL = url
	item.Status = types.StatusPendingAnalysis
	return item, nil
}

func (l *LinkedIn) elementScreenshot(page *rod.Page) ([]byte, error) {
	el, err := page.Timeout(5 * time.Second).Element(linkedinPostSelector)
	if err != nil {
		// Fall back to a viewport shot when the update container is not
		// found; better a coarse capture than none.
		return page.Screenshot(false, nil)
	}
	return el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}

func linkedinPostIDs(links []collect.Link) ([]string, map[string]string) {
	seen := map[string]struct{}{}
	var ids []string
	urls := map[string]string{}
	for _, l := range links {
		m := linkedinIDPattern.FindStringSubmatch(l.Href)
		if m == nil {
			continue
		}
		id := m[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		urls[id] = "https://www.linkedin.com/feed/update/urn:li:activity:" + id + "/"
	}
	return ids, urls
}
