package detail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/curatist/curatist/internal/browser"
	"github.com/curatist/curatist/internal/media"
	"github.com/curatist/curatist/internal/types"
)

// Selectors are the platform-specific hooks the resolver needs; everything
// else about the algorithm is shared between X and Threads.
type Selectors struct {
	ContentColumn string // the post's main content column
	MetricsRow    string // the engagement metrics element
	MediaImage    string // media images inside the post
	AnchorScope   string // scope for external link anchors
}

// XSelectors returns the hooks for x.com post pages.
func XSelectors() Selectors {
	return Selectors{
		ContentColumn: `article[data-testid="tweet"]`,
		MetricsRow:    `div[role="group"]`,
		MediaImage:    `article[data-testid="tweet"] img[src*="media"]`,
		AnchorScope:   `article[data-testid="tweet"] a[href]`,
	}
}

// ThreadsSelectors returns the hooks for threads.net post pages.
func ThreadsSelectors() Selectors {
	return Selectors{
		ContentColumn: `div[data-pressable-container="true"]`,
		MetricsRow:    `div[data-pressable-container="true"] div[role="button"]`,
		MediaImage:    `div[data-pressable-container="true"] picture img`,
		AnchorScope:   `div[data-pressable-container="true"] a[href]`,
	}
}

// Detail is the best-effort structured result for one post.
type Detail struct {
	Content        string
	Metrics        map[string]int64
	ScreenshotURL  string
	ScreenshotURLs []string
	MediaURLs      []string
	ExternalLinks  []string
	HasVideo       bool
	VideoURL       string
	YouTube        *YouTubeRef
	Err            error
}

// Resolver obtains per-post detail by combining DOM inspection with network
// response interception.
type Resolver struct {
	session    *browser.Session
	selectors  Selectors
	platform   types.Platform
	detectYT   bool // YouTube-link detection chain; X only
	downloader *media.Downloader
	uploader   media.Uploader
	logger     *slog.Logger
}

// NewResolver creates a post detail resolver for one platform.
func NewResolver(session *browser.Session, platform types.Platform, selectors Selectors, detectYouTube bool, dl *media.Downloader, up media.Uploader, logger *slog.Logger) *Resolver {
	return &Resolver{
		session:    session,
		selectors:  selectors,
		platform:   platform,
		detectYT:   detectYouTube,
		downloader: dl,
		uploader:   up,
		logger:     logger.With("component", "detail_resolver", "platform", platform),
	}
}

// Resolve loads one post page and extracts its detail. A DOM-extraction
// failure yields an empty-but-valid Detail carrying the error rather than
// aborting the caller's batch; media download failures only drop the
// corresponding URL field.
func (r *Resolver) Resolve(ctx context.Context, page *rod.Page, postURL, postID string) *Detail {
	out := &Detail{}

	interceptor := NewInterceptor(page)
	defer interceptor.Stop()

	if err := r.session.Open(page, postURL); err != nil {
		out.Err = &types.DetailError{URL: postURL, Err: err}
		return out
	}

	// Let late API responses land before reading them.
	time.Sleep(1500 * time.Millisecond)

	content, anchors, imgs, err := r.extractDOM(page)
	if err != nil {
		r.logger.Warn("dom extraction failed", "url", postURL, "error", err)
		out.Err = &types.DetailError{URL: postURL, Err: err}
		return out
	}
	out.Content = content
	out.ExternalLinks = externalLinks(anchors, postURL)

	if label, err := r.metricsLabel(page); err == nil {
		out.Metrics = ParseMetrics(label)
	}

	r.captureScreenshots(ctx, page, postID, out)
	r.resolveMedia(ctx, postID, imgs, out)
	r.resolveVideo(ctx, interceptor, postID, out)

	if r.detectYT {
		out.YouTube = DetectYouTube(anchors, content)
		if out.YouTube == nil {
			out.YouTube = FromIntercepted(interceptor.Bodies(), postID)
		}
	}

	return out
}

// extractDOM reads the post's text, anchors and media image URLs.
func (r *Resolver) extractDOM(page *rod.Page) (string, []Anchor, []string, error) {
	res, err := page.Eval(`(contentSel, anchorSel, imgSel) => {
		const root = document.querySelector(contentSel);
		const anchors = Array.from(document.querySelectorAll(anchorSel)).map(a => ({
			href: a.href || '',
			text: (a.innerText || '').trim(),
		}));
		const imgs = Array.from(document.querySelectorAll(imgSel)).map(i => i.src || '');
		return {
			content: root ? (root.innerText || '').trim() : '',
			anchors: anchors,
			imgs: imgs,
		};
	}`, r.selectors.ContentColumn, r.selectors.AnchorScope, r.selectors.MediaImage)
	if err != nil {
		return "", nil, nil, fmt.Errorf("evaluate post dom: %w", err)
	}

	content := res.Value.Get("content").Str()
	var anchors []Anchor
	for _, v := range res.Value.Get("anchors").Arr() {
		anchors = append(anchors, Anchor{Href: v.Get("href").Str(), Text: v.Get("text").Str()})
	}
	var imgs []string
	for _, v := range res.Value.Get("imgs").Arr() {
		if s := v.Str(); s != "" {
			imgs = append(imgs, s)
		}
	}
	return content, anchors, imgs, nil
}

func (r *Resolver) metricsLabel(page *rod.Page) (string, error) {
	el, err := page.Timeout(3 * time.Second).Element(r.selectors.MetricsRow)
	if err != nil {
		return "", err
	}
	if label, err := el.Attribute("aria-label"); err == nil && label != nil && *label != "" {
		return *label, nil
	}
	return el.Text()
}

// captureScreenshots crops the content column repeatedly until the metrics
// row sits fully inside the viewport, keeping every attempt (the last one is
// the canonical screenshot).
func (r *Resolver) captureScreenshots(ctx context.Context, page *rod.Page, postID string, out *Detail) {
	opts := browser.DefaultInViewOptions()

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		shot, err := r.elementScreenshot(page)
		if err != nil {
			r.logger.Debug("screenshot attempt failed", "attempt", attempt, "error", err)
			break
		}

		path := fmt.Sprintf("%s/%s/screenshot-%d.png", r.platform, postID, attempt)
		if url, err := r.uploader.Upload(ctx, shot, path, "image/png"); err == nil {
			out.ScreenshotURLs = append(out.ScreenshotURLs, url)
			out.ScreenshotURL = url
		}

		visible, err := browser.WaitElementInView(page, r.selectors.MetricsRow, browser.InViewOptions{
			MaxAttempts: 1,
			ScrollStep:  opts.ScrollStep,
		})
		if err == nil && visible {
			break
		}
	}
}

func (r *Resolver) elementScreenshot(page *rod.Page) ([]byte, error) {
	el, err := page.Timeout(3 * time.Second).Element(r.selectors.ContentColumn)
	if err != nil {
		return nil, err
	}
	return el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}

// resolveMedia downloads post images and re-homes them in object storage.
func (r *Resolver) resolveMedia(ctx context.Context, postID string, imgs []string, out *Detail) {
	for i, src := range imgs {
		dl, err := r.downloader.Fetch(ctx, src)
		if err != nil {
			r.logger.Warn("media download failed", "url", src, "error", err)
			continue
		}
		path := fmt.Sprintf("%s/%s/media-%d-%s", r.platform, postID, i, dl.Filename)
		url, err := r.uploader.Upload(ctx, dl.Data, path, dl.ContentType)
		if err != nil {
			r.logger.Warn("media upload failed", "url", src, "error", err)
			continue
		}
		out.MediaURLs = append(out.MediaURLs, url)
	}
}

// resolveVideo picks the best intercepted video encoding for this post and
// stores its bytes.
func (r *Resolver) resolveVideo(ctx context.Context, in *Interceptor, postID string, out *Detail) {
	candidates := in.VideoCandidatesForPost(postID)
	if len(candidates) == 0 {
		return
	}
	out.HasVideo = true

	src := SelectVideoURL(candidates)
	dl, err := r.downloader.Fetch(ctx, src)
	if err != nil {
		r.logger.Warn("video download failed", "url", src, "error", err)
		out.VideoURL = src
		return
	}
	path := fmt.Sprintf("%s/%s/video-%s", r.platform, postID, dl.Filename)
	url, err := r.uploader.Upload(ctx, dl.Data, path, dl.ContentType)
	if err != nil {
		r.logger.Warn("video upload failed", "url", src, "error", err)
		out.VideoURL = src
		return
	}
	out.VideoURL = url
}

// externalLinks filters anchors down to off-platform destinations.
func externalLinks(anchors []Anchor, postURL string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range anchors {
		href := a.Href
		if href == "" || !strings.HasPrefix(href, "http") {
			continue
		}
		if sameSite(href, postURL) {
			continue
		}
		if _, ok := seen[href]; ok {
			continue
		}
		seen[href] = struct{}{}
		out = append(out, href)
	}
	return out
}

func sameSite(href, postURL string) bool {
	host := func(u string) string {
		u = strings.TrimPrefix(u, "https://")
		u = strings.TrimPrefix(u, "http://")
		if i := strings.IndexByte(u, '/'); i >= 0 {
			u = u[:i]
		}
		return strings.TrimPrefix(u, "www.")
	}
	return host(href) == host(postURL)
}
