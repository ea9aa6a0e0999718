package browser

import (
	"fmt"

	"github.com/go-rod/rod"

	"github.com/curatist/curatist/internal/collect"
)

// FeedRules are the platform-specific selectors for harvesting a feed page.
type FeedRules struct {
	LinkSelector string // anchors to collect, e.g. `a[href*="/status/"]`
	PostSelector string // post containers, e.g. `article`
}

// PageFeed adapts a rod page to the collector's Feed surface.
type PageFeed struct {
	page  *rod.Page
	rules FeedRules
}

// NewPageFeed wraps a loaded feed page with harvest rules.
func NewPageFeed(page *rod.Page, rules FeedRules) *PageFeed {
	return &PageFeed{page: page, rules: rules}
}

func (f *PageFeed) Links() ([]collect.Link, error) {
	res, err := f.page.Eval(`(sel) => Array.from(document.querySelectorAll(sel)).map(a => ({
		href: a.href || '',
		text: (a.innerText || '').trim(),
	}))`, f.rules.LinkSelector)
	if err != nil {
		return nil, fmt.Errorf("harvest links: %w", err)
	}

	var links []collect.Link
	for _, v := range res.Value.Arr() {
		links = append(links, collect.Link{
			Href: v.Get("href").Str(),
			Text: v.Get("text").Str(),
		})
	}
	return links, nil
}

func (f *PageFeed) Posts() ([]collect.Post, error) {
	res, err := f.page.Eval(`(sel) => Array.from(document.querySelectorAll(sel)).map(el => {
		const a = el.querySelector('a[href]');
		return { text: (el.innerText || '').trim(), url: a ? a.href : '' };
	})`, f.rules.PostSelector)
	if err != nil {
		return nil, fmt.Errorf("harvest posts: %w", err)
	}

	var posts []collect.Post
	for _, v := range res.Value.Arr() {
		posts = append(posts, collect.Post{
			Text: v.Get("text").Str(),
			URL:  v.Get("url").Str(),
		})
	}
	return posts, nil
}

func (f *PageFeed) ScrollBy(px int) error {
	_, err := f.page.Eval(`(px) => window.scrollBy(0, px)`, px)
	return err
}

func (f *PageFeed) ScrollToTop() error {
	_, err := f.page.Eval(`() => window.scrollTo(0, 0)`)
	return err
}

func (f *PageFeed) Screenshot() ([]byte, error) {
	return f.page.Screenshot(false, nil)
}
