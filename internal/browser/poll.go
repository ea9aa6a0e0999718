package browser

import (
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// InViewOptions bounds the poll-scroll loop of WaitElementInView.
type InViewOptions struct {
	MaxAttempts int // capture/check attempts before giving up
	ScrollStep  int // pixels scrolled between attempts
}

// DefaultInViewOptions matches the screenshot-retry behavior of the post
// detail resolvers.
func DefaultInViewOptions() InViewOptions {
	return InViewOptions{MaxAttempts: 8, ScrollStep: 400}
}

// WaitElementInView repeatedly checks whether the element matched by selector
// has its bounding box fully inside the viewport, scrolling down a fixed step
// between attempts. Returns true as soon as the element is fully visible,
// false when attempts run out or the element never appears. The element's
// vertical position depends on post length and media, so a fixed scroll
// offset cannot be assumed; only the selector varies per platform.
func WaitElementInView(page *rod.Page, selector string, opts InViewOptions) (bool, error) {
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		visible, err := elementInViewport(page, selector)
		if err == nil && visible {
			return true, nil
		}

		if _, err := page.Eval(`(px) => window.scrollBy(0, px)`, opts.ScrollStep); err != nil {
			return false, err
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false, nil
}

// elementInViewport checks the element's content box against the viewport.
func elementInViewport(page *rod.Page, selector string) (bool, error) {
	el, err := page.Timeout(2 * time.Second).Element(selector)
	if err != nil {
		return false, err
	}
	shape, err := el.Shape()
	if err != nil {
		return false, err
	}
	box := shape.Box()
	if box == nil {
		return false, nil
	}

	res, err := page.Eval(`() => window.innerHeight`)
	if err != nil {
		return false, err
	}
	viewportH := float64(res.Value.Int())

	return BoxWithinViewport(box, viewportH), nil
}

// BoxWithinViewport reports whether the box lies fully within a viewport of
// the given height. Quad coordinates are viewport-relative.
func BoxWithinViewport(box *proto.DOMRect, viewportHeight float64) bool {
	return box.Y >= 0 && box.Y+box.Height <= viewportHeight
}
