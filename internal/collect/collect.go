// Package collect drives a headless feed page through a bounded scroll loop,
// harvesting distinct post links and fragments from a virtualized UI without
// infinite-looping on feeds that never end.
package collect

import (
	"log/slog"
	"math/rand"
	"time"
)

// Link is a harvested anchor.
type Link struct {
	Href string
	Text string
}

// Post is a harvested post fragment.
type Post struct {
	Text string
	URL  string
}

// Feed is the live page surface the collector scrolls. Implemented over a
// rod page in the browser package and by fakes in tests.
type Feed interface {
	// Links reads all currently visible anchors.
	Links() ([]Link, error)

	// Posts reads all currently visible platform-specific post containers.
	Posts() ([]Post, error)

	// ScrollBy scrolls down by the given number of pixels.
	ScrollBy(px int) error

	// ScrollToTop returns to the top of the feed.
	ScrollToTop() error

	// Screenshot captures the current viewport.
	Screenshot() ([]byte, error)
}

// postKeyLen is the number of leading characters of a post's text used as
// its dedup key.
const postKeyLen = 80

// scrollSubSteps splits each scroll cycle's distance into small increments
// so lazy content gets a chance to mount mid-scroll.
const scrollSubSteps = 4

// Harvest is the deduplicated output of one collector run, in first-seen
// order.
type Harvest struct {
	Links      []Link
	Posts      []Post
	Screenshot []byte
	Cycles     int
}

// Collector runs the scroll-and-harvest loop. The maps it keeps live only
// for a single Run and are discarded afterward.
type Collector struct {
	MaxCycles  int           // hard cap on scroll cycles
	MaxIdle    int           // consecutive zero-new cycles before early exit
	ScrollStep int           // pixels per cycle
	SettleMin  time.Duration // randomized settle delay bounds after a scroll
	SettleMax  time.Duration

	sleep  func(time.Duration)
	rng    *rand.Rand
	logger *slog.Logger
}

// New creates a Collector with the given bounds.
func New(maxCycles, maxIdle, scrollStep int, settleMin, settleMax time.Duration, logger *slog.Logger) *Collector {
	return &Collector{
		MaxCycles:  maxCycles,
		MaxIdle:    maxIdle,
		ScrollStep: scrollStep,
		SettleMin:  settleMin,
		SettleMax:  settleMax,
		sleep:      time.Sleep,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:     logger.With("component", "collector"),
	}
}

// SetSleep replaces the settle-delay sleeper. Tests inject a no-op.
func (c *Collector) SetSleep(fn func(time.Duration)) { c.sleep = fn }

// Run harvests the feed until the cycle cap is reached or the content is
// exhausted (MaxIdle consecutive cycles with no new links and no new posts).
// Once captured, a link or post is never overwritten by a later-seen
// duplicate: earlier renders are less likely to be truncated by lazy-loading.
// A failed harvest counts as zero new items for that cycle rather than
// aborting the run; virtualized feeds occasionally render transiently-empty
// frames.
func (c *Collector) Run(feed Feed) (*Harvest, error) {
	seenLinks := make(map[string]struct{})
	seenPosts := make(map[string]struct{})
	out := &Harvest{}

	// Initial harvest before any scrolling.
	c.harvest(feed, seenLinks, seenPosts, out)

	idle := 0
	cycle := 0
	for cycle < c.MaxCycles {
		cycle++

		c.scrollCycle(feed)
		c.sleep(c.settleDelay())

		newLinks, newPosts := c.harvest(feed, seenLinks, seenPosts, out)

		c.logger.Debug("scroll cycle",
			"cycle", cycle,
			"new_links", newLinks,
			"new_posts", newPosts,
			"total_links", len(out.Links),
			"total_posts", len(out.Posts),
		)

		if newLinks == 0 && newPosts == 0 {
			idle++
			if idle >= c.MaxIdle {
				c.logger.Debug("content exhausted", "cycle", cycle)
				break
			}
		} else {
			idle = 0
		}
	}
	out.Cycles = cycle

	if err := feed.ScrollToTop(); err != nil {
		c.logger.Warn("scroll to top failed", "error", err)
	}
	shot, err := feed.Screenshot()
	if err != nil {
		c.logger.Warn("feed screenshot failed", "error", err)
	} else {
		out.Screenshot = shot
	}

	return out, nil
}

// harvest reads the currently visible links and posts into the run's dedup
// maps. Insertion is idempotent and first-seen wins. Returns the number of
// new entries of each kind.
func (c *Collector) harvest(feed Feed, seenLinks, seenPosts map[string]struct{}, out *Harvest) (int, int) {
	var newLinks, newPosts int

	links, err := feed.Links()
	if err != nil {
		c.logger.Debug("link harvest failed, skipping cycle", "error", err)
	} else {
		for _, l := range links {
			if l.Href == "" {
				continue
			}
			if _, ok := seenLinks[l.Href]; ok {
				continue
			}
			seenLinks[l.Href] = struct{}{}
			out.Links = append(out.Links, l)
			newLinks++
		}
	}

	posts, err := feed.Posts()
	if err != nil {
		c.logger.Debug("post harvest failed, skipping cycle", "error", err)
	} else {
		for _, p := range posts {
			key := postKey(p.Text)
			if key == "" {
				continue
			}
			if _, ok := seenPosts[key]; ok {
				continue
			}
			seenPosts[key] = struct{}{}
			out.Posts = append(out.Posts, p)
			newPosts++
		}
	}

	return newLinks, newPosts
}

func (c *Collector) scrollCycle(feed Feed) {
	step := c.ScrollStep / scrollSubSteps
	for i := 0; i < scrollSubSteps; i++ {
		if err := feed.ScrollBy(step); err != nil {
			c.logger.Debug("scroll failed", "error", err)
			return
		}
		c.sleep(50 * time.Millisecond)
	}
}

func (c *Collector) settleDelay() time.Duration {
	if c.SettleMax <= c.SettleMin {
		return c.SettleMin
	}
	return c.SettleMin + time.Duration(c.rng.Int63n(int64(c.SettleMax-c.SettleMin)))
}

// postKey derives the dedup key for a post fragment: the first postKeyLen
// characters of its text.
func postKey(text string) string {
	runes := []rune(text)
	if len(runes) > postKeyLen {
		runes = runes[:postKeyLen]
	}
	return string(runes)
}
