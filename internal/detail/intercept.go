package detail

import (
	"net/http"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Intercepted is one captured API response.
type Intercepted struct {
	URL  string
	Body string
}

// Interceptor records API response bodies and native-video candidate URLs
// seen while a post page loads. Feed platforms deliver post media through
// GraphQL/API calls the DOM never exposes directly.
type Interceptor struct {
	router *rod.HijackRouter

	mu     sync.Mutex
	bodies []Intercepted
	videos []string
}

// NewInterceptor attaches response interception to the page. Call Stop when
// done with the page.
func NewInterceptor(page *rod.Page) *Interceptor {
	in := &Interceptor{}
	in.router = page.HijackRequests()

	in.router.MustAdd("*", func(ctx *rod.Hijack) {
		url := ctx.Request.URL().String()

		switch {
		case isVideoURL(url):
			in.mu.Lock()
			in.videos = append(in.videos, url)
			in.mu.Unlock()
			ctx.ContinueRequest(&proto.FetchContinueRequest{})

		case isAPIURL(url):
			if err := ctx.LoadResponse(http.DefaultClient, true); err != nil {
				return
			}
			in.mu.Lock()
			in.bodies = append(in.bodies, Intercepted{URL: url, Body: ctx.Response.Body()})
			in.mu.Unlock()

		default:
			ctx.ContinueRequest(&proto.FetchContinueRequest{})
		}
	})

	go in.router.Run()
	return in
}

// Stop detaches the interception router.
func (in *Interceptor) Stop() {
	_ = in.router.Stop()
}

// Bodies returns the captured API responses.
func (in *Interceptor) Bodies() []Intercepted {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]Intercepted, len(in.bodies))
	copy(out, in.bodies)
	return out
}

// VideoCandidates returns the observed native-video URLs.
func (in *Interceptor) VideoCandidates() []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]string, len(in.videos))
	copy(out, in.videos)
	return out
}

// VideoCandidatesForPost filters the observed video URLs to ones whose
// corresponding API responses mention the given post id, guarding against
// a quoted reply's video leaking onto this post.
func (in *Interceptor) VideoCandidatesForPost(postID string) []string {
	in.mu.Lock()
	defer in.mu.Unlock()

	if postID == "" {
		out := make([]string, len(in.videos))
		copy(out, in.videos)
		return out
	}

	var out []string
	for _, v := range in.videos {
		if in.videoBelongsTo(v, postID) {
			out = append(out, v)
		}
	}
	return out
}

// videoBelongsTo checks whether any API body ties the video URL to the post.
// Encodings of the same video share a URL prefix up to the variant suffix, so
// a prefix match against the body is enough. Caller holds the lock.
func (in *Interceptor) videoBelongsTo(videoURL, postID string) bool {
	base := videoURL
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	for _, b := range in.bodies {
		if strings.Contains(b.Body, postID) && strings.Contains(b.Body, base) {
			return true
		}
	}
	return false
}

func isVideoURL(url string) bool {
	return strings.Contains(url, ".mp4") || strings.Contains(url, ".m3u8")
}

func isAPIURL(url string) bool {
	return strings.Contains(url, "/graphql") || strings.Contains(url, "/api/")
}
