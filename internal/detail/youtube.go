package detail

import (
	"regexp"
	"strings"
)

// YouTubeRef is a detected embedded YouTube video.
type YouTubeRef struct {
	URL      string
	VideoID  string
	EmbedURL string
}

// Anchor is a harvested link with its visible text.
type Anchor struct {
	Href string
	Text string
}

var (
	watchIDPattern = regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{11})`)
	shortIDPattern = regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`)
	embedIDPattern = regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{11})`)
	textURLPattern = regexp.MustCompile(`https?://[^\s]*(?:youtube\.com|youtu\.be)[^\s]*`)
)

// DetectYouTube finds an embedded YouTube video for a post. Three fallback
// strategies in priority order:
//  1. a direct anchor whose href is a YouTube domain;
//  2. an anchor whose visible text mentions youtube/youtu.be even when the
//     href is a redirect shortener; the real URL is read from the text;
//  3. a regex scan of the post's full visible text.
//
// DOM extraction is deliberately preferred over intercepted API data; see
// FromIntercepted for the API fallback.
func DetectYouTube(anchors []Anchor, fullText string) *YouTubeRef {
	// Strategy 1: direct href.
	for _, a := range anchors {
		if isYouTubeURL(a.Href) {
			if ref := refFromURL(a.Href); ref != nil {
				return ref
			}
		}
	}

	// Strategy 2: shortened href, real URL in the visible text.
	for _, a := range anchors {
		lower := strings.ToLower(a.Text)
		if !strings.Contains(lower, "youtube") && !strings.Contains(lower, "youtu.be") {
			continue
		}
		if m := textURLPattern.FindString(a.Text); m != "" {
			if ref := refFromURL(m); ref != nil {
				return ref
			}
		}
	}

	// Strategy 3: scan the whole post text for a short link.
	if m := shortIDPattern.FindStringSubmatch(fullText); m != nil {
		return refFromID(m[1], "https://youtu.be/"+m[1])
	}

	return nil
}

// FromIntercepted scans intercepted API response bodies for YouTube links.
// Used only when DOM extraction found nothing, and only bodies that mention
// the current post's id are considered. A quoted or embedded reply's video
// must not leak onto this post.
func FromIntercepted(bodies []Intercepted, postID string) *YouTubeRef {
	if postID == "" {
		return nil
	}
	for _, b := range bodies {
		if !strings.Contains(b.Body, postID) {
			continue
		}
		if m := shortIDPattern.FindStringSubmatch(b.Body); m != nil {
			return refFromID(m[1], "https://youtu.be/"+m[1])
		}
		if m := watchIDPattern.FindStringSubmatch(b.Body); m != nil {
			return refFromID(m[1], "https://www.youtube.com/watch?v="+m[1])
		}
	}
	return nil
}

func isYouTubeURL(href string) bool {
	lower := strings.ToLower(href)
	return strings.Contains(lower, "youtube.com/") || strings.Contains(lower, "youtu.be/")
}

func refFromURL(rawURL string) *YouTubeRef {
	for _, re := range []*regexp.Regexp{watchIDPattern, shortIDPattern, embedIDPattern} {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return refFromID(m[1], rawURL)
		}
	}
	return nil
}

func refFromID(id, url string) *YouTubeRef {
	return &YouTubeRef{
		URL:      url,
		VideoID:  id,
		EmbedURL: "https://www.youtube.com/embed/" + id,
	}
}
