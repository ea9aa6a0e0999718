package detail

import "testing"

func TestSelectVideoURLPriority(t *testing.T) {
	cases := []struct {
		name       string
		candidates []string
		want       string
	}{
		{
			name: "720 over 360",
			candidates: []string{
				"https://video.example/vid/640x360/a.mp4?tag=12",
				"https://video.example/vid/1280x720/a.mp4?tag=12",
			},
			want: "https://video.example/vid/1280x720/a.mp4?tag=12",
		},
		{
			name: "1080 beats everything",
			candidates: []string{
				"https://video.example/vid/480x270/a.mp4",
				"https://video.example/vid/1920x1080/a.mp4",
				"https://video.example/vid/1280x720/a.mp4",
			},
			want: "https://video.example/vid/1920x1080/a.mp4",
		},
		{
			name: "no resolution token falls back to longest",
			candidates: []string{
				"https://video.example/a.m3u8",
				"https://video.example/a.m3u8?variant=high&sig=abcdef",
			},
			want: "https://video.example/a.m3u8?variant=high&sig=abcdef",
		},
		{
			name:       "2700 is not 270",
			candidates: []string{"https://video.example/vid/2700/a.mp4"},
			want:       "https://video.example/vid/2700/a.mp4", // via longest fallback
		},
		{
			name:       "empty",
			candidates: nil,
			want:       "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SelectVideoURL(tc.candidates); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSelectVideoURLTokenBoundary(t *testing.T) {
	// "2700" must not satisfy the 270 matcher when a real 360 exists.
	got := SelectVideoURL([]string{
		"https://video.example/vid/2700/a.mp4",
		"https://video.example/vid/640x360/a.mp4",
	})
	if got != "https://video.example/vid/640x360/a.mp4" {
		t.Errorf("270 matched inside 2700: %q", got)
	}
}

func TestDetectYouTubeDirectAnchor(t *testing.T) {
	ref := DetectYouTube([]Anchor{
		{Href: "https://x.com/user/status/1", Text: "reply"},
		{Href: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Text: "watch this"},
	}, "")
	if ref == nil {
		t.Fatal("expected a detection")
	}
	if ref.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("wrong id %q", ref.VideoID)
	}
	if ref.EmbedURL != "https://www.youtube.com/embed/dQw4w9WgXcQ" {
		t.Errorf("wrong embed url %q", ref.EmbedURL)
	}
}

func TestDetectYouTubeFromAnchorText(t *testing.T) {
	// Shortener href, the readable URL lives in the anchor text.
	ref := DetectYouTube([]Anchor{
		{Href: "https://t.co/abc123", Text: "youtube.com has it: https://youtu.be/dQw4w9WgXcQ"},
	}, "")
	if ref == nil {
		t.Fatal("expected a detection from anchor text")
	}
	if ref.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("wrong id %q", ref.VideoID)
	}
}

func TestDetectYouTubeFromFullText(t *testing.T) {
	ref := DetectYouTube(nil, "new video out! https://youtu.be/dQw4w9WgXcQ give it a look")
	if ref == nil {
		t.Fatal("expected a detection from post text")
	}
	if ref.URL != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("wrong url %q", ref.URL)
	}
}

func TestDetectYouTubeNone(t *testing.T) {
	ref := DetectYouTube([]Anchor{
		{Href: "https://example.com/blog", Text: "my blog"},
	}, "no videos here")
	if ref != nil {
		t.Errorf("expected nil, got %+v", ref)
	}
}

func TestFromInterceptedScopesByPostID(t *testing.T) {
	bodies := []Intercepted{
		{URL: "/graphql/a", Body: `{"id":"999","url":"https://youtu.be/AAAAAAAAAAA"}`},
		{URL: "/graphql/b", Body: `{"id":"123","url":"https://youtu.be/BBBBBBBBBBB"}`},
	}

	ref := FromIntercepted(bodies, "123")
	if ref == nil || ref.VideoID != "BBBBBBBBBBB" {
		t.Fatalf("expected the body mentioning the post id to win, got %+v", ref)
	}

	if FromIntercepted(bodies, "555") != nil {
		t.Error("no body mentions 555; detection must not leak across posts")
	}
	if FromIntercepted(bodies, "") != nil {
		t.Error("empty post id must never match")
	}
}

func TestParseMetrics(t *testing.T) {
	got := ParseMetrics("91 replies, 278 reposts, 4,820 likes, 1.2M views, 33 bookmarks")

	want := map[string]int64{
		"replies":   91,
		"reposts":   278,
		"likes":     4820,
		"views":     1200000,
		"bookmarks": 33,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: got %d, want %d", k, got[k], v)
		}
	}
}

func TestParseMetricsSuffixes(t *testing.T) {
	got := ParseMetrics("10K likes, 2 retweets")
	if got["likes"] != 10000 {
		t.Errorf("K suffix: got %d", got["likes"])
	}
	if got["reposts"] != 2 {
		t.Errorf("retweet alias: got %d", got["reposts"])
	}
}

func TestParseMetricsGarbage(t *testing.T) {
	if got := ParseMetrics("no numbers to see"); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}
