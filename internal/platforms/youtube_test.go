package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/curatist/curatist/internal/store"
	"github.com/curatist/curatist/internal/types"
)

func TestParseISO8601Duration(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"PT3M20S", 200, true},
		{"PT1H2M30S", 3750, true},
		{"PT45S", 45, true},
		{"PT2H", 7200, true},
		{"P1DT1H", 90000, true},
		{"PT0S", 0, true},
		{"3M20S", 0, false},
		{"PT3X", 0, false},
		{"PT3", 0, false}, // dangling number
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseISO8601Duration(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseISO8601Duration(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestYouTubeCrawlFiltersShortsAndDedupes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/subscriptions", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"items":[{"snippet":{"title":"Some Channel","resourceId":{"channelId":"UC123"},"thumbnails":{"default":{"url":"https://yt.example/ch.png"}}}}]}`)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("channelId"); got != "UC123" {
			t.Errorf("search channelId = %q", got)
		}
		if r.URL.Query().Get("publishedAfter") == "" {
			t.Error("publishedAfter missing")
		}
		fmt.Fprint(w, `{"items":[{"id":{"videoId":"longvideo01"}},{"id":{"videoId":"shortvideo1"}},{"id":{"videoId":"knownvideo1"}}]}`)
	})
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		// knownvideo1 is already stored, so only 2 ids reach this endpoint.
		if got := r.URL.Query().Get("id"); got != "longvideo01,shortvideo1" {
			t.Errorf("videos id = %q", got)
		}
		fmt.Fprint(w, `{"items":[
			{"id":"longvideo01","snippet":{"title":"Deep dive","description":"desc","publishedAt":"2026-03-01T10:00:00Z","thumbnails":{"high":{"url":"https://yt.example/t1.jpg"}}},"contentDetails":{"duration":"PT12M5S"},"statistics":{"viewCount":"1200","likeCount":"80","commentCount":"9"}},
			{"id":"shortvideo1","snippet":{"title":"A short","description":"","publishedAt":"2026-03-01T11:00:00Z","thumbnails":{"high":{"url":""}}},"contentDetails":{"duration":"PT45S"},"statistics":{"viewCount":"50000","likeCount":"0","commentCount":"0"}}
		]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	st := store.NewMemoryStore()
	ctx := context.Background()
	st.Upsert(ctx, []*types.Item{types.NewItem(types.PlatformYouTube, "knownvideo1")})

	deps := newTestDeps(t, st)
	y := NewYouTube(deps)
	y.httpClient = srv.Client()
	y.apiBase = srv.URL
	y.pacer.SetSleep(func(time.Duration) {})

	res := y.Crawl(ctx, Options{Since: 48 * time.Hour})
	if !res.Success {
		t.Fatalf("crawl failed: %v", res.Err)
	}
	if res.Count != 1 {
		t.Fatalf("expected 1 new row (short filtered, known deduped), got %d", res.Count)
	}

	item := st.Get(types.PlatformYouTube, "longvideo01")
	if item == nil {
		t.Fatal("longvideo01 missing")
	}
	if item.URL != "https://www.youtube.com/watch?v=longvideo01" {
		t.Errorf("url: %q", item.URL)
	}
	if item.Author.Name != "Some Channel" || item.Author.URL != "https://www.youtube.com/channel/UC123" {
		t.Errorf("author: %+v", item.Author)
	}
	if item.RawData["duration_seconds"] != 725 {
		t.Errorf("duration: %v", item.RawData["duration_seconds"])
	}
	if item.RawData["view_count"] != int64(1200) {
		t.Errorf("views: %v", item.RawData["view_count"])
	}

	if st.Get(types.PlatformYouTube, "shortvideo1") != nil {
		t.Error("sub-minimum video must be filtered out")
	}
}

func TestYouTubeCrawlUnconfigured(t *testing.T) {
	deps := newTestDeps(t, store.NewMemoryStore())
	y := NewYouTube(deps)

	res := y.Crawl(context.Background(), Options{})
	if res.Success {
		t.Fatal("missing credentials must fail the run")
	}
}
