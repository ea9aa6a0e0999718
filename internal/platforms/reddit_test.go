package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/curatist/curatist/internal/ai"
	"github.com/curatist/curatist/internal/config"
	"github.com/curatist/curatist/internal/store"
	"github.com/curatist/curatist/internal/types"
)

func redditListing(posts ...string) string {
	return fmt.Sprintf(`{"data":{"children":[%s]}}`, strings.Join(posts, ","))
}

func redditPostJSON(id, title, author, selftext string) string {
	return fmt.Sprintf(`{"data":{"id":%q,"title":%q,"selftext":%q,"author":%q,"permalink":"/r/golang/comments/%s/","thumbnail":"https://thumbs.example/%s.jpg","score":42,"num_comments":7,"upvote_ratio":0.93,"subreddit":"golang"}}`,
		id, title, selftext, author, id, id)
}

func TestRedditCrawlOnlyProcessesNewPosts(t *testing.T) {
	var avatarLookups int64

	mux := http.NewServeMux()
	mux.HandleFunc("/r/golang/new.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, redditListing(
			redditPostJSON("aaa", "Old post A", "alice", ""),
			redditPostJSON("bbb", "Old post B", "bob", ""),
			redditPostJSON("ccc", "Fresh Go release notes", "gopher", ""),
			redditPostJSON("ddd", "이미 한국어인 제목", "AutoModerator", ""),
		))
	})
	mux.HandleFunc("/user/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&avatarLookups, 1)
		if !strings.Contains(r.URL.Path, "gopher") {
			t.Errorf("unexpected avatar lookup: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"data":{"icon_img":"https://avatars.example/gopher.png?size=128"}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var translations int64
	modelSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&translations, 1)
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"번역"}]}}]}`)
	}))
	defer modelSrv.Close()

	st := store.NewMemoryStore()
	deps := newTestDeps(t, st)
	deps.Cfg.Platforms.Reddit.Subreddits = []string{"golang"}
	deps.AI = ai.NewClient(config.AIConfig{
		Endpoint: modelSrv.URL, Model: "m", APIKey: "k", TargetLang: "ko",
	}, deps.Logger)

	// aaa and bbb were stored by an earlier run.
	ctx := context.Background()
	st.Upsert(ctx, []*types.Item{
		types.NewItem(types.PlatformReddit, "aaa"),
		types.NewItem(types.PlatformReddit, "bbb"),
	})

	r := NewReddit(deps, nil)
	r.baseURL = srv.URL

	res := r.Crawl(ctx, Options{})
	if !res.Success {
		t.Fatalf("crawl failed: %v", res.Err)
	}
	if res.Count != 2 {
		t.Fatalf("expected 2 new rows (ccc, ddd), got %d", res.Count)
	}

	// Existing posts get no avatar lookups and no translation; the bot
	// account gets no lookup either.
	if got := atomic.LoadInt64(&avatarLookups); got != 1 {
		t.Errorf("expected exactly 1 avatar lookup, got %d", got)
	}
	// Only ccc's English title goes to the translator; ddd's title is
	// already Korean and both selftexts are empty.
	if got := atomic.LoadInt64(&translations); got != 1 {
		t.Errorf("expected exactly 1 translation call, got %d", got)
	}

	ccc := st.Get(types.PlatformReddit, "ccc")
	if ccc == nil {
		t.Fatal("ccc row missing")
	}
	if ccc.TitleKo != "번역" {
		t.Errorf("translation not applied: %q", ccc.TitleKo)
	}
	if ccc.Author.Avatar != "https://avatars.example/gopher.png" {
		t.Errorf("avatar query string not stripped: %q", ccc.Author.Avatar)
	}
	if ccc.RawData["score"] != 42 {
		t.Errorf("raw score: %v", ccc.RawData["score"])
	}

	ddd := st.Get(types.PlatformReddit, "ddd")
	if ddd == nil {
		t.Fatal("ddd row missing")
	}
	if ddd.Author.Avatar != "" {
		t.Errorf("bot account must have no avatar, got %q", ddd.Author.Avatar)
	}
	if ddd.TitleKo != "" {
		t.Errorf("korean title must not be translated, got %q", ddd.TitleKo)
	}
}

func TestRedditAvatarCachePersistsAcrossLookups(t *testing.T) {
	var lookups int64
	mux := http.NewServeMux()
	mux.HandleFunc("/r/golang/new.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, redditListing(
			redditPostJSON("p1", "첫 번째 글", "gopher", ""),
			redditPostJSON("p2", "두 번째 글", "gopher", ""),
		))
	})
	mux.HandleFunc("/user/", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&lookups, 1)
		fmt.Fprint(w, `{"data":{"icon_img":"https://avatars.example/gopher.png"}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	st := store.NewMemoryStore()
	deps := newTestDeps(t, st)
	deps.Cfg.Platforms.Reddit.Subreddits = []string{"golang"}

	r := NewReddit(deps, nil)
	r.baseURL = srv.URL

	if res := r.Crawl(context.Background(), Options{}); !res.Success {
		t.Fatalf("crawl failed: %v", res.Err)
	}
	if got := atomic.LoadInt64(&lookups); got != 1 {
		t.Errorf("same author twice must hit the cache, got %d lookups", got)
	}
}

func TestRedditListingFailureIsNotFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/r/broken/new.json", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/r/golang/new.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, redditListing(redditPostJSON("p1", "제목", "[deleted]", "")))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	st := store.NewMemoryStore()
	deps := newTestDeps(t, st)
	deps.Cfg.Platforms.Reddit.Subreddits = []string{"broken", "golang"}

	r := NewReddit(deps, nil)
	r.baseURL = srv.URL

	res := r.Crawl(context.Background(), Options{})
	if !res.Success {
		t.Fatalf("one broken subreddit must not fail the run: %v", res.Err)
	}
	if res.Count != 1 {
		t.Errorf("expected 1 row from the healthy subreddit, got %d", res.Count)
	}
}
