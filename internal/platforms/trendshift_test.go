package platforms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/curatist/curatist/internal/store"
	"github.com/curatist/curatist/internal/types"
)

const trendshiftFixture = `<!DOCTYPE html>
<html><body>
<ul>
  <li>
    <a href="/repositories/42">ollama/ollama</a>
    <span>Get up and running with large language models.</span>
    <a href="https://github.com/ollama/ollama">GitHub</a>
  </li>
  <li>
    <a href="/repositories/7">langchain-ai/langchain</a>
    <span>Build context-aware reasoning applications.</span>
    <a href="https://github.com/langchain-ai/langchain">GitHub</a>
  </li>
  <li>
    <a href="/repositories/42">ollama/ollama duplicate anchor</a>
  </li>
</ul>
</body></html>`

func TestParseTrendshift(t *testing.T) {
	rows, err := parseTrendshift([]byte(trendshiftFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2 (duplicate anchor collapsed)", len(rows))
	}

	first := rows[0]
	if first.ID != "ts-42" {
		t.Errorf("id: %q", first.ID)
	}
	if first.Rank != 1 {
		t.Errorf("rank: %d", first.Rank)
	}
	if first.RepoName != "ollama/ollama" {
		t.Errorf("repo name: %q", first.RepoName)
	}
	if first.RepoURL != "https://github.com/ollama/ollama" {
		t.Errorf("repo url: %q", first.RepoURL)
	}

	if rows[1].ID != "ts-7" || rows[1].Rank != 2 {
		t.Errorf("second row: %+v", rows[1])
	}
}

func TestTrendshiftCrawlMergesBoards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Same page for all boards; ranks repeat across periods.
		w.Write([]byte(trendshiftFixture))
	}))
	defer srv.Close()

	st := store.NewMemoryStore()
	ts := NewTrendshift(newTestDeps(t, st))
	ts.baseURL = srv.URL

	res := ts.Crawl(context.Background(), Options{All: true})
	if !res.Success {
		t.Fatalf("crawl failed: %v", res.Err)
	}
	if res.Count != 2 {
		t.Errorf("count: got %d, want 2", res.Count)
	}

	item := st.Get(types.PlatformTrendshift, "ts-42")
	if item == nil {
		t.Fatal("ts-42 not stored")
	}
	if item.Ranking == nil {
		t.Fatal("ranking missing")
	}
	if len(item.Ranking.DailyHistory) != 1 {
		t.Errorf("daily history: %d entries", len(item.Ranking.DailyHistory))
	}
	if item.Ranking.Weekly != 1 {
		t.Errorf("weekly: %d", item.Ranking.Weekly)
	}
	if item.Ranking.Monthly != 1 {
		t.Errorf("monthly: %d", item.Ranking.Monthly)
	}
	if got := item.RawData["repo_url"]; got != "https://github.com/ollama/ollama" {
		t.Errorf("repo_url raw: %v", got)
	}
}

func TestTrendshiftCrawlLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(trendshiftFixture))
	}))
	defer srv.Close()

	st := store.NewMemoryStore()
	ts := NewTrendshift(newTestDeps(t, st))
	ts.baseURL = srv.URL

	res := ts.Crawl(context.Background(), Options{Limit: 1})
	if !res.Success {
		t.Fatalf("crawl failed: %v", res.Err)
	}
	if res.Count != 1 {
		t.Errorf("count: got %d, want 1", res.Count)
	}
	if st.Len() != 1 {
		t.Errorf("stored rows: %d", st.Len())
	}
}

func TestTrendshiftCrawlBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	st := store.NewMemoryStore()
	ts := NewTrendshift(newTestDeps(t, st))
	ts.baseURL = srv.URL

	res := ts.Crawl(context.Background(), Options{})
	if res.Success {
		t.Fatal("expected failure on 503")
	}
	if st.Len() != 0 {
		t.Errorf("nothing should be stored on failure, got %d rows", st.Len())
	}
}
