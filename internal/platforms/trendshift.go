package platforms

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/curatist/curatist/internal/types"
)

const trendshiftBaseURL = "https://trendshift.io"

var trendshiftIDPattern = regexp.MustCompile(`/repositories/(\d+)`)

// Trendshift crawls the Trendshift leaderboard. Like GitHub trending it is a
// pure HTML scrape feeding the ranking merge; ids are synthetic "ts-<id>"
// since Trendshift's repository ids are its own.
type Trendshift struct {
	deps    *Deps
	baseURL string
}

// NewTrendshift creates the Trendshift extractor.
func NewTrendshift(deps *Deps) *Trendshift {
	return &Trendshift{deps: deps, baseURL: trendshiftBaseURL}
}

func (t *Trendshift) Platform() types.Platform { return types.PlatformTrendshift }

func (t *Trendshift) Crawl(ctx context.Context, opts Options) types.Result {
	logger := t.deps.Logger.With("platform", "trendshift")

	boards := map[types.Period]string{types.PeriodDaily: "/"}
	if opts.All {
		boards[types.PeriodWeekly] = "/?range=weekly"
		boards[types.PeriodMonthly] = "/?range=monthly"
	}

	byID := make(map[string]*types.Item)
	var order []string

	for period, path := range boards {
		body, status, err := t.deps.Fetch.Get(ctx, t.baseURL+path, nil)
		if err != nil {
			return types.Fail(types.PlatformTrendshift, &types.CrawlError{
				Platform: types.PlatformTrendshift, Stage: "scrape", Err: err,
			})
		}
		if status != 200 {
			return types.Fail(types.PlatformTrendshift, &types.CrawlError{
				Platform: types.PlatformTrendshift, Stage: "scrape",
				Err: fmt.Errorf("leaderboard %s: status %d", path, status),
			})
		}

		rows, err := parseTrendshift(body)
		if err != nil {
			return types.Fail(types.PlatformTrendshift, &types.CrawlError{
				Platform: types.PlatformTrendshift, Stage: "parse", Err: err,
			})
		}

		for _, row := range rows {
			item, ok := byID[row.ID]
			if !ok {
				item = types.NewItem(types.PlatformTrendshift, row.ID)
				item.Title = row.RepoName
				item.Description = row.Description
				item.URL = trendshiftBaseURL + "/repositories/" + strings.TrimPrefix(row.ID, "ts-")
				item.Ranking = &types.Ranking{}
				byID[row.ID] = item
				order = append(order, row.ID)
			}
			if row.RepoURL != "" {
				item.SetRaw("repo_url", row.RepoURL)
			}
			item.Ranking.Apply(types.NewObservation(period, row.Rank, ""))
		}
	}

	items := make([]*types.Item, 0, len(order))
	for _, id := range order {
		items = append(items, byID[id])
	}
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}

	count, err := t.deps.Reconciler.UpsertRanked(ctx, types.PlatformTrendshift, items)
	if err != nil {
		return types.Fail(types.PlatformTrendshift, &types.CrawlError{
			Platform: types.PlatformTrendshift, Stage: "reconcile", Err: err,
		})
	}

	logger.Info("trendshift crawled", "repos", count)
	return types.Ok(types.PlatformTrendshift, count)
}

// trendshiftRow is one parsed leaderboard entry.
type trendshiftRow struct {
	Rank        int
	ID          string // synthetic "ts-<id>"
	RepoName    string
	RepoURL     string
	Description string
}

// parseTrendshift extracts leaderboard rows. Entries link to
// /repositories/<numeric id>; rank is document order.
func parseTrendshift(body []byte) ([]trendshiftRow, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse trendshift html: %w", err)
	}

	anchors := htmlquery.Find(doc, `//a[contains(@href, "/repositories/")]`)

	var rows []trendshiftRow
	seen := make(map[string]struct{})
	for _, a := range anchors {
		href := htmlquery.SelectAttr(a, "href")
		m := trendshiftIDPattern.FindStringSubmatch(href)
		if m == nil {
			continue
		}
		id := "ts-" + m[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		row := trendshiftRow{
			Rank:     len(rows) + 1,
			ID:       id,
			RepoName: strings.TrimSpace(htmlquery.InnerText(a)),
		}
		if card := findCard(a); card != nil {
			row.Description = cardDescription(card, row.RepoName)
			if gh := htmlquery.FindOne(card, `.//a[contains(@href, "github.com/")]`); gh != nil {
				row.RepoURL = htmlquery.SelectAttr(gh, "href")
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// findCard walks up from a repo anchor to its list-entry container.
func findCard(a *html.Node) *html.Node {
	node := a
	for depth := 0; node.Parent != nil && depth < 4; depth++ {
		node = node.Parent
		if node.Data == "li" || node.Data == "article" {
			return node
		}
	}
	return node
}

func cardDescription(card *html.Node, repoName string) string {
	text := strings.TrimSpace(htmlquery.InnerText(card))
	text = strings.TrimSpace(strings.TrimPrefix(text, repoName))
	if len(text) > 300 {
		text = text[:300]
	}
	return text
}
