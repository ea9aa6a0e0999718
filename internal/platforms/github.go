package platforms

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/curatist/curatist/internal/ai"
	"github.com/curatist/curatist/internal/types"
)

const githubTrendingURL = "https://github.com/trending"

// GitHub crawls the trending leaderboards. Pure HTML scrape, no login; the
// same repository can surface on the daily, weekly, monthly and per-language
// boards in one cycle and must collapse to a single row via the ranking
// merge.
type GitHub struct {
	deps        *Deps
	trendingURL string
	apiBase     string
}

// NewGitHub creates the GitHub trending extractor.
func NewGitHub(deps *Deps) *GitHub {
	return &GitHub{
		deps:        deps,
		trendingURL: githubTrendingURL,
		apiBase:     "https://api.github.com",
	}
}

func (g *GitHub) Platform() types.Platform { return types.PlatformGitHub }

func (g *GitHub) Crawl(ctx context.Context, opts Options) types.Result {
	logger := g.deps.Logger.With("platform", "github")

	periods := []types.Period{types.PeriodDaily}
	if opts.All {
		periods = []types.Period{types.PeriodDaily, types.PeriodWeekly, types.PeriodMonthly}
	}
	languages := append([]string(nil), g.deps.Cfg.Platforms.GitHub.Languages...)
	languages = append(languages, opts.IncludeLanguages...)

	// One item per repo regardless of how many boards it appears on.
	byID := make(map[string]*types.Item)
	var order []string

	for _, period := range periods {
		if err := g.crawlBoard(ctx, period, "", byID, &order); err != nil {
			return types.Fail(types.PlatformGitHub, &types.CrawlError{
				Platform: types.PlatformGitHub, Stage: "scrape", Err: err,
			})
		}
		for _, lang := range languages {
			if err := g.crawlBoard(ctx, period, lang, byID, &order); err != nil {
				// A single language board failing should not lose the rest.
				logger.Warn("language board failed", "language", lang, "period", period, "error", err)
			}
		}
	}

	items := make([]*types.Item, 0, len(order))
	for _, id := range order {
		items = append(items, byID[id])
	}
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}

	g.annotate(ctx, items)

	count, err := g.deps.Reconciler.UpsertRanked(ctx, types.PlatformGitHub, items)
	if err != nil {
		return types.Fail(types.PlatformGitHub, &types.CrawlError{
			Platform: types.PlatformGitHub, Stage: "reconcile", Err: err,
		})
	}

	logger.Info("github trending crawled", "repos", count, "periods", len(periods))
	return types.Ok(types.PlatformGitHub, count)
}

// crawlBoard scrapes one trending board and folds its rank observations into
// the run's item set.
func (g *GitHub) crawlBoard(ctx context.Context, period types.Period, language string, byID map[string]*types.Item, order *[]string) error {
	url := g.trendingURL
	if language != "" {
		url += "/" + language
	}
	url += "?since=" + string(period)

	body, status, err := g.deps.Fetch.Get(ctx, url, nil)
	if err != nil {
		return err
	}
	if status != 200 {
		return fmt.Errorf("trending page %s: status %d", url, status)
	}

	repos, err := parseTrending(body)
	if err != nil {
		return err
	}

	for _, repo := range repos {
		item, ok := byID[repo.FullName]
		if !ok {
			item = types.NewItem(types.PlatformGitHub, repo.FullName)
			item.Title = repo.FullName
			item.Description = repo.Description
			item.URL = "https://github.com/" + repo.FullName
			item.Author = types.Author{
				Name: strings.SplitN(repo.FullName, "/", 2)[0],
				URL:  "https://github.com/" + strings.SplitN(repo.FullName, "/", 2)[0],
			}
			item.Ranking = &types.Ranking{}
			byID[repo.FullName] = item
			*order = append(*order, repo.FullName)
		}

		item.SetRaw("stars", repo.Stars)
		item.SetRaw("forks", repo.Forks)
		if repo.Language != "" {
			item.SetRaw("language", repo.Language)
		}
		if repo.StarsToday > 0 {
			item.SetRaw("stars_today", repo.StarsToday)
		}

		item.Ranking.Apply(types.NewObservation(period, repo.Rank, language))
	}
	return nil
}

// annotate fetches READMEs and asks the summarization service for structured
// summaries. Skipped silently without an API key or for short READMEs.
func (g *GitHub) annotate(ctx context.Context, items []*types.Item) {
	if !g.deps.AI.Available() {
		return
	}
	for _, item := range items {
		readme := g.fetchReadme(ctx, item.PlatformID)
		if len(readme) < ai.MinSummarizeLen {
			continue
		}
		summary := g.deps.AI.Summarize(ctx, readme, item.PlatformID)
		if summary == nil {
			continue
		}
		item.SetRaw("summary", summary.Summary)
		item.SetRaw("features", summary.Features)
		item.SetRaw("target_audience", summary.TargetAudience)
		item.SetRaw("beginner_description", summary.BeginnerDescription)
		if item.Description == "" {
			item.Description = summary.Summary
		}
	}
}

func (g *GitHub) fetchReadme(ctx context.Context, fullName string) string {
	headers := map[string]string{"Accept": "application/vnd.github.raw+json"}
	if token := g.deps.Cfg.Platforms.GitHub.APIToken; token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	body, status, err := g.deps.Fetch.Get(ctx, g.apiBase+"/repos/"+fullName+"/readme", headers)
	if err != nil || status != 200 {
		return ""
	}
	return string(body)
}

// trendingRepo is one parsed row of a trending board.
type trendingRepo struct {
	Rank        int
	FullName    string
	Description string
	Language    string
	Stars       int
	Forks       int
	StarsToday  int
}

var starsTodayPattern = regexp.MustCompile(`([\d,]+)\s+stars?\s+(?:today|this)`)

// parseTrending extracts the repo rows from a trending page.
func parseTrending(html []byte) ([]trendingRepo, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse trending html: %w", err)
	}

	var repos []trendingRepo
	doc.Find("article.Box-row").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Find("h2 a").Attr("href")
		if !ok {
			return
		}
		fullName := strings.Trim(href, "/")
		if !strings.Contains(fullName, "/") {
			return
		}

		repo := trendingRepo{
			Rank:        i + 1,
			FullName:    fullName,
			Description: strings.TrimSpace(s.Find("p").First().Text()),
			Language:    strings.TrimSpace(s.Find(`span[itemprop="programmingLanguage"]`).Text()),
		}

		counts := s.Find(`a[href$="/stargazers"], a[href$="/forks"]`)
		counts.Each(func(_ int, c *goquery.Selection) {
			n := parseCompactCount(c.Text())
			if h, _ := c.Attr("href"); strings.HasSuffix(h, "/stargazers") {
				repo.Stars = n
			} else {
				repo.Forks = n
			}
		})

		if m := starsTodayPattern.FindStringSubmatch(s.Text()); m != nil {
			repo.StarsToday = parseCompactCount(m[1])
		}

		repos = append(repos, repo)
	})
	return repos, nil
}

func parseCompactCount(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	mult := 1
	if strings.HasSuffix(s, "k") {
		mult = 1000
		s = s[:len(s)-1]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f * float64(mult))
}
