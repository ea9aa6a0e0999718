package platforms

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/curatist/curatist/internal/ai"
	"github.com/curatist/curatist/internal/types"
)

// AvatarCache memoizes author avatar lookups for the lifetime of one crawl
// run. Callers pass a fresh cache per run; avatars rarely change inside one.
type AvatarCache map[string]string

// Reddit crawls subreddit listings over the public JSON endpoint. No auth,
// no browser.
type Reddit struct {
	deps    *Deps
	avatars AvatarCache
	baseURL string
}

// NewReddit creates the Reddit extractor with a per-run avatar cache.
func NewReddit(deps *Deps, avatars AvatarCache) *Reddit {
	if avatars == nil {
		avatars = make(AvatarCache)
	}
	return &Reddit{deps: deps, avatars: avatars, baseURL: "https://www.reddit.com"}
}

func (r *Reddit) Platform() types.Platform { return types.PlatformReddit }

func (r *Reddit) Crawl(ctx context.Context, opts Options) types.Result {
	logger := r.deps.Logger.With("platform", "reddit")

	limit := opts.Limit
	if limit <= 0 {
		limit = r.deps.Cfg.Platforms.Reddit.Limit
	}

	var candidates []*redditPost
	for _, sub := range r.deps.Cfg.Platforms.Reddit.Subreddits {
		posts, err := r.fetchListing(ctx, sub, limit)
		if err != nil {
			// One subreddit failing should not lose the rest.
			logger.Warn("subreddit listing failed", "subreddit", sub, "error", err)
			continue
		}
		candidates = append(candidates, posts...)
	}
	if len(candidates) == 0 {
		return types.Ok(types.PlatformReddit, 0)
	}

	ids := make([]string, 0, len(candidates))
	for _, p := range candidates {
		ids = append(ids, p.ID)
	}
	existing, err := r.deps.Store.ExistingIDs(ctx, types.PlatformReddit, ids)
	if err != nil {
		return types.Fail(types.PlatformReddit, &types.CrawlError{
			Platform: types.PlatformReddit, Stage: "dedupe", Err: err,
		})
	}

	// Only new posts get avatar lookups and translation.
	var items []*types.Item
	for _, p := range candidates {
		if existing[p.ID] {
			continue
		}
		items = append(items, r.buildItem(ctx, p))
		if opts.Limit > 0 && len(items) >= opts.Limit {
			break
		}
	}

	count, err := r.deps.Reconciler.UpsertPlain(ctx, items)
	if err != nil {
		return types.Fail(types.PlatformReddit, &types.CrawlError{
			Platform: types.PlatformReddit, Stage: "reconcile", Err: err,
		})
	}
	r.deps.enrichBatch(ctx, items)

	logger.Info("reddit crawled", "candidates", len(candidates), "new", count)
	return types.Ok(types.PlatformReddit, count)
}

func (r *Reddit) buildItem(ctx context.Context, p *redditPost) *types.Item {
	item := types.NewItem(types.PlatformReddit, p.ID)
	item.Title = p.Title
	item.ContentText = p.SelfText
	item.URL = "https://www.reddit.com" + p.Permalink
	item.Author = types.Author{
		Name:   p.Author,
		URL:    "https://www.reddit.com/user/" + p.Author,
		Avatar: r.lookupAvatar(ctx, p.Author),
	}
	if p.Thumbnail != "" && strings.HasPrefix(p.Thumbnail, "http") {
		item.ThumbnailURL = p.Thumbnail
	}
	item.SetRaw("score", p.Score)
	item.SetRaw("num_comments", p.NumComments)
	item.SetRaw("upvote_ratio", p.UpvoteRatio)
	item.SetRaw("subreddit", p.Subreddit)

	if !ai.MajorityKorean(p.Title) {
		item.TitleKo = r.deps.AI.Translate(ctx, p.Title, r.deps.Cfg.AI.TargetLang)
	}
	if p.SelfText != "" && !ai.MajorityKorean(p.SelfText) {
		item.ContentKo = r.deps.AI.Translate(ctx, p.SelfText, r.deps.Cfg.AI.TargetLang)
	}
	return item
}

// lookupAvatar fetches an author's avatar once per run. Deleted accounts,
// bots and any fetch failure all read as "no avatar", never an error.
func (r *Reddit) lookupAvatar(ctx context.Context, author string) string {
	if author == "[deleted]" || author == "AutoModerator" {
		return ""
	}
	if avatar, ok := r.avatars[author]; ok {
		return avatar
	}

	var about struct {
		Data struct {
			IconImg string `json:"icon_img"`
		} `json:"data"`
	}
	url := fmt.Sprintf("%s/user/%s/about.json", r.baseURL, author)
	if err := r.deps.Fetch.GetJSON(ctx, url, nil, &about); err != nil {
		r.deps.Logger.Debug("avatar lookup failed", "author", author, "error", err)
		r.avatars[author] = ""
		return ""
	}

	avatar := html.UnescapeString(about.Data.IconImg)
	if i := strings.IndexByte(avatar, '?'); i >= 0 {
		avatar = avatar[:i]
	}
	r.avatars[author] = avatar
	return avatar
}

// redditPost is one listing entry as served by the JSON endpoint.
type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Author      string  `json:"author"`
	Permalink   string  `json:"permalink"`
	Thumbnail   string  `json:"thumbnail"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	Subreddit   string  `json:"subreddit"`
}

func (r *Reddit) fetchListing(ctx context.Context, subreddit string, limit int) ([]*redditPost, error) {
	var listing struct {
		Data struct {
			Children []struct {
				Data redditPost `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}

	url := fmt.Sprintf("%s/r/%s/new.json?limit=%d", r.baseURL, subreddit, limit)
	if err := r.deps.Fetch.GetJSON(ctx, url, nil, &listing); err != nil {
		return nil, err
	}

	posts := make([]*redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		p := child.Data
		posts = append(posts, &p)
	}
	return posts, nil
}
