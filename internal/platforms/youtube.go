package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/curatist/curatist/internal/pace"
	"github.com/curatist/curatist/internal/types"
)

const (
	youtubeAPIBase   = "https://www.googleapis.com/youtube/v3"
	googleTokenURL   = "https://oauth2.googleapis.com/token"
	subscriptionPage = 50
)

// YouTube crawls recent uploads from the authenticated account's channel
// subscriptions via the Data API. Shorts and clips are filtered out by a
// minimum duration.
type YouTube struct {
	deps  *Deps
	pacer *pace.Pacer

	// httpClient overrides the oauth2 client in tests.
	httpClient *http.Client
	apiBase    string
}

func NewYouTube(deps *Deps) *YouTube {
	return &YouTube{
		deps:    deps,
		pacer:   pace.NewPacer(300*time.Millisecond, time.Second),
		apiBase: youtubeAPIBase,
	}
}

func (y *YouTube) Platform() types.Platform { return types.PlatformYouTube }

func (y *YouTube) Crawl(ctx context.Context, opts Options) types.Result {
	logger := y.deps.Logger.With("platform", "youtube")
	cfg := y.deps.Cfg.Platforms.YouTube

	client := y.httpClient
	if client == nil {
		if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
			return types.Fail(types.PlatformYouTube, &types.CrawlError{
				Platform: types.PlatformYouTube, Stage: "auth", Err: types.ErrNotConfigured,
			})
		}
		oc := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL},
		}
		client = oc.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	}

	channels, err := y.subscribedChannels(ctx, client)
	if err != nil {
		return types.Fail(types.PlatformYouTube, &types.CrawlError{
			Platform: types.PlatformYouTube, Stage: "subscriptions", Err: err,
		})
	}
	logger.Info("subscriptions resolved", "channels", len(channels))

	since := 24 * time.Hour
	if opts.Since > 0 {
		since = opts.Since
	}
	publishedAfter := time.Now().Add(-since).UTC().Format(time.RFC3339)

	var videoIDs []string
	videoChannel := map[string]subscribedChannel{}
	for _, ch := range channels {
		ids, err := y.recentUploads(ctx, client, ch.ID, publishedAfter)
		if err != nil {
			logger.Warn("channel search failed", "channel", ch.Title, "error", err)
			continue
		}
		for _, id := range ids {
			videoIDs = append(videoIDs, id)
			videoChannel[id] = ch
		}
		y.pacer.Wait()
	}
	if len(videoIDs) == 0 {
		return types.Ok(types.PlatformYouTube, 0)
	}

	existing, err := y.deps.Store.ExistingIDs(ctx, types.PlatformYouTube, videoIDs)
	if err != nil {
		return types.Fail(types.PlatformYouTube, &types.CrawlError{
			Platform: types.PlatformYouTube, Stage: "dedupe", Err: err,
		})
	}
	var fresh []string
	for _, id := range videoIDs {
		if !existing[id] {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) == 0 {
		return types.Ok(types.PlatformYouTube, 0)
	}

	minSeconds := cfg.MinSeconds
	if minSeconds <= 0 {
		minSeconds = 180
	}
	details, err := y.videoDetails(ctx, client, fresh)
	if err != nil {
		return types.Fail(types.PlatformYouTube, &types.CrawlError{
			Platform: types.PlatformYouTube, Stage: "videos", Err: err,
		})
	}

	var items []*types.Item
	for _, v := range details {
		secs, ok := ParseISO8601Duration(v.Duration)
		if !ok || secs < minSeconds {
			continue
		}
		ch := videoChannel[v.ID]
		item := types.NewItem(types.PlatformYouTube, v.ID)
		item.Title = v.Title
		item.Description = v.Description
		item.URL = "https://www.youtube.com/watch?v=" + v.ID
		item.ThumbnailURL = v.Thumbnail
		item.Author = types.Author{
			Name:   ch.Title,
			URL:    "https://www.youtube.com/channel/" + ch.ID,
			Avatar: ch.Thumbnail,
		}
		item.SetRaw("duration_seconds", secs)
		item.SetRaw("view_count", v.ViewCount)
		item.SetRaw("like_count", v.LikeCount)
		item.SetRaw("comment_count", v.CommentCount)
		item.SetRaw("published_at", v.PublishedAt)
		items = append(items, item)
		if opts.Limit > 0 && len(items) >= opts.Limit {
			break
		}
	}

	count, err := y.deps.Reconciler.UpsertPlain(ctx, items)
	if err != nil {
		return types.Fail(types.PlatformYouTube, &types.CrawlError{
			Platform: types.PlatformYouTube, Stage: "reconcile", Err: err,
		})
	}
	y.deps.enrichBatch(ctx, items)

	logger.Info("youtube crawled", "candidates", len(videoIDs), "new", count)
	return types.Ok(types.PlatformYouTube, count)
}

type subscribedChannel struct {
	ID        string
	Title     string
	Thumbnail string
}

func (y *YouTube) subscribedChannels(ctx context.Context, client *http.Client) ([]subscribedChannel, error) {
	var channels []subscribedChannel
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("part", "snippet")
		q.Set("mine", "true")
		q.Set("maxResults", strconv.Itoa(subscriptionPage))
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var resp struct {
			NextPageToken string `json:"nextPageToken"`
			Items         []struct {
				Snippet struct {
					Title      string `json:"title"`
					ResourceID struct {
						ChannelID string `json:"channelId"`
					} `json:"resourceId"`
					Thumbnails struct {
						Default struct {
							URL string `json:"url"`
						} `json:"default"`
					} `json:"thumbnails"`
				} `json:"snippet"`
			} `json:"items"`
		}
		if err := y.apiGet(ctx, client, "/subscriptions", q, &resp); err != nil {
			return nil, err
		}
		for _, it := range resp.Items {
			channels = append(channels, subscribedChannel{
				ID:        it.Snippet.ResourceID.ChannelID,
				Title:     it.Snippet.Title,
				Thumbnail: it.Snippet.Thumbnails.Default.URL,
			})
		}
		if resp.NextPageToken == "" {
			return channels, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (y *YouTube) recentUploads(ctx context.Context, client *http.Client, channelID, publishedAfter string) ([]string, error) {
	q := url.Values{}
	q.Set("part", "id")
	q.Set("channelId", channelID)
	q.Set("type", "video")
	q.Set("order", "date")
	q.Set("publishedAfter", publishedAfter)
	q.Set("maxResults", "10")

	var resp struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}
	if err := y.apiGet(ctx, client, "/search", q, &resp); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.ID.VideoID != "" {
			ids = append(ids, it.ID.VideoID)
		}
	}
	return ids, nil
}

type videoDetail struct {
	ID           string
	Title        string
	Description  string
	Thumbnail    string
	Duration     string
	PublishedAt  string
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
}

func (y *YouTube) videoDetails(ctx context.Context, client *http.Client, ids []string) ([]videoDetail, error) {
	var details []videoDetail
	// The videos endpoint accepts at most 50 ids per call.
	for start := 0; start < len(ids); start += 50 {
		end := start + 50
		if end > len(ids) {
			end = len(ids)
		}
		q := url.Values{}
		q.Set("part", "snippet,contentDetails,statistics")
		q.Set("id", strings.Join(ids[start:end], ","))

		var resp struct {
			Items []struct {
				ID      string `json:"id"`
				Snippet struct {
					Title       string `json:"title"`
					Description string `json:"description"`
					PublishedAt string `json:"publishedAt"`
					Thumbnails  struct {
						High struct {
							URL string `json:"url"`
						} `json:"high"`
					} `json:"thumbnails"`
				} `json:"snippet"`
				ContentDetails struct {
					Duration string `json:"duration"`
				} `json:"contentDetails"`
				Statistics struct {
					ViewCount    string `json:"viewCount"`
					LikeCount    string `json:"likeCount"`
					CommentCount string `json:"commentCount"`
				} `json:"statistics"`
			} `json:"items"`
		}
		if err := y.apiGet(ctx, client, "/videos", q, &resp); err != nil {
			return nil, err
		}
		for _, it := range resp.Items {
			views, _ := strconv.ParseInt(it.Statistics.ViewCount, 10, 64)
			likes, _ := strconv.ParseInt(it.Statistics.LikeCount, 10, 64)
			comments, _ := strconv.ParseInt(it.Statistics.CommentCount, 10, 64)
			details = append(details, videoDetail{
				ID:           it.ID,
				Title:        it.Snippet.Title,
				Description:  it.Snippet.Description,
				Thumbnail:    it.Snippet.Thumbnails.High.URL,
				Duration:     it.ContentDetails.Duration,
				PublishedAt:  it.Snippet.PublishedAt,
				ViewCount:    views,
				LikeCount:    likes,
				CommentCount: comments,
			})
		}
		y.pacer.Wait()
	}
	return details, nil
}

func (y *YouTube) apiGet(ctx context.Context, client *http.Client, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.apiBase+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube api %s: status %d", path, resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

// ParseISO8601Duration converts a YouTube contentDetails duration such as
// "PT1H2M30S" into seconds. Returns false on anything it cannot read.
func ParseISO8601Duration(s string) (int, bool) {
	if !strings.HasPrefix(s, "P") {
		return 0, false
	}
	rest := s[1:]
	total := 0
	inTime := false
	num := 0
	haveNum := false
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
			haveNum = true
		case r == 'T':
			inTime = true
		case r == 'D' && !inTime:
			total += num * 86400
			num, haveNum = 0, false
		case r == 'H' && inTime:
			total += num * 3600
			num, haveNum = 0, false
		case r == 'M' && inTime:
			total += num * 60
			num, haveNum = 0, false
		case r == 'S' && inTime:
			total += num
			num, haveNum = 0, false
		default:
			return 0, false
		}
	}
	if haveNum {
		return 0, false
	}
	return total, true
}
