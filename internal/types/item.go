package types

import (
	"fmt"
	"time"
)

// Platform identifies a crawl source.
type Platform string

const (
	PlatformGitHub     Platform = "github"
	PlatformTrendshift Platform = "trendshift"
	PlatformReddit     Platform = "reddit"
	PlatformYouTube    Platform = "youtube"
	PlatformX          Platform = "x"
	PlatformThreads    Platform = "threads"
	PlatformLinkedIn   Platform = "linkedin"
)

// RankedPlatforms are the leaderboard-style sources whose items go through
// the ranking merge instead of the plain upsert.
var RankedPlatforms = map[Platform]bool{
	PlatformGitHub:     true,
	PlatformTrendshift: true,
}

// Status is the review lifecycle of a crawled item.
type Status string

const (
	StatusPending         Status = "pending"
	StatusPendingAnalysis Status = "pending_analysis"
	StatusCompleted       Status = "completed"
	StatusPublished       Status = "published"
	StatusIgnored         Status = "ignored"
)

// transitions is the set of allowed status moves. Published and ignored are
// terminal.
var transitions = map[Status][]Status{
	StatusPending:         {StatusPendingAnalysis, StatusCompleted, StatusIgnored},
	StatusPendingAnalysis: {StatusCompleted, StatusIgnored},
	StatusCompleted:       {StatusPublished, StatusIgnored},
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Same-status writes are always allowed (re-crawls keep status).
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Author identifies who produced a post.
type Author struct {
	Name   string `bson:"name,omitempty"   json:"name,omitempty"`
	URL    string `bson:"url,omitempty"    json:"url,omitempty"`
	Avatar string `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

// Item is a crawled content candidate pending admin review. Identity is the
// composite (Platform, PlatformID) pair; PlatformID is platform-native
// (tweet id, video id, "owner/name", synthetic "ts-<id>").
type Item struct {
	Platform   Platform `bson:"platform"    json:"platform"`
	PlatformID string   `bson:"platform_id" json:"platform_id"`

	Title         string `bson:"title,omitempty"          json:"title,omitempty"`
	TitleKo       string `bson:"title_ko,omitempty"       json:"title_ko,omitempty"`
	Description   string `bson:"description,omitempty"    json:"description,omitempty"`
	DescriptionKo string `bson:"description_ko,omitempty" json:"description_ko,omitempty"`
	ContentText   string `bson:"content_text,omitempty"   json:"content_text,omitempty"`
	ContentKo     string `bson:"content_ko,omitempty"     json:"content_ko,omitempty"`

	URL    string `bson:"url,omitempty"    json:"url,omitempty"`
	Author Author `bson:"author,omitempty" json:"author,omitempty"`

	ThumbnailURL  string   `bson:"thumbnail_url,omitempty"  json:"thumbnail_url,omitempty"`
	ScreenshotURL string   `bson:"screenshot_url,omitempty" json:"screenshot_url,omitempty"`
	MediaURLs     []string `bson:"media_urls,omitempty"     json:"media_urls,omitempty"`

	// RawData is an open, platform-specific bag (stars/forks for GitHub,
	// likes/reposts for X, score/upvote_ratio for Reddit). Schema-on-read;
	// merged rather than replaced on re-crawl.
	RawData map[string]any `bson:"raw_data,omitempty" json:"raw_data,omitempty"`

	// Ranking is present only for leaderboard platforms.
	Ranking *Ranking `bson:"ranking,omitempty" json:"ranking,omitempty"`

	Status    Status    `bson:"status"     json:"status"`
	CrawledAt time.Time `bson:"crawled_at" json:"crawled_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Key returns the natural key used for store-level uniqueness.
func (i *Item) Key() string {
	return fmt.Sprintf("%s:%s", i.Platform, i.PlatformID)
}

// NewItem creates an Item in the initial pending state.
func NewItem(platform Platform, platformID string) *Item {
	now := time.Now().UTC()
	return &Item{
		Platform:   platform,
		PlatformID: platformID,
		RawData:    make(map[string]any),
		Status:     StatusPending,
		CrawledAt:  now,
		UpdatedAt:  now,
	}
}

// SetRaw sets a raw_data field, allocating the map if needed.
func (i *Item) SetRaw(key string, value any) {
	if i.RawData == nil {
		i.RawData = make(map[string]any)
	}
	i.RawData[key] = value
}
