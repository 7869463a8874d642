// Package model defines shared data structures for the archive.
package model

import "strings"

// Article represents a single archived article row.
// Nullable columns are pointers so that absent and empty values stay distinct.
type Article struct {
	ID              string  `json:"id"`
	FeedName        string  `json:"feed_name"`
	Title           string  `json:"title"`
	Link            string  `json:"link"`
	Description     *string `json:"description"`
	PublishedAt     *string `json:"published_at"`
	FetchedAt       string  `json:"fetched_at"`
	IsRead          bool    `json:"is_read"`
	IsBookmarked    bool    `json:"is_bookmarked"`
	Insight         *string `json:"insight"`
	TranslatedTitle *string `json:"translated_title"`
	TranslatedDesc  *string `json:"translated_desc"`
	TranslatedBody  *string `json:"translated_body"`
}

// EffectiveTimestamp returns the timestamp used for ordering and windowing:
// published_at when present, otherwise fetched_at (always set by ingestion).
func (a Article) EffectiveTimestamp() string {
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}
	return a.FetchedAt
}

// Bookmark represents bookmark metadata attached to an article.
type Bookmark struct {
	ID           int64   `json:"id"`
	ArticleID    string  `json:"article_id"`
	BookmarkedAt string  `json:"bookmarked_at"`
	Tags         *string `json:"tags"`
	Memo         *string `json:"memo"`
}

// TagList splits the comma-separated tags field into individual tags:
// whitespace trimmed, empty segments dropped, order preserved.
func (b Bookmark) TagList() []string {
	if b.Tags == nil {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(*b.Tags, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Digest is a previously generated summary covering a trailing window of days.
type Digest struct {
	ID           int64  `json:"id"`
	CreatedAt    string `json:"created_at"`
	PeriodDays   int    `json:"period_days"`
	ArticleCount int    `json:"article_count"`
	Content      string `json:"content"`
}

// Filter selects which articles a listing returns.
type Filter string

// Recognized listing filters.
const (
	FilterAll        Filter = "all"
	FilterBookmarked Filter = "bookmarked"
	FilterUnread     Filter = "unread"
)

// ParseFilter maps a user-supplied string to a Filter, defaulting to FilterAll.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterBookmarked:
		return FilterBookmarked
	case FilterUnread:
		return FilterUnread
	default:
		return FilterAll
	}
}
