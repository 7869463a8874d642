// Package database provides read-only access to a hawaiidisco archive snapshot.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hawaiidisco/discoread/internal/model"
	_ "modernc.org/sqlite"
)

// DefaultArticleLimit caps article listings when the caller does not set one.
const DefaultArticleLimit = 200

// Reader wraps a read-only SQLite connection to an archive snapshot.
// The zero value is a closed reader; all accessors on a closed reader
// return empty results rather than failing.
//
// Open, Reload and Close may be called concurrently with reads; an
// internal lock keeps readers from observing a half-open state.
type Reader struct {
	mu   sync.RWMutex
	conn *sql.DB
}

// New returns a closed Reader.
func New() *Reader {
	return &Reader{}
}

// resolvePath expands a leading "~" against the user's home directory.
func resolvePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// openSnapshot opens the file at path read-only and immutable and verifies
// the connection. It does not touch the reader; callers install the handle
// under the lock.
func openSnapshot(path string) (*sql.DB, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(resolved); err != nil {
		return nil, fmt.Errorf("database not found: %s", resolved)
	}

	dsn := "file:" + resolved + "?mode=ro&immutable=1"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open db: %w", err)
	}
	return conn, nil
}

// Open loads the snapshot at path. The file is opened read-only and
// immutable: changes written by the ingestion process are not observed
// until Reload. Fails if the resolved path does not exist.
func (r *Reader) Open(path string) error {
	conn, err := openSnapshot(path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		r.conn.Close()
	}
	r.conn = conn
	return nil
}

// Reload swaps in a fresh snapshot. The new connection is opened before
// the old handle is released, and the swap happens under one exclusive
// lock, so concurrent readers see either the old data or the new data,
// never a closed reader. If the open fails the reader ends closed, not
// half-open with stale data.
func (r *Reader) Reload(path string) error {
	conn, err := openSnapshot(path)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		r.conn.Close()
	}
	r.conn = conn
	return err
}

// Close releases the snapshot. Idempotent.
func (r *Reader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
}

// IsOpen reports whether a snapshot is currently loaded.
func (r *Reader) IsOpen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conn != nil
}

// ListOptions narrows an article listing. Zero values mean "no constraint".
type ListOptions struct {
	Filter   model.Filter
	FeedName string
	Search   string
	Limit    int
}

// Articles order most-recent-first: published_at when present, else fetched_at.
const articleOrder = " ORDER BY COALESCE(published_at, fetched_at) DESC"

const articleColumns = "id, feed_name, title, link, description, published_at, fetched_at, " +
	"is_read, is_bookmarked, insight, translated_title, translated_desc, translated_body"

// escapeLike escapes the LIKE metacharacters in user-supplied search text so a
// literal search for "%" or "_" does not turn into a wildcard match. The
// escape character itself must be escaped first; every LIKE clause using the
// result declares ESCAPE '\'.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// ListArticles returns articles matching opts, newest first.
func (r *Reader) ListArticles(opts ListOptions) ([]model.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.conn == nil {
		return nil, nil
	}

	var (
		where []string
		args  []any
	)

	switch opts.Filter {
	case model.FilterBookmarked:
		where = append(where, "is_bookmarked = 1")
	case model.FilterUnread:
		where = append(where, "is_read = 0")
	}

	if opts.FeedName != "" {
		where = append(where, "feed_name = ?")
		args = append(args, opts.FeedName)
	}

	if opts.Search != "" {
		pattern := "%" + escapeLike(opts.Search) + "%"
		where = append(where, `(title LIKE ? ESCAPE '\'`+
			` OR description LIKE ? ESCAPE '\'`+
			` OR insight LIKE ? ESCAPE '\'`+
			` OR translated_title LIKE ? ESCAPE '\'`+
			` OR translated_desc LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern, pattern, pattern)
	}

	query := "SELECT " + articleColumns + " FROM articles"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += articleOrder + " LIMIT ?"

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultArticleLimit
	}
	args = append(args, limit)

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

// Article returns a single article by id, or nil if not found.
func (r *Reader) Article(articleID string) (*model.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.conn == nil {
		return nil, nil
	}

	rows, err := r.conn.Query("SELECT "+articleColumns+" FROM articles WHERE id = ?", articleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	defer rows.Close()
	articles, err := scanArticles(rows)
	if err != nil || len(articles) == 0 {
		return nil, err
	}
	return &articles[0], nil
}

// RecentArticles returns articles whose published or fetched time falls within
// the last N days, newest first, capped at limit. Either timestamp inside the
// window qualifies the article. A non-positive limit falls back to
// DefaultArticleLimit, as in ListArticles.
func (r *Reader) RecentArticles(days, limit int) ([]model.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.conn == nil {
		return nil, nil
	}

	if limit <= 0 {
		limit = DefaultArticleLimit
	}
	cutoff := fmt.Sprintf("-%d days", days)
	rows, err := r.conn.Query(
		"SELECT "+articleColumns+" FROM articles"+
			" WHERE published_at >= datetime('now', ?) OR fetched_at >= datetime('now', ?)"+
			articleOrder+" LIMIT ?",
		cutoff, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("recent articles: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

func scanArticles(rows *sql.Rows) ([]model.Article, error) {
	var articles []model.Article
	for rows.Next() {
		var (
			a                    model.Article
			isRead, isBookmarked int
		)
		if err := rows.Scan(&a.ID, &a.FeedName, &a.Title, &a.Link, &a.Description,
			&a.PublishedAt, &a.FetchedAt, &isRead, &isBookmarked,
			&a.Insight, &a.TranslatedTitle, &a.TranslatedDesc, &a.TranslatedBody); err != nil {
			return nil, err
		}
		a.IsRead = isRead != 0
		a.IsBookmarked = isBookmarked != 0
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// FeedNames returns the distinct feed names in the archive, sorted ascending.
func (r *Reader) FeedNames() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.conn == nil {
		return nil, nil
	}

	rows, err := r.conn.Query("SELECT DISTINCT feed_name FROM articles ORDER BY feed_name")
	if err != nil {
		return nil, fmt.Errorf("feed names: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Bookmark returns the bookmark row for an article, or nil if the article
// was never bookmarked.
func (r *Reader) Bookmark(articleID string) (*model.Bookmark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.conn == nil {
		return nil, nil
	}

	var b model.Bookmark
	err := r.conn.QueryRow(
		"SELECT id, article_id, bookmarked_at, tags, memo FROM bookmarks WHERE article_id = ?",
		articleID).Scan(&b.ID, &b.ArticleID, &b.BookmarkedAt, &b.Tags, &b.Memo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	return &b, nil
}

// BookmarkTags returns the parsed tag list for an article's bookmark, or an
// empty slice when there is no bookmark or no tags.
func (r *Reader) BookmarkTags(articleID string) ([]string, error) {
	b, err := r.Bookmark(articleID)
	if err != nil || b == nil {
		return nil, err
	}
	return b.TagList(), nil
}

// Digests returns stored digests newest first, optionally restricted to one
// period length. periodDays <= 0 means all periods.
func (r *Reader) Digests(periodDays int) ([]model.Digest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.conn == nil {
		return nil, nil
	}

	query := "SELECT id, created_at, period_days, article_count, content FROM digests"
	var args []any
	if periodDays > 0 {
		query += " WHERE period_days = ?"
		args = append(args, periodDays)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list digests: %w", err)
	}
	defer rows.Close()
	var digests []model.Digest
	for rows.Next() {
		var d model.Digest
		if err := rows.Scan(&d.ID, &d.CreatedAt, &d.PeriodDays, &d.ArticleCount, &d.Content); err != nil {
			return nil, err
		}
		digests = append(digests, d)
	}
	return digests, rows.Err()
}

// LatestDigest returns the newest digest for a period, or nil if none exists.
func (r *Reader) LatestDigest(periodDays int) (*model.Digest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.conn == nil {
		return nil, nil
	}

	var d model.Digest
	err := r.conn.QueryRow(
		"SELECT id, created_at, period_days, article_count, content FROM digests"+
			" WHERE period_days = ? ORDER BY created_at DESC LIMIT 1",
		periodDays).Scan(&d.ID, &d.CreatedAt, &d.PeriodDays, &d.ArticleCount, &d.Content)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest digest: %w", err)
	}
	return &d, nil
}

// ArticleCount returns the total number of articles.
func (r *Reader) ArticleCount() (int, error) {
	return r.count("SELECT COUNT(*) FROM articles")
}

// UnreadCount returns the number of unread articles.
func (r *Reader) UnreadCount() (int, error) {
	return r.count("SELECT COUNT(*) FROM articles WHERE is_read = 0")
}

// BookmarkedCount returns the number of bookmarked articles.
func (r *Reader) BookmarkedCount() (int, error) {
	return r.count("SELECT COUNT(*) FROM articles WHERE is_bookmarked = 1")
}

func (r *Reader) count(query string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.conn == nil {
		return 0, nil
	}
	var n int
	if err := r.conn.QueryRow(query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
