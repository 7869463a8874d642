// Package notes writes markdown notes for articles and digests.
package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hawaiidisco/discoread/internal/config"
	"github.com/hawaiidisco/discoread/internal/model"
)

const maxSlugLen = 50

// Creator writes notes under root/folder, mirroring the archive's note layout.
type Creator struct {
	root               string
	folder             string
	tagsPrefix         string
	includeInsight     bool
	includeTranslation bool
}

// NewCreator builds a Creator rooted at root using the note-formatting settings.
func NewCreator(root string, s config.Settings) *Creator {
	return &Creator{
		root:               root,
		folder:             s.NotesFolder,
		tagsPrefix:         s.TagsPrefix,
		includeInsight:     s.IncludeInsight,
		includeTranslation: s.IncludeTranslation,
	}
}

// CreateArticleNote writes a note for an article, including optional bookmark
// tags and memo. If the note already exists it is reused: the existing path is
// returned and the file is left untouched.
func (c *Creator) CreateArticleNote(a model.Article, tags []string, memo string) (string, error) {
	dir := filepath.Join(c.root, c.folder, "articles", SanitizeFeedName(a.FeedName))
	path := filepath.Join(dir, Slugify(a.Title)+".md")

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating notes dir: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: \"%s\"\n", escapeYAML(a.Title))
	fmt.Fprintf(&b, "link: %s\n", a.Link)
	fmt.Fprintf(&b, "feed: \"%s\"\n", escapeYAML(a.FeedName))
	fmt.Fprintf(&b, "date: %s\n", dateOnly(a.EffectiveTimestamp()))
	b.WriteString("tags:\n")
	fmt.Fprintf(&b, "  - %s\n", c.tagsPrefix)
	for _, t := range tags {
		fmt.Fprintf(&b, "  - %s/%s\n", c.tagsPrefix, Slugify(t))
	}
	b.WriteString("---\n\n")

	if a.Description != nil {
		b.WriteString(*a.Description + "\n")
	}
	if c.includeInsight && a.Insight != nil {
		b.WriteString("\n## Insight\n\n" + *a.Insight + "\n")
	}
	if c.includeTranslation && (a.TranslatedTitle != nil || a.TranslatedDesc != nil || a.TranslatedBody != nil) {
		b.WriteString("\n## Translation\n\n")
		if a.TranslatedTitle != nil {
			b.WriteString("**" + *a.TranslatedTitle + "**\n\n")
		}
		if a.TranslatedDesc != nil {
			b.WriteString(*a.TranslatedDesc + "\n\n")
		}
		if a.TranslatedBody != nil {
			b.WriteString(*a.TranslatedBody + "\n")
		}
	}
	if memo != "" {
		b.WriteString("\n## Memo\n\n" + memo + "\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing note: %w", err)
	}
	return path, nil
}

// CreateDigestNote writes a digest record to a dated note and returns its path.
func (c *Creator) CreateDigestNote(d model.Digest) (string, error) {
	dir := filepath.Join(c.root, c.folder, "digests")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating notes dir: %w", err)
	}

	date := dateOnly(d.CreatedAt)
	if date == "unknown" {
		date = time.Now().Format("2006-01-02")
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-digest-%dd.md", date, d.PeriodDays))

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "tags:\n  - %s/digest\n", c.tagsPrefix)
	fmt.Fprintf(&b, "period_days: %d\n", d.PeriodDays)
	fmt.Fprintf(&b, "article_count: %d\n", d.ArticleCount)
	b.WriteString("---\n\n")
	b.WriteString(d.Content + "\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing digest note: %w", err)
	}
	return path, nil
}

// Slugify turns text into a filesystem-safe slug: whitespace runs become
// hyphens, only word characters, Korean and hyphens survive, capped length.
func Slugify(text string) string {
	if s := slug(text, maxSlugLen); s != "" {
		return s
	}
	return "untitled"
}

// SanitizeFeedName slugifies a feed name for use as a directory name.
func SanitizeFeedName(name string) string {
	if s := slug(name, maxSlugLen); s != "" {
		return s
	}
	return "unknown"
}

func slug(text string, maxLen int) string {
	joined := strings.Join(strings.Fields(strings.TrimSpace(text)), "-")
	var b strings.Builder
	for _, r := range joined {
		if keepRune(r) {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if runes := []rune(s); len(runes) > maxLen {
		s = string(runes[:maxLen])
	}
	return s
}

func keepRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	case r >= 0x3131 && r <= 0xD79D: // Hangul
		return true
	}
	return false
}

func escapeYAML(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	return strings.ReplaceAll(text, `"`, `\"`)
}

func dateOnly(ts string) string {
	if ts == "" {
		return "unknown"
	}
	if len(ts) > 10 {
		return ts[:10]
	}
	return ts
}
