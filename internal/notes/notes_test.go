package notes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hawaiidisco/discoread/internal/config"
	"github.com/hawaiidisco/discoread/internal/model"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "Hello-World"},
		{"  spaced   out  ", "spaced-out"},
		{"keep_underscores-and-hyphens", "keep_underscores-and-hyphens"},
		{"drop!@#$chars", "dropchars"},
		{"한글 제목", "한글-제목"},
		{"", "untitled"},
		{"!!!", "untitled"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}

func TestSlugifyLength(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "abc"
	}
	require.Len(t, []rune(Slugify(long)), 50)
}

func TestSanitizeFeedName(t *testing.T) {
	require.Equal(t, "Hacker-News", SanitizeFeedName("Hacker News"))
	require.Equal(t, "unknown", SanitizeFeedName(""))
	require.Equal(t, "unknown", SanitizeFeedName("???"))
}

func testCreator(t *testing.T) (*Creator, string) {
	t.Helper()
	root := t.TempDir()
	return NewCreator(root, config.Default()), root
}

func sampleArticle() model.Article {
	return model.Article{
		ID:          "a1",
		FeedName:    "Hacker News",
		Title:       "A Great Article",
		Link:        "https://example.com/a1",
		Description: ptr("Some description"),
		PublishedAt: ptr("2024-01-05 10:00:00"),
		FetchedAt:   "2024-01-06 00:00:00",
		Insight:     ptr("Why it matters"),
	}
}

func TestCreateArticleNote(t *testing.T) {
	c, root := testCreator(t)

	path, err := c.CreateArticleNote(sampleArticle(), []string{"go", "unit testing"}, "remember this")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "hawaii-disco", "articles", "Hacker-News", "A-Great-Article.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	require.Contains(t, content, `title: "A Great Article"`)
	require.Contains(t, content, "link: https://example.com/a1")
	require.Contains(t, content, "date: 2024-01-05")
	require.Contains(t, content, "  - hawaiidisco\n")
	require.Contains(t, content, "  - hawaiidisco/go\n")
	require.Contains(t, content, "  - hawaiidisco/unit-testing\n")
	require.Contains(t, content, "Some description")
	require.Contains(t, content, "## Insight")
	require.Contains(t, content, "Why it matters")
	require.Contains(t, content, "## Memo")
	require.Contains(t, content, "remember this")
}

func TestCreateArticleNoteReusesExisting(t *testing.T) {
	c, _ := testCreator(t)
	a := sampleArticle()

	path, err := c.CreateArticleNote(a, nil, "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("user edits"), 0o644))

	again, err := c.CreateArticleNote(a, nil, "")
	require.NoError(t, err)
	require.Equal(t, path, again)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "user edits", string(data))
}

func TestCreateArticleNoteEscapesFrontmatter(t *testing.T) {
	c, _ := testCreator(t)
	a := sampleArticle()
	a.Title = `He said "hi"`

	path, err := c.CreateArticleNote(a, nil, "")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `title: "He said \"hi\""`)
}

func TestCreateArticleNoteRespectsToggles(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.IncludeInsight = false
	cfg.IncludeTranslation = false
	c := NewCreator(root, cfg)

	a := sampleArticle()
	a.TranslatedTitle = ptr("translated")

	path, err := c.CreateArticleNote(a, nil, "")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "## Insight")
	require.NotContains(t, string(data), "## Translation")
}

func TestCreateDigestNote(t *testing.T) {
	c, root := testCreator(t)

	path, err := c.CreateDigestNote(model.Digest{
		CreatedAt:    "2024-02-01 09:00:00",
		PeriodDays:   7,
		ArticleCount: 12,
		Content:      "## Key Themes\n\ndigest body",
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "hawaii-disco", "digests", "2024-02-01-digest-7d.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "period_days: 7")
	require.Contains(t, content, "article_count: 12")
	require.Contains(t, content, "digest body")
	require.Contains(t, content, "  - hawaiidisco/digest")
}
