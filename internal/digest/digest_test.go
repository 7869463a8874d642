package digest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hawaiidisco/discoread/internal/model"
	"github.com/stretchr/testify/require"
)

// stubCompleter records calls and returns a canned response.
type stubCompleter struct {
	calls   int
	prompts []string
	result  string
	err     error
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	return s.result, s.err
}

func ptr(s string) *string { return &s }

func sampleArticles() []model.Article {
	return []model.Article{
		{
			Title:       "Post A",
			FeedName:    "Cloudflare",
			PublishedAt: ptr("2024-01-01 10:30:00"),
			FetchedAt:   "2024-01-02 00:00:00",
			Description: ptr("Desc A"),
			Insight:     ptr("Insight A"),
		},
		{
			Title:     "Post B",
			FeedName:  "GitHub",
			FetchedAt: "2024-01-02 08:00:00",
		},
	}
}

func TestGenerateEmptyInputRejectedBeforeRemoteCall(t *testing.T) {
	stub := &stubCompleter{result: "unused"}
	g := New(stub, 7)

	_, err := g.Generate(context.Background(), nil, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no articles")
	require.Zero(t, stub.calls)
}

func TestGenerateReturnsBoundaryResult(t *testing.T) {
	stub := &stubCompleter{result: "the digest"}
	g := New(stub, 7)

	out, err := g.Generate(context.Background(), sampleArticles(), 0)
	require.NoError(t, err)
	require.Equal(t, "the digest", out)
	require.Equal(t, 1, stub.calls)
	require.Equal(t, BuildPrompt(sampleArticles(), 7), stub.prompts[0])
}

func TestGenerateBoundaryErrorPropagates(t *testing.T) {
	stub := &stubCompleter{err: fmt.Errorf("boom")}
	g := New(stub, 7)

	_, err := g.Generate(context.Background(), sampleArticles(), 0)
	require.Error(t, err)
	require.Equal(t, 1, stub.calls)
}

func TestGeneratePeriodOverride(t *testing.T) {
	stub := &stubCompleter{result: "ok"}
	g := New(stub, 7)

	_, err := g.Generate(context.Background(), sampleArticles(), 30)
	require.NoError(t, err)
	require.Contains(t, stub.prompts[0], "the past 30 days")

	_, err = g.Generate(context.Background(), sampleArticles(), 0)
	require.NoError(t, err)
	require.Contains(t, stub.prompts[1], "the past 7 days")
}

func TestBuildPromptDeterministic(t *testing.T) {
	articles := sampleArticles()
	first := BuildPrompt(articles, 7)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, BuildPrompt(articles, 7))
	}
}

func TestBuildPromptArticleBlocks(t *testing.T) {
	prompt := BuildPrompt(sampleArticles(), 7)

	// Post A uses its published date, truncated to the calendar day.
	require.Contains(t, prompt, "- Title: Post A\n"+
		"  Feed: Cloudflare\n"+
		"  Date: 2024-01-01\n"+
		"  Description: Desc A\n"+
		"  Insight: Insight A")

	// Post B has no published date and no description or insight.
	require.Contains(t, prompt, "- Title: Post B\n"+
		"  Feed: GitHub\n"+
		"  Date: 2024-01-02\n"+
		"  Description: (none)\n"+
		"  Insight: (none)")

	// Blocks appear in input order inside the articles tag.
	require.Less(t, strings.Index(prompt, "Post A"), strings.Index(prompt, "Post B"))
	require.Contains(t, prompt, "<articles>\n")
	require.Contains(t, prompt, "\n</articles>")
}

func TestBuildPromptOrderFollowsInput(t *testing.T) {
	articles := sampleArticles()
	reversed := []model.Article{articles[1], articles[0]}
	prompt := BuildPrompt(reversed, 7)
	require.Less(t, strings.Index(prompt, "Post B"), strings.Index(prompt, "Post A"))
}

func TestFormatDate(t *testing.T) {
	require.Equal(t, "2024-01-01", formatDate("2024-01-01 10:30:00"))
	require.Equal(t, "2024-01-01", formatDate("2024-01-01T10:30:00Z"))
	require.Equal(t, "2024-01-01", formatDate("2024-01-01"))
	require.Equal(t, "unknown", formatDate(""))
}
