// Package digest turns a set of articles into a generated summary document.
package digest

import (
	"context"
	"fmt"
	"strings"

	"github.com/hawaiidisco/discoread/internal/anthropic"
	"github.com/hawaiidisco/discoread/internal/model"
)

const promptTemplate = "You are a senior tech editor creating a weekly digest of notable articles.\n" +
	"Below are the articles from the past %d days.\n\n" +
	"<articles>\n%s\n</articles>\n\n" +
	"Please create a concise, well-structured digest in English:\n" +
	"1. **Key Themes**: Identify 2-4 major themes or trends across these articles\n" +
	"2. **Top Highlights**: Summarize the 3-5 most important articles with why they matter\n" +
	"3. **What to Watch**: Briefly note emerging topics or implications for engineers\n\n" +
	"Keep the digest focused and actionable. Use markdown formatting."

// Completer is the remote generation boundary. *anthropic.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Generator assembles digest prompts and invokes the generation boundary.
// It holds no shared state; concurrent Generate calls are independent.
type Generator struct {
	ai                Completer
	defaultPeriodDays int
}

// New creates a Generator. defaultPeriodDays is used when Generate is called
// without a period override.
func New(ai Completer, defaultPeriodDays int) *Generator {
	return &Generator{ai: ai, defaultPeriodDays: defaultPeriodDays}
}

// Generate builds the digest prompt for articles and returns the generated
// text. periodDays overrides the configured default when positive. An empty
// article list is rejected before any remote call.
func (g *Generator) Generate(ctx context.Context, articles []model.Article, periodDays int) (string, error) {
	if len(articles) == 0 {
		return "", fmt.Errorf("no articles to generate digest from")
	}
	if periodDays <= 0 {
		periodDays = g.defaultPeriodDays
	}
	return g.ai.Complete(ctx, BuildPrompt(articles, periodDays), anthropic.DefaultMaxTokens)
}

// BuildPrompt renders the full prompt for a digest over articles covering the
// given period. The output is deterministic: same input, same bytes.
func BuildPrompt(articles []model.Article, periodDays int) string {
	blocks := make([]string, len(articles))
	for i, a := range articles {
		blocks[i] = formatArticle(a)
	}
	return fmt.Sprintf(promptTemplate, periodDays, strings.Join(blocks, "\n"))
}

// formatArticle renders one article as a fixed five-line block.
func formatArticle(a model.Article) string {
	lines := []string{
		"- Title: " + a.Title,
		"  Feed: " + a.FeedName,
		"  Date: " + formatDate(a.EffectiveTimestamp()),
		"  Description: " + orNone(a.Description),
		"  Insight: " + orNone(a.Insight),
	}
	return strings.Join(lines, "\n")
}

// formatDate truncates a timestamp to its calendar-date portion.
func formatDate(ts string) string {
	if ts == "" {
		return "unknown"
	}
	if len(ts) > 10 {
		return ts[:10]
	}
	return ts
}

func orNone(s *string) string {
	if s == nil {
		return "(none)"
	}
	return *s
}
