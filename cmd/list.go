package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/hawaiidisco/discoread/internal/database"
	"github.com/hawaiidisco/discoread/internal/model"
	"github.com/spf13/cobra"
)

var (
	flagFilter string
	flagFeed   string
	flagSearch string
	flagLimit  int

	flagRecentDays  int
	flagRecentLimit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived articles",
	Run: func(cmd *cobra.Command, args []string) {
		db, _, err := openReader()
		if err != nil {
			fail(err)
		}
		defer db.Close()

		articles, err := db.ListArticles(database.ListOptions{
			Filter:   model.ParseFilter(flagFilter),
			FeedName: flagFeed,
			Search:   flagSearch,
			Limit:    flagLimit,
		})
		if err != nil {
			fail(err)
		}
		printArticleTable(articles)
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List articles from the last N days",
	Run: func(cmd *cobra.Command, args []string) {
		db, cfg, err := openReader()
		if err != nil {
			fail(err)
		}
		defer db.Close()

		days := flagRecentDays
		if days <= 0 {
			days = cfg.PeriodDays
		}
		limit := flagRecentLimit
		if limit <= 0 {
			limit = cfg.MaxArticles
		}

		articles, err := db.RecentArticles(days, limit)
		if err != nil {
			fail(err)
		}
		printArticleTable(articles)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <article-id>",
	Short: "Show one article in full",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db, _, err := openReader()
		if err != nil {
			fail(err)
		}
		defer db.Close()

		a, err := db.Article(args[0])
		if err != nil {
			fail(err)
		}
		if a == nil {
			fail(fmt.Errorf("article not found: %s", args[0]))
		}

		headerColor.Println(a.Title)
		fmt.Printf("Feed:  %s\n", a.FeedName)
		fmt.Printf("Date:  %s\n", dateOnly(a.EffectiveTimestamp()))
		fmt.Printf("Link:  %s\n", a.Link)
		fmt.Printf("Read:  %v  Bookmarked: %v\n", a.IsRead, a.IsBookmarked)
		if a.Description != nil {
			fmt.Printf("\n%s\n", *a.Description)
		}
		if a.Insight != nil {
			headerColor.Println("\nInsight")
			fmt.Println(*a.Insight)
		}
		if a.TranslatedTitle != nil {
			headerColor.Println("\nTranslation")
			fmt.Println(*a.TranslatedTitle)
			if a.TranslatedDesc != nil {
				fmt.Println(*a.TranslatedDesc)
			}
		}

		tags, err := db.BookmarkTags(a.ID)
		if err != nil {
			fail(err)
		}
		if len(tags) > 0 {
			dimColor.Printf("\nTags: %s\n", strings.Join(tags, ", "))
		}
	},
}

var feedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "List feed names in the archive",
	Run: func(cmd *cobra.Command, args []string) {
		db, _, err := openReader()
		if err != nil {
			fail(err)
		}
		defer db.Close()

		names, err := db.FeedNames()
		if err != nil {
			fail(err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive counts",
	Run: func(cmd *cobra.Command, args []string) {
		db, _, err := openReader()
		if err != nil {
			fail(err)
		}
		defer db.Close()

		total, err := db.ArticleCount()
		if err != nil {
			fail(err)
		}
		unread, err := db.UnreadCount()
		if err != nil {
			fail(err)
		}
		bookmarked, err := db.BookmarkedCount()
		if err != nil {
			fail(err)
		}

		t := newTable(os.Stdout)
		t.Header([]string{"Articles", "Unread", "Bookmarked"})
		t.Bulk([][]string{{fmt.Sprint(total), fmt.Sprint(unread), fmt.Sprint(bookmarked)}})
		t.Render()
	},
}

func init() {
	listCmd.Flags().StringVar(&flagFilter, "filter", "all", "filter: all, bookmarked, unread")
	listCmd.Flags().StringVar(&flagFeed, "feed", "", "exact feed name")
	listCmd.Flags().StringVar(&flagSearch, "search", "", "free-text search")
	listCmd.Flags().IntVar(&flagLimit, "limit", 0, "max results (default 200)")

	recentCmd.Flags().IntVar(&flagRecentDays, "days", 0, "trailing window in days (default from config)")
	recentCmd.Flags().IntVar(&flagRecentLimit, "limit", 0, "max results (default from config)")
}

func printArticleTable(articles []model.Article) {
	if len(articles) == 0 {
		dimColor.Println("no articles")
		return
	}
	t := newTable(os.Stdout)
	t.Header([]string{"ID", "Date", "Feed", "Title", "Flags"})
	rows := make([][]string, 0, len(articles))
	for _, a := range articles {
		var flags []string
		if !a.IsRead {
			flags = append(flags, "unread")
		}
		if a.IsBookmarked {
			flags = append(flags, "bookmarked")
		}
		rows = append(rows, []string{
			a.ID,
			dateOnly(a.EffectiveTimestamp()),
			a.FeedName,
			truncate(a.Title, 60),
			strings.Join(flags, ","),
		})
	}
	t.Bulk(rows)
	t.Render()
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
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
