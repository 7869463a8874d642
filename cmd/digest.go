package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hawaiidisco/discoread/internal/model"
	"github.com/hawaiidisco/discoread/internal/notes"
	"github.com/spf13/cobra"
)

var (
	flagDigestDays   int
	flagDigestMax    int
	flagDigestSave   bool
	flagDigestPeriod int
	flagLatestPeriod int
	flagLatestSave   bool
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Generate or browse article digests",
}

var digestGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a digest from recent articles",
	Run: func(cmd *cobra.Command, args []string) {
		db, cfg, err := openReader()
		if err != nil {
			fail(err)
		}
		defer db.Close()

		gen, err := newGenerator(cfg)
		if err != nil {
			fail(err)
		}

		days := flagDigestDays
		if days <= 0 {
			days = cfg.PeriodDays
		}
		max := flagDigestMax
		if max <= 0 {
			max = cfg.MaxArticles
		}

		articles, err := db.RecentArticles(days, max)
		if err != nil {
			fail(err)
		}
		if len(articles) == 0 {
			fail(fmt.Errorf("no articles found in the last %d days", days))
		}

		dimColor.Fprintf(os.Stderr, "Generating digest from %d articles...\n", len(articles))
		content, err := gen.Generate(context.Background(), articles, days)
		if err != nil {
			fail(err)
		}

		fmt.Println(content)

		if flagDigestSave {
			creator := notes.NewCreator(".", cfg)
			path, err := creator.CreateDigestNote(model.Digest{
				CreatedAt:    time.Now().Format("2006-01-02 15:04:05"),
				PeriodDays:   days,
				ArticleCount: len(articles),
				Content:      content,
			})
			if err != nil {
				fail(err)
			}
			dimColor.Fprintf(os.Stderr, "Saved: %s\n", path)
		}
	},
}

var digestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached digests",
	Run: func(cmd *cobra.Command, args []string) {
		db, _, err := openReader()
		if err != nil {
			fail(err)
		}
		defer db.Close()

		digests, err := db.Digests(flagDigestPeriod)
		if err != nil {
			fail(err)
		}
		if len(digests) == 0 {
			dimColor.Println("no cached digests")
			return
		}

		t := newTable(os.Stdout)
		t.Header([]string{"Date", "Period", "Articles"})
		rows := make([][]string, 0, len(digests))
		for _, d := range digests {
			rows = append(rows, []string{
				dateOnly(d.CreatedAt),
				fmt.Sprintf("%dd", d.PeriodDays),
				fmt.Sprint(d.ArticleCount),
			})
		}
		t.Bulk(rows)
		t.Render()
	},
}

var digestLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the newest cached digest for a period",
	Run: func(cmd *cobra.Command, args []string) {
		db, cfg, err := openReader()
		if err != nil {
			fail(err)
		}
		defer db.Close()

		period := flagLatestPeriod
		if period <= 0 {
			period = cfg.PeriodDays
		}

		d, err := db.LatestDigest(period)
		if err != nil {
			fail(err)
		}
		if d == nil {
			fail(fmt.Errorf("no digest found for period %dd", period))
		}

		headerColor.Printf("%s · %d articles · %dd\n\n", dateOnly(d.CreatedAt), d.ArticleCount, d.PeriodDays)
		fmt.Println(d.Content)

		if flagLatestSave {
			path, err := notes.NewCreator(".", cfg).CreateDigestNote(*d)
			if err != nil {
				fail(err)
			}
			dimColor.Fprintf(os.Stderr, "Saved: %s\n", path)
		}
	},
}

func init() {
	digestGenerateCmd.Flags().IntVar(&flagDigestDays, "days", 0, "trailing window in days (default from config)")
	digestGenerateCmd.Flags().IntVar(&flagDigestMax, "max", 0, "max articles to include (default from config)")
	digestGenerateCmd.Flags().BoolVar(&flagDigestSave, "save", false, "save the digest as a note")

	digestListCmd.Flags().IntVar(&flagDigestPeriod, "period", 0, "restrict to one period length in days")

	digestLatestCmd.Flags().IntVar(&flagLatestPeriod, "period", 0, "period length in days (default from config)")
	digestLatestCmd.Flags().BoolVar(&flagLatestSave, "save", false, "save the digest as a note")

	digestCmd.AddCommand(digestGenerateCmd)
	digestCmd.AddCommand(digestListCmd)
	digestCmd.AddCommand(digestLatestCmd)
}
