package cmd

import (
	"fmt"

	"github.com/hawaiidisco/discoread/internal/notes"
	"github.com/spf13/cobra"
)

var flagNoteDir string

var noteCmd = &cobra.Command{
	Use:   "note <article-id>",
	Short: "Create (or reuse) a markdown note for an article",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db, cfg, err := openReader()
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

		var (
			tags []string
			memo string
		)
		if bm, err := db.Bookmark(a.ID); err != nil {
			fail(err)
		} else if bm != nil {
			tags = bm.TagList()
			if bm.Memo != nil {
				memo = *bm.Memo
			}
		}

		path, err := notes.NewCreator(flagNoteDir, cfg).CreateArticleNote(*a, tags, memo)
		if err != nil {
			fail(err)
		}
		fmt.Println(path)
	},
}

func init() {
	noteCmd.Flags().StringVar(&flagNoteDir, "dir", ".", "root directory for notes")
}
