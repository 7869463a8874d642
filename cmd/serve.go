package cmd

import (
	"log"

	"github.com/hawaiidisco/discoread/internal/server"
	"github.com/spf13/cobra"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the archive over a read-only JSON API",
	Run: func(cmd *cobra.Command, args []string) {
		db, cfg, err := openReader()
		if err != nil {
			fail(err)
		}
		defer db.Close()

		// Digest generation is optional; the API reports 503 when unconfigured.
		gen, err := newGenerator(cfg)
		if err != nil {
			log.Printf("digest generation disabled: %v", err)
			gen = nil
		}

		if err := server.New(db, gen, cfg).Start(flagAddr); err != nil {
			fail(err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "127.0.0.1:7780", "listen address")
}
