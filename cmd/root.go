// Package cmd implements the discoread command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/hawaiidisco/discoread/internal/anthropic"
	"github.com/hawaiidisco/discoread/internal/config"
	"github.com/hawaiidisco/discoread/internal/database"
	"github.com/hawaiidisco/discoread/internal/digest"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "discoread",
	Short: "Read-only companion for a hawaiidisco article archive",
	Long: "discoread browses, searches and summarizes a hawaiidisco article archive.\n" +
		"The archive database is produced by the hawaiidisco ingestion tool; discoread never writes to it.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(feedsCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("discoread %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersionInfo stamps build metadata injected at link time.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

func loadSettings() (config.Settings, error) {
	return config.Load(flagConfig)
}

// openReader loads settings and opens the archive snapshot.
// The caller owns the returned reader and must Close it.
func openReader() (*database.Reader, config.Settings, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, cfg, err
	}
	db := database.New()
	if err := db.Open(cfg.DBPath); err != nil {
		return nil, cfg, err
	}
	return db, cfg, nil
}

// newGenerator wires the digest pipeline, or fails when no credential is set.
func newGenerator(cfg config.Settings) (*digest.Generator, error) {
	client, err := anthropic.New(cfg.APIKey(), cfg.AIModel)
	if err != nil {
		return nil, err
	}
	return digest.New(client, cfg.PeriodDays), nil
}
