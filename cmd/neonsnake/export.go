package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/neonsnake/internal/storage"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the value table or episodes to Parquet",
	Long: `Write learned or recorded data to zstd-compressed Parquet files for
offline analysis.

Examples:
  neonsnake export table --out table.parquet
  neonsnake export episodes --out episodes.parquet`,
}

var exportTableCmd = &cobra.Command{
	Use:   "table",
	Short: "Export the saved value table",
	Args:  cobra.NoArgs,
	Run:   runExportTable,
}

var exportEpisodesCmd = &cobra.Command{
	Use:   "episodes",
	Short: "Export the recorded training episodes",
	Args:  cobra.NoArgs,
	Run:   runExportEpisodes,
}

func init() {
	exportCmd.PersistentFlags().StringVar(&flagExportOut, "out", "", "Output Parquet file (default <kind>.parquet)")
	exportCmd.AddCommand(exportTableCmd)
	exportCmd.AddCommand(exportEpisodesCmd)
}

func exportPath(kind string) string {
	if flagExportOut != "" {
		return flagExportOut
	}
	return kind + ".parquet"
}

func runExportTable(_ *cobra.Command, _ []string) {
	store := mustOpenStore()
	defer store.Close()

	table, episode, err := store.LoadTable()
	if err != nil {
		fail("%v", err)
	}
	if table == nil {
		fail("no value table saved yet; run 'neonsnake train' first")
	}

	out := exportPath("table")
	if err := storage.ExportTableParquet(out, table); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Wrote %s (%d states, %d values, episode %d)\n", out, table.Len(), len(table.Entries()), episode)
}

func runExportEpisodes(_ *cobra.Command, _ []string) {
	store := mustOpenStore()
	defer store.Close()

	episodes, err := store.Episodes(0)
	if err != nil {
		fail("%v", err)
	}
	if len(episodes) == 0 {
		fail("no episodes recorded; run 'neonsnake train' first")
	}

	out := exportPath("episodes")
	if err := storage.ExportEpisodesParquet(out, episodes); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Wrote %s (%d episodes)\n", out, len(episodes))
}
