package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expsdz/petroagent/internal/app"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Rebuild the knowledge store from a directory of PDF files",
	Long: `Reads every PDF in the directory, extracts and chunks its text and
stores the embedded chunks. The existing collection is replaced, so the
store always mirrors the current document set.

Without an argument the configured docs_dir is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadAppConfig()
	if err != nil {
		return err
	}

	a, err := app.Setup(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("starting application: %w", err)
	}
	defer func() { _ = a.Close() }()

	dir := cfg.DocsDir
	if len(args) > 0 {
		dir = args[0]
	}

	res, err := a.Ingester().IngestDir(cmd.Context(), dir)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d files (%d chunks) in %s\n", res.Files, res.Chunks, res.Duration.Round(1e7))
	if res.Failed > 0 {
		fmt.Printf("Skipped %d unreadable files; see the log for details.\n", res.Failed)
	}
	return nil
}
