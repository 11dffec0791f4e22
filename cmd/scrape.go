package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expsdz/petroagent/internal/app"
)

var scrapeMaxPages int

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Crawl a petroleum reference site into the knowledge store",
	Long: `Crawls the site, extracts readable article text and stores it
chunked alongside the PDF content. Only same-domain links whose text
mentions a petroleum term are followed.

Without an argument the configured website_url is crawled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapeMaxPages, "max-pages", 0, "override the configured page cap")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadAppConfig()
	if err != nil {
		return err
	}
	if scrapeMaxPages > 0 {
		cfg.Scraper.MaxPages = scrapeMaxPages
	}

	a, err := app.Setup(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("starting application: %w", err)
	}
	defer func() { _ = a.Close() }()

	target := cfg.WebsiteURL
	if len(args) > 0 {
		target = args[0]
	}

	res, err := a.Scraper().Scrape(cmd.Context(), target)
	if err != nil {
		return err
	}

	fmt.Printf("Scraped %d pages (%d chunks) in %s\n", res.Pages, res.Chunks, res.Duration.Round(1e7))
	if res.Skipped > 0 {
		fmt.Printf("Skipped %d pages without readable content.\n", res.Skipped)
	}
	return nil
}
