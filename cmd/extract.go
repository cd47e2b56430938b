package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rumah123-etl/config"
	"rumah123-etl/scraper/rumah123"
	"rumah123-etl/storage"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Scrape listing cards and write the raw CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ec, err := config.ReadExtractConfig(cfg.ConfigDir)
		if err != nil {
			return err
		}
		region, err := resolveRegion(cmd, ec)
		if err != nil {
			return err
		}

		path, err := extractStage(cmd.Context(), ec, region)
		if err != nil {
			return err
		}
		logger.Info("[extract] Raw data saved to %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

// extractStage scrapes one region and writes the dated raw CSV, returning
// its path.
func extractStage(ctx context.Context, ec *config.ExtractConfig, region *config.Region) (string, error) {
	logger.Section()
	logger.Info("[extract] Extracting property data — region: %s", region.Name)

	s, err := rumah123.New(cfg, region, ec.AdsType, ec.PropertyType, ec.NumPages, logger)
	if err != nil {
		return "", err
	}

	rawListings, err := s.Scrape(ctx)
	if err != nil {
		return "", fmt.Errorf("scrape %s: %w", region.Name, err)
	}
	if len(rawListings) == 0 {
		return "", fmt.Errorf("no listings were scraped for region %s", region.Name)
	}

	path, err := rawPath(region, ec)
	if err != nil {
		return "", err
	}
	if err := storage.WriteRawCSV(path, rawListings); err != nil {
		return "", err
	}

	logger.Info("[extract] Extracted %d records", len(rawListings))
	logger.Section()
	return path, nil
}
