package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rumah123-etl/config"
	"rumah123-etl/services"
	"rumah123-etl/storage"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Clean today's raw CSV into the processed CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ec, err := config.ReadExtractConfig(cfg.ConfigDir)
		if err != nil {
			return err
		}
		region, err := resolveRegion(cmd, ec)
		if err != nil {
			return err
		}

		path, err := transformStage(ec, region)
		if err != nil {
			return err
		}
		logger.Info("[transform] Processed data saved to %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)
}

// transformStage reads the dated raw CSV for the region, cleans it and
// writes the processed CSV, returning its path.
func transformStage(ec *config.ExtractConfig, region *config.Region) (string, error) {
	in, err := rawPath(region, ec)
	if err != nil {
		return "", err
	}

	logger.Section()
	logger.Info("[transform] Reading raw data from %s", in)

	rawListings, err := storage.ReadRawCSV(in)
	if err != nil {
		return "", err
	}

	cleaner := services.NewCleaner(logger)
	cleaned := cleaner.Clean(rawListings)
	if len(cleaned) == 0 {
		return "", fmt.Errorf("all listings were dropped during cleaning for region %s", region.Name)
	}

	out, err := processedPath(region, ec)
	if err != nil {
		return "", err
	}
	if err := storage.WriteCleanCSV(out, cleaned); err != nil {
		return "", err
	}

	logger.Info("[transform] Transformed %d records", len(cleaned))
	logger.Section()
	return out, nil
}
