package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rumah123-etl/config"
	"rumah123-etl/services"
	"rumah123-etl/storage"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the processed CSV into staging and promote it to production",
	RunE: func(cmd *cobra.Command, args []string) error {
		ec, err := config.ReadExtractConfig(cfg.ConfigDir)
		if err != nil {
			return err
		}
		region, err := resolveRegion(cmd, ec)
		if err != nil {
			return err
		}
		lc, err := config.ReadLoadConfig(cfg.ConfigDir)
		if err != nil {
			return err
		}

		return loadStage(ec, lc, region)
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

// loadStage reads the processed CSV for the region, stages it in PostgreSQL
// and promotes it into the production table, then prints a market summary.
func loadStage(ec *config.ExtractConfig, lc *config.LoadConfig, region *config.Region) error {
	if lc.UniqueKey != "link" {
		return fmt.Errorf("unsupported unique key %q: the listing schema is keyed by link", lc.UniqueKey)
	}

	in, err := processedPath(region, ec)
	if err != nil {
		return err
	}

	logger.Section()
	logger.Info("[load] Reading transformed data from %s", in)

	listings, err := storage.ReadCleanCSV(in)
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		logger.Info("[load] No data to load — exiting")
		return nil
	}

	pw, err := storage.NewPostgresWriter(cfg.DSN(), lc.StagingTable, lc.ProductionTable, lc.BatchSize)
	if err != nil {
		return err
	}
	defer pw.Close()

	report, err := pw.Load(listings)
	if err != nil {
		return err
	}
	logger.Info("[load] Staged %d records — %d inserted, %d updated in %s",
		report.Staged, report.Inserted, report.Updated, lc.ProductionTable)

	promoted, err := pw.FetchAll()
	if err != nil {
		logger.Error("[load] Failed to fetch listings for insights: %v", err)
		logger.Section()
		return nil
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(promoted))
	return nil
}
