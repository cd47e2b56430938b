package cmd

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"rumah123-etl/config"
	"rumah123-etl/storage"
	"rumah123-etl/utils"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run extract, transform and load end to end",
	RunE: func(cmd *cobra.Command, args []string) error {
		ec, err := config.ReadExtractConfig(cfg.ConfigDir)
		if err != nil {
			return err
		}
		lc, err := config.ReadLoadConfig(cfg.ConfigDir)
		if err != nil {
			return err
		}

		all, _ := cmd.Flags().GetBool("all")
		if !all {
			region, err := resolveRegion(cmd, ec)
			if err != nil {
				return err
			}
			return runPipeline(cmd.Context(), ec, lc, region)
		}

		// One pipeline per configured region, bounded by MAX_CONCURRENCY.
		pool := utils.NewWorkerPool(cfg.MaxConcurrency, cfg.BaseSleepMs)
		var mu sync.Mutex
		var firstErr error

		for i := range ec.Regions {
			region := &ec.Regions[i]
			pool.Submit(func() {
				if err := runPipeline(cmd.Context(), ec, lc, region); err != nil {
					logger.Error("[run] Region %s failed: %v", region.Name, err)
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			})
		}
		pool.Wait()
		return firstErr
	},
}

func init() {
	runCmd.Flags().Bool("all", false, "Run the pipeline for every configured region")
	rootCmd.AddCommand(runCmd)
}

// runPipeline executes extract → transform → load for one region and removes
// the intermediate CSVs afterwards, whether or not the run succeeded.
func runPipeline(ctx context.Context, ec *config.ExtractConfig, lc *config.LoadConfig, region *config.Region) error {
	var raw, processed string
	defer func() {
		logger.Info("[run] Cleaning up intermediate files for region %s", region.Name)
		if err := storage.RemoveArtifacts(raw, processed); err != nil {
			logger.Error("[run] Cleanup failed: %v", err)
		}
	}()

	var err error
	if raw, err = extractStage(ctx, ec, region); err != nil {
		return err
	}
	if processed, err = transformStage(ec, region); err != nil {
		return err
	}
	if err = loadStage(ec, lc, region); err != nil {
		return err
	}

	logger.Info("[run] Pipeline complete for region %s", region.Name)
	return nil
}
