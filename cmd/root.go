package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"rumah123-etl/config"
	"rumah123-etl/storage"
	"rumah123-etl/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rumah123-etl",
	Short: "Property listing ETL for rumah123.com",
	Long: "Extracts property listing cards from rumah123.com, transforms them into\n" +
		"typed records, and loads them into PostgreSQL through a staging table\n" +
		"that is promoted into the production table keyed by the listing link.",
}

// Execute runs the CLI. SIGINT/SIGTERM cancel the command context so a
// running scrape can return what it has collected.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("region", "", "Region name from configs/extract.yaml (default: first configured region)")
	rootCmd.PersistentFlags().String("config-dir", "", "Directory holding extract.yaml and load.yaml")
}

func initConfig() {
	logger = utils.NewLogger()
	cfg = config.Load()

	if v, _ := rootCmd.PersistentFlags().GetString("config-dir"); v != "" {
		cfg.ConfigDir = v
	}
}

// resolveRegion picks the region from the --region flag, falling back to the
// first configured one.
func resolveRegion(cmd *cobra.Command, ec *config.ExtractConfig) (*config.Region, error) {
	name, _ := cmd.Flags().GetString("region")
	if name == "" {
		return &ec.Regions[0], nil
	}
	return ec.Region(name)
}

// artifactName builds the base filename shared by the raw and processed CSVs
// of one region run.
func artifactName(region *config.Region, ec *config.ExtractConfig) string {
	return fmt.Sprintf("data_%s_%s_%s", region.Name, ec.PropertyType, ec.AdsType)
}

func rawPath(region *config.Region, ec *config.ExtractConfig) (string, error) {
	return storage.DatedPath(filepath.Join(cfg.DataDir, "raw"), artifactName(region, ec))
}

func processedPath(region *config.Region, ec *config.ExtractConfig) (string, error) {
	return storage.DatedPath(filepath.Join(cfg.DataDir, "processed"), artifactName(region, ec))
}
