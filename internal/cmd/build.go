package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/zonograph/internal/output"
	"github.com/MeKo-Tech/zonograph/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a zone catalog from an OSM PBF extract",
	Long:  `Build reads an OpenStreetMap PBF extract and produces the typed, labelled, parented zone catalog.`,
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("input", "i", "", "OSM PBF file (required)")
	buildCmd.Flags().StringP("output", "o", "cosmogony.json", "Output file; format inferred from the extension")
	buildCmd.Flags().Bool("no-stats", false, "Do not display the statistics")
	buildCmd.Flags().Bool("disable-geom", false, "Do not read the geometry of the boundaries")
	buildCmd.Flags().String("country-code", "", "Country code to use when the extract contains no country")
	buildCmd.Flags().StringP("libpostal", "l", "./libpostal/resources/boundaries/osm/", "Directory of per-country rule files")
	buildCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	buildCmd.Flags().Bool("progress", true, "Show progress bar during the parallel stages")

	if err := buildCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark flag required: %v", err))
	}

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"build.input", "input"},
		{"build.output", "output"},
		{"build.no_stats", "no-stats"},
		{"build.disable_geom", "disable-geom"},
		{"build.country_code", "country-code"},
		{"build.libpostal", "libpostal"},
		{"build.workers", "workers"},
		{"build.progress", "progress"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, buildCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	input := viper.GetString("build.input")
	outputPath := viper.GetString("build.output")
	noStats := viper.GetBool("build.no_stats")
	disableGeom := viper.GetBool("build.disable_geom")
	countryCode := viper.GetString("build.country_code")
	libpostal := viper.GetString("build.libpostal")
	workers := viper.GetInt("build.workers")
	showProgress := viper.GetBool("build.progress")

	if logger == nil {
		initLogging()
	}

	// Catch a bad output name before spending time on the build.
	if outputPath != "" {
		if _, err := output.FromFilename(outputPath); err != nil {
			return err
		}
	}

	cosmogony, err := pipeline.Build(pipeline.Options{
		Input:        input,
		LibpostalDir: libpostal,
		CountryCode:  countryCode,
		DisableGeom:  disableGeom,
		Workers:      workers,
		ShowProgress: showProgress,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to build cosmogony: %w", err)
	}

	if outputPath != "" {
		logger.Info("writing output", "path", outputPath)
		if err := output.Write(cosmogony, outputPath); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if !noStats {
		fmt.Printf("Statistics for %s:\n%s", cosmogony.Meta.OSMFilename, cosmogony.Meta.Stats)
	}
	return nil
}
