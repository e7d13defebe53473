package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/limaJavier/classscheduler/internal/metrics"
	"github.com/limaJavier/classscheduler/pkg/model"

	"github.com/spf13/cobra"
)

var (
	buildOut   string
	buildLimit int
)

var buildCmd = &cobra.Command{
	Use:   "build COURSE...",
	Short: "Build every conflict-free schedule for the given courses",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildOut, "out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	buildCmd.Flags().IntVar(&buildLimit, "limit", 0, "Maximum number of schedules to output, where 0 means no limit")
}

type buildOutput struct {
	Schedules []*model.Schedule `json:"schedules"`
	Errors    []string          `json:"errors"`
}

func runBuild(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	provider, cleanup, err := newProvider(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	started := time.Now()
	schedules, errors := model.NewScheduleBuilder(provider, logger).Build(cmd.Context(), args)
	metrics.ObserveBuild(started, len(schedules), len(errors))
	logger.Info().Int("schedules", len(schedules)).Int("errors", len(errors)).Dur("elapsed", time.Since(started)).Msg("build finished")

	if buildLimit > 0 && len(schedules) > buildLimit {
		schedules = schedules[:buildLimit]
	}

	outputJson, err := json.MarshalIndent(buildOutput{Schedules: schedules, Errors: errors}, "", "  ")
	if err != nil {
		return fmt.Errorf("an error occurred while building output json: %w", err)
	}

	// Verify outfile is empty, if so then write the results to the Standard Output
	if buildOut == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(outputJson))
		return nil
	}
	if err := os.WriteFile(buildOut, outputJson, 0666); err != nil {
		return fmt.Errorf("an error occurred while writing to the output file: %w", err)
	}
	return nil
}
