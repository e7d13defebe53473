package main

import (
	"encoding/json"
	"fmt"

	"github.com/limaJavier/classscheduler/internal/metrics"
	"github.com/limaJavier/classscheduler/pkg/classsearch"

	"github.com/spf13/cobra"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections COURSE [SECTION]",
	Short: "Print the sections of a course, or a single section",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSections,
}

var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "List the terms offered by the class-search site, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runTerms,
}

func runSections(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	provider, cleanup, err := newProvider(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	var result any
	if len(args) == 2 {
		result, err = provider.SectionForCourse(cmd.Context(), args[0], args[1])
	} else {
		result, err = provider.SectionsForCourse(cmd.Context(), args[0])
	}
	if err != nil {
		return err
	}

	outputJson, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(outputJson))
	return nil
}

func runTerms(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	terms, err := classsearch.NewClient(cfg.ClassSearch(), metrics.ClassSearchRecorder{}, logger).Terms(cmd.Context())
	if err != nil {
		return err
	}
	for _, term := range terms {
		fmt.Fprintln(cmd.OutOrStdout(), term)
	}
	return nil
}
