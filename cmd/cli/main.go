package main

import (
	"context"
	"fmt"
	"os"

	"github.com/limaJavier/classscheduler/internal/config"
	"github.com/limaJavier/classscheduler/internal/logging"
	"github.com/limaJavier/classscheduler/internal/metrics"
	"github.com/limaJavier/classscheduler/internal/server"
	"github.com/limaJavier/classscheduler/pkg/catalog"
	"github.com/limaJavier/classscheduler/pkg/classsearch"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logger      zerolog.Logger
	cfg         *config.Config
	catalogFile string
)

var rootCmd = &cobra.Command{
	Use:           "classscheduler",
	Short:         "Class schedule builder",
	Long:          "Builds every conflict-free class schedule for a list of courses, taking corequisites into account.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "Path to a JSON course catalog; if empty, courses are looked up on the class-search site")
	rootCmd.AddCommand(buildCmd, sectionsCmd, termsCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment)
	return nil
}

// newProvider returns the catalog provider when --catalog is set and the class-search provider otherwise.
// The returned function releases the provider's resources
func newProvider(ctx context.Context) (server.SectionProvider, func(), error) {
	if catalogFile != "" {
		courses, err := catalog.CatalogFromJson(catalogFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug().Str("file", catalogFile).Int("courses", len(courses.CourseIds())).Msg("catalog loaded")
		return courses, func() {}, nil
	}

	client := classsearch.NewClient(cfg.ClassSearch(), metrics.ClassSearchRecorder{}, logger)
	term, err := classsearch.ResolveTerm(ctx, client, cfg.Term)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve term: %w", err)
	}
	logger.Info().Str("term", term).Msg("using class search term")

	tables := classsearch.NewTableSource(client, term)
	cleanup := func() {}
	switch cfg.CacheBackend {
	case config.CacheMemory:
		tables = classsearch.NewCachedTableSource(tables, classsearch.NewMemoryTableStore(), metrics.ClassSearchRecorder{}, logger)
	case config.CacheRedis:
		store := classsearch.NewRedisTableStore(cfg.Redis(), term, logger)
		tables = classsearch.NewCachedTableSource(tables, store, metrics.ClassSearchRecorder{}, logger)
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close table store")
			}
		}
	}

	return classsearch.NewProvider(tables, client, logger), cleanup, nil
}
