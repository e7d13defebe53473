package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/limaJavier/classscheduler/pkg/catalog"
	"github.com/limaJavier/classscheduler/pkg/model"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const MB float32 = 1024 * 1024

var (
	dayPatterns = []string{"MWF", "TR", "MW", "T", "R", "F", "W"}
	durations   = []int{50, 75, 110, 170}

	seed    uint64
	outFile string
)

type ScenarioMetadata struct {
	Name              string
	Courses           int
	SectionsPerCourse int
	CorequisiteRatio  float32
}

type BenchmarkResult struct {
	Scenario  ScenarioMetadata
	Seed      uint64
	Duration  int64 // Milliseconds
	Memory    float32
	Schedules int
	Errors    int
}

var rootCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Measure schedule enumeration over synthetic catalogs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scenarios := getScenarios()
		results := make([]BenchmarkResult, 0, len(scenarios))

		for _, scenario := range scenarios {
			fmt.Printf("Benchmarking scenario \"%v\" with %v courses, %v sections per course and corequisite ratio %v\n", scenario.Name, scenario.Courses, scenario.SectionsPerCourse, scenario.CorequisiteRatio)
			results = append(results, measure(scenario, seed))
		}

		return toCsv(results, outFile)
	},
}

func init() {
	rootCmd.Flags().Uint64Var(&seed, "seed", 1, "Seed of the synthetic catalogs")
	rootCmd.Flags().StringVar(&outFile, "out", "benchmark_results.csv", "Path to the CSV file where the results will be written")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func getScenarios() []ScenarioMetadata {
	return []ScenarioMetadata{
		{Name: "small", Courses: 3, SectionsPerCourse: 3},
		{Name: "typical", Courses: 5, SectionsPerCourse: 4, CorequisiteRatio: 0.2},
		{Name: "lab-heavy", Courses: 5, SectionsPerCourse: 4, CorequisiteRatio: 0.6},
		{Name: "wide", Courses: 6, SectionsPerCourse: 8, CorequisiteRatio: 0.3},
		{Name: "large", Courses: 8, SectionsPerCourse: 6, CorequisiteRatio: 0.25},
	}
}

// generateCatalog builds a deterministic catalog for the scenario. Corequisite courses are listed after the course that requires them
func generateCatalog(scenario ScenarioMetadata, seed uint64) (catalog.RawCatalog, []string) {
	random := rand.New(rand.NewPCG(seed, uint64(scenario.Courses*1000+scenario.SectionsPerCourse)))

	rawCatalog := catalog.RawCatalog{Courses: make([]catalog.RawCourse, 0, scenario.Courses)}
	requested := make([]string, 0, scenario.Courses)
	for i := range scenario.Courses {
		courseId := fmt.Sprintf("SYN%05d", 10000+i*10)
		requested = append(requested, courseId)

		var corequisites []string
		var lab *catalog.RawCourse
		if random.Float32() < scenario.CorequisiteRatio {
			labId := fmt.Sprintf("LAB%05d", 10000+i*10)
			corequisites = []string{labId}
			lab = &catalog.RawCourse{CourseId: labId, Name: "Lab " + labId, Sections: randomSections(random, scenario.SectionsPerCourse/2+1, nil)}
		}

		rawCatalog.Courses = append(rawCatalog.Courses, catalog.RawCourse{
			CourseId: courseId,
			Name:     "Course " + courseId,
			Sections: randomSections(random, scenario.SectionsPerCourse, corequisites),
		})
		if lab != nil {
			rawCatalog.Courses = append(rawCatalog.Courses, *lab)
		}
	}
	return rawCatalog, requested
}

func randomSections(random *rand.Rand, count int, corequisites []string) []catalog.RawSection {
	return lo.Times(count, func(i int) catalog.RawSection {
		start := 8*60 + random.IntN(20)*30
		end := start + durations[random.IntN(len(durations))]
		return catalog.RawSection{
			SectionId:    fmt.Sprintf("%02d", i+1),
			Crn:          fmt.Sprint(random.IntN(90000) + 10000),
			TotalSeats:   30,
			OpenSeats:    random.IntN(31),
			Meetings:     map[string]string{dayPatterns[random.IntN(len(dayPatterns))]: fmt.Sprintf("%02d:%02d-%02d:%02d", start/60, start%60, end/60, end%60)},
			Corequisites: corequisites,
		}
	})
}

func measure(scenario ScenarioMetadata, seed uint64) BenchmarkResult {
	rawCatalog, requested := generateCatalog(scenario, seed)
	provider, err := catalog.ProcessRawCatalog(rawCatalog)
	if err != nil {
		log.Fatalf("cannot build catalog for scenario \"%v\": %v", scenario.Name, err)
	}
	builder := model.NewScheduleBuilder(provider, zerolog.Nop())

	runtime.GC()
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)

	started := time.Now()
	schedules, errors := builder.Build(context.Background(), requested)
	duration := time.Since(started)

	runtime.ReadMemStats(&after)

	return BenchmarkResult{
		Scenario:  scenario,
		Seed:      seed,
		Duration:  duration.Milliseconds(),
		Memory:    float32(after.TotalAlloc-before.TotalAlloc) / MB,
		Schedules: len(schedules),
		Errors:    len(errors),
	}
}

func toCsv(results []BenchmarkResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Scenario", "Courses", "SectionsPerCourse", "CorequisiteRatio", "Seed", "Duration(ms)", "Allocated(MB)", "Schedules", "Errors"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{
			result.Scenario.Name,
			fmt.Sprintf("%d", result.Scenario.Courses),
			fmt.Sprintf("%d", result.Scenario.SectionsPerCourse),
			fmt.Sprintf("%.2f", result.Scenario.CorequisiteRatio),
			fmt.Sprintf("%d", result.Seed),
			fmt.Sprintf("%d", result.Duration),
			fmt.Sprintf("%.1f", result.Memory),
			fmt.Sprintf("%d", result.Schedules),
			fmt.Sprintf("%d", result.Errors),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}
	return nil
}
