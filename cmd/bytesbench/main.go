// Command bytesbench measures in-process throughput of the cursor,
// mapped-file, method-dispatch, and unique-timestamp layers this module
// implements. It is the direct descendant of the teacher's cmd/tk-bench:
// the same Config-then-flags-then-report shape, with hyperfine-driven
// subprocess timing of an external binary replaced by in-process timing
// of this library's own components (there is no external "tk" binary
// here — the subject under benchmark is the library itself).
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "bytesbench: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("bytesbench", pflag.ContinueOnError)

	configPath := flags.String("config", "", "path to a JSONC bench profile")
	scenarioNames := flags.StringSlice("scenarios", nil, "scenario names to run (default: all)")
	countsStr := flags.String("counts", "", "comma-separated operation counts (default: profile/defaults)")
	warmup := flags.Int("warmup", 0, "warmup runs per scenario/count (0: use profile/defaults)")
	runs := flags.Int("runs", 0, "measured runs per scenario/count (0: use profile/defaults)")
	outDir := flags.String("out", "", "report output directory (empty: use profile/defaults)")

	if err := flags.Parse(args); err != nil {
		return err
	}

	profile := DefaultProfile()

	if *configPath != "" {
		fromFile, err := LoadProfile(*configPath)
		if err != nil {
			return err
		}

		profile = mergeProfile(profile, fromFile)
	}

	overlay := Profile{Scenarios: *scenarioNames, Warmup: *warmup, Runs: *runs, OutDir: *outDir}

	if *countsStr != "" {
		counts, err := parseCounts(*countsStr)
		if err != nil {
			return err
		}

		overlay.Counts = counts
	}

	profile = mergeProfile(profile, overlay)

	if err := os.MkdirAll(profile.OutDir, 0o750); err != nil {
		return fmt.Errorf("creating output directory %q: %w", profile.OutDir, err)
	}

	results, err := runProfile(profile)
	if err != nil {
		return err
	}

	printTable(os.Stdout, results)

	return writeReport(profile.OutDir, results)
}

func parseCounts(s string) ([]int, error) {
	var counts []int

	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid count %q: %w", part, err)
		}

		counts = append(counts, n)
	}

	return counts, nil
}

// BenchResult is one (scenario, count) measurement, mirroring the
// teacher's BenchResult shape (label/runs/mean/min/max).
type BenchResult struct {
	Scenario string
	Count    int
	Runs     int
	Mean     time.Duration
	Min      time.Duration
	Max      time.Duration
}

func runProfile(p Profile) ([]BenchResult, error) {
	var results []BenchResult

	for _, name := range p.Scenarios {
		sc, ok := scenarioByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q (known: %s)", name, strings.Join(allScenarioNames(), ", "))
		}

		for _, count := range p.Counts {
			fmt.Fprintf(os.Stderr, "running %s x%d (warmup=%d runs=%d)\n", sc.Name, count, p.Warmup, p.Runs)

			res, err := measure(sc, count, p.Warmup, p.Runs)
			if err != nil {
				return nil, fmt.Errorf("%s x%d: %w", sc.Name, count, err)
			}

			results = append(results, res)
		}
	}

	return results, nil
}

func measure(sc Scenario, count, warmup, runs int) (BenchResult, error) {
	for i := 0; i < warmup; i++ {
		if err := sc.Run(count); err != nil {
			return BenchResult{}, err
		}
	}

	durations := make([]time.Duration, runs)

	for i := 0; i < runs; i++ {
		start := time.Now()

		if err := sc.Run(count); err != nil {
			return BenchResult{}, err
		}

		durations[i] = time.Since(start)
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	return BenchResult{
		Scenario: sc.Name,
		Count:    count,
		Runs:     runs,
		Mean:     total / time.Duration(runs),
		Min:      durations[0],
		Max:      durations[runs-1],
	}, nil
}

func printTable(w *os.File, results []BenchResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tCOUNT\tRUNS\tMEAN\tMIN\tMAX")

	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n", r.Scenario, r.Count, r.Runs, r.Mean, r.Min, r.Max)
	}

	_ = tw.Flush()
}

// getSystemInfo mirrors the teacher's report header (git revision, go
// version, GOOS/GOARCH) minus the hyperfine version line, since this
// harness has no external benchmarking tool dependency.
func getSystemInfo() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Run %s\n\n", time.Now().UTC().Format(time.RFC3339)))

	ctx := context.Background()

	if gitRev, err := exec.CommandContext(ctx, "git", "rev-parse", "--short", "HEAD").Output(); err == nil {
		sb.WriteString(fmt.Sprintf("- git: %s\n", strings.TrimSpace(string(gitRev))))
	} else {
		sb.WriteString("- git: unknown\n")
	}

	if goVer, err := exec.CommandContext(ctx, "go", "version").Output(); err == nil {
		sb.WriteString(fmt.Sprintf("- %s\n", strings.TrimSpace(string(goVer))))
	}

	sb.WriteString(fmt.Sprintf("- %s/%s\n\n", runtime.GOOS, runtime.GOARCH))

	return sb.String()
}

func writeReport(outDir string, results []BenchResult) error {
	var sb strings.Builder

	sb.WriteString(getSystemInfo())
	sb.WriteString("| scenario | count | runs | mean | min | max |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")

	for _, r := range results {
		fmt.Fprintf(&sb, "| %s | %d | %d | %s | %s | %s |\n", r.Scenario, r.Count, r.Runs, r.Mean, r.Min, r.Max)
	}

	path := filepath.Join(outDir, fmt.Sprintf("bytesbench_%s.md", time.Now().UTC().Format("20060102-150405")))

	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

func mkBenchTempDir() (string, error) {
	return os.MkdirTemp("", "bytesbench-*")
}
