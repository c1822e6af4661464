// Package main provides a performance benchmarking tool for the indiscore CLI.
// It generates synthetic indicator sources of increasing size, runs the batch
// and check commands against each one several times, treating the first
// successful run as cold and averaging the rest as warm, and writes the
// timings to a CSV file.
//
// Prerequisites:
// - indiscore binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the generated sources (defaults to a temp dir)
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// BenchmarkResult holds the timings of one command against one source.
type BenchmarkResult struct {
	Source   string
	Command  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir string
	Timeout time.Duration
	Workers int
	Runs    int
	Sizes   []int
	Formats []string
}

// record mirrors the file source layout.
type record struct {
	ID       string  `json:"id" yaml:"id"`
	Formula  string  `json:"formula,omitempty" yaml:"formula,omitempty"`
	Current  float64 `json:"current" yaml:"current"`
	Previous float64 `json:"previous" yaml:"previous"`
}

// formulas cycles through scripts of different cost.
var formulas = []string{
	"",
	"return r * 100",
	"return interpolation(r, 0.1, 10, 0.5, 100)",
	"const g = (c - p) / p\nlet s = g > 0 ? sqrt(g) : -sqrt(-g)\nreturn round(s * 1000) / 10",
	"return max(0, min(100, 50 + atan(r) * 100 / PI))",
}

func main() {
	workDir := ""
	if len(os.Args) == 2 {
		workDir = os.Args[1]
	} else if len(os.Args) > 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	if workDir == "" {
		dir, err := os.MkdirTemp("", "indiscore-bench-")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		workDir = dir
	}

	config := BenchmarkConfig{
		WorkDir: workDir,
		Timeout: 2 * time.Minute,
		Workers: 8,
		Runs:    4,
		Sizes:   []int{1_000, 10_000, 100_000},
		Formats: []string{"json", "yaml", "csv"},
	}

	if _, err := exec.LookPath("indiscore"); err != nil {
		fmt.Printf("Prerequisites check failed: indiscore binary not found in PATH\n")
		os.Exit(1)
	}

	sources, err := generateSources(config)
	if err != nil {
		fmt.Printf("Failed to generate sources: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, sources)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// generateRecords builds n records with readings that exercise every formula.
func generateRecords(n int) []record {
	records := make([]record, n)
	for i := range records {
		records[i] = record{
			ID:       fmt.Sprintf("kpi-%06d", i),
			Formula:  formulas[i%len(formulas)],
			Current:  float64(100 + i%250),
			Previous: float64(80 + i%170),
		}
	}
	return records
}

// generateSources writes one source file per size and format.
func generateSources(config BenchmarkConfig) ([]string, error) {
	var paths []string
	for _, size := range config.Sizes {
		records := generateRecords(size)
		for _, format := range config.Formats {
			path := filepath.Join(config.WorkDir, fmt.Sprintf("indicators_%d.%s", size, format))
			if err := writeSource(path, format, records); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", path, err)
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func writeSource(path, format string, records []record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	switch format {
	case "json":
		return json.NewEncoder(file).Encode(records)
	case "yaml":
		enc := yaml.NewEncoder(file)
		defer func() { _ = enc.Close() }()
		return enc.Encode(map[string]any{"indicators": records})
	case "csv":
		w := csv.NewWriter(file)
		defer w.Flush()
		if err := w.Write([]string{"id", "formula", "current", "previous"}); err != nil {
			return err
		}
		for _, r := range records {
			row := []string{r.ID, r.Formula, fmt.Sprint(r.Current), fmt.Sprint(r.Previous)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.New("unknown format " + format)
	}
}

// runBenchmarks executes the batch and check commands against every source.
func runBenchmarks(config BenchmarkConfig, sources []string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sources, %v timeout, %d workers, %d runs\n",
		len(sources), config.Timeout, config.Workers, config.Runs)

	for _, src := range sources {
		name := filepath.Base(src)
		fmt.Printf("Benchmarking %s\n", name)

		outFile := filepath.Join(config.WorkDir, strings.TrimSuffix(name, filepath.Ext(name))+".out.json")
		batchArgs := []string{"batch", src, "--output", "json", "--output-file", outFile, "--workers", fmt.Sprint(config.Workers)}
		results = append(results, runBenchmarkSuite(config, name, "batch", batchArgs))

		checkArgs := []string{"check", src, "--output", "json", "--output-file", outFile}
		results = append(results, runBenchmarkSuite(config, name, "check", checkArgs))
	}
	return results
}

// runBenchmarkSuite times numRuns invocations of one command.
func runBenchmarkSuite(config BenchmarkConfig, source, command string, args []string) BenchmarkResult {
	var times []float64
	for range config.Runs {
		if elapsed, ok := runOnce(config.Timeout, args); ok {
			times = append(times, elapsed)
		}
	}

	result := BenchmarkResult{Source: source, Command: command, ColdTime: "TIMEOUT", WarmTime: "TIMEOUT"}
	if len(times) > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", times[0])
	}
	if len(times) > 1 {
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		result.WarmTime = fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
	}

	fmt.Printf("  %s: Cold: %s, Warm: %s\n", command, result.ColdTime, result.WarmTime)
	return result
}

// runOnce runs indiscore once and reports the elapsed seconds on success.
func runOnce(timeout time.Duration, args []string) (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, "indiscore", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		fmt.Printf("  run failed: %v\n%s", err, output)
		return 0, false
	}
	return time.Since(start).Seconds(), true
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("indiscore_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"source", "cmd", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Source, result.Command, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"batch", "check"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-28s: Cold: %s, Warm: %s\n", result.Source, result.ColdTime, result.WarmTime)
			}
		}
	}
}
