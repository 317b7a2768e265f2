// cmd/dupfolders/main.go
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	pflag "github.com/spf13/pflag"
)

const Version = "1.0.0"

var (
	inputPath       string
	reportPath      string
	outputFile      string
	minGroupSize    int64
	folderDepth     int
	excludePatterns []string
	volumePrefix    string
	logLevelStr     string
	logFileFlag     string
	configFileFlag  string
	versionFlag     bool
)

func init() {
	pflag.StringVarP(&inputPath, "input", "i", "", "Duplicate report CSV, or a directory to search for the newest one.")
	pflag.StringVarP(&reportPath, "report", "r", "", "Existing HTML report to inject the results into.")
	pflag.StringVarP(&outputFile, "output", "o", "", "HTML output path (defaults to the --report path, else stdout).")
	pflag.Int64VarP(&minGroupSize, "min-group-size", "m", 0, "Minimum shared size in bytes for a folder group to be reported (overrides config).")
	pflag.IntVar(&folderDepth, "folder-depth", 0, "Path components below the volume prefix that identify a folder.")
	pflag.StringSliceVarP(&excludePatterns, "exclude", "x", []string{}, "Comma-separated folder glob patterns to exclude (adds to config).")
	pflag.StringVar(&volumePrefix, "volume-prefix", "", "Volume mount point file paths must live under.")
	pflag.StringVar(&logLevelStr, "loglevel", "info", "Set logging verbosity (debug, info, warn, error).")
	pflag.StringVar(&logFileFlag, "log-file", "", "Also write log output to this file.")
	pflag.StringVarP(&configFileFlag, "config", "c", "", "Path to a custom configuration file.")
	pflag.BoolVarP(&versionFlag, "version", "v", false, "Print version and exit.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %s -i <report.csv|dir> [flags]

Aggregate a NAS duplicate-file report into folder groups and render them
into an HTML report.

Flags:
`, os.Args[0])
		pflag.PrintDefaults()
	}
}

func main() {
	pflag.Parse()

	if versionFlag {
		fmt.Printf("dupfolders version %s\n", Version)
		os.Exit(0)
	}

	// Setup Logging
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level %q, defaulting to 'info'.\n", logLevelStr)
		logLevel = slog.LevelInfo
	}
	logOpts := &slog.HandlerOptions{Level: logLevel, AddSource: logLevel <= slog.LevelDebug}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, logOpts)))

	// Load Configuration (config.go)
	appConfig, loadErr := loadConfig(configFileFlag)
	if loadErr != nil {
		slog.Error("Failed to load configuration, using defaults.", "error", loadErr)
		appConfig = defaultConfig
	}

	// Log file: flag overrides config. When set, logging goes to both
	// stderr and the file from here on.
	finalLogFile := *appConfig.LogFile
	if pflag.CommandLine.Changed("log-file") {
		finalLogFile = logFileFlag
	}
	if finalLogFile != "" {
		if err := os.MkdirAll(filepath.Dir(finalLogFile), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot create log directory for '%s': %v\n", finalLogFile, err)
		} else if f, err := os.OpenFile(finalLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open log file '%s': %v\n", finalLogFile, err)
		} else {
			defer f.Close()
			slog.SetDefault(slog.New(slog.NewTextHandler(io.MultiWriter(os.Stderr, f), logOpts)))
			slog.Debug("Logging to file as well.", "path", finalLogFile)
		}
	}

	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "Error: No input given. Use -i with a duplicate report CSV or a directory.")
		pflag.Usage()
		os.Exit(1)
	}

	// Determine final settings (flags override config).
	finalMinGroupSize := *appConfig.MinGroupSize
	if pflag.CommandLine.Changed("min-group-size") {
		finalMinGroupSize = minGroupSize
	}
	finalVolumePrefix := *appConfig.VolumePrefix
	if pflag.CommandLine.Changed("volume-prefix") {
		finalVolumePrefix = volumePrefix
	}
	finalFolderDepth := *appConfig.FolderDepth
	if pflag.CommandLine.Changed("folder-depth") {
		finalFolderDepth = folderDepth
	}
	finalExcludes := append([]string{}, appConfig.ExcludeFolders...)
	if pflag.CommandLine.Changed("exclude") {
		slog.Debug("Adding exclude patterns from command line flag.", "patterns", excludePatterns)
		finalExcludes = append(finalExcludes, excludePatterns...)
	}
	if finalMinGroupSize < 0 {
		fmt.Fprintf(os.Stderr, "Error: min-group-size must be non-negative, got %d.\n", finalMinGroupSize)
		os.Exit(1)
	}
	if finalFolderDepth < 1 {
		fmt.Fprintf(os.Stderr, "Error: folder-depth must be at least 1, got %d.\n", finalFolderDepth)
		os.Exit(1)
	}
	slog.Debug("Final settings.",
		"min_group_size", finalMinGroupSize, "volume_prefix", finalVolumePrefix,
		"folder_depth", finalFolderDepth, "excludes", finalExcludes)

	// Resolve Input (file or newest report in a directory).
	csvPath := inputPath
	if info, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error: Input '%s' not found.\n", inputPath)
		} else {
			fmt.Fprintf(os.Stderr, "Error accessing input '%s': %v\n", inputPath, err)
		}
		os.Exit(1)
	} else if info.IsDir() {
		located, err := locateLatestReport(inputPath, *appConfig.ReportPattern)
		if err != nil {
			slog.Error("Could not locate a duplicate report.", "dir", inputPath, "error", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		csvPath = located
	}

	// Parse the report.
	files, rowErrors, err := readDuplicateReport(csvPath, ReportOptions{
		VolumePrefix: finalVolumePrefix,
		FolderDepth:  finalFolderDepth,
		Excluder:     NewFolderExcluder(finalExcludes),
	})
	if err != nil {
		slog.Error("Failed to read duplicate report.", "path", csvPath, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Group, then compact nested folders. Both phases recompute aggregates,
	// so an inconsistent cluster can be flagged twice; report it once.
	groups, anomalies := analyzeFolderGroups(files, finalMinGroupSize)
	groups, compactAnomalies := compactNestedFolders(groups, finalMinGroupSize)
	anomalies = dedupeAnomalies(append(anomalies, compactAnomalies...))

	// Render HTML. Default output is the report itself (in-place update).
	finalOutput := outputFile
	if finalOutput == "" && reportPath != "" {
		finalOutput = reportPath
	}
	summaryWriter := io.Writer(os.Stderr)
	if finalOutput != "" {
		summaryWriter = os.Stdout
	}
	if err := writeHTMLReport(groups, reportPath, finalOutput, *appConfig.HTMLSelector, os.Stdout); err != nil {
		slog.Error("Failed to write HTML report.", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printSummary(groups, rowErrors, anomalies, finalMinGroupSize, summaryWriter)

	slog.Debug("Execution finished.")
	if len(rowErrors) > 0 {
		os.Exit(1)
	}
}
