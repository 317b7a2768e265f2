// cmd/dupfolders/config.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the file-configurable settings. Pointer fields distinguish
// "not set" from explicit zero values so the defaults can fill the gaps.
type Config struct {
	MinGroupSize   *int64   `toml:"min_group_size"`
	VolumePrefix   *string  `toml:"volume_prefix"`
	FolderDepth    *int     `toml:"folder_depth"`
	ReportPattern  *string  `toml:"report_pattern"`
	ExcludeFolders []string `toml:"exclude_folders"`
	HTMLSelector   *string  `toml:"html_selector"`
	LogFile        *string  `toml:"log_file"`
}

var defaultConfig = Config{
	MinGroupSize:   func(n int64) *int64 { return &n }(50_000_000),
	VolumePrefix:   func(s string) *string { return &s }("/volume1"),
	FolderDepth:    func(n int) *int { return &n }(1),
	ReportPattern:  func(s string) *string { return &s }("*.csv"),
	ExcludeFolders: defaultExcludeFolders,
	HTMLSelector:   func(s string) *string { return &s }("body"),
	LogFile:        func(s string) *string { return &s }(""),
}

// loadConfig finds and loads the configuration. A missing default config
// file is fine; a missing custom one (-c) is an error.
func loadConfig(customConfigPath string) (Config, error) {
	cfg := defaultConfig
	isCustomPath := customConfigPath != ""

	configFile := ""
	if isCustomPath {
		abs, err := filepath.Abs(customConfigPath)
		if err != nil {
			slog.Error("Could not determine absolute path for custom config file.",
				"path", customConfigPath, "error", err)
			return defaultConfig, fmt.Errorf("invalid custom config path '%s': %w", customConfigPath, err)
		}
		configFile = abs
		slog.Debug("Attempting to load configuration from custom path.", "path", configFile)
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			slog.Warn("Could not determine user home directory. Using default settings only.", "error", err)
			return cfg, nil
		}
		configFile = filepath.Join(homeDir, ".config", "dupfolders", "config.toml")
		slog.Debug("Attempting to load configuration from default path.", "path", configFile)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if isCustomPath {
				slog.Error("Specified configuration file not found.", "path", configFile)
				return defaultConfig, fmt.Errorf("specified configuration file '%s' not found", configFile)
			}
			slog.Info("No default config file found, using default settings.", "path", configFile)
			return cfg, nil
		}
		slog.Error("Error reading config file.", "path", configFile, "error", err)
		return defaultConfig, fmt.Errorf("error reading config file '%s': %w", configFile, err)
	}

	if len(content) == 0 {
		slog.Info("Configuration file is empty, using default settings.", "path", configFile)
		return cfg, nil
	}

	slog.Info("Loading configuration.", "path", configFile)
	// Decode into a zero Config: decoding into a copy of defaultConfig would
	// write through its shared pointer/slice fields and mutate the defaults.
	// Fields left nil are filled from defaultConfig below.
	var loadedCfg Config
	if meta, err := toml.Decode(string(content), &loadedCfg); err != nil {
		slog.Error("Error decoding TOML config file, using default settings.",
			"path", configFile, "error", err)
		return defaultConfig, fmt.Errorf("error decoding TOML from '%s': %w", configFile, err)
	} else if len(meta.Undecoded()) > 0 {
		slog.Warn("Unrecognized keys found in config file.", "path", configFile, "keys", meta.Undecoded())
	}
	cfg = loadedCfg

	// Fill pointer fields left nil by the decode.
	if cfg.MinGroupSize == nil {
		cfg.MinGroupSize = defaultConfig.MinGroupSize
	}
	if cfg.VolumePrefix == nil {
		cfg.VolumePrefix = defaultConfig.VolumePrefix
	}
	if cfg.FolderDepth == nil {
		cfg.FolderDepth = defaultConfig.FolderDepth
	}
	if cfg.ReportPattern == nil {
		cfg.ReportPattern = defaultConfig.ReportPattern
	}
	if cfg.ExcludeFolders == nil {
		cfg.ExcludeFolders = defaultConfig.ExcludeFolders
	}
	if cfg.HTMLSelector == nil {
		cfg.HTMLSelector = defaultConfig.HTMLSelector
	}
	if cfg.LogFile == nil {
		cfg.LogFile = defaultConfig.LogFile
	}

	slog.Debug("Configuration loaded successfully.",
		"source", configFile,
		"min_group_size", *cfg.MinGroupSize,
		"volume_prefix", *cfg.VolumePrefix,
		"folder_depth", *cfg.FolderDepth,
		"report_pattern", *cfg.ReportPattern,
		"exclude_folders", cfg.ExcludeFolders,
		"html_selector", *cfg.HTMLSelector,
	)
	return cfg, nil
}
