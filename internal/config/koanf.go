// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order. The
// first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/swathline/config.yaml",
	"/etc/swathline/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix namespaces Swathline environment variables:
// SWATHLINE_SERVER_PORT -> server.port.
const envPrefix = "SWATHLINE_"

// defaultConfig returns a Config with every default value. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            4326,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:                   "data/swathline.duckdb",
			MaxMemory:              "2GB",
			Threads:                0, // 0 = runtime.NumCPU()
			PreserveInsertionOrder: true,
			QueryTimeout:           30 * time.Second,
		},
		Cache: CacheConfig{
			Type:             "ttl",
			StatsTTL:         2 * time.Minute,
			Capacity:         10000,
			SequenceCapacity: 256,
		},
		Coverage: CoverageConfig{
			CriticalGapPoints: 50,
			HighGapPoints:     20,
			MediumGapPoints:   10,
			LowGapPoints:      5,
			DefaultMinGapSize: 1,
			StatsMinGapSize:   5,
		},
		Geometry: GeometryConfig{
			BoxPaddingDeg:   0.0001,
			BottomOffsetDeg: 0.002,
		},
		Survey: SurveyConfig{
			SwathCount:      8,
			DeploymentTypes: defaultDeploymentTypes(),
		},
		Import: ImportConfig{
			AcquiredType: "OFFSETS",
			MaxRows:      200000,
		},
		Events: EventsConfig{
			BufferSize:       256,
			RefreshPerSecond: 2,
		},
		API: APIConfig{
			RateLimitPerMinute: 600,
			CORSOrigins:        []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// defaultDeploymentTypes is the registry for the survey this system was built
// for: four equipment families in DEPLOYED/RETRIEVED pairs plus two marker
// types. Fully replaceable via survey.deployment_types in the config file.
func defaultDeploymentTypes() []DeploymentTypeConfig {
	return []DeploymentTypeConfig{
		{Name: "NODES DEPLOYED", Color: "#f6ee02"},
		{Name: "SM10 GEOPHONES DEPLOYED", Color: "#f18807"},
		{Name: "MARSH GEOPHONES DEPLOYED", Color: "#057af0"},
		{Name: "HYDROPHONES DEPLOYED", Color: "#95cef0"},
		{Name: "FORBIDDEN BUSH", Color: "#f50303"},
		{Name: "OFFSETS", Color: "#f309df"},
		{Name: "NODES RETRIEVED", Color: "#06e418"},
		{Name: "SM10 GEOPHONES RETRIEVED", Color: "#8255219c"},
		{Name: "MARSH GEOPHONES RETRIEVED", Color: "#f4d1a4"},
		{Name: "HYDROPHONES RETRIEVED", Color: "#345d09"},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values from defaultConfig
//  2. Config file: optional YAML (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment variables: SWATHLINE_* (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env strings into slices.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for the
// known slice fields. Env vars arrive as strings; YAML values are already
// slices and pass through untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps SWATHLINE_* variable names to koanf paths. The first
// underscore after the prefix separates the section from the key:
//
//	SWATHLINE_SERVER_PORT                  -> server.port
//	SWATHLINE_DATABASE_PATH                -> database.path
//	SWATHLINE_COVERAGE_CRITICAL_GAP_POINTS -> coverage.critical_gap_points
//
// All sections are single words, so the split is unambiguous.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	section, rest, found := strings.Cut(key, "_")
	if !found || rest == "" {
		return ""
	}

	switch section {
	case "server", "database", "cache", "coverage", "geometry",
		"survey", "import", "events", "api", "logging", "metrics":
		return section + "." + rest
	}

	// Unknown sections are skipped so unrelated SWATHLINE_* variables cannot
	// pollute the config tree.
	return ""
}
