// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package config

import (
	"fmt"
	"time"

	"github.com/swathline/swathline/internal/models"
)

// Config is the root configuration tree, loaded by LoadWithKoanf with
// precedence ENV > file > defaults.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Coverage CoverageConfig `koanf:"coverage"`
	Geometry GeometryConfig `koanf:"geometry"`
	Survey   SurveyConfig   `koanf:"survey"`
	Import   ImportConfig   `koanf:"import"`
	Events   EventsConfig   `koanf:"events"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	// Port defaults to 4326 (EPSG:4326, the WGS84 coordinate system survey
	// positions are expressed in).
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file, or ":memory:" for tests.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads <= 0 means runtime.NumCPU().
	Threads                int           `koanf:"threads"`
	PreserveInsertionOrder bool          `koanf:"preserve_insertion_order"`
	QueryTimeout           time.Duration `koanf:"query_timeout"`
}

// CacheConfig holds the shared in-process cache settings.
type CacheConfig struct {
	// Type selects the stats cache strategy: "ttl" or "lfu".
	Type     string        `koanf:"type"`
	StatsTTL time.Duration `koanf:"stats_ttl"`
	// Capacity bounds the LFU cache (ignored for ttl).
	Capacity int `koanf:"capacity"`
	// SequenceCapacity bounds the LRU of per-line shotpoint sequences.
	SequenceCapacity int `koanf:"sequence_capacity"`
}

// CoverageConfig holds gap detection thresholds. Severity buckets are
// exclusive on the upper bound: exactly CriticalGapPoints missing is HIGH.
type CoverageConfig struct {
	CriticalGapPoints int `koanf:"critical_gap_points"`
	HighGapPoints     int `koanf:"high_gap_points"`
	MediumGapPoints   int `koanf:"medium_gap_points"`
	LowGapPoints      int `koanf:"low_gap_points"`
	// DefaultMinGapSize applies to FindGaps when the caller passes 0.
	DefaultMinGapSize int `koanf:"default_min_gap_size"`
	// StatsMinGapSize applies to project gap statistics when the caller
	// passes 0. The higher default keeps the needs-attention listing focused
	// on operationally meaningful holes.
	StatsMinGapSize int `koanf:"stats_min_gap_size"`
}

// Thresholds converts the configured values to the models classifier.
func (c CoverageConfig) Thresholds() models.SeverityThresholds {
	return models.SeverityThresholds{
		Critical: c.CriticalGapPoints,
		High:     c.HighGapPoints,
		Medium:   c.MediumGapPoints,
		Low:      c.LowGapPoints,
	}
}

// GeometryConfig holds spatial cache build parameters, in decimal degrees.
type GeometryConfig struct {
	BoxPaddingDeg   float64 `koanf:"box_padding_deg"`
	BottomOffsetDeg float64 `koanf:"bottom_offset_deg"`
}

// SurveyConfig describes the survey layout and the deployment type registry.
type SurveyConfig struct {
	SwathCount      int                    `koanf:"swath_count"`
	DeploymentTypes []DeploymentTypeConfig `koanf:"deployment_types"`
}

// DeploymentTypeConfig is one registry entry.
type DeploymentTypeConfig struct {
	Name  string `koanf:"name"`
	Color string `koanf:"color"`
}

// Registry converts configured types to the models shape.
func (c SurveyConfig) Registry() []models.DeploymentType {
	out := make([]models.DeploymentType, 0, len(c.DeploymentTypes))
	for _, dt := range c.DeploymentTypes {
		out = append(out, models.DeploymentType{Name: dt.Name, Color: dt.Color})
	}
	return out
}

// ImportConfig holds CSV import settings.
type ImportConfig struct {
	// AcquiredType is the deployment type written by acquisition-matching
	// imports.
	AcquiredType string `koanf:"acquired_type"`
	MaxRows      int    `koanf:"max_rows"`
}

// EventsConfig holds the in-process event stream settings.
type EventsConfig struct {
	BufferSize int `koanf:"buffer_size"`
	// RefreshPerSecond rate-limits the background stats refresher.
	RefreshPerSecond float64 `koanf:"refresh_per_second"`
}

// APIConfig holds HTTP middleware settings.
type APIConfig struct {
	RateLimitPerMinute int      `koanf:"rate_limit_per_minute"`
	CORSOrigins        []string `koanf:"cors_origins"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Validate checks invariants the loader cannot express. It returns the first
// problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Cache.Type != "ttl" && c.Cache.Type != "lfu" {
		return fmt.Errorf("cache.type must be ttl or lfu, got %q", c.Cache.Type)
	}
	if c.Cache.StatsTTL <= 0 {
		return fmt.Errorf("cache.stats_ttl must be positive, got %s", c.Cache.StatsTTL)
	}
	cov := c.Coverage
	if cov.LowGapPoints < 1 {
		return fmt.Errorf("coverage.low_gap_points must be at least 1, got %d", cov.LowGapPoints)
	}
	if !(cov.CriticalGapPoints > cov.HighGapPoints &&
		cov.HighGapPoints > cov.MediumGapPoints &&
		cov.MediumGapPoints >= cov.LowGapPoints) {
		return fmt.Errorf("coverage thresholds must be ordered critical > high > medium >= low, got %d/%d/%d/%d",
			cov.CriticalGapPoints, cov.HighGapPoints, cov.MediumGapPoints, cov.LowGapPoints)
	}
	if cov.DefaultMinGapSize < 1 {
		return fmt.Errorf("coverage.default_min_gap_size must be at least 1, got %d", cov.DefaultMinGapSize)
	}
	if cov.StatsMinGapSize < 1 {
		return fmt.Errorf("coverage.stats_min_gap_size must be at least 1, got %d", cov.StatsMinGapSize)
	}
	if c.Geometry.BoxPaddingDeg < 0 || c.Geometry.BottomOffsetDeg < 0 {
		return fmt.Errorf("geometry padding values must not be negative")
	}
	if c.Survey.SwathCount < 1 {
		return fmt.Errorf("survey.swath_count must be at least 1, got %d", c.Survey.SwathCount)
	}
	if c.Import.MaxRows < 1 {
		return fmt.Errorf("import.max_rows must be at least 1, got %d", c.Import.MaxRows)
	}
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("logging.level %q is not a zerolog level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
