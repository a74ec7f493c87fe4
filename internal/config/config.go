// Package config loads bomdiff settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// MaxHeaderWindow is the hard limit on how many leading rows are scanned for a header.
	MaxHeaderWindow = 50

	DefaultOutputPath = "merged_tables.xlsx"
	DefaultLeftLabel  = "Compare_Left."
	DefaultRightLabel = "Compare_Right."
)

// Config represents the application configuration
type Config struct {
	LogLevel  string
	LogFormat string
	LogFile   string

	OutputPath   string
	HeaderWindow int

	// Header prefixes for the comparison columns in the export.
	LeftLabel  string
	RightLabel string
}

// Load reads .env (if present) and BOMDIFF_* environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:     getEnv("BOMDIFF_LOG_LEVEL", "info"),
		LogFormat:    getEnv("BOMDIFF_LOG_FORMAT", "console"),
		LogFile:      getEnv("BOMDIFF_LOG_FILE", ""),
		OutputPath:   getEnv("BOMDIFF_OUTPUT", DefaultOutputPath),
		HeaderWindow: getEnvAsInt("BOMDIFF_HEADER_WINDOW", MaxHeaderWindow),
		LeftLabel:    getEnv("BOMDIFF_LEFT_LABEL", DefaultLeftLabel),
		RightLabel:   getEnv("BOMDIFF_RIGHT_LABEL", DefaultRightLabel),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated values and clamps HeaderWindow to [1, MaxHeaderWindow].
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(c.LogLevel)
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}

	if c.OutputPath == "" {
		return errors.New("output path is required")
	}

	if c.HeaderWindow <= 0 || c.HeaderWindow > MaxHeaderWindow {
		c.HeaderWindow = MaxHeaderWindow
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
