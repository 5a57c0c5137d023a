// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/gogpu/gfx"
)

// envPrefix is the prefix of every environment variable, e.g. GFX_WIDTH.
const envPrefix = "GFX"

// Config validation errors
var (
	ErrInvalidSize     = errors.New("width and height must be positive")
	ErrInvalidFrames   = errors.New("frames must be positive")
	ErrInvalidPoolSize = errors.New("pool sizes must be positive")
	ErrInvalidLogLevel = errors.New("log_level must be debug, info, warn, or error")
)

// Config is the demo configuration. Values come from the environment
// (optionally seeded from a .env file) and can be overridden by flags.
type Config struct {
	Backend string `envconfig:"BACKEND" default:""`
	Width   int    `envconfig:"WIDTH" default:"640"`
	Height  int    `envconfig:"HEIGHT" default:"480"`
	Frames  int    `envconfig:"FRAMES" default:"60"`
	Output  string `envconfig:"OUTPUT" default:""`
	Texture string `envconfig:"TEXTURE" default:""`

	MetricsAddr string        `envconfig:"METRICS_ADDR" default:""`
	Linger      time.Duration `envconfig:"LINGER" default:"0s"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`

	BufferPool   int `envconfig:"BUFFER_POOL" default:"128"`
	ImagePool    int `envconfig:"IMAGE_POOL" default:"128"`
	ShaderPool   int `envconfig:"SHADER_POOL" default:"32"`
	PipelinePool int `envconfig:"PIPELINE_POOL" default:"64"`
	PassPool     int `envconfig:"PASS_POOL" default:"16"`
}

// LoadConfig reads envFile, if it exists, into the environment and then
// processes the GFX_ variables. Variables already set take precedence over
// the file.
func LoadConfig(envFile string) (Config, error) {
	var cfg Config
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// ValidateConfig validates the configuration and returns an error if invalid
func ValidateConfig(cfg *Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrInvalidSize
	}
	if cfg.Frames <= 0 {
		return ErrInvalidFrames
	}
	for _, n := range []int{cfg.BufferPool, cfg.ImagePool, cfg.ShaderPool, cfg.PipelinePool, cfg.PassPool} {
		if n <= 0 {
			return ErrInvalidPoolSize
		}
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

// PoolSizes returns the context pool sizes of cfg.
func (cfg *Config) PoolSizes() gfx.PoolSizes {
	return gfx.PoolSizes{
		Buffers:   cfg.BufferPool,
		Images:    cfg.ImagePool,
		Shaders:   cfg.ShaderPool,
		Pipelines: cfg.PipelinePool,
		Passes:    cfg.PassPool,
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, ErrInvalidLogLevel
}

func newLogger(level string) *slog.Logger {
	l, _ := parseLevel(level)
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
