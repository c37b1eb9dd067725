package cmd

import (
	"fmt"
	"math"
	"runtime/debug"

	"github.com/caarlos0/env/v11"
	"github.com/pbnjay/memory"
)

// EnvConfig holds defaults read from the environment. Flags override it.
type EnvConfig struct {
	MaxMemoryMB int64  `env:"SETUPMATRIX_MAX_MEMORY_MB"`
	LogLevel    string `env:"SETUPMATRIX_LOG_LEVEL"`
	DBPath      string `env:"SETUPMATRIX_DB"`
}

var envConfig EnvConfig

// parseEnv loads configuration from environment variables.
func parseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func loadEnvConfig() error {
	var cfg EnvConfig
	if err := parseEnv(&cfg); err != nil {
		return err
	}
	if cfg.MaxMemoryMB < 0 {
		return fmt.Errorf("SETUPMATRIX_MAX_MEMORY_MB must be non-negative, got %d", cfg.MaxMemoryMB)
	}
	envConfig = cfg
	return nil
}

// heapFraction is the share of physical memory taken as the default heap.
const heapFraction = 4

// fallbackMemoryMB is used when physical memory cannot be determined.
const fallbackMemoryMB = 1024

// availableMemoryMB resolves the admission budget: the flag, then the
// environment, then the Go runtime memory limit, then a quarter of
// physical memory.
func availableMemoryMB(flagValue int64, cfg EnvConfig) int64 {
	if flagValue > 0 {
		return flagValue
	}
	if cfg.MaxMemoryMB > 0 {
		return cfg.MaxMemoryMB
	}
	if limit := debug.SetMemoryLimit(-1); limit < math.MaxInt64 {
		return limit >> 20
	}
	return heapFromTotal(memory.TotalMemory())
}

// heapFromTotal derives the default budget from total physical memory in bytes.
func heapFromTotal(total uint64) int64 {
	mb := int64(total/heapFraction) >> 20
	if mb <= 0 {
		return fallbackMemoryMB
	}
	return mb
}
