// Package config loads engine tunables from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// EngineConfig holds the knobs of the statement parsing engine.
type EngineConfig struct {
	// TextScanWindow is the number of runes scanned after the VAT keyword
	// when extracting an amount from free text.
	TextScanWindow int
	// PreambleScanDepth caps how many leading rows are scanned for a header.
	PreambleScanDepth int
	// AmountCeiling is the sanity ceiling for absolute transaction amounts.
	AmountCeiling decimal.Decimal
	// MinYear is the earliest acceptable transaction year.
	MinYear int
	// CounterpartyMinLen / CounterpartyMaxLen bound counterparty labels.
	CounterpartyMinLen int
	CounterpartyMaxLen int
}

// Config is the root configuration.
type Config struct {
	Engine EngineConfig
}

// Load reads configuration from the environment. A .env file is loaded
// best-effort; absent variables fall back to defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{Engine: DefaultEngine()}

	var err error
	if cfg.Engine.TextScanWindow, err = intEnv("VATLEDGER_TEXT_SCAN_WINDOW", cfg.Engine.TextScanWindow); err != nil {
		return nil, err
	}
	if cfg.Engine.PreambleScanDepth, err = intEnv("VATLEDGER_PREAMBLE_SCAN_DEPTH", cfg.Engine.PreambleScanDepth); err != nil {
		return nil, err
	}
	if cfg.Engine.MinYear, err = intEnv("VATLEDGER_MIN_YEAR", cfg.Engine.MinYear); err != nil {
		return nil, err
	}
	if raw := os.Getenv("VATLEDGER_AMOUNT_CEILING"); raw != "" {
		ceiling, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid VATLEDGER_AMOUNT_CEILING %q: %w", raw, err)
		}
		cfg.Engine.AmountCeiling = ceiling
	}

	return cfg, nil
}

// DefaultEngine returns the engine defaults used when no environment is set.
func DefaultEngine() EngineConfig {
	return EngineConfig{
		TextScanWindow:     48,
		PreambleScanDepth:  20,
		AmountCeiling:      decimal.New(1, 9), // 1e9
		MinYear:            2000,
		CounterpartyMinLen: 2,
		CounterpartyMaxLen: 200,
	}
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
