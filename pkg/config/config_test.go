package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := DefaultEngine()
	if cfg.Engine.TextScanWindow != want.TextScanWindow ||
		cfg.Engine.PreambleScanDepth != want.PreambleScanDepth ||
		cfg.Engine.MinYear != want.MinYear ||
		!cfg.Engine.AmountCeiling.Equal(want.AmountCeiling) {
		t.Errorf("engine = %+v, want defaults %+v", cfg.Engine, want)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VATLEDGER_TEXT_SCAN_WINDOW", "64")
	t.Setenv("VATLEDGER_MIN_YEAR", "2010")
	t.Setenv("VATLEDGER_AMOUNT_CEILING", "500000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.TextScanWindow != 64 {
		t.Errorf("window = %d, want 64", cfg.Engine.TextScanWindow)
	}
	if cfg.Engine.MinYear != 2010 {
		t.Errorf("min year = %d, want 2010", cfg.Engine.MinYear)
	}
	if cfg.Engine.AmountCeiling.String() != "500000" {
		t.Errorf("ceiling = %s, want 500000", cfg.Engine.AmountCeiling)
	}
}

func TestLoad_RejectsMalformedInt(t *testing.T) {
	t.Setenv("VATLEDGER_MIN_YEAR", "soon")
	if _, err := Load(); err == nil {
		t.Error("malformed integer must fail loudly")
	}
}
