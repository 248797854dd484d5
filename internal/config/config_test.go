package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigMatchesAnnealDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SA.InitialTemp != 1000.0 || cfg.SA.FinalTemp != 0.01 || cfg.SA.CoolingRate != 0.97 {
		t.Errorf("sa defaults = %+v, want initial_temp=1000 final_temp=0.01 cooling_rate=0.97", cfg.SA)
	}
	if cfg.SA.MovesPerTemp != 4000 || cfg.SA.MaxIterations != 15000 {
		t.Errorf("sa defaults = %+v, want moves_per_temp=4000 max_iterations=15000", cfg.SA)
	}
	if cfg.CTS.MaxLevel != 8 {
		t.Errorf("CTS.MaxLevel = %d, want 8", cfg.CTS.MaxLevel)
	}
}

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SA.Seed != DefaultConfig().SA.Seed {
		t.Errorf("Load(missing) did not fall back to defaults")
	}
}

func TestLoadOverlaysYAMLOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "sa:\n  seed: 7\n  initial_temp: 500\nflow:\n  log_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SA.Seed != 7 {
		t.Errorf("SA.Seed = %d, want 7", cfg.SA.Seed)
	}
	if cfg.SA.InitialTemp != 500 {
		t.Errorf("SA.InitialTemp = %v, want 500", cfg.SA.InitialTemp)
	}
	if cfg.SA.CoolingRate != DefaultConfig().SA.CoolingRate {
		t.Errorf("CoolingRate should retain default when unset, got %v", cfg.SA.CoolingRate)
	}
	if cfg.Flow.LogLevel != "debug" {
		t.Errorf("Flow.LogLevel = %q, want debug", cfg.Flow.LogLevel)
	}
}
