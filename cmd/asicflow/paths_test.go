package main

import (
	"path/filepath"
	"testing"
)

func TestDefaultPathsUsesConventionalLayout(t *testing.T) {
	dp := defaultPaths("6502", "")

	if want := filepath.Join("designs", "6502_mapped.json"); dp.designJSON != want {
		t.Errorf("designJSON = %q, want %q", dp.designJSON, want)
	}
	if want := filepath.Join("fabric", "fabric_cells.yaml"); dp.cellsYAML != want {
		t.Errorf("cellsYAML = %q, want %q", dp.cellsYAML, want)
	}
	if want := filepath.Join("fabric", "pins.yaml"); dp.pinsYAML != want {
		t.Errorf("pinsYAML = %q, want %q", dp.pinsYAML, want)
	}
	if want := filepath.Join("fabric", "fabric.yaml"); dp.fabricYAML != want {
		t.Errorf("fabricYAML = %q, want %q", dp.fabricYAML, want)
	}
	if want := filepath.Join("build", "6502"); dp.outputDir != want {
		t.Errorf("outputDir = %q, want %q", dp.outputDir, want)
	}
}

func TestDefaultPathsHonorsOutputOverride(t *testing.T) {
	dp := defaultPaths("6502", "/tmp/custom-out")
	if dp.outputDir != "/tmp/custom-out" {
		t.Errorf("outputDir = %q, want override to be honored", dp.outputDir)
	}
}
