package designio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mazinbersy/asicflow/internal/flowerrors"
)

const simpleDesign = `{
  "modules": {
    "top": {
      "ports": {
        "clk": {"direction": "input", "bits": [1]},
        "q": {"direction": "output", "bits": [2]}
      },
      "cells": {
        "u1": {
          "type": "DFF",
          "connections": {
            "CLK": [1],
            "Q": [2]
          }
        }
      }
    }
  }
}`

func TestLoadBuildsCellsPortsAndGraph(t *testing.T) {
	db, g, err := Load([]byte(simpleDesign), "top", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if db.Meta.TopModule != "top" {
		t.Errorf("Meta.TopModule = %q, want top", db.Meta.TopModule)
	}

	if _, ok := db.Cells["u1"]; !ok {
		t.Fatal("expected cell u1")
	}
	clkCell, ok := db.Cells["clk"]
	if !ok || !clkCell.IsPort() {
		t.Fatal("expected clk port pseudo-instance")
	}
	if _, ok := db.Ports.Inputs["clk"]; !ok {
		t.Error("clk should be registered as an input port")
	}
	if _, ok := db.Ports.Outputs["q"]; !ok {
		t.Error("q should be registered as an output port")
	}

	if g.NodeCount() == 0 {
		t.Error("expected a non-empty netlist graph")
	}
}

func TestLoadDefaultsTopModuleLexicographically(t *testing.T) {
	doc := `{"modules": {"zebra": {"ports": {}, "cells": {}}, "alpha": {"ports": {}, "cells": {}}}}`
	db, _, err := Load([]byte(doc), "", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if db.Meta.TopModule != "alpha" {
		t.Errorf("Meta.TopModule = %q, want alpha (lexicographically first)", db.Meta.TopModule)
	}
}

func TestLoadUnknownTopModule(t *testing.T) {
	_, _, err := Load([]byte(simpleDesign), "nonexistent", nil)
	if err == nil {
		t.Fatal("Load() with unknown top module should error")
	}
	var parseErr *flowerrors.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *flowerrors.ParseError", err)
	}
}

func TestLoadEmptyModulesIsMissingData(t *testing.T) {
	_, _, err := Load([]byte(`{"modules": {}}`), "", nil)
	if err == nil {
		t.Fatal("Load() with no modules should error")
	}
	var missing *flowerrors.MissingDataError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *flowerrors.MissingDataError", err)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	_, _, err := Load([]byte(`{not json`), "", nil)
	if err == nil {
		t.Fatal("Load() with malformed JSON should error")
	}
	var parseErr *flowerrors.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *flowerrors.ParseError", err)
	}
}

func TestLoadMultiBitBusCollapsesToFirstBit(t *testing.T) {
	doc := `{
      "modules": {
        "top": {
          "ports": {},
          "cells": {
            "u1": {"type": "BUF", "connections": {"A": [5, 6, 7]}}
          }
        }
      }
    }`
	db, _, err := Load([]byte(doc), "top", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := db.Cells["u1"].Pins["A"]; got != 5 {
		t.Errorf("multi-bit pin A collapsed to %d, want 5 (first bit)", got)
	}
}

func TestLoadFileMissingPath(t *testing.T) {
	dir := t.TempDir()
	_, _, err := LoadFile(filepath.Join(dir, "nope.json"), "top", nil)
	if err == nil {
		t.Fatal("LoadFile() with a missing path should error")
	}
	var missing *flowerrors.MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *flowerrors.MissingInputError", err)
	}
}

func TestLoadFileReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "design.json")
	if err := os.WriteFile(path, []byte(simpleDesign), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	db, _, err := LoadFile(path, "top", nil)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if _, ok := db.Cells["u1"]; !ok {
		t.Error("expected cell u1 to be loaded from disk")
	}
}
