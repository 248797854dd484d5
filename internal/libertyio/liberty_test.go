package libertyio

import (
	"strings"
	"testing"

	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/leakage"
)

const sampleLib = `
library (sample) {
  cell (AND2X1) {
    leakage_power () {
      value : 1.2e-03;
      when : "!A&!B";
    }
    leakage_power () {
      value : 3.4e-03;
      when : "A&B";
    }
  }
  cell (BUFX2) {
    leakage_power () {
      value : 0.5e-03;
      when : "!A";
    }
  }
}
`

func TestParseSelectsMinimumLeakageState(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleLib))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	entry, ok := db[design.TypeID("AND2X1")]
	if !ok {
		t.Fatalf("expected entry for AND2X1")
	}
	if entry.MinPower != 1.2e-03 {
		t.Errorf("MinPower = %v, want 1.2e-03", entry.MinPower)
	}
	if got := entry.InputTies["A"]; got != leakage.LO {
		t.Errorf("tie for A = %v, want LO", got)
	}
	if got := entry.InputTies["B"]; got != leakage.LO {
		t.Errorf("tie for B = %v, want LO", got)
	}

	buf, ok := db[design.TypeID("BUFX2")]
	if !ok {
		t.Fatalf("expected entry for BUFX2")
	}
	if got := buf.InputTies["A"]; got != leakage.LO {
		t.Errorf("tie for BUFX2.A = %v, want LO", got)
	}
}

func TestParseEmptyYieldsMissingData(t *testing.T) {
	_, err := Parse(strings.NewReader("library (empty) {}\n"))
	if err == nil {
		t.Fatalf("expected error for input with no leakage_power stanzas")
	}
}

func TestTiesFromStateMixedPolarity(t *testing.T) {
	ties := tiesFromState("A&!B&C")
	if ties["A"] != leakage.HI {
		t.Errorf("A = %v, want HI", ties["A"])
	}
	if ties["B"] != leakage.LO {
		t.Errorf("B = %v, want LO", ties["B"])
	}
	if ties["C"] != leakage.HI {
		t.Errorf("C = %v, want HI", ties["C"])
	}
}
