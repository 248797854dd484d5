package emit

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/fabric"
	"github.com/mazinbersy/asicflow/internal/lefio"
)

func buildDEFFabric() *fabric.Fabric {
	sites := []*fabric.Site{
		{Name: "NAND_0", CellType: "NAND2_2", X: 10, Y: 10, WidthUM: 1.38, HeightUM: 2.72, Orient: "N"},
	}
	pins := []fabric.Pin{
		{Name: "a", Direction: fabric.DirInput, X: 0, Y: 5, Layer: "met1", Side: fabric.SideWest, WidthUM: 0.2, HeightUM: 0.2},
		{Name: "y", Direction: fabric.DirOutput, X: 100, Y: 5, Layer: "met1", Side: fabric.SideEast, WidthUM: 0.2, HeightUM: 0.2},
	}
	return fabric.Build(
		fabric.BBox{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100},
		fabric.BBox{MinX: 2, MinY: 2, MaxX: 98, MaxY: 98},
		pins,
		map[fabric.TileID][]*fabric.Site{"T0": sites},
		1000,
	)
}

func TestWriteDEFEmitsCoreSections(t *testing.T) {
	f := buildDEFFabric()
	db := buildSimpleGateDesign()
	p := newTestPlacement(t)
	tech := lefio.ParseTech(sampleTLEFForDEF)
	lef := lefio.Parse(sampleLEFForDEF)

	var buf bytes.Buffer
	if err := WriteDEF(&buf, "top", f, db, p, lef, tech, nil, nil); err != nil {
		t.Fatalf("WriteDEF: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"VERSION 5.8 ;",
		"DESIGN top ;",
		"UNITS DISTANCE MICRONS 1000 ;",
		"DIEAREA ( 0 0 ) ( 100000 100000 ) ;",
		"COMPONENTS 1 ;",
		"- U0 NAND2_2 + FIXED",
		"PINS 2 ;",
		"NETS",
		"END DESIGN",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DEF output missing %q, got:\n%s", want, out)
		}
	}
}

func TestWriteDEFMarksOnlyCTSClockNets(t *testing.T) {
	f := buildDEFFabric()
	db := buildSimpleGateDesign()
	p := newTestPlacement(t)
	tech := lefio.ParseTech(sampleTLEFForDEF)
	lef := lefio.Parse(sampleLEFForDEF)

	var buf bytes.Buffer
	if err := WriteDEF(&buf, "top", f, db, p, lef, tech, []design.NetID{2}, nil); err != nil {
		t.Fatalf("WriteDEF: %v", err)
	}
	out := buf.String()

	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "- b "):
			if !strings.Contains(line, "+ USE CLOCK") {
				t.Errorf("net b (in ClockNetIDs) missing + USE CLOCK: %q", line)
			}
		case strings.HasPrefix(line, "- a "), strings.HasPrefix(line, "- y "):
			if strings.Contains(line, "+ USE CLOCK") {
				t.Errorf("net not in ClockNetIDs wrongly marked + USE CLOCK: %q", line)
			}
		}
	}
}

func TestWriteDEFDebugComponentsEnv(t *testing.T) {
	if DebugComponentsEnabled() {
		t.Fatalf("expected DEBUG_COMPONENTS unset by default")
	}
	os.Setenv("DEBUG_COMPONENTS", "1")
	defer os.Unsetenv("DEBUG_COMPONENTS")
	if !DebugComponentsEnabled() {
		t.Errorf("expected DEBUG_COMPONENTS=1 to enable debug tracing")
	}
}

const sampleTLEFForDEF = `
VERSION 5.8 ;
UNITS
  DATABASE MICRONS 1000 ;
END UNITS
SITE unit_site
  CLASS CORE ;
  SIZE 0.46 BY 2.72 ;
END unit_site
LAYER met1
  TYPE ROUTING ;
  DIRECTION HORIZONTAL ;
  WIDTH 0.14 ;
END met1
`

const sampleLEFForDEF = `
VERSION 5.8 ;
DIVIDERCHAR "/" ;
BUSBITCHARS "[]" ;
MACRO NAND2_2
  SIZE 1.38 BY 2.72 ;
  PIN A
  END A
  PIN B
  END B
  PIN Y
  END Y
END NAND2_2
`
