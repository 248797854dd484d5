package fabricio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mazinbersy/asicflow/internal/flowerrors"
)

const cellsYAML = `
tiles:
  tile0:
    - name: X0Y0
      cell_type: DFF
      x: 0
      y: 0
    - name: X1Y0
      template_name: LOGIC_TMPL
      x: 1
      y: 0
`

const pinsYAMLContent = `
die:
  width_um: 10
  height_um: 10
core:
  width_um: 8
  height_um: 8
  x_offset_um: 1
  y_offset_um: 1
dbu_per_micron: 1000
pins:
  - name: clk
    direction: input
    x_um: -1
    y_um: 5
    layer: met1
    side: W
`

const fabricYAML = `
site_dimensions_um:
  width: 0.5
  height: 1.0
cell_types:
  DFF:
    width_sites: 1
  LOGIC:
    width_sites: 2
tile_definition:
  cells:
    - template_name: LOGIC_TMPL
      cell_type: LOGIC
`

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadMergesThreeSources(t *testing.T) {
	dir := t.TempDir()
	cellsPath := writeTemp(t, dir, "fabric_cells.yaml", cellsYAML)
	pinsPath := writeTemp(t, dir, "pins.yaml", pinsYAMLContent)
	defPath := writeTemp(t, dir, "fabric.yaml", fabricYAML)

	f, err := Load(cellsPath, pinsPath, defPath, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := f.CellTypeCount("DFF"); got != 1 {
		t.Errorf("CellTypeCount(DFF) = %d, want 1", got)
	}
	logicSite, ok := f.SiteByName("X1Y0")
	if !ok {
		t.Fatal("SiteByName(X1Y0) not found")
	}
	if logicSite.CellType != "LOGIC" {
		t.Errorf("X1Y0 cell type = %q, want LOGIC (resolved via template_name)", logicSite.CellType)
	}
	if want := 0.5 * 2; logicSite.WidthUM != want {
		t.Errorf("X1Y0 width = %v, want %v (width_sites=2)", logicSite.WidthUM, want)
	}

	if f.DieBBox.MaxX != 10 || f.DieBBox.MaxY != 10 {
		t.Errorf("DieBBox = %+v, want 10x10", f.DieBBox)
	}
	if f.CoreBBox.MinX != 1 || f.CoreBBox.MaxX != 9 {
		t.Errorf("CoreBBox = %+v, want [1,9]", f.CoreBBox)
	}

	pin, ok := f.PinOfPort("clk")
	if !ok || pin.Side != "W" {
		t.Errorf("PinOfPort(clk) = %+v, ok=%v", pin, ok)
	}
}

func TestLoadMissingFileIsSoftUnderlying(t *testing.T) {
	dir := t.TempDir()
	pinsPath := writeTemp(t, dir, "pins.yaml", pinsYAMLContent)
	defPath := writeTemp(t, dir, "fabric.yaml", fabricYAML)

	_, err := Load(filepath.Join(dir, "does_not_exist.yaml"), pinsPath, defPath, nil)
	if err == nil {
		t.Fatal("Load() with missing fabric_cells.yaml should error")
	}

	var parseErr *flowerrors.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Load() error = %v, want *flowerrors.ParseError wrapper", err)
	}

	var missing *flowerrors.MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("Load() error chain should unwrap to *flowerrors.MissingInputError, got %v", err)
	}
}

func TestLoadEmptyFileIsMissingData(t *testing.T) {
	dir := t.TempDir()
	cellsPath := writeTemp(t, dir, "fabric_cells.yaml", "")
	pinsPath := writeTemp(t, dir, "pins.yaml", pinsYAMLContent)
	defPath := writeTemp(t, dir, "fabric.yaml", fabricYAML)

	_, err := Load(cellsPath, pinsPath, defPath, nil)
	if err == nil {
		t.Fatal("Load() with empty fabric_cells.yaml should error")
	}

	var missingData *flowerrors.MissingDataError
	if !errors.As(err, &missingData) {
		t.Fatalf("Load() error chain should unwrap to *flowerrors.MissingDataError, got %v", err)
	}
}

func TestLoadDropsSiteWithUnknownCellType(t *testing.T) {
	dir := t.TempDir()
	cellsWithBadType := cellsYAML + `    - name: X2Y0
      cell_type: TOTALLY_UNKNOWN
      x: 2
      y: 0
`
	cellsPath := writeTemp(t, dir, "fabric_cells.yaml", cellsWithBadType)
	pinsPath := writeTemp(t, dir, "pins.yaml", pinsYAMLContent)
	defPath := writeTemp(t, dir, "fabric.yaml", fabricYAML)

	f, err := Load(cellsPath, pinsPath, defPath, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := f.SiteByName("X2Y0"); ok {
		t.Error("site with unknown cell type should have been dropped, not indexed")
	}
}
