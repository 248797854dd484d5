// Package visualize prepares the per-stage data a renderer would need to
// draw the fabric layout, placement density, routing congestion, timing
// slack, and clock tree — without importing any plotting library (spec.md
// §1 scopes rendering itself out; grounded on
// original_source/visualization/{pipeline,stages,config}.py).
package visualize

import (
	"github.com/mazinbersy/asicflow/internal/fabric"
)

// CellEntry is one fabric cell's position and type, for the layout stage.
type CellEntry struct {
	Name     string  `json:"name"`
	CellType string  `json:"cell_type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	WidthUM  float64 `json:"width_um"`
	HeightUM float64 `json:"height_um"`
	Occupied bool    `json:"occupied"`
	Inst     string  `json:"inst,omitempty"`
}

// LayoutSnapshot is the "layout" stage's prepared data: die/core
// boundaries, every fabric cell, and the I/O pin ring.
type LayoutSnapshot struct {
	Design   string      `json:"design"`
	DieBBox  fabric.BBox `json:"die_bbox"`
	CoreBBox fabric.BBox `json:"core_bbox"`
	Cells    []CellEntry `json:"cells"`
	Pins     []fabric.Pin `json:"pins"`
}

// DensityGrid is the "density" stage's 2D histogram of placed-cell
// counts over a uniform grid spanning the die.
type DensityGrid struct {
	Design  string      `json:"design"`
	BinsX   int         `json:"bins_x"`
	BinsY   int         `json:"bins_y"`
	Extent  [2]float64  `json:"extent"`
	Counts  [][]int     `json:"counts"`
}

// CongestionGrid is the "congestion" stage's per-cell overflow/demand
// grid, parsed from a routing congestion report.
type CongestionGrid struct {
	Design   string      `json:"design"`
	BinsX    int         `json:"bins_x"`
	BinsY    int         `json:"bins_y"`
	Overflow [][]float64 `json:"overflow"`
}

// SlackSummary is the "slack"/"critical_path" stages' prepared data:
// every parsed timing-path slack value and the worst (most negative).
type SlackSummary struct {
	Design      string    `json:"design"`
	Slacks      []float64 `json:"slacks"`
	WorstSlack  float64   `json:"worst_slack"`
	WorstPath   string    `json:"worst_path,omitempty"`
}

// CTSOverlay is the "cts_tree" stage's prepared data: every H-tree node's
// level, buffer position (if any), and the sinks or children it covers.
type CTSOverlay struct {
	Design string        `json:"design"`
	Nodes  []CTSOverlayNode `json:"nodes"`
}

// CTSOverlayNode is one flattened H-tree node for rendering.
type CTSOverlayNode struct {
	Level      int       `json:"level"`
	HasBuffer  bool      `json:"has_buffer"`
	BufferSite string    `json:"buffer_site,omitempty"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Sinks      []string  `json:"sinks,omitempty"`
	ParentIdx  int       `json:"parent_idx"` // -1 for the root
}
