package visualize

import (
	"math"
	"sort"

	"github.com/mazinbersy/asicflow/internal/cts"
	"github.com/mazinbersy/asicflow/internal/fabric"
	"github.com/mazinbersy/asicflow/internal/placement"
)

// BuildLayoutSnapshot assembles the "layout" stage's data from the fabric
// ground truth and (if supplied) the current placement.
func BuildLayoutSnapshot(designName string, f *fabric.Fabric, p *placement.Placement) *LayoutSnapshot {
	snap := &LayoutSnapshot{
		Design:   designName,
		DieBBox:  f.DieBBox,
		CoreBBox: f.CoreBBox,
		Pins:     f.Pins,
	}
	for _, s := range f.AllSites() {
		entry := CellEntry{
			Name:     string(s.Name),
			CellType: string(s.CellType),
			X:        s.X,
			Y:        s.Y,
			WidthUM:  s.WidthUM,
			HeightUM: s.HeightUM,
		}
		if p != nil {
			if inst, ok := p.InstAt(s.Name); ok {
				entry.Occupied = true
				entry.Inst = string(inst)
			}
		}
		snap.Cells = append(snap.Cells, entry)
	}
	return snap
}

// BuildDensityGrid bins every placed instance's (x, y) into a binsX x
// binsY count grid spanning the die bounding box (spec.md §1 scopes out
// rendering it; this is the histogram a renderer would draw).
func BuildDensityGrid(designName string, f *fabric.Fabric, p *placement.Placement, binsX, binsY int) *DensityGrid {
	grid := &DensityGrid{
		Design: designName,
		BinsX:  binsX,
		BinsY:  binsY,
		Extent: [2]float64{f.DieBBox.Width(), f.DieBBox.Height()},
		Counts: make([][]int, binsY),
	}
	for i := range grid.Counts {
		grid.Counts[i] = make([]int, binsX)
	}
	if p == nil || binsX == 0 || binsY == 0 || grid.Extent[0] == 0 || grid.Extent[1] == 0 {
		return grid
	}
	for _, inst := range p.SortedInsts() {
		coord, ok := p.CoordOf(inst)
		if !ok {
			continue
		}
		bx := binIndex(coord.X-f.DieBBox.MinX, grid.Extent[0], binsX)
		by := binIndex(coord.Y-f.DieBBox.MinY, grid.Extent[1], binsY)
		grid.Counts[by][bx]++
	}
	return grid
}

func binIndex(value, extent float64, bins int) int {
	if extent <= 0 {
		return 0
	}
	idx := int(math.Floor(value / extent * float64(bins)))
	if idx < 0 {
		idx = 0
	}
	if idx >= bins {
		idx = bins - 1
	}
	return idx
}

// BuildSlackSummary reduces a list of parsed slack values into the
// "slack"/"critical_path" stages' shared prepared data.
func BuildSlackSummary(designName string, slacks []float64, worstPath string) *SlackSummary {
	summary := &SlackSummary{Design: designName, Slacks: slacks, WorstSlack: math.Inf(1), WorstPath: worstPath}
	for _, s := range slacks {
		if s < summary.WorstSlack {
			summary.WorstSlack = s
		}
	}
	if len(slacks) == 0 {
		summary.WorstSlack = 0
	}
	return summary
}

// BuildCTSOverlay flattens an H-tree into the renderer-ready node list,
// depth-first, parent-indexed.
func BuildCTSOverlay(designName string, root *cts.Node) *CTSOverlay {
	overlay := &CTSOverlay{Design: designName}
	if root == nil {
		return overlay
	}
	flattenCTSNode(overlay, root, -1)
	return overlay
}

func flattenCTSNode(overlay *CTSOverlay, n *cts.Node, parentIdx int) {
	idx := len(overlay.Nodes)
	node := CTSOverlayNode{Level: n.Level, ParentIdx: parentIdx}
	if n.Buffer != nil {
		node.HasBuffer = true
		node.BufferSite = string(*n.Buffer)
		node.X, node.Y = n.BufferPos[0], n.BufferPos[1]
	} else {
		node.X, node.Y = n.Centroid[0], n.Centroid[1]
	}
	names := make([]string, 0, len(n.Sinks))
	for _, s := range n.Sinks {
		names = append(names, string(s))
	}
	sort.Strings(names)
	node.Sinks = names
	overlay.Nodes = append(overlay.Nodes, node)

	for _, child := range n.Children {
		flattenCTSNode(overlay, child, idx)
	}
}
