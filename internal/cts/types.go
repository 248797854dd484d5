// Package cts implements H-tree clock tree synthesis (spec §4.F):
// recursive quadrant partitioning over flip-flop sinks, buffer/inverter
// resource claiming, and the deterministic netlist rewrite that replaces
// the original clock net with a buffered tree.
package cts

import (
	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/fabric"
)

// Node is one level of the clock tree.
type Node struct {
	Level      int
	Buffer     *fabric.SiteID // nil for a virtual node
	BufferPos  [2]float64
	Centroid   [2]float64
	Sinks      []design.InstID
	Children   []*Node
}

// sinkPos is an internal working record pairing a sink instance with its
// placed coordinate.
type sinkPos struct {
	inst design.InstID
	x, y float64
}

// resource is an internal working record for an unclaimed buffer or
// inverter site.
type resource struct {
	site     *fabric.Site
	isBuffer bool
	claimed  bool
}
