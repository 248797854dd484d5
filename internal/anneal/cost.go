package anneal

import (
	"math"

	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/placement"
)

// position resolves a net endpoint's coordinate: pins carries fixed
// port positions, placement carries placed logical cells. Endpoints with
// neither (unplaced cells) are skipped, consistent with placer output
// always being complete before SA runs.
func position(p *placement.Placement, pins map[string][2]float64, cell design.InstID) (float64, float64, bool) {
	if pos, ok := pins[string(cell)]; ok {
		return pos[0], pos[1], true
	}
	if c, ok := p.CoordOf(cell); ok {
		return c.X, c.Y, true
	}
	return 0, 0, false
}

// netCost returns a single net's HPWL contribution.
func netCost(db *design.DB, p *placement.Placement, pins map[string][2]float64, netID design.NetID) float64 {
	net, ok := db.Nets[netID]
	if !ok || len(net.Connections) == 0 {
		return 0
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	any := false
	for _, e := range net.Connections {
		x, y, ok := position(p, pins, e.Cell)
		if !ok {
			continue
		}
		any = true
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	if !any {
		return 0
	}
	return (maxX - minX) + (maxY - minY)
}

// totalCost sums HPWL over every net in db (spec §4.E cost function).
func totalCost(db *design.DB, p *placement.Placement, pins map[string][2]float64) float64 {
	var sum float64
	for _, netID := range db.SortedNetIDs() {
		sum += netCost(db, p, pins, netID)
	}
	return sum
}

// sumNetCosts sums HPWL over the given subset of nets, used to compute
// move deltas without recomputing the whole design's cost.
func sumNetCosts(db *design.DB, p *placement.Placement, pins map[string][2]float64, netIDs []design.NetID) float64 {
	var sum float64
	for _, id := range netIDs {
		sum += netCost(db, p, pins, id)
	}
	return sum
}

// instNets returns the unique, non-zero nets inst's pins are connected to.
func instNets(db *design.DB, inst design.InstID) []design.NetID {
	c, ok := db.Cells[inst]
	if !ok {
		return nil
	}
	seen := make(map[design.NetID]struct{}, len(c.Pins))
	out := make([]design.NetID, 0, len(c.Pins))
	for _, n := range c.Pins {
		if n == design.NoNet {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// uniqueNetIDs merges two net-id slices, deduplicating.
func uniqueNetIDs(a, b []design.NetID) []design.NetID {
	seen := make(map[design.NetID]struct{}, len(a)+len(b))
	out := make([]design.NetID, 0, len(a)+len(b))
	for _, x := range append(append([]design.NetID{}, a...), b...) {
		if _, dup := seen[x]; dup {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}
