// Package placer implements the greedy seeded placer (spec §4.D): a
// feasible starting placement built in three stages — fix pins, seed
// pin-adjacent cells, then grow outward by connectivity.
package placer

import (
	"math"
	"sort"

	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/fabric"
	"github.com/mazinbersy/asicflow/internal/flowerrors"
	"github.com/mazinbersy/asicflow/internal/logging"
	"github.com/mazinbersy/asicflow/internal/netgraph"
	"github.com/mazinbersy/asicflow/internal/placement"
)

// PinPositions places every I/O port at its fixed fabric pin coordinate,
// consuming no site (spec §4.D place_pins). The returned map is keyed by
// port name; callers pass it alongside the Placement (to Place and
// anneal.Refine) rather than storing ports in it.
func PinPositions(f *fabric.Fabric, db *design.DB) (map[string][2]float64, error) {
	out := make(map[string][2]float64)
	for name := range db.Ports.Inputs {
		p, ok := f.PinOfPort(name)
		if !ok {
			return nil, &flowerrors.MissingDataError{Path: name, Reason: "port not found in fabric pin ring"}
		}
		out[name] = [2]float64{p.X, p.Y}
	}
	for name := range db.Ports.Outputs {
		if _, ok := out[name]; ok {
			continue
		}
		p, ok := f.PinOfPort(name)
		if !ok {
			return nil, &flowerrors.MissingDataError{Path: name, Reason: "port not found in fabric pin ring"}
		}
		out[name] = [2]float64{p.X, p.Y}
	}
	return out, nil
}

// Place runs the three-stage greedy algorithm and returns a Placement
// covering every logical (non-port) cell in db. pins gives the fixed
// pseudo-positions for port nodes, used as barycenter anchors and as
// cost-function endpoints by later stages (not placed into sites).
func Place(f *fabric.Fabric, db *design.DB, g *netgraph.Graph, pins map[string][2]float64, log *logging.Logger) (*placement.Placement, error) {
	if log == nil {
		log = logging.Nop()
	}

	p := placement.New()
	free := newFreeSiteIndex(f)

	pinNodes := make(map[netgraph.NodeID]struct{}, len(pins))
	for name := range pins {
		pinNodes[netgraph.NodeID(name)] = struct{}{}
	}

	logicalTypeOf := make(map[design.InstID]design.TypeID)
	var allCells []design.InstID
	for _, id := range db.SortedInstIDs() {
		c := db.Cells[id]
		if c.IsPort() {
			continue
		}
		logicalTypeOf[id] = c.Type
		allCells = append(allCells, id)
	}

	// Stage 2: seed — every cell with at least one pin-neighbor.
	placed := make(map[design.InstID]struct{})
	remaining := make(map[design.InstID]struct{}, len(allCells))
	for _, id := range allCells {
		remaining[id] = struct{}{}
	}

	var seeds []design.InstID
	for _, id := range allCells {
		for _, nbr := range g.Neighbors(netgraph.NodeID(id)) {
			if _, isPin := pinNodes[nbr]; isPin {
				seeds = append(seeds, id)
				break
			}
		}
	}

	for _, id := range seeds {
		target := barycenter(id, g, p, pins, placed)
		if err := placeNearest(f, db, p, free, id, string(logicalTypeOf[id]), *target); err != nil {
			return nil, err
		}
		placed[id] = struct{}{}
		delete(remaining, id)
	}

	// Stage 3: grow — repeatedly place the most-connected unplaced cell.
	for len(remaining) > 0 {
		type candidate struct {
			nPlaced int
			id      design.InstID
		}
		var ranked []candidate
		for id := range remaining {
			n := 0
			for _, nbr := range g.Neighbors(netgraph.NodeID(id)) {
				if isPlacedNode(nbr, placed, pinNodes) {
					n++
				}
			}
			if n > 0 {
				ranked = append(ranked, candidate{nPlaced: n, id: id})
			}
		}

		var next design.InstID
		if len(ranked) > 0 {
			sort.Slice(ranked, func(i, j int) bool {
				if ranked[i].nPlaced != ranked[j].nPlaced {
					return ranked[i].nPlaced > ranked[j].nPlaced
				}
				return ranked[i].id < ranked[j].id
			})
			next = ranked[0].id
		} else {
			// No remaining cell has a placed neighbor: fall back to the
			// lowest InstId, placed nearest the origin (spec §4.D stage 3).
			ids := make([]design.InstID, 0, len(remaining))
			for id := range remaining {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			next = ids[0]
		}

		target := barycenter(next, g, p, pins, placed)
		if target == nil {
			target = &[2]float64{0, 0}
		}
		if err := placeNearest(f, db, p, free, next, string(logicalTypeOf[next]), *target); err != nil {
			return nil, err
		}
		placed[next] = struct{}{}
		delete(remaining, next)
	}

	return p, nil
}

func isPlacedNode(n netgraph.NodeID, placed map[design.InstID]struct{}, pinNodes map[netgraph.NodeID]struct{}) bool {
	if _, ok := pinNodes[n]; ok {
		return true
	}
	_, ok := placed[design.InstID(n)]
	return ok
}

// barycenter averages the positions of n's already-placed neighbors
// (cells via p, ports via pins); returns nil if n has none.
func barycenter(n design.InstID, g *netgraph.Graph, p *placement.Placement, pins map[string][2]float64, placed map[design.InstID]struct{}) *[2]float64 {
	var sumX, sumY float64
	var count int
	for _, nbr := range g.Neighbors(netgraph.NodeID(n)) {
		if pos, ok := pins[string(nbr)]; ok {
			sumX += pos[0]
			sumY += pos[1]
			count++
			continue
		}
		if _, ok := placed[design.InstID(nbr)]; ok {
			if c, ok := p.CoordOf(design.InstID(nbr)); ok {
				sumX += c.X
				sumY += c.Y
				count++
			}
		}
	}
	if count == 0 {
		return nil
	}
	return &[2]float64{sumX / float64(count), sumY / float64(count)}
}

// placeNearest assigns inst to the nearest unoccupied, type-compatible
// site to target, breaking ties by lowest SiteID (spec §4.D). On
// exhaustion, Required is the full instance count for cellType in db, not
// just how many placements have failed so far.
func placeNearest(f *fabric.Fabric, db *design.DB, p *placement.Placement, free *freeSiteIndex, inst design.InstID, cellType string, target [2]float64) error {
	site, ok := free.nearest(fabric.TypeID(cellType), target[0], target[1])
	if !ok {
		return &flowerrors.FabricCapacityExhaustedError{
			Type:      cellType,
			Required:  len(db.CellsByType[design.TypeID(cellType)]),
			Available: f.CellTypeCount(fabric.TypeID(cellType)),
		}
	}
	p.Place(inst, site)
	free.claim(site)
	return nil
}

// freeSiteIndex tracks, per type, which fabric sites remain unclaimed.
type freeSiteIndex struct {
	byType map[fabric.TypeID][]*fabric.Site
}

func newFreeSiteIndex(f *fabric.Fabric) *freeSiteIndex {
	idx := &freeSiteIndex{byType: make(map[fabric.TypeID][]*fabric.Site)}
	for _, s := range f.AllSites() {
		idx.byType[s.CellType] = append(idx.byType[s.CellType], s)
	}
	return idx
}

// nearest finds the free site of type t closest to (x, y) by Euclidean
// distance, breaking ties by lowest SiteID.
func (idx *freeSiteIndex) nearest(t fabric.TypeID, x, y float64) (*fabric.Site, bool) {
	sites := idx.byType[t]
	var best *fabric.Site
	bestDist := math.Inf(1)
	for _, s := range sites {
		dx := s.X - x
		dy := s.Y - y
		d := dx*dx + dy*dy
		if best == nil || d < bestDist || (d == bestDist && s.Name < best.Name) {
			best = s
			bestDist = d
		}
	}
	return best, best != nil
}

func (idx *freeSiteIndex) claim(s *fabric.Site) {
	sites := idx.byType[s.CellType]
	for i, c := range sites {
		if c.Name == s.Name {
			idx.byType[s.CellType] = append(sites[:i], sites[i+1:]...)
			return
		}
	}
}
