// Package placement holds the Placement bijection shared by the Greedy
// placer, the SA refiner, and the emitters (spec §3): every placed
// instance maps to exactly one site, and every occupied site maps back to
// exactly one instance.
package placement

import (
	"sort"

	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/fabric"
)

// Coord is a placed instance's physical location.
type Coord struct {
	Site fabric.SiteID
	Type fabric.TypeID
	X    float64
	Y    float64
}

// Placement is the two-way consistent inst <-> site mapping.
type Placement struct {
	byInst map[design.InstID]Coord
	bySite map[fabric.SiteID]design.InstID
}

// New creates an empty Placement.
func New() *Placement {
	return &Placement{
		byInst: make(map[design.InstID]Coord),
		bySite: make(map[fabric.SiteID]design.InstID),
	}
}

// Place assigns inst to site, recording its coordinate. Callers must not
// place two instances on the same site; Place overwrites the reverse
// mapping unconditionally, so check IsOccupied first where that matters.
func (p *Placement) Place(inst design.InstID, site *fabric.Site) {
	p.byInst[inst] = Coord{Site: site.Name, Type: site.CellType, X: site.X, Y: site.Y}
	p.bySite[site.Name] = inst
}

// Unplace removes inst and frees its site.
func (p *Placement) Unplace(inst design.InstID) {
	c, ok := p.byInst[inst]
	if !ok {
		return
	}
	delete(p.byInst, inst)
	delete(p.bySite, c.Site)
}

// CoordOf returns inst's placed coordinate.
func (p *Placement) CoordOf(inst design.InstID) (Coord, bool) {
	c, ok := p.byInst[inst]
	return c, ok
}

// InstAt returns the instance occupying site, if any.
func (p *Placement) InstAt(site fabric.SiteID) (design.InstID, bool) {
	inst, ok := p.bySite[site]
	return inst, ok
}

// IsOccupied reports whether site already holds an instance.
func (p *Placement) IsOccupied(site fabric.SiteID) bool {
	_, ok := p.bySite[site]
	return ok
}

// IsPlaced reports whether inst has been placed.
func (p *Placement) IsPlaced(inst design.InstID) bool {
	_, ok := p.byInst[inst]
	return ok
}

// Move relocates an already-placed instance to a new, unoccupied site.
func (p *Placement) Move(inst design.InstID, site *fabric.Site) {
	if c, ok := p.byInst[inst]; ok {
		delete(p.bySite, c.Site)
	}
	p.Place(inst, site)
}

// SwapSites exchanges the sites of two already-placed instances, used by
// the SA refiner's swap move (spec §4.E). A no-op if either is unplaced.
func (p *Placement) SwapSites(a, b design.InstID) {
	ca, oka := p.byInst[a]
	cb, okb := p.byInst[b]
	if !oka || !okb {
		return
	}
	p.byInst[a] = cb
	p.byInst[b] = ca
	p.bySite[ca.Site] = b
	p.bySite[cb.Site] = a
}

// SortedInsts returns every placed instance, sorted, for deterministic
// iteration.
func (p *Placement) SortedInsts() []design.InstID {
	out := make([]design.InstID, 0, len(p.byInst))
	for id := range p.byInst {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of placed instances.
func (p *Placement) Len() int { return len(p.byInst) }

// Clone returns a deep copy, used by the SA refiner to snapshot the
// incumbent best placement (spec §4.E).
func (p *Placement) Clone() *Placement {
	c := New()
	for inst, coord := range p.byInst {
		c.byInst[inst] = coord
	}
	for site, inst := range p.bySite {
		c.bySite[site] = inst
	}
	return c
}
