package fabric

import "sort"

// Build assembles a Fabric from its three constituent sources. It is the
// single indexing pass run once at load time; afterwards the Fabric is
// read-only (spec §3 "Lifecycles").
func Build(dieBBox, coreBBox BBox, pins []Pin, sitesByTile map[TileID][]*Site, dbuPerMicron float64) *Fabric {
	f := &Fabric{
		DieBBox:      dieBBox,
		CoreBBox:     coreBBox,
		Pins:         pins,
		SitesByTile:  sitesByTile,
		DBUPerMicron: dbuPerMicron,
		sitesByName:  make(map[SiteID]*Site),
		sitesByType:  make(map[TypeID][]*Site),
		pinsByName:   make(map[string]*Pin),
	}

	for _, sites := range sitesByTile {
		for _, s := range sites {
			f.sitesByName[s.Name] = s
			f.sitesByType[s.CellType] = append(f.sitesByType[s.CellType], s)
		}
	}
	for t := range f.sitesByType {
		sort.Slice(f.sitesByType[t], func(i, j int) bool {
			return f.sitesByType[t][i].Name < f.sitesByType[t][j].Name
		})
	}
	for i := range pins {
		p := &pins[i]
		f.pinsByName[p.Name] = p
	}

	return f
}

// SitesOfType returns every site of the given type, sorted by SiteID for
// deterministic iteration.
func (f *Fabric) SitesOfType(t TypeID) []*Site {
	return f.sitesByType[t]
}

// SiteByName looks up a site by its unique name.
func (f *Fabric) SiteByName(n SiteID) (*Site, bool) {
	s, ok := f.sitesByName[n]
	return s, ok
}

// SiteAt returns the site at the exact (x, y) coordinate, if any.
func (f *Fabric) SiteAt(x, y float64) (*Site, bool) {
	for _, s := range f.sitesByName {
		if s.X == x && s.Y == y {
			return s, true
		}
	}
	return nil, false
}

// PinOfPort returns the fabric pin for the named I/O port.
func (f *Fabric) PinOfPort(name string) (*Pin, bool) {
	p, ok := f.pinsByName[name]
	return p, ok
}

// CellTypeCount returns the number of sites of the given type.
func (f *Fabric) CellTypeCount(t TypeID) int {
	return len(f.sitesByType[t])
}

// AllSites returns every site on the fabric, sorted by SiteID.
func (f *Fabric) AllSites() []*Site {
	out := make([]*Site, 0, len(f.sitesByName))
	for _, s := range f.sitesByName {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
