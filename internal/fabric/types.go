// Package fabric holds the immutable, read-only description of the
// structured ASIC fabric: the die and core bounding boxes, the pin ring,
// and every typed site available for instance binding (spec §3, §4.A).
package fabric

// SiteID identifies a site uniquely within the fabric.
type SiteID string

// TypeID identifies a cell type (logic gate, flip-flop, buffer, tie cell,
// tap, decap, filler, ...).
type TypeID string

// TileID identifies a tile within the fabric grid.
type TileID string

// Orient is a site's placement orientation (N, FN, S, FS, ...).
type Orient string

// Side names which edge of the die/core a pin sits on.
type Side string

const (
	SideNorth Side = "N"
	SideSouth Side = "S"
	SideEast  Side = "E"
	SideWest  Side = "W"
)

// Direction is a pin's signal direction.
type Direction string

const (
	DirInput  Direction = "input"
	DirOutput Direction = "output"
	DirInout  Direction = "inout"
)

// Site is one fixed-position, fixed-type seat on the fabric. Immutable
// after the fabric is loaded.
type Site struct {
	Name      SiteID
	CellType  TypeID
	X, Y      float64
	WidthUM   float64
	HeightUM  float64
	Orient    Orient
	Tile      TileID
	Row       uint16
}

// BBox is an axis-aligned bounding box in microns.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the bounding box width.
func (b BBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns the bounding box height.
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

// Pin is one entry of the fabric's I/O pin ring.
type Pin struct {
	Name      string
	Direction Direction
	X, Y      float64
	Layer     string
	Side      Side
	WidthUM   float64
	HeightUM  float64
}

// Fabric is the complete, read-only fabric description assembled from the
// tile→site layout, the pin ring, and the cell-type dimension table
// (spec §4.A, §6).
type Fabric struct {
	DieBBox      BBox
	CoreBBox     BBox
	Pins         []Pin
	SitesByTile  map[TileID][]*Site
	DBUPerMicron float64

	sitesByName map[SiteID]*Site
	sitesByType map[TypeID][]*Site
	pinsByName  map[string]*Pin
}
