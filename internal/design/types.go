// Package design holds the mutable logical database: cell and net tables
// derived from a technology-mapped gate-level netlist (spec §3, §4.B).
package design

import "sort"

// InstID names a logical instance (or, for a port pseudo-instance, the
// port's name).
type InstID string

// NetID identifies a net. NetID 0 is reserved for "none".
type NetID int

// NoNet is the reserved "no net" identifier.
const NoNet NetID = 0

// TypeID names a logical cell type (mirrors fabric.TypeID, kept distinct
// so the logical and physical domains don't silently conflate).
type TypeID string

// PortCellType marks a cell as an I/O port pseudo-instance rather than a
// real logical gate.
const PortCellType TypeID = "PORT"

// PinName names a cell's pin (A, B, Y, C, CLK, ...).
type PinName string

// Endpoint is one (cell-or-port, pin) terminal of a net.
type Endpoint struct {
	Cell InstID
	Pin  PinName
}

// Net is a single-bit net and its full connection list.
type Net struct {
	ID          NetID
	Name        string
	Connections []Endpoint
}

// Cell is a logical instance: a gate, flip-flop, buffer, tie cell, or a
// PORT pseudo-instance.
type Cell struct {
	Name InstID
	Type TypeID
	Pins map[PinName]NetID
}

// IsPort reports whether c is a port pseudo-instance.
func (c *Cell) IsPort() bool { return c.Type == PortCellType }

// Ports partitions top-level module ports by direction.
type Ports struct {
	Inputs  map[string]NetID
	Outputs map[string]NetID
}

// Meta carries free-form design metadata (top module name, etc.).
type Meta struct {
	TopModule string
}

// DB is the logical database: the cell and net tables for one design.
// Read-only through the Greedy and SA stages; rewritten in place by CTS
// and ECO (spec §3 "Lifecycles").
type DB struct {
	Cells       map[InstID]*Cell
	CellsByType map[TypeID][]InstID
	Nets        map[NetID]*Net
	Ports       Ports
	Meta        Meta

	nextNetID NetID
}

// New creates an empty logical database.
func New() *DB {
	return &DB{
		Cells:       make(map[InstID]*Cell),
		CellsByType: make(map[TypeID][]InstID),
		Nets:        make(map[NetID]*Net),
		Ports:       Ports{Inputs: make(map[string]NetID), Outputs: make(map[string]NetID)},
	}
}

// EnsureNet returns the net with the given id, creating it (with the given
// name) if it does not yet exist, and tracks the running max NetID so
// AllocNetID can hand out fresh ids afterwards.
func (db *DB) EnsureNet(id NetID, name string) *Net {
	if n, ok := db.Nets[id]; ok {
		return n
	}
	n := &Net{ID: id, Name: name}
	db.Nets[id] = n
	if id > db.nextNetID {
		db.nextNetID = id
	}
	return n
}

// AllocNetID returns a fresh NetID strictly greater than every NetID seen
// so far (spec §4.F step 2: "fresh NetIds starting from max_existing + 1").
func (db *DB) AllocNetID() NetID {
	db.nextNetID++
	return db.nextNetID
}

// AddCell registers a cell in both Cells and CellsByType.
func (db *DB) AddCell(c *Cell) {
	db.Cells[c.Name] = c
	db.CellsByType[c.Type] = append(db.CellsByType[c.Type], c.Name)
}

// AddConnection appends (cell, pin) to net's connection list and sets the
// cell's pin to net, keeping both sides of the invariant in sync.
func (db *DB) AddConnection(netID NetID, cell InstID, pin PinName) {
	net := db.EnsureNet(netID, "")
	net.Connections = append(net.Connections, Endpoint{Cell: cell, Pin: pin})
	if c, ok := db.Cells[cell]; ok {
		if c.Pins == nil {
			c.Pins = make(map[PinName]NetID)
		}
		c.Pins[pin] = netID
	}
}

// RemoveConnection deletes (cell, pin) from net's connection list without
// touching the cell's pin map (the caller updates that separately — CTS's
// wireSink removes a sink from its previous net, then re-points the pin
// with AddConnection).
func (db *DB) RemoveConnection(netID NetID, cell InstID, pin PinName) {
	net, ok := db.Nets[netID]
	if !ok {
		return
	}
	out := net.Connections[:0]
	for _, e := range net.Connections {
		if e.Cell == cell && e.Pin == pin {
			continue
		}
		out = append(out, e)
	}
	net.Connections = out
}

// SortedInstIDs returns every cell name, sorted, for deterministic
// iteration.
func (db *DB) SortedInstIDs() []InstID {
	out := make([]InstID, 0, len(db.Cells))
	for id := range db.Cells {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SortedNetIDs returns every net id, sorted, for deterministic iteration.
func (db *DB) SortedNetIDs() []NetID {
	out := make([]NetID, 0, len(db.Nets))
	for id := range db.Nets {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
