package cts

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/mazinbersy/asicflow/internal/celllib"
	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/fabric"
	"github.com/mazinbersy/asicflow/internal/flowerrors"
	"github.com/mazinbersy/asicflow/internal/logging"
	"github.com/mazinbersy/asicflow/internal/netgraph"
	"github.com/mazinbersy/asicflow/internal/placement"
)

var clockNameRe = regexp.MustCompile(`(?i)clk`)

// DetectClockPort returns the first input or output port whose name
// matches /clk/i, sorted for determinism (spec §4.F "auto-detected").
func DetectClockPort(db *design.DB) (string, bool) {
	var candidates []string
	for name := range db.Ports.Inputs {
		if clockNameRe.MatchString(name) {
			candidates = append(candidates, name)
		}
	}
	for name := range db.Ports.Outputs {
		if _, ok := db.Ports.Inputs[name]; ok {
			continue
		}
		if clockNameRe.MatchString(name) {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Strings(candidates)
	return candidates[0], true
}

// identifySinks returns every placed DFF/DFBBP instance still driven by
// oldNet on some pin. A sink already re-wired onto a leaf net by an
// earlier Synthesize call has no pin left pointing at oldNet, so it is
// excluded here; with no sinks left, Synthesize returns before touching
// any net — this is what makes a second Synthesize call a no-op
// (spec §4.F "Running CTS twice ... is a no-op").
func identifySinks(db *design.DB, p *placement.Placement, oldNet design.NetID) []sinkPos {
	var out []sinkPos
	for _, inst := range db.SortedInstIDs() {
		c := db.Cells[inst]
		if c.IsPort() {
			continue
		}
		lower := strings.ToLower(string(c.Type))
		if !strings.Contains(lower, "dff") && !strings.Contains(lower, "dfbbp") {
			continue
		}
		stillLegacy := false
		for _, n := range c.Pins {
			if n == oldNet {
				stillLegacy = true
				break
			}
		}
		if !stillLegacy {
			continue
		}
		coord, ok := p.CoordOf(inst)
		if !ok {
			continue
		}
		out = append(out, sinkPos{inst: inst, x: coord.X, y: coord.Y})
	}
	return out
}

func identifyResources(f *fabric.Fabric, p *placement.Placement) []*resource {
	var out []*resource
	for _, s := range f.AllSites() {
		if p.IsOccupied(s.Name) {
			continue
		}
		lower := strings.ToLower(string(s.CellType))
		isBuf := strings.Contains(lower, "buf")
		isInv := strings.Contains(lower, "inv")
		if !isBuf && !isInv {
			continue
		}
		out = append(out, &resource{site: s, isBuffer: isBuf})
	}
	return out
}

func computeCentroid(sinks []sinkPos) (float64, float64) {
	if len(sinks) == 0 {
		return 0, 0
	}
	var sx, sy float64
	for _, s := range sinks {
		sx += s.x
		sy += s.y
	}
	n := float64(len(sinks))
	return sx / n, sy / n
}

// findNearestResource returns the nearest unclaimed resource to (x, y),
// preferring buffers; falls back to inverters if no buffer is free.
func findNearestResource(resources []*resource, x, y float64, preferBuffer bool) *resource {
	var best *resource
	bestDist := math.Inf(1)
	for _, r := range resources {
		if r.claimed {
			continue
		}
		if preferBuffer && !r.isBuffer {
			continue
		}
		dx := r.site.X - x
		dy := r.site.Y - y
		d := dx*dx + dy*dy
		if best == nil || d < bestDist || (d == bestDist && r.site.Name < best.site.Name) {
			best = r
			bestDist = d
		}
	}
	if best == nil && preferBuffer {
		return findNearestResource(resources, x, y, false)
	}
	return best
}

// partitionSinks splits sinks into NE, NW, SW, SE quadrants around
// (cx, cy), dropping empty quadrants (spec §4.F).
func partitionSinks(sinks []sinkPos, cx, cy float64) [][]sinkPos {
	quadrants := make([][]sinkPos, 4)
	for _, s := range sinks {
		dx := s.x - cx
		dy := s.y - cy
		switch {
		case dx >= 0 && dy >= 0:
			quadrants[0] = append(quadrants[0], s) // NE
		case dx < 0 && dy >= 0:
			quadrants[1] = append(quadrants[1], s) // NW
		case dx < 0 && dy < 0:
			quadrants[2] = append(quadrants[2], s) // SW
		default:
			quadrants[3] = append(quadrants[3], s) // SE
		}
	}
	var out [][]sinkPos
	for _, q := range quadrants {
		if len(q) > 0 {
			out = append(out, q)
		}
	}
	return out
}

// build recursively constructs the H-tree over sinks (spec §4.F
// "Recursive builder").
func build(sinks []sinkPos, level int, resources []*resource, log *logging.Logger) *Node {
	if len(sinks) == 0 {
		return nil
	}

	cx, cy := computeCentroid(sinks)
	node := &Node{Level: level, Centroid: [2]float64{cx, cy}}

	for _, s := range sinks {
		node.Sinks = append(node.Sinks, s.inst)
	}
	sort.Slice(node.Sinks, func(i, j int) bool { return node.Sinks[i] < node.Sinks[j] })

	res := findNearestResource(resources, cx, cy, true)
	if res != nil {
		res.claimed = true
		name := res.site.Name
		node.Buffer = &name
		node.BufferPos = [2]float64{res.site.X, res.site.Y}
	} else {
		log.Warn("no free buffer or inverter for clock tree node; recording virtual node", "level", level, "centroid", node.Centroid)
	}

	if len(sinks) <= 4 || level > 8 {
		return node
	}

	for _, q := range partitionSinks(sinks, cx, cy) {
		child := build(q, level+1, resources, log)
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// Result bundles the synthesized tree with the instance name assigned to
// each claimed buffer, for reporting.
type Result struct {
	Tree        *Node
	ClockPort   string
	OldClockNet design.NetID

	// ClockNetIDs lists every net the synthesized tree touches (the
	// original clock-port net plus every buffer output and leaf net),
	// for emitters that need to mark clock nets without guessing from
	// instance names (spec §6 "clock nets carry + USE CLOCK").
	ClockNetIDs []design.NetID
}

// Synthesize replaces clockPort's net with a balanced H-tree of buffers
// driving every DFF sink, rewriting db and g in place and marking claimed
// buffer sites as used in p (spec §4.F).
func Synthesize(f *fabric.Fabric, db *design.DB, g *netgraph.Graph, p *placement.Placement, clockPort string, log *logging.Logger) (*Result, error) {
	if log == nil {
		log = logging.Nop()
	}

	if clockPort == "" {
		detected, ok := DetectClockPort(db)
		if !ok {
			return nil, &flowerrors.MissingDataError{Path: "design", Reason: "no clock port found and none specified"}
		}
		clockPort = detected
	}

	portCell, ok := db.Cells[design.InstID(clockPort)]
	if !ok || !portCell.IsPort() {
		return nil, &flowerrors.MissingDataError{Path: clockPort, Reason: "clock port is not a recognized port instance"}
	}
	oldNet := portCell.Pins["PORT"]

	sinks := identifySinks(db, p, oldNet)
	if len(sinks) == 0 {
		return &Result{ClockPort: clockPort, OldClockNet: oldNet}, nil
	}
	resources := identifyResources(f, p)

	sinkClockPin := make(map[design.InstID]design.PinName, len(sinks))
	net := db.Nets[oldNet]
	for _, e := range net.Connections {
		if e.Cell == design.InstID(clockPort) && e.Pin == "PORT" {
			continue
		}
		sinkClockPin[e.Cell] = e.Pin
	}

	// Step 1: strip the old clock net down to (clock_port, PORT).
	kept := net.Connections[:0]
	for _, e := range net.Connections {
		if e.Cell == design.InstID(clockPort) && e.Pin == "PORT" {
			kept = append(kept, e)
			continue
		}
		if c, ok := db.Cells[e.Cell]; ok {
			delete(c.Pins, e.Pin)
		}
	}
	net.Connections = kept
	g.RemoveNetFromAllEdges(oldNet)

	root := build(sinks, 0, resources, log)

	modifiedNets := map[design.NetID]struct{}{oldNet: {}}
	if root != nil {
		rewrite(db, p, f, root, oldNet, sinkClockPin, modifiedNets)
	}

	clockNets := make([]design.NetID, 0, len(modifiedNets))
	for netID := range modifiedNets {
		netgraph.RebuildNet(g, db, netID)
		clockNets = append(clockNets, netID)
	}
	sort.Slice(clockNets, func(i, j int) bool { return clockNets[i] < clockNets[j] })

	return &Result{Tree: root, ClockPort: clockPort, OldClockNet: oldNet, ClockNetIDs: clockNets}, nil
}

// rewrite walks the tree, creating buffer instances and rewiring sinks
// (spec §4.F "Netlist rewrite" step 3).
func rewrite(db *design.DB, p *placement.Placement, f *fabric.Fabric, node *Node, parentNet design.NetID, sinkClockPin map[design.InstID]design.PinName, modifiedNets map[design.NetID]struct{}) {
	if node.Buffer == nil {
		for _, sink := range node.Sinks {
			wireSink(db, sink, parentNet, sinkClockPin, modifiedNets)
		}
		for _, child := range node.Children {
			rewrite(db, p, f, child, parentNet, sinkClockPin, modifiedNets)
		}
		return
	}

	bufSite := *node.Buffer
	site, _ := f.SiteByName(bufSite)
	bufInst := design.InstID(fmt.Sprintf("cts_buf_%s", bufSite))
	out := db.AllocNetID()
	db.EnsureNet(out, fmt.Sprintf("net_%d", out))

	db.AddCell(&design.Cell{Name: bufInst, Type: design.TypeID(site.CellType), Pins: map[design.PinName]design.NetID{}})
	db.AddConnection(parentNet, bufInst, "A")
	db.AddConnection(out, bufInst, "Y")
	p.Place(bufInst, site)

	modifiedNets[parentNet] = struct{}{}
	modifiedNets[out] = struct{}{}

	for _, sink := range node.Sinks {
		wireSink(db, sink, out, sinkClockPin, modifiedNets)
	}
	for _, child := range node.Children {
		rewrite(db, p, f, child, out, sinkClockPin, modifiedNets)
	}
}

func wireSink(db *design.DB, sink design.InstID, net design.NetID, sinkClockPin map[design.InstID]design.PinName, modifiedNets map[design.NetID]struct{}) {
	c := db.Cells[sink]
	pin, ok := sinkClockPin[sink]
	if !ok {
		pin = design.PinName(celllib.ClockPin(string(c.Type)))
	}
	if prevNet, ok := c.Pins[pin]; ok && prevNet != net {
		db.RemoveConnection(prevNet, sink, pin)
		modifiedNets[prevNet] = struct{}{}
	}
	db.AddConnection(net, sink, pin)
	modifiedNets[net] = struct{}{}
}
