// Package netgraph implements the undirected netlist connectivity graph
// (spec §3): nodes are logical instances and port names, and every net
// with at least two endpoints contributes a clique over its endpoints.
//
// The adjacency-list shape here (map of node to map of neighbor to edge)
// follows the same design as the pack's graph/core adjacency list, but
// drops its mutex: spec §5 mandates a single-threaded, cooperative
// scheduling model end to end, so no stage ever mutates the graph
// concurrently and a lock would only add overhead no caller needs.
package netgraph

import (
	"sort"

	"github.com/mazinbersy/asicflow/internal/design"
)

// NodeID is either an InstID or a top-level port name.
type NodeID string

// Edge carries the set of nets responsible for connecting two nodes; two
// cells sharing several nets collapse to one edge with multiple ids.
type Edge struct {
	NetIDs map[design.NetID]struct{}
}

// Graph is the undirected netlist connectivity graph.
type Graph struct {
	adjacency map[NodeID]map[NodeID]*Edge
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{adjacency: make(map[NodeID]map[NodeID]*Edge)}
}

// AddNode ensures node is present, even if isolated.
func (g *Graph) AddNode(n NodeID) {
	if _, ok := g.adjacency[n]; !ok {
		g.adjacency[n] = make(map[NodeID]*Edge)
	}
}

// AddEdge records that a and b are connected by net. Mirror-inserts since
// the graph is undirected; a self-loop (a == b) is a no-op.
func (g *Graph) AddEdge(a, b NodeID, net design.NetID) {
	if a == b {
		g.AddNode(a)
		return
	}
	g.AddNode(a)
	g.AddNode(b)

	if e, ok := g.adjacency[a][b]; ok {
		e.NetIDs[net] = struct{}{}
	} else {
		e := &Edge{NetIDs: map[design.NetID]struct{}{net: {}}}
		g.adjacency[a][b] = e
		g.adjacency[b][a] = e
	}
}

// RemoveNetFromAllEdges deletes every edge whose NetIDs set contains only
// net (or shrinks edges carrying other nets too), used by CTS to retire
// the old clock net (spec §4.F step 1).
func (g *Graph) RemoveNetFromAllEdges(net design.NetID) {
	for a, neighbors := range g.adjacency {
		for b, e := range neighbors {
			delete(e.NetIDs, net)
			if len(e.NetIDs) == 0 {
				delete(neighbors, b)
			}
		}
		if len(neighbors) == 0 {
			g.adjacency[a] = neighbors
		}
	}
}

// Neighbors returns every node adjacent to n, sorted for determinism.
func (g *Graph) Neighbors(n NodeID) []NodeID {
	nbrs := g.adjacency[n]
	out := make([]NodeID, 0, len(nbrs))
	for id := range nbrs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasNode reports whether n is a node of the graph.
func (g *Graph) HasNode(n NodeID) bool {
	_, ok := g.adjacency[n]
	return ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.adjacency) }

// AddNetClique adds a clique over endpoints — one node per distinct
// (cell-or-port), edges labeled with net — per spec §3's netlist graph
// construction rule: "For every net with ≥ 2 endpoints, add a clique over
// its endpoints."
func AddNetClique(g *Graph, net design.NetID, endpoints []NodeID) {
	if len(endpoints) == 0 {
		return
	}
	if len(endpoints) == 1 {
		g.AddNode(endpoints[0])
		return
	}
	for i := 0; i < len(endpoints); i++ {
		for j := i + 1; j < len(endpoints); j++ {
			g.AddEdge(endpoints[i], endpoints[j], net)
		}
	}
}

// BuildFromDB rebuilds the entire netlist graph from scratch, following
// every net's connection list plus top-level ports. Used for the initial
// build (spec §4.B) and can be called again after a rewrite to fully
// resync the graph.
func BuildFromDB(db *design.DB) *Graph {
	g := New()
	for _, netID := range db.SortedNetIDs() {
		net := db.Nets[netID]
		endpoints := make([]NodeID, 0, len(net.Connections))
		for _, e := range net.Connections {
			endpoints = append(endpoints, NodeID(e.Cell))
		}
		AddNetClique(g, netID, endpoints)
	}
	return g
}

// RebuildNet recomputes the clique for a single net — used after CTS
// rewrites a net's connection list, to avoid a full graph rebuild (spec
// §4.F step 4: "Rebuild the netlist graph edges for every new or modified
// net").
func RebuildNet(g *Graph, db *design.DB, netID design.NetID) {
	net, ok := db.Nets[netID]
	if !ok {
		return
	}
	endpoints := make([]NodeID, 0, len(net.Connections))
	for _, e := range net.Connections {
		endpoints = append(endpoints, NodeID(e.Cell))
	}
	AddNetClique(g, netID, endpoints)
}
