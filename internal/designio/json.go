// Package designio loads a Yosys-style design JSON (spec §6) into a
// design.DB and its companion netgraph.Graph.
package designio

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/flowerrors"
	"github.com/mazinbersy/asicflow/internal/logging"
	"github.com/mazinbersy/asicflow/internal/netgraph"
)

type designJSON struct {
	Modules map[string]moduleJSON `json:"modules"`
}

type moduleJSON struct {
	Ports map[string]portJSON `json:"ports"`
	Cells map[string]cellJSON `json:"cells"`
}

type portJSON struct {
	Direction string `json:"direction"`
	Bits      []int  `json:"bits"`
}

type cellJSON struct {
	Type        string           `json:"type"`
	Connections map[string][]int `json:"connections"`
}

// LoadFile reads path and parses it as a Yosys-style design JSON, returning
// the logical database and its netlist graph (spec §4.B).
func LoadFile(path, topModule string, log *logging.Logger) (*design.DB, *netgraph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, &flowerrors.MissingInputError{Path: path}
		}
		return nil, nil, err
	}
	return Load(data, topModule, log)
}

// Load parses a Yosys-style design JSON document.
func Load(data []byte, topModule string, log *logging.Logger) (*design.DB, *netgraph.Graph, error) {
	if log == nil {
		log = logging.Nop()
	}

	var doc designJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, &flowerrors.ParseError{Err: err}
	}
	if len(doc.Modules) == 0 {
		return nil, nil, &flowerrors.MissingDataError{Reason: "design JSON has no modules"}
	}

	if topModule == "" {
		// Deterministic fallback: lexicographically first module name.
		names := make([]string, 0, len(doc.Modules))
		for name := range doc.Modules {
			names = append(names, name)
		}
		sort.Strings(names)
		topModule = names[0]
	}

	mod, ok := doc.Modules[topModule]
	if !ok {
		return nil, nil, &flowerrors.ParseError{Err: fmt.Errorf("top module %q not found", topModule)}
	}

	db := design.New()
	db.Meta.TopModule = topModule

	// Ports become both db.Ports entries and PORT pseudo-instances so the
	// netlist graph and connection-closure invariant treat them uniformly.
	portNames := make([]string, 0, len(mod.Ports))
	for name := range mod.Ports {
		portNames = append(portNames, name)
	}
	sort.Strings(portNames)

	for _, name := range portNames {
		p := mod.Ports[name]
		netID := bitNetID(p.Bits, name, log)
		db.AddCell(&design.Cell{Name: design.InstID(name), Type: design.PortCellType, Pins: map[design.PinName]design.NetID{"PORT": netID}})
		db.EnsureNet(netID, fmt.Sprintf("net_%d", netID))
		db.AddConnection(netID, design.InstID(name), "PORT")

		switch p.Direction {
		case "input":
			db.Ports.Inputs[name] = netID
		case "output":
			db.Ports.Outputs[name] = netID
		default:
			// inout: record on both maps, matching spec §6's tri-state direction.
			db.Ports.Inputs[name] = netID
			db.Ports.Outputs[name] = netID
		}
	}

	cellNames := make([]string, 0, len(mod.Cells))
	for name := range mod.Cells {
		cellNames = append(cellNames, name)
	}
	sort.Strings(cellNames)

	for _, name := range cellNames {
		c := mod.Cells[name]
		cell := &design.Cell{
			Name: design.InstID(name),
			Type: design.TypeID(c.Type),
			Pins: make(map[design.PinName]design.NetID),
		}
		db.AddCell(cell)

		pinNames := make([]string, 0, len(c.Connections))
		for pin := range c.Connections {
			pinNames = append(pinNames, pin)
		}
		sort.Strings(pinNames)

		for _, pin := range pinNames {
			bits := c.Connections[pin]
			netID := bitNetID(bits, fmt.Sprintf("%s.%s", name, pin), log)
			db.EnsureNet(netID, fmt.Sprintf("net_%d", netID))
			db.AddConnection(netID, design.InstID(name), design.PinName(pin))
		}
	}

	g := netgraph.BuildFromDB(db)
	return db, g, nil
}

// bitNetID collapses a (possibly multi-bit) bus to its first bit, per spec
// §4.B/§6: "Multi-bit buses collapse to their first bit with a warning."
func bitNetID(bits []int, context string, log *logging.Logger) design.NetID {
	if len(bits) == 0 {
		return design.NoNet
	}
	if len(bits) > 1 {
		log.Warn("multi-bit bus collapsed to first bit", "at", context, "width", len(bits))
	}
	return design.NetID(bits[0])
}
