// Package emit writes the three flow output formats — placement map,
// Verilog, and DEF — from the fabric, logical DB, and placement produced
// by earlier stages (spec §4.H).
package emit

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/fabric"
	"github.com/mazinbersy/asicflow/internal/placement"
)

// WritePlacementMap writes the line-oriented placement map: one line per
// port, then one line per fabric site sorted by site name (spec §4.H).
func WritePlacementMap(w io.Writer, f *fabric.Fabric, db *design.DB, p *placement.Placement) error {
	bw := bufio.NewWriter(w)

	var portNames []string
	for name := range db.Ports.Inputs {
		portNames = append(portNames, name)
	}
	for name := range db.Ports.Outputs {
		if _, ok := db.Ports.Inputs[name]; ok {
			continue
		}
		portNames = append(portNames, name)
	}
	sort.Strings(portNames)

	for _, name := range portNames {
		pin, ok := f.PinOfPort(name)
		if !ok {
			continue
		}
		fmt.Fprintf(bw, "%s %.2f %.2f\n", name, pin.X, pin.Y)
	}

	for _, s := range f.AllSites() {
		inst, ok := p.InstAt(s.Name)
		mapped := "UNUSED"
		if ok {
			mapped = string(inst)
		}
		fmt.Fprintf(bw, "%s %s %.2f %.2f -> %s\n", s.Name, s.CellType, s.X, s.Y, mapped)
	}

	return bw.Flush()
}
