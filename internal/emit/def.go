package emit

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/fabric"
	"github.com/mazinbersy/asicflow/internal/lefio"
	"github.com/mazinbersy/asicflow/internal/logging"
	"github.com/mazinbersy/asicflow/internal/placement"
)

// DebugComponentsEnabled reports whether DEBUG_COMPONENTS enables verbose
// component-placement tracing (spec §6 "Environment variables").
func DebugComponentsEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("DEBUG_COMPONENTS")))
	switch v {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// toDBU converts a micron value to database units by int(value *
// dbu_per_micron), with no halving of any kind (spec §4.H, §9 "DEF
// writers differ on whether DIEAREA coordinates are halved... no
// halving").
func toDBU(valueUM, dbuPerMicron float64) int {
	return int(valueUM * dbuPerMicron)
}

// snap rounds dbu down to the nearest multiple of gridDBU.
func snap(dbu, gridDBU int) int {
	if gridDBU <= 0 {
		return dbu
	}
	return (dbu / gridDBU) * gridDBU
}

// WriteDEF emits a DEF 5.8 file for the fabric/design/placement triple
// (spec §4.H). clockNetIDs, when non-nil, names the nets CTS produced —
// the original clock-port net plus every buffer output and leaf net —
// so writeNets can mark them `+ USE CLOCK` without guessing from
// instance names. Pass nil when CTS was skipped.
func WriteDEF(w io.Writer, designName string, f *fabric.Fabric, db *design.DB, p *placement.Placement, lef *lefio.Lib, tech *lefio.Tech, clockNetIDs []design.NetID, log *logging.Logger) error {
	if log == nil {
		log = logging.Nop()
	}
	if lef == nil {
		lef = lefio.DefaultLib()
	}
	if tech == nil {
		tech = lefio.DefaultTech()
	}
	debug := DebugComponentsEnabled()

	bw := bufio.NewWriter(w)
	dbu := f.DBUPerMicron
	if dbu == 0 {
		dbu = float64(tech.DBUPerMicron)
	}

	siteWidthDBU, siteHeightDBU := 1, 1
	for _, s := range tech.Sites {
		siteWidthDBU = toDBU(s.WidthUM, dbu)
		siteHeightDBU = toDBU(s.HeightUM, dbu)
		break
	}

	fmt.Fprintf(bw, "VERSION 5.8 ;\n")
	fmt.Fprintf(bw, "DIVIDERCHAR %q ;\n", lef.DividerChar)
	fmt.Fprintf(bw, "BUSBITCHARS %q ;\n", lef.BusBitChars)
	fmt.Fprintf(bw, "DESIGN %s ;\n", designName)
	fmt.Fprintf(bw, "UNITS DISTANCE MICRONS %d ;\n\n", int(dbu))

	llx, lly := toDBU(f.DieBBox.MinX, dbu), toDBU(f.DieBBox.MinY, dbu)
	urx, ury := toDBU(f.DieBBox.MaxX, dbu), toDBU(f.DieBBox.MaxY, dbu)
	fmt.Fprintf(bw, "DIEAREA ( %d %d ) ( %d %d ) ;\n\n", llx, lly, urx, ury)

	writeRows(bw, f, dbu, siteWidthDBU, siteHeightDBU)
	writeTracks(bw, tech, f, dbu)
	writeComponents(bw, f, p, dbu, siteWidthDBU, siteHeightDBU, debug, log)
	writeDEFPins(bw, f, db, dbu)
	writeNets(bw, db, p, f, dbu, clockNetIDs)

	bw.WriteString("END DESIGN\n")
	return bw.Flush()
}

func writeRows(bw *bufio.Writer, f *fabric.Fabric, dbu float64, siteW, siteH int) {
	if siteH == 0 {
		siteH = 1
	}
	rows := int(math.Ceil(f.CoreBBox.Height() * dbu / float64(siteH)))
	y0 := toDBU(f.CoreBBox.MinY, dbu)
	x0 := toDBU(f.CoreBBox.MinX, dbu)
	numX := 1
	if siteW > 0 {
		numX = int(math.Ceil(f.CoreBBox.Width() * dbu / float64(siteW)))
	}
	for r := 0; r < rows; r++ {
		orient := "N"
		if r%2 == 1 {
			orient = "FS"
		}
		fmt.Fprintf(bw, "ROW core_row_%d unit_site %d %d %s DO %d BY 1 STEP %d 0 ;\n",
			r, x0, y0+r*siteH, orient, numX, siteW)
	}
	bw.WriteString("\n")
}

func writeTracks(bw *bufio.Writer, tech *lefio.Tech, f *fabric.Fabric, dbu float64) {
	var names []string
	for name := range tech.Layers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		layer := tech.Layers[name]
		if layer.Type != "ROUTING" && layer.Type != "" {
			continue
		}
		step := toDBU(layer.WidthUM*2, dbu)
		if step <= 0 {
			step = 1
		}
		dir := "X"
		if layer.Direction == "HORIZONTAL" {
			dir = "Y"
		}
		numTracks := int(math.Ceil(f.DieBBox.Width() * dbu / float64(step)))
		fmt.Fprintf(bw, "TRACKS %s 0 DO %d STEP %d LAYER %s ;\n", dir, numTracks, step, name)
	}
	if len(names) > 0 {
		bw.WriteString("\n")
	}
}

func writeComponents(bw *bufio.Writer, f *fabric.Fabric, p *placement.Placement, dbu float64, siteW, siteH int, debug bool, log *logging.Logger) {
	sites := f.AllSites()
	fmt.Fprintf(bw, "COMPONENTS %d ;\n", len(sites))
	for _, s := range sites {
		x := snap(toDBU(s.X, dbu), siteW)
		y := snap(toDBU(s.Y, dbu), siteH)
		inst, occupied := p.InstAt(s.Name)
		compName := string(s.Name)
		if occupied {
			compName = string(inst)
		}
		if debug {
			log.Debug("component", "site", s.Name, "inst", compName, "x", x, "y", y, "orient", s.Orient)
		}
		fmt.Fprintf(bw, "- %s %s + FIXED ( %d %d ) %s ;\n", compName, s.CellType, x, y, orOrient(s.Orient))
	}
	bw.WriteString("END COMPONENTS\n\n")
}

func orOrient(o fabric.Orient) string {
	if o == "" {
		return "N"
	}
	return string(o)
}

func sideOrient(s fabric.Side) string {
	switch s {
	case fabric.SideNorth:
		return "N"
	case fabric.SideSouth:
		return "S"
	case fabric.SideEast:
		return "E"
	default:
		return "W"
	}
}

func writeDEFPins(bw *bufio.Writer, f *fabric.Fabric, db *design.DB, dbu float64) {
	names := make([]string, 0, len(db.Ports.Inputs)+len(db.Ports.Outputs))
	seen := make(map[string]struct{})
	for name := range db.Ports.Inputs {
		names = append(names, name)
		seen[name] = struct{}{}
	}
	for name := range db.Ports.Outputs {
		if _, ok := seen[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var withPin []string
	for _, name := range names {
		if _, ok := f.PinOfPort(name); ok {
			withPin = append(withPin, name)
		}
	}

	fmt.Fprintf(bw, "PINS %d ;\n", len(withPin))
	for _, name := range withPin {
		pin, _ := f.PinOfPort(name)
		direction := "INOUT"
		_, isInput := db.Ports.Inputs[name]
		_, isOutput := db.Ports.Outputs[name]
		switch {
		case isInput && !isOutput:
			direction = "INPUT"
		case isOutput && !isInput:
			direction = "OUTPUT"
		}

		halfW := toDBU(pin.WidthUM/2, dbu)
		halfH := toDBU(pin.HeightUM/2, dbu)
		x, y := toDBU(pin.X, dbu), toDBU(pin.Y, dbu)

		fmt.Fprintf(bw, "- %s + NET %s + DIRECTION %s + LAYER %s ( %d %d ) ( %d %d )\n",
			name, name, direction, pin.Layer, -halfW, -halfH, halfW, halfH)
		fmt.Fprintf(bw, "  + FIXED ( %d %d ) %s ;\n", x, y, sideOrient(pin.Side))
	}
	bw.WriteString("END PINS\n\n")
}

func writeNets(bw *bufio.Writer, db *design.DB, p *placement.Placement, f *fabric.Fabric, dbu float64, clockNetIDs []design.NetID) {
	clockNets := make(map[design.NetID]struct{}, len(clockNetIDs))
	for _, id := range clockNetIDs {
		clockNets[id] = struct{}{}
	}

	netIDs := db.SortedNetIDs()
	fmt.Fprintf(bw, "NETS %d ;\n", len(netIDs))
	for _, id := range netIDs {
		net := db.Nets[id]
		if len(net.Connections) == 0 {
			continue
		}
		var terms []string
		for _, e := range net.Connections {
			cell := db.Cells[e.Cell]
			if cell != nil && cell.IsPort() {
				terms = append(terms, fmt.Sprintf("( PIN %s )", e.Cell))
			} else {
				instName := string(e.Cell)
				if coord, ok := p.CoordOf(e.Cell); ok {
					instName = string(coord.Site)
				}
				terms = append(terms, fmt.Sprintf("( %s %s )", instName, e.Pin))
			}
		}
		_, isClock := clockNets[id]
		name := net.Name
		if name == "" {
			name = fmt.Sprintf("net_%d", id)
		}
		fmt.Fprintf(bw, "- %s %s", name, strings.Join(terms, " "))
		if isClock {
			bw.WriteString(" + USE CLOCK")
		}
		bw.WriteString(" ;\n")
	}
	bw.WriteString("END NETS\n\n")
}
