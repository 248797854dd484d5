package emit

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mazinbersy/asicflow/internal/celllib"
	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/logging"
	"github.com/mazinbersy/asicflow/internal/placement"
)

// pinAliases mirrors eco_generator.py's fallback mapping: when a pin name
// recorded in the logical DB isn't a valid pin on the target cell type,
// try these common equivalents before giving up on the connection.
var pinAliases = map[string][]string{
	"Y": {"X", "Y", "Q"},
	"A": {"A", "I", "IN"},
	"B": {"B", "IN2"},
}

// normalizePin resolves pinName against cellType's valid pin set
// case-insensitively, falling back to pinAliases, returning ("", false)
// if no valid pin name can be found.
func normalizePin(cellType, pinName string) (string, bool) {
	valid := celllib.ValidPins(cellType)
	if valid == nil {
		return pinName, true
	}
	for _, v := range valid {
		if strings.EqualFold(v, pinName) {
			return v, true
		}
	}
	for _, alias := range pinAliases[pinName] {
		for _, v := range valid {
			if strings.EqualFold(v, alias) {
				return v, true
			}
		}
	}
	return "", false
}

// WriteVerilog emits a synthesizable netlist: module header, port and
// wire declarations, one instantiation per cell, with connections using
// the valid pin names for each cell type (spec §4.H).
func WriteVerilog(w io.Writer, designName string, db *design.DB, log *logging.Logger) error {
	if log == nil {
		log = logging.Nop()
	}
	bw := bufio.NewWriter(w)

	var inputPorts, outputPorts []string
	for name := range db.Ports.Inputs {
		inputPorts = append(inputPorts, name)
	}
	for name := range db.Ports.Outputs {
		outputPorts = append(outputPorts, name)
	}
	sort.Strings(inputPorts)
	sort.Strings(outputPorts)

	allPorts := append(append([]string{}, inputPorts...), outputPorts...)
	portSet := make(map[string]struct{}, len(allPorts))
	for _, p := range allPorts {
		portSet[p] = struct{}{}
	}

	fmt.Fprintf(bw, "module %s (%s);\n\n", designName, strings.Join(allPorts, ", "))
	if len(inputPorts) > 0 {
		fmt.Fprintf(bw, "  input %s;\n", strings.Join(inputPorts, ", "))
	}
	if len(outputPorts) > 0 {
		fmt.Fprintf(bw, "  output %s;\n", strings.Join(outputPorts, ", "))
	}
	bw.WriteString("\n")

	var internalNets []string
	for _, id := range db.SortedNetIDs() {
		n := db.Nets[id]
		name := n.Name
		if name == "" {
			name = fmt.Sprintf("net_%d", id)
		}
		if _, isPort := portSet[name]; !isPort {
			internalNets = append(internalNets, name)
		}
	}
	if len(internalNets) > 0 {
		fmt.Fprintf(bw, "  wire %s;\n\n", strings.Join(internalNets, ", "))
	}

	for _, instID := range db.SortedInstIDs() {
		cell := db.Cells[instID]
		if cell.IsPort() {
			continue
		}

		var pinNames []string
		for pin := range cell.Pins {
			pinNames = append(pinNames, string(pin))
		}
		sort.Strings(pinNames)

		var conns []string
		for _, pin := range pinNames {
			netID := cell.Pins[design.PinName(pin)]
			valid, ok := normalizePin(string(cell.Type), pin)
			if !ok {
				log.Warn("pin not found in cell library; dropping connection", "cell", instID, "type", cell.Type, "pin", pin)
				continue
			}
			net := db.Nets[netID]
			netName := fmt.Sprintf("net_%d", netID)
			if net != nil && net.Name != "" {
				netName = net.Name
			}
			conns = append(conns, fmt.Sprintf(".%s(%s)", valid, netName))
		}

		if len(conns) == 0 {
			continue
		}
		fmt.Fprintf(bw, "  %s %s (%s);\n", cell.Type, instID, strings.Join(conns, ", "))
	}

	bw.WriteString("\nendmodule\n")
	return bw.Flush()
}

// RenameInstances rewrites every cell instantiation line in verilog so
// the instance identifier is the fabric site it was placed at, instead
// of its logical name (spec §4.H "renamed from logical to fabric-site
// names by a text pass over the file").
func RenameInstances(verilog string, p *placement.Placement) string {
	lines := strings.Split(verilog, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		indent := line[:len(line)-len(trimmed)]

		fields := strings.SplitN(trimmed, " ", 3)
		if len(fields) < 3 || !strings.HasPrefix(fields[2], "(") {
			continue
		}
		cellType, instName := fields[0], fields[1]
		coord, ok := p.CoordOf(design.InstID(instName))
		if !ok {
			continue
		}
		lines[i] = fmt.Sprintf("%s%s %s %s", indent, cellType, coord.Site, fields[2])
	}
	return strings.Join(lines, "\n")
}
