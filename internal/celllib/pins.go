// Package celllib is the built-in static pin-name table for the cell
// types the flow reasons about directly (clock sinks, gate inputs,
// buffers, tie cells), with a name-heuristic fallback for any cell type
// it doesn't recognize (spec §9 "Dynamic pin-table dictionaries...
// become a static lookup keyed by TypeId").
package celllib

import "strings"

// Spec is one cell type's pin table.
type Spec struct {
	Inputs  []string
	Outputs []string
	Clock   string // "" if the cell type has no clock pin
}

// builtin keys are matched as substrings of the lowercased cell type
// name, the longest matching key winning, so "NAND2_X2", "nand2x4" and
// "sky130_fd_sc_hd__nand2_2" all resolve to the same entry.
var builtin = map[string]Spec{
	"dfbbp": {Inputs: []string{"D", "RESET_B", "SET_B"}, Outputs: []string{"Q", "QN"}, Clock: "C"},
	"dff":   {Inputs: []string{"D"}, Outputs: []string{"Q"}, Clock: "C"},
	"buf":   {Inputs: []string{"A"}, Outputs: []string{"Y"}},
	"inv":   {Inputs: []string{"A"}, Outputs: []string{"Y"}},
	"nand2": {Inputs: []string{"A", "B"}, Outputs: []string{"Y"}},
	"nand3": {Inputs: []string{"A", "B", "C"}, Outputs: []string{"Y"}},
	"nor2":  {Inputs: []string{"A", "B"}, Outputs: []string{"Y"}},
	"nor3":  {Inputs: []string{"A", "B", "C"}, Outputs: []string{"Y"}},
	"and2":  {Inputs: []string{"A", "B"}, Outputs: []string{"X"}},
	"and3":  {Inputs: []string{"A", "B", "C"}, Outputs: []string{"X"}},
	"or2":   {Inputs: []string{"A", "B"}, Outputs: []string{"X"}},
	"or3":   {Inputs: []string{"A", "B", "C"}, Outputs: []string{"X"}},
	"xor2":  {Inputs: []string{"A", "B"}, Outputs: []string{"X"}},
	"xnor2": {Inputs: []string{"A", "B"}, Outputs: []string{"Y"}},
	"mux2":  {Inputs: []string{"A0", "A1", "S"}, Outputs: []string{"X"}},
	"conb":  {Inputs: nil, Outputs: []string{"HI", "LO"}},
}

func lookup(cellType string) (Spec, bool) {
	lower := strings.ToLower(cellType)
	best := ""
	for token := range builtin {
		if strings.Contains(lower, token) && (len(token) > len(best) || (len(token) == len(best) && token < best)) {
			best = token
		}
	}
	if best == "" {
		return Spec{}, false
	}
	return builtin[best], true
}

// InputPins returns cellType's input pin names, from the built-in table
// when recognized, else a name-based heuristic (spec §4.G).
func InputPins(cellType string) []string {
	if spec, ok := lookup(cellType); ok {
		return spec.Inputs
	}
	return heuristicInputPins(cellType)
}

// ClockPin returns the cell type's clock input pin name: "C" when the
// built-in table says so, else "CLK" (spec §4.F).
func ClockPin(cellType string) string {
	if spec, ok := lookup(cellType); ok && spec.Clock != "" {
		return spec.Clock
	}
	return "CLK"
}

// ValidPins returns every pin name the built-in table defines for
// cellType (inputs, outputs, and clock), used by the Verilog emitter to
// validate and normalize instance port connections. Returns nil for an
// unrecognized cell type — the emitter's own fallback then applies.
func ValidPins(cellType string) []string {
	spec, ok := lookup(cellType)
	if !ok {
		return nil
	}
	out := append([]string{}, spec.Inputs...)
	out = append(out, spec.Outputs...)
	if spec.Clock != "" {
		out = append(out, spec.Clock)
	}
	return out
}

// heuristicInputPins guesses an input pin list from the cell type name
// when it isn't in the built-in table: the digit in the name (if any)
// gives the input arity, defaulting to a single input "A".
func heuristicInputPins(cellType string) []string {
	switch {
	case strings.Contains(cellType, "4"):
		return []string{"A", "B", "C", "D"}
	case strings.Contains(cellType, "3"):
		return []string{"A", "B", "C"}
	case strings.Contains(cellType, "2"):
		return []string{"A", "B"}
	default:
		return []string{"A"}
	}
}
