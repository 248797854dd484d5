// Package leakage holds the per-cell-type minimum-leakage input assignment
// derived from a Liberty leakage table (spec §3, §4.C).
package leakage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mazinbersy/asicflow/internal/design"
)

// Polarity is the tie state of an input pin at minimum leakage.
type Polarity string

const (
	HI Polarity = "HI"
	LO Polarity = "LO"
)

// Entry is one cell type's leakage-derived tie recommendation.
type Entry struct {
	InputTies map[design.PinName]Polarity
	MinPower  float64
	AvgPower  float64
}

// DB maps cell type to its leakage Entry.
type DB map[design.TypeID]*Entry

// TieFor returns the tie polarity for a given cell type and pin, falling
// back first to the cell-level summary and then to LO, per spec §4.G:
// "If the per-pin HI/LO is available, use it; else use the cell-level
// summary; else default to LO."
func (db DB) TieFor(cellType design.TypeID, pin design.PinName) Polarity {
	entry, ok := db[cellType]
	if !ok {
		return heuristicTie(string(cellType))
	}
	if p, ok := entry.InputTies[pin]; ok {
		return p
	}
	return summaryTie(entry)
}

// summaryTie collapses an entry's per-pin ties into one polarity: all-LO
// if every tied pin is LO, all-HI if every tied pin is HI, else LO as the
// conservative default for a mixed entry.
func summaryTie(e *Entry) Polarity {
	if len(e.InputTies) == 0 {
		return LO
	}
	allHI, allLO := true, true
	for _, p := range e.InputTies {
		if p != HI {
			allHI = false
		}
		if p != LO {
			allLO = false
		}
	}
	switch {
	case allHI:
		return HI
	case allLO:
		return LO
	default:
		return LO
	}
}

// heuristicTie is the name-based fallback used when Liberty lacks data for
// a cell type (spec §4.C): AND/BUF → LO, NAND/NOR/XOR → LO, OR → LO,
// defaulting conservatively to LO for anything unrecognized.
func heuristicTie(cellType string) Polarity {
	lower := strings.ToLower(cellType)
	for _, pat := range []string{"and", "buf", "nand", "nor", "xor", "or"} {
		if strings.Contains(lower, pat) {
			return LO
		}
	}
	return LO
}

// Report renders a human-readable per-cell-type tie table, restoring the
// diagnostic output the original tooling printed (parse_lib.py's
// generate_leakage_report).
func (db DB) Report() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-40s %-35s\n", "Cell Type", "Input States"))
	b.WriteString(strings.Repeat("-", 80) + "\n")

	types := make([]string, 0, len(db))
	for t := range db {
		types = append(types, string(t))
	}
	sort.Strings(types)

	for _, t := range types {
		entry := db[design.TypeID(t)]
		pins := make([]string, 0, len(entry.InputTies))
		for p := range entry.InputTies {
			pins = append(pins, string(p))
		}
		sort.Strings(pins)
		parts := make([]string, 0, len(pins))
		for _, p := range pins {
			parts = append(parts, fmt.Sprintf("%s=%s", p, entry.InputTies[design.PinName(p)]))
		}
		b.WriteString(fmt.Sprintf("%-40s %-35s\n", t, strings.Join(parts, ", ")))
	}
	return b.String()
}
