// Package lefio parses the small subset of LEF and Technology LEF syntax
// the flow needs: macro pin names and dimensions from LEF, site and
// routing layer definitions from TLEF (spec §4.H, §6).
package lefio

import (
	"os"
	"regexp"
	"strconv"
)

// Macro is one LEF MACRO's dimensions and pin names.
type Macro struct {
	Name        string
	WidthUM     float64
	HeightUM    float64
	HasSize     bool
	Pins        []string
}

// Lib is the parsed contents of one LEF file.
type Lib struct {
	Version     string
	DividerChar string
	BusBitChars string
	Macros      map[string]*Macro
}

var (
	lefVersionRe = regexp.MustCompile(`VERSION\s+([\d.]+)\s*;`)
	dividerRe    = regexp.MustCompile(`DIVIDERCHAR\s+"([^"]+)"\s*;`)
	busbitRe     = regexp.MustCompile(`BUSBITCHARS\s+"([^"]+)"\s*;`)
	sizeRe       = regexp.MustCompile(`SIZE\s+([\d.]+)\s+BY\s+([\d.]+)\s*;`)
	pinRe        = regexp.MustCompile(`PIN\s+(\w+)\s*\n`)
)

// DefaultLib returns the flow's fallback technology defaults, used when no
// LEF is supplied (spec §4.H "optional").
func DefaultLib() *Lib {
	return &Lib{Version: "5.8", DividerChar: "/", BusBitChars: "[]", Macros: map[string]*Macro{}}
}

// ParseFile reads and parses a LEF file. A missing path returns
// DefaultLib with no error, matching the original tool's degrade-to-
// defaults behavior for an optional input.
func ParseFile(path string) (*Lib, error) {
	if path == "" {
		return DefaultLib(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultLib(), nil
		}
		return nil, err
	}
	return Parse(string(data)), nil
}

// Parse extracts VERSION, DIVIDERCHAR, BUSBITCHARS, and every MACRO's
// SIZE and PIN names from LEF text.
func Parse(content string) *Lib {
	lib := DefaultLib()

	if m := lefVersionRe.FindStringSubmatch(content); m != nil {
		lib.Version = m[1]
	}
	if m := dividerRe.FindStringSubmatch(content); m != nil {
		lib.DividerChar = m[1]
	}
	if m := busbitRe.FindStringSubmatch(content); m != nil {
		lib.BusBitChars = m[1]
	}

	for _, macroName := range findMacroNames(content) {
		body, ok := extractBlock(content, "MACRO", macroName)
		if !ok {
			continue
		}
		macro := &Macro{Name: macroName}
		if m := sizeRe.FindStringSubmatch(body); m != nil {
			macro.WidthUM, _ = strconv.ParseFloat(m[1], 64)
			macro.HeightUM, _ = strconv.ParseFloat(m[2], 64)
			macro.HasSize = true
		}
		for _, pm := range pinRe.FindAllStringSubmatch(body, -1) {
			macro.Pins = append(macro.Pins, pm[1])
		}
		lib.Macros[macroName] = macro
	}

	return lib
}

var macroNameRe = regexp.MustCompile(`MACRO\s+(\w+)`)

func findMacroNames(content string) []string {
	var names []string
	for _, m := range macroNameRe.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	return names
}

// extractBlock finds the body between "KEYWORD name" and its matching
// "END name", since Go's RE2 can't backreference the captured name the
// way eco_generator.py's Python regex does.
func extractBlock(content, keyword, name string) (string, bool) {
	startRe := regexp.MustCompile(keyword + `\s+` + regexp.QuoteMeta(name) + `\b`)
	endRe := regexp.MustCompile(`END\s+` + regexp.QuoteMeta(name) + `\b`)

	loc := startRe.FindStringIndex(content)
	if loc == nil {
		return "", false
	}
	rest := content[loc[1]:]
	endLoc := endRe.FindStringIndex(rest)
	if endLoc == nil {
		return "", false
	}
	return rest[:endLoc[0]], true
}

// OutputPin picks the conventional output pin name for a cell type from
// its LEF macro, defaulting to "Y" (spec §4.H "output pin normalized").
func (l *Lib) OutputPin(cellType string) string {
	macro, ok := l.Macros[cellType]
	if !ok {
		return "Y"
	}
	for _, candidate := range []string{"X", "Q", "QN", "Y", "HI", "LO"} {
		for _, p := range macro.Pins {
			if p == candidate {
				return candidate
			}
		}
	}
	power := map[string]bool{"VPWR": true, "VGND": true, "VDD": true, "VSS": true, "VNB": true, "VPB": true, "A": true, "B": true, "C": true, "D": true}
	for i := len(macro.Pins) - 1; i >= 0; i-- {
		if !power[macro.Pins[i]] {
			return macro.Pins[i]
		}
	}
	return "Y"
}
