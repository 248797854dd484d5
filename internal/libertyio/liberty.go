// Package libertyio implements a minimal event-driven parser for the
// subset of Liberty (.lib) syntax the flow consumes: cell() blocks with
// leakage_power()/value/when stanzas (spec §4.C, §6).
package libertyio

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/flowerrors"
	"github.com/mazinbersy/asicflow/internal/leakage"
)

var (
	cellRe  = regexp.MustCompile(`cell\s*\(\s*"?([A-Za-z0-9_]+)"?\s*\)`)
	valueRe = regexp.MustCompile(`value\s*:\s*([0-9.eE+-]+)`)
	whenRe  = regexp.MustCompile(`when\s*:\s*"([^"]+)"`)
)

// ParseFile reads a Liberty file and returns the leakage database.
func ParseFile(path string) (leakage.DB, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &flowerrors.MissingInputError{Path: path}
		}
		return nil, err
	}
	defer f.Close()
	db, err := Parse(f)
	if pe, ok := err.(*flowerrors.ParseError); ok {
		pe.Source = path
	}
	if me, ok := err.(*flowerrors.MissingDataError); ok {
		me.Path = path
	}
	return db, err
}

// Parse scans Liberty text and extracts, for every cell() block, the
// leakage_power states keyed by their "when" boolean expression, then
// picks the minimum-leakage state per cell type (spec §4.C).
func Parse(r io.Reader) (leakage.DB, error) {
	states := make(map[string]map[string]float64)

	var currentCell string
	var pendingValue float64
	var haveValue bool

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "cell (") || strings.HasPrefix(line, "cell(") {
			if m := cellRe.FindStringSubmatch(line); m != nil {
				currentCell = m[1]
				if _, ok := states[currentCell]; !ok {
					states[currentCell] = make(map[string]float64)
				}
			}
			continue
		}

		if currentCell == "" {
			continue
		}

		if strings.Contains(line, "value") && strings.Contains(line, ":") {
			if m := valueRe.FindStringSubmatch(line); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					pendingValue = v
					haveValue = true
				}
			}
		}

		if strings.Contains(line, "when") && strings.Contains(line, ":") && haveValue {
			if m := whenRe.FindStringSubmatch(line); m != nil {
				states[currentCell][m[1]] = pendingValue
				haveValue = false
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &flowerrors.ParseError{Source: "<liberty>", Err: err}
	}

	if len(states) == 0 {
		return nil, &flowerrors.MissingDataError{Path: "<liberty>", Reason: "no leakage_power stanzas found"}
	}

	db := make(leakage.DB, len(states))
	for cellType, byState := range states {
		if len(byState) == 0 {
			continue
		}

		minState, minValue := "", 0.0
		sum := 0.0
		first := true
		for state, v := range byState {
			sum += v
			if first || v < minValue {
				minState, minValue = state, v
				first = false
			}
		}

		db[design.TypeID(cellType)] = &leakage.Entry{
			InputTies: tiesFromState(minState),
			MinPower:  minValue,
			AvgPower:  sum / float64(len(byState)),
		}
	}

	return db, nil
}

// tiesFromState splits a Liberty "when" expression on & and maps each
// literal to its tie polarity: "!A" -> LO, "A" -> HI (spec §4.C,
// grounded on parse_lib.py's determine_tie_from_state).
func tiesFromState(state string) map[design.PinName]leakage.Polarity {
	ties := make(map[design.PinName]leakage.Polarity)
	for _, term := range strings.Split(state, "&") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if strings.HasPrefix(term, "!") {
			ties[design.PinName(term[1:])] = leakage.LO
		} else {
			ties[design.PinName(term)] = leakage.HI
		}
	}
	return ties
}
