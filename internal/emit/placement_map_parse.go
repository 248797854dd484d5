package emit

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mazinbersy/asicflow/internal/fabric"
	"github.com/mazinbersy/asicflow/internal/flowerrors"
)

// PlacementMapEntry is one parsed site line.
type PlacementMapEntry struct {
	Site     fabric.SiteID
	CellType fabric.TypeID
	X, Y     float64
	Mapped   string // InstID name, or "UNUSED"
}

// ParsedPlacementMap is the round-trip result of parsing a placement map
// written by WritePlacementMap (spec §8 S6 "round-trip").
type ParsedPlacementMap struct {
	Ports map[string][2]float64
	Sites []PlacementMapEntry
}

// ReadPlacementMap parses a placement map written by WritePlacementMap.
func ReadPlacementMap(r io.Reader) (*ParsedPlacementMap, error) {
	out := &ParsedPlacementMap{Ports: make(map[string][2]float64)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.Contains(line, "->") {
			left, mapped, _ := strings.Cut(line, "->")
			fields := strings.Fields(left)
			if len(fields) != 4 {
				return nil, &flowerrors.ParseError{Source: "placement.map", Line: lineNo, Err: fmt.Errorf("expected 4 fields before '->', got %d", len(fields))}
			}
			x, errX := strconv.ParseFloat(fields[2], 64)
			y, errY := strconv.ParseFloat(fields[3], 64)
			if errX != nil || errY != nil {
				return nil, &flowerrors.ParseError{Source: "placement.map", Line: lineNo, Err: fmt.Errorf("bad coordinates %q %q", fields[2], fields[3])}
			}
			out.Sites = append(out.Sites, PlacementMapEntry{
				Site:     fabric.SiteID(fields[0]),
				CellType: fabric.TypeID(fields[1]),
				X:        x,
				Y:        y,
				Mapped:   strings.TrimSpace(mapped),
			})
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, &flowerrors.ParseError{Source: "placement.map", Line: lineNo, Err: fmt.Errorf("expected 3 fields for a port line, got %d", len(fields))}
		}
		x, errX := strconv.ParseFloat(fields[1], 64)
		y, errY := strconv.ParseFloat(fields[2], 64)
		if errX != nil || errY != nil {
			return nil, &flowerrors.ParseError{Source: "placement.map", Line: lineNo, Err: fmt.Errorf("bad coordinates %q %q", fields[1], fields[2])}
		}
		out.Ports[fields[0]] = [2]float64{x, y}
	}
	if err := scanner.Err(); err != nil {
		return nil, &flowerrors.ParseError{Source: "placement.map", Err: err}
	}
	return out, nil
}
