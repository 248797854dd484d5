package visualize

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/mazinbersy/asicflow/internal/flowerrors"
)

var (
	slackRe     = regexp.MustCompile(`(?i)^\s*([-+]?[0-9]*\.?[0-9]+)\s+slack\s*\(`)
	congestRe   = regexp.MustCompile(`\b([-+]?[0-9]*\.?[0-9]+)\s+([-+]?[0-9]*\.?[0-9]+)\s+([-+]?[0-9]*\.?[0-9]+)%?\b`)
)

// ParseSlackReport extracts every "<value> slack (...)" line from a setup
// timing report (spec.md §6 "setup_timing.rpt").
func ParseSlackReport(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &flowerrors.MissingInputError{Path: path}
		}
		return nil, err
	}
	defer f.Close()

	var slacks []float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if m := slackRe.FindStringSubmatch(scanner.Text()); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				slacks = append(slacks, v)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &flowerrors.ParseError{Source: path, Err: err}
	}
	if len(slacks) == 0 {
		return nil, &flowerrors.MissingDataError{Path: path, Reason: "no slack lines parsed"}
	}
	return slacks, nil
}

// congestionPoint is one (x, y, value) triple read from a congestion
// report.
type congestionPoint struct {
	X, Y, Value float64
}

// ParseCongestionReport extracts x/y/value triples from a routing
// congestion report (spec.md §6 "congestion.rpt").
func ParseCongestionReport(r io.Reader) ([]congestionPoint, error) {
	var points []congestionPoint
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if m := congestRe.FindStringSubmatch(scanner.Text()); m != nil {
			x, errX := strconv.ParseFloat(m[1], 64)
			y, errY := strconv.ParseFloat(m[2], 64)
			v, errV := strconv.ParseFloat(m[3], 64)
			if errX == nil && errY == nil && errV == nil {
				points = append(points, congestionPoint{X: x, Y: y, Value: v})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &flowerrors.ParseError{Source: "<congestion report>", Err: err}
	}
	return points, nil
}

// BuildCongestionGrid averages parsed congestion points into a
// binsX x binsY grid spanning their own coordinate extent.
func BuildCongestionGrid(designName string, points []congestionPoint, binsX, binsY int) *CongestionGrid {
	grid := &CongestionGrid{Design: designName, BinsX: binsX, BinsY: binsY}
	grid.Overflow = make([][]float64, binsY)
	counts := make([][]int, binsY)
	for i := range grid.Overflow {
		grid.Overflow[i] = make([]float64, binsX)
		counts[i] = make([]int, binsX)
	}
	if len(points) == 0 || binsX == 0 || binsY == 0 {
		return grid
	}

	minX, maxX, minY, maxY := points[0].X, points[0].X, points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	extentX, extentY := maxX-minX, maxY-minY

	for _, p := range points {
		bx := binIndex(p.X-minX, extentX, binsX)
		by := binIndex(p.Y-minY, extentY, binsY)
		grid.Overflow[by][bx] += p.Value
		counts[by][bx]++
	}
	for y := 0; y < binsY; y++ {
		for x := 0; x < binsX; x++ {
			if counts[y][x] > 0 {
				grid.Overflow[y][x] /= float64(counts[y][x])
			}
		}
	}
	return grid
}
