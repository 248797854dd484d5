package lefio

import (
	"os"
	"regexp"
	"strconv"
)

// Site is a TLEF SITE definition (spec §6).
type Site struct {
	Name     string
	WidthUM  float64
	HeightUM float64
	Class    string
}

// Layer is a TLEF routing LAYER definition.
type Layer struct {
	Name      string
	Type      string
	Direction string
	WidthUM   float64
}

// Tech is the parsed contents of one Technology LEF file.
type Tech struct {
	Version          string
	DBUPerMicron     int
	ManufacturingGrid float64
	Sites            map[string]*Site
	Layers           map[string]*Layer
}

var (
	tlefVersionRe = regexp.MustCompile(`VERSION\s+([\d.]+)\s*;`)
	unitsRe       = regexp.MustCompile(`(?s)UNITS\s+(.*?)\s+END\s+UNITS`)
	dbuRe         = regexp.MustCompile(`DATABASE\s+MICRONS\s+(\d+)`)
	gridRe        = regexp.MustCompile(`MANUFACTURINGGRID\s+([\d.]+)\s*;`)
	siteNameRe    = regexp.MustCompile(`SITE\s+(\w+)`)
	classRe       = regexp.MustCompile(`CLASS\s+(\w+)\s*;`)
	layerNameRe   = regexp.MustCompile(`LAYER\s+(\w+)`)
	typeRe        = regexp.MustCompile(`TYPE\s+(\w+)\s*;`)
	directionRe   = regexp.MustCompile(`DIRECTION\s+(\w+)\s*;`)
	widthRe       = regexp.MustCompile(`WIDTH\s+([\d.]+)\s*;`)
)

// DefaultTech returns the flow's fallback technology defaults, used when
// no TLEF is supplied.
func DefaultTech() *Tech {
	return &Tech{Version: "5.8", DBUPerMicron: 1000, ManufacturingGrid: 0.005, Sites: map[string]*Site{}, Layers: map[string]*Layer{}}
}

// ParseTechFile reads and parses a TLEF file, degrading to DefaultTech
// when path is empty or missing.
func ParseTechFile(path string) (*Tech, error) {
	if path == "" {
		return DefaultTech(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTech(), nil
		}
		return nil, err
	}
	return ParseTech(string(data)), nil
}

// ParseTech extracts VERSION, UNITS, MANUFACTURINGGRID, SITE and LAYER
// definitions from Technology LEF text.
func ParseTech(content string) *Tech {
	tech := DefaultTech()

	if m := tlefVersionRe.FindStringSubmatch(content); m != nil {
		tech.Version = m[1]
	}
	if m := unitsRe.FindStringSubmatch(content); m != nil {
		if dm := dbuRe.FindStringSubmatch(m[1]); dm != nil {
			tech.DBUPerMicron, _ = strconv.Atoi(dm[1])
		}
	}
	if m := gridRe.FindStringSubmatch(content); m != nil {
		tech.ManufacturingGrid, _ = strconv.ParseFloat(m[1], 64)
	}

	for _, name := range matchNames(siteNameRe, content) {
		body, ok := extractBlock(content, "SITE", name)
		if !ok {
			continue
		}
		site := &Site{Name: name}
		if m := sizeRe.FindStringSubmatch(body); m != nil {
			site.WidthUM, _ = strconv.ParseFloat(m[1], 64)
			site.HeightUM, _ = strconv.ParseFloat(m[2], 64)
		}
		if m := classRe.FindStringSubmatch(body); m != nil {
			site.Class = m[1]
		}
		tech.Sites[name] = site
	}

	for _, name := range matchNames(layerNameRe, content) {
		body, ok := extractBlock(content, "LAYER", name)
		if !ok {
			continue
		}
		layer := &Layer{Name: name}
		if m := typeRe.FindStringSubmatch(body); m != nil {
			layer.Type = m[1]
		}
		if m := directionRe.FindStringSubmatch(body); m != nil {
			layer.Direction = m[1]
		}
		if m := widthRe.FindStringSubmatch(body); m != nil {
			layer.WidthUM, _ = strconv.ParseFloat(m[1], 64)
		}
		tech.Layers[name] = layer
	}

	return tech
}

func matchNames(re *regexp.Regexp, content string) []string {
	var names []string
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	return names
}
