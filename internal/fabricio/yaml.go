// Package fabricio loads the three fabric YAML sources (spec §6) and
// assembles them into a fabric.Fabric.
package fabricio

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mazinbersy/asicflow/internal/fabric"
	"github.com/mazinbersy/asicflow/internal/flowerrors"
	"github.com/mazinbersy/asicflow/internal/logging"
)

// siteCellsYAML is the shape of fabric_cells.yaml: a tile name mapped to
// the list of physical sites that tile contains.
type siteCellsYAML struct {
	Tiles map[string][]siteEntryYAML `yaml:"tiles"`
}

type siteEntryYAML struct {
	Name         string  `yaml:"name"`
	TemplateName string  `yaml:"template_name,omitempty"`
	CellType     string  `yaml:"cell_type,omitempty"`
	X            float64 `yaml:"x"`
	Y            float64 `yaml:"y"`
	Orient       string  `yaml:"orient,omitempty"`
	Row          uint16  `yaml:"row,omitempty"`
}

// pinsYAML is the shape of pins.yaml.
type pinsYAML struct {
	Die          dimYAML   `yaml:"die"`
	Core         dimYAML   `yaml:"core"`
	DBUPerMicron float64   `yaml:"dbu_per_micron"`
	Pins         []pinYAML `yaml:"pins"`
}

type dimYAML struct {
	WidthUM   float64 `yaml:"width_um"`
	HeightUM  float64 `yaml:"height_um"`
	XOffsetUM float64 `yaml:"x_offset_um,omitempty"`
	YOffsetUM float64 `yaml:"y_offset_um,omitempty"`
}

type pinYAML struct {
	Name      string  `yaml:"name"`
	Direction string  `yaml:"direction"`
	XUM       float64 `yaml:"x_um"`
	YUM       float64 `yaml:"y_um"`
	Layer     string  `yaml:"layer"`
	Side      string  `yaml:"side"`
	Orient    string  `yaml:"orient,omitempty"`
	WidthUM   float64 `yaml:"width_um,omitempty"`
	HeightUM  float64 `yaml:"height_um,omitempty"`
}

// fabricDefYAML is the shape of fabric.yaml.
type fabricDefYAML struct {
	SiteDimensionsUM struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
	} `yaml:"site_dimensions_um"`
	CellTypes map[string]struct {
		WidthSites int `yaml:"width_sites"`
	} `yaml:"cell_types"`
	TileDefinition struct {
		Cells []struct {
			TemplateName string `yaml:"template_name"`
			CellType     string `yaml:"cell_type"`
		} `yaml:"cells"`
	} `yaml:"tile_definition"`
}

// Load reads fabric_cells.yaml, pins.yaml and fabric.yaml from the given
// paths and merges them into a fabric.Fabric, per spec §4.A.
func Load(cellsPath, pinsPath, defPath string, log *logging.Logger) (*fabric.Fabric, error) {
	if log == nil {
		log = logging.Nop()
	}

	var cellsDoc siteCellsYAML
	if err := readYAML(cellsPath, &cellsDoc); err != nil {
		return nil, &flowerrors.ParseError{Source: cellsPath, Err: err}
	}

	var pinsDoc pinsYAML
	if err := readYAML(pinsPath, &pinsDoc); err != nil {
		return nil, &flowerrors.ParseError{Source: pinsPath, Err: err}
	}

	var defDoc fabricDefYAML
	if err := readYAML(defPath, &defDoc); err != nil {
		return nil, &flowerrors.ParseError{Source: defPath, Err: err}
	}

	templateType := make(map[string]string, len(defDoc.TileDefinition.Cells))
	for _, c := range defDoc.TileDefinition.Cells {
		templateType[c.TemplateName] = c.CellType
	}

	sitesByTile := make(map[fabric.TileID][]*fabric.Site)
	for tileName, entries := range cellsDoc.Tiles {
		tileID := fabric.TileID(tileName)
		for _, e := range entries {
			cellType := e.CellType
			if cellType == "" {
				cellType = templateType[e.TemplateName]
			}

			widthSites := 1
			if dim, ok := defDoc.CellTypes[cellType]; ok {
				widthSites = dim.WidthSites
			} else if strings.Contains(strings.ToLower(cellType), "tap") {
				widthSites = 1
				log.Warn("cell type missing dimension entry, defaulting tap width_sites=1", "type", cellType)
			} else {
				log.Warn("dropping site with malformed/missing dimension entry", "site", e.Name, "type", cellType)
				continue
			}

			site := &fabric.Site{
				Name:     fabric.SiteID(e.Name),
				CellType: fabric.TypeID(cellType),
				X:        e.X,
				Y:        e.Y,
				WidthUM:  defDoc.SiteDimensionsUM.Width * float64(widthSites),
				HeightUM: defDoc.SiteDimensionsUM.Height,
				Orient:   fabric.Orient(e.Orient),
				Tile:     tileID,
				Row:      e.Row,
			}
			sitesByTile[tileID] = append(sitesByTile[tileID], site)
		}
	}

	pins := make([]fabric.Pin, 0, len(pinsDoc.Pins))
	for _, p := range pinsDoc.Pins {
		pins = append(pins, fabric.Pin{
			Name:      p.Name,
			Direction: fabric.Direction(p.Direction),
			X:         p.XUM,
			Y:         p.YUM,
			Layer:     p.Layer,
			Side:      fabric.Side(p.Side),
			WidthUM:   p.WidthUM,
			HeightUM:  p.HeightUM,
		})
	}

	dieBBox := fabric.BBox{MinX: 0, MinY: 0, MaxX: pinsDoc.Die.WidthUM, MaxY: pinsDoc.Die.HeightUM}
	coreBBox := fabric.BBox{
		MinX: pinsDoc.Core.XOffsetUM,
		MinY: pinsDoc.Core.YOffsetUM,
		MaxX: pinsDoc.Core.XOffsetUM + pinsDoc.Core.WidthUM,
		MaxY: pinsDoc.Core.YOffsetUM + pinsDoc.Core.HeightUM,
	}

	return fabric.Build(dieBBox, coreBBox, pins, sitesByTile, pinsDoc.DBUPerMicron), nil
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w", &flowerrors.MissingInputError{Path: path})
		}
		return err
	}
	if len(data) == 0 {
		return &flowerrors.MissingDataError{Path: path, Reason: "empty file"}
	}
	return yaml.Unmarshal(data, out)
}
