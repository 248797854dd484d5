// Package eco implements the power-down ECO (spec §4.G): ties every
// unused gate input to its leakage-optimal constant via one CONB tie
// cell claimed per eligible tile.
package eco

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mazinbersy/asicflow/internal/celllib"
	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/fabric"
	"github.com/mazinbersy/asicflow/internal/leakage"
	"github.com/mazinbersy/asicflow/internal/logging"
	"github.com/mazinbersy/asicflow/internal/netgraph"
	"github.com/mazinbersy/asicflow/internal/placement"
)

var macroTypes = []string{"dfbbp", "sram", "regfile", "dffram", "fifo"}
var infraTypes = []string{"tap", "decap", "conb", "fill", "diode", "antenna", "endcap", "welltap"}

func containsAny(lower string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func isEligibleCandidateType(cellType fabric.TypeID) bool {
	lower := strings.ToLower(string(cellType))
	return !containsAny(lower, macroTypes) && !containsAny(lower, infraTypes)
}

// Report summarizes the power savings produced by one ECO pass (spec
// §4.G "It produces power-savings statistics").
type Report struct {
	TotalCellsTied int
	TotalPinsTied  int
	TiedHI         int
	TiedLO         int
	Mixed          int
	SavingsSum     float64
	SavingsAvg     float64
}

// Run identifies unused fabric sites, claims one CONB per eligible tile,
// and ties every such candidate's input pins to its leakage-optimal
// constant, mutating db and g in place (spec §4.G).
func Run(f *fabric.Fabric, db *design.DB, g *netgraph.Graph, p *placement.Placement, leak leakage.DB, log *logging.Logger) (*Report, error) {
	if log == nil {
		log = logging.Nop()
	}

	report := &Report{}

	var tileIDs []fabric.TileID
	for t := range f.SitesByTile {
		tileIDs = append(tileIDs, t)
	}
	sort.Slice(tileIDs, func(i, j int) bool { return tileIDs[i] < tileIDs[j] })

	for _, tileID := range tileIDs {
		sites := f.SitesByTile[tileID]
		sorted := append([]*fabric.Site(nil), sites...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

		var candidates []*fabric.Site
		var conbSites []*fabric.Site
		for _, s := range sorted {
			if p.IsOccupied(s.Name) {
				continue
			}
			lower := strings.ToLower(string(s.CellType))
			if strings.Contains(lower, "conb") {
				conbSites = append(conbSites, s)
				continue
			}
			if isEligibleCandidateType(s.CellType) {
				candidates = append(candidates, s)
			}
		}

		if len(candidates) == 0 {
			continue
		}
		if len(conbSites) == 0 {
			log.Warn("no free CONB in tile with unused candidates; skipping", "tile", tileID, "candidates", len(candidates))
			continue
		}

		conb := conbSites[0]
		conbInst := design.InstID(fmt.Sprintf("eco_conb_%s", conb.Name))
		tieHI := db.AllocNetID()
		tieLO := db.AllocNetID()
		db.EnsureNet(tieHI, fmt.Sprintf("tie_hi_%s", tileID))
		db.EnsureNet(tieLO, fmt.Sprintf("tie_lo_%s", tileID))

		db.AddCell(&design.Cell{Name: conbInst, Type: design.TypeID(conb.CellType), Pins: map[design.PinName]design.NetID{}})
		db.AddConnection(tieHI, conbInst, "HI")
		db.AddConnection(tieLO, conbInst, "LO")
		p.Place(conbInst, conb)

		hiUsed, loUsed := false, false

		for _, cand := range candidates {
			candInst := design.InstID(fmt.Sprintf("eco_cell_%s", cand.Name))
			candType := string(cand.CellType)
			pins := celllib.InputPins(candType)

			cell := &design.Cell{Name: candInst, Type: design.TypeID(candType), Pins: map[design.PinName]design.NetID{}}
			db.AddCell(cell)
			p.Place(candInst, cand)

			for _, pin := range pins {
				tie := leak.TieFor(design.TypeID(candType), design.PinName(pin))
				netID := tieLO
				if tie == leakage.HI {
					netID = tieHI
				}
				db.AddConnection(netID, candInst, design.PinName(pin))
				if tie == leakage.HI {
					hiUsed = true
				} else {
					loUsed = true
				}
				report.TotalPinsTied++
			}

			if entry, ok := leak[design.TypeID(candType)]; ok && entry.AvgPower > 0 {
				report.SavingsSum += (entry.AvgPower - entry.MinPower) / entry.AvgPower
			}
			report.TotalCellsTied++

			switch {
			case hiUsed && loUsed:
				report.Mixed++
			case hiUsed:
				report.TiedHI++
			case loUsed:
				report.TiedLO++
			}
			hiUsed, loUsed = false, false
		}

		netgraph.RebuildNet(g, db, tieHI)
		netgraph.RebuildNet(g, db, tieLO)
	}

	if report.TotalCellsTied > 0 {
		report.SavingsAvg = report.SavingsSum / float64(report.TotalCellsTied)
	}
	return report, nil
}
