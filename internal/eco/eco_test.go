package eco

import (
	"testing"

	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/fabric"
	"github.com/mazinbersy/asicflow/internal/leakage"
	"github.com/mazinbersy/asicflow/internal/netgraph"
	"github.com/mazinbersy/asicflow/internal/placement"
)

func TestRunTiesNAND2ToLeakageOptimalConstants(t *testing.T) {
	sites := []*fabric.Site{
		{Name: "NAND2_0", CellType: "NAND2_2", X: 0, Y: 0},
		{Name: "CONB_0", CellType: "CONB_1", X: 10, Y: 0},
	}
	f := fabric.Build(
		fabric.BBox{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20},
		fabric.BBox{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20},
		nil,
		map[fabric.TileID][]*fabric.Site{"T0": sites},
		1000,
	)

	db := design.New()
	g := netgraph.BuildFromDB(db)
	p := placement.New()

	leak := leakage.DB{
		"NAND2_2": &leakage.Entry{
			InputTies: map[design.PinName]leakage.Polarity{"A": leakage.LO, "B": leakage.LO},
			MinPower:  1.0,
			AvgPower:  2.0,
		},
	}

	report, err := Run(f, db, g, p, leak, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.TotalCellsTied != 1 {
		t.Fatalf("TotalCellsTied = %d, want 1", report.TotalCellsTied)
	}
	if report.TotalPinsTied != 2 {
		t.Fatalf("TotalPinsTied = %d, want 2", report.TotalPinsTied)
	}
	if report.TiedLO != 1 {
		t.Errorf("TiedLO = %d, want 1", report.TiedLO)
	}

	var tieLoNet, tieHiNet design.NetID
	for _, id := range db.SortedNetIDs() {
		n := db.Nets[id]
		if len(n.Name) >= 6 && n.Name[:6] == "tie_lo" {
			tieLoNet = id
		}
		if len(n.Name) >= 6 && n.Name[:6] == "tie_hi" {
			tieHiNet = id
		}
	}
	if tieLoNet == 0 || tieHiNet == 0 {
		t.Fatalf("expected both tie_hi and tie_lo nets to exist")
	}

	var candInst design.InstID
	for _, id := range db.SortedInstIDs() {
		c := db.Cells[id]
		if c.Type == "NAND2_2" {
			candInst = id
		}
	}
	if candInst == "" {
		t.Fatalf("expected a tied NAND2_2 candidate instance")
	}
	cand := db.Cells[candInst]
	if cand.Pins["A"] != tieLoNet || cand.Pins["B"] != tieLoNet {
		t.Errorf("candidate pins = %+v, want both A and B on tie_lo net %d", cand.Pins, tieLoNet)
	}

	hiNet := db.Nets[tieHiNet]
	found := false
	for _, e := range hiNet.Connections {
		if e.Pin == "HI" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected tie_hi net to retain the CONB's HI connection")
	}
}

func TestRunSkipsTileWithNoFreeCONB(t *testing.T) {
	sites := []*fabric.Site{
		{Name: "NAND2_0", CellType: "NAND2_2", X: 0, Y: 0},
	}
	f := fabric.Build(
		fabric.BBox{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20},
		fabric.BBox{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20},
		nil,
		map[fabric.TileID][]*fabric.Site{"T0": sites},
		1000,
	)
	db := design.New()
	g := netgraph.BuildFromDB(db)
	p := placement.New()

	report, err := Run(f, db, g, p, leakage.DB{}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.TotalCellsTied != 0 {
		t.Errorf("TotalCellsTied = %d, want 0 (no CONB available)", report.TotalCellsTied)
	}
}
