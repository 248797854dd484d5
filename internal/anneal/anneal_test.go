package anneal

import (
	"testing"

	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/fabric"
	"github.com/mazinbersy/asicflow/internal/netgraph"
	"github.com/mazinbersy/asicflow/internal/placement"
)

func buildRing(n int) (*fabric.Fabric, *design.DB, *netgraph.Graph, *placement.Placement, map[string][2]float64) {
	var sites []*fabric.Site
	for i := 0; i < n; i++ {
		sites = append(sites, &fabric.Site{
			Name:     fabric.SiteID(sliceName("NAND", i)),
			CellType: "NAND2",
			X:        float64(i * 10),
			Y:        float64((i % 3) * 10),
		})
	}
	f := fabric.Build(
		fabric.BBox{MinX: 0, MinY: 0, MaxX: float64(n * 10), MaxY: 100},
		fabric.BBox{MinX: 0, MinY: 0, MaxX: float64(n * 10), MaxY: 100},
		nil,
		map[fabric.TileID][]*fabric.Site{"T0": sites},
		1000,
	)

	db := design.New()
	for i := 0; i < n; i++ {
		db.AddCell(&design.Cell{Name: design.InstID(sliceName("U", i)), Type: "NAND2"})
	}
	for i := 0; i < n-1; i++ {
		netID := design.NetID(i + 1)
		db.EnsureNet(netID, "")
		db.AddConnection(netID, design.InstID(sliceName("U", i)), "Y")
		db.AddConnection(netID, design.InstID(sliceName("U", i+1)), "A")
	}

	g := netgraph.BuildFromDB(db)

	p := placement.New()
	for i := 0; i < n; i++ {
		p.Place(design.InstID(sliceName("U", i)), sites[(i+1)%n])
	}

	return f, db, g, p, map[string][2]float64{}
}

func sliceName(prefix string, i int) string {
	digits := []byte{byte('0' + i/10), byte('0' + i%10)}
	if i < 10 {
		digits = digits[1:]
	}
	return prefix + "_" + string(digits)
}

func TestRefineIsDeterministic(t *testing.T) {
	f, db, g, p0, pins := buildRing(6)

	cfg := Config{
		InitialTemp:   100,
		FinalTemp:     0.01,
		CoolingRate:   0.92,
		MovesPerTemp:  200,
		MaxIterations: 5000,
		ProbRefine:    0.7,
		ProbExplore:   0.3,
		WInitial:      0.5,
		Seed:          42,
	}

	best1, stats1 := Refine(f, db, g, p0, pins, cfg, nil)
	best2, stats2 := Refine(f, db, g, p0, pins, cfg, nil)

	if stats1.BestCost != stats2.BestCost {
		t.Fatalf("best cost differs across runs: %v vs %v", stats1.BestCost, stats2.BestCost)
	}

	for _, inst := range best1.SortedInsts() {
		c1, _ := best1.CoordOf(inst)
		c2, ok := best2.CoordOf(inst)
		if !ok || c1.Site != c2.Site {
			t.Fatalf("placement differs for %s: %v vs %v", inst, c1.Site, c2.Site)
		}
	}
}

func TestRefineNeverWorsensBestCost(t *testing.T) {
	f, db, g, p0, pins := buildRing(6)
	cfg := DefaultConfig()
	cfg.MaxIterations = 500
	cfg.MovesPerTemp = 50

	_, stats := Refine(f, db, g, p0, pins, cfg, nil)
	if stats.BestCost > stats.InitialCost {
		t.Errorf("best cost %v exceeds initial cost %v", stats.BestCost, stats.InitialCost)
	}
}
