package anneal

import (
	"math"
	"math/rand"
	"sort"

	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/fabric"
	"github.com/mazinbersy/asicflow/internal/logging"
	"github.com/mazinbersy/asicflow/internal/netgraph"
	"github.com/mazinbersy/asicflow/internal/placement"
)

// Refine improves initial's HPWL in place (on a clone) via simulated
// annealing, returning the best placement found and full run statistics.
// All randomness is drawn from a single generator seeded by cfg.Seed
// (spec §4.E "Determinism").
func Refine(f *fabric.Fabric, db *design.DB, g *netgraph.Graph, initial *placement.Placement, pins map[string][2]float64, cfg Config, log *logging.Logger) (*placement.Placement, *Stats) {
	if log == nil {
		log = logging.Nop()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	current := initial.Clone()
	currentCost := totalCost(db, current, pins)
	best := current.Clone()
	bestCost := currentCost

	stats := &Stats{InitialCost: currentCost, BestCost: bestCost}

	maxDie := math.Max(f.DieBBox.Width(), f.DieBBox.Height())
	logicalInsts := sortedLogicalInsts(db)
	if len(logicalInsts) < 2 {
		stats.BestCost = bestCost
		return best, stats
	}

	T := cfg.InitialTemp
	staleSteps := 0
	iterations := 0

	for T > cfg.FinalTemp && iterations < cfg.MaxIterations {
		bestBefore := bestCost

		for m := 0; m < cfg.MovesPerTemp && iterations < cfg.MaxIterations; m++ {
			iterations++

			if rng.Float64() < cfg.ProbRefine {
				refineMove(db, current, logicalInsts, rng, T, pins, &currentCost, stats)
			} else {
				exploreMove(f, db, g, current, logicalInsts, rng, T, maxDie, pins, &currentCost, stats, cfg)
			}

			if currentCost < bestCost {
				bestCost = currentCost
				best = current.Clone()
				stats.Improvements++
			}
		}

		stats.TemperatureHistory = append(stats.TemperatureHistory, T)
		stats.CostHistory = append(stats.CostHistory, currentCost)

		switch {
		case bestCost < bestBefore:
			staleSteps = 0
		case currentCost > 1.5*bestCost:
			staleSteps++
		default:
			staleSteps = 0
		}

		if staleSteps > 20 {
			log.Warn("SA reheat triggered", "temperature", T, "bestCost", bestCost, "currentCost", currentCost)
			current = best.Clone()
			currentCost = bestCost
			T = math.Min(5*T, 0.5*cfg.InitialTemp)
			staleSteps = 0
			continue
		}

		T *= cfg.CoolingRate
	}

	stats.BestCost = bestCost
	stats.Iterations = iterations
	return best, stats
}

// sortedLogicalInsts returns every non-port cell in db, sorted, so move
// selection only needs rng.Intn over a stable index space.
func sortedLogicalInsts(db *design.DB) []design.InstID {
	out := make([]design.InstID, 0, len(db.Cells))
	for _, id := range db.SortedInstIDs() {
		if db.Cells[id].IsPort() {
			continue
		}
		out = append(out, id)
	}
	return out
}

func dist2(s *fabric.Site, x, y float64) float64 {
	dx := s.X - x
	dy := s.Y - y
	return dx*dx + dy*dy
}

func barycenterOfPlacedNonPortNeighbors(db *design.DB, g *netgraph.Graph, p *placement.Placement, inst design.InstID) *[2]float64 {
	var sumX, sumY float64
	var n int
	for _, nbr := range g.Neighbors(netgraph.NodeID(inst)) {
		c, ok := db.Cells[design.InstID(nbr)]
		if !ok || c.IsPort() {
			continue
		}
		coord, ok := p.CoordOf(design.InstID(nbr))
		if !ok {
			continue
		}
		sumX += coord.X
		sumY += coord.Y
		n++
	}
	if n == 0 {
		return nil
	}
	return &[2]float64{sumX / float64(n), sumY / float64(n)}
}

// refineMove proposes swapping the sites of two randomly chosen placed
// cells of identical type (spec §4.E "Refine (swap)").
func refineMove(db *design.DB, p *placement.Placement, logicalInsts []design.InstID, rng *rand.Rand, T float64, pins map[string][2]float64, costPtr *float64, stats *Stats) {
	a := logicalInsts[rng.Intn(len(logicalInsts))]
	b := logicalInsts[rng.Intn(len(logicalInsts))]
	if a == b {
		stats.RejectedRefine++
		return
	}

	ca, okA := p.CoordOf(a)
	cb, okB := p.CoordOf(b)
	if !okA || !okB || ca.Type != cb.Type {
		stats.RejectedRefine++
		return
	}

	affected := uniqueNetIDs(instNets(db, a), instNets(db, b))
	oldSum := sumNetCosts(db, p, pins, affected)

	p.SwapSites(a, b)
	newSum := sumNetCosts(db, p, pins, affected)
	delta := newSum - oldSum

	if acceptMove(delta, T, rng) {
		*costPtr += delta
		stats.AcceptedRefine++
		return
	}
	p.SwapSites(a, b)
	stats.RejectedRefine++
}

// exploreMove proposes shifting one randomly chosen placed cell to a
// nearby free site of the same type (spec §4.E "Explore (shift)").
func exploreMove(f *fabric.Fabric, db *design.DB, g *netgraph.Graph, p *placement.Placement, logicalInsts []design.InstID, rng *rand.Rand, T, maxDie float64, pins map[string][2]float64, costPtr *float64, stats *Stats, cfg Config) {
	inst := logicalInsts[rng.Intn(len(logicalInsts))]
	coord, ok := p.CoordOf(inst)
	if !ok {
		stats.RejectedExplore++
		return
	}

	w := cfg.WInitial * maxDie * (T - cfg.FinalTemp) / (cfg.InitialTemp - cfg.FinalTemp)

	var windowed, allFree []*fabric.Site
	for _, s := range f.SitesOfType(coord.Type) {
		if p.IsOccupied(s.Name) {
			continue
		}
		allFree = append(allFree, s)
		if math.Abs(s.X-coord.X) <= w && math.Abs(s.Y-coord.Y) <= w {
			windowed = append(windowed, s)
		}
	}
	candidates := windowed
	if len(candidates) == 0 {
		candidates = allFree
	}
	if len(candidates) == 0 {
		stats.RejectedExplore++
		return
	}

	targetX, targetY := coord.X, coord.Y
	if bc := barycenterOfPlacedNonPortNeighbors(db, g, p, inst); bc != nil {
		targetX, targetY = bc[0], bc[1]
	}

	sort.Slice(candidates, func(i, j int) bool {
		di := dist2(candidates[i], targetX, targetY)
		dj := dist2(candidates[j], targetX, targetY)
		if di != dj {
			return di < dj
		}
		return candidates[i].Name < candidates[j].Name
	})
	top := candidates
	if len(top) > 5 {
		top = top[:5]
	}
	chosen := top[rng.Intn(len(top))]

	oldSite, _ := f.SiteByName(coord.Site)
	affected := instNets(db, inst)
	oldSum := sumNetCosts(db, p, pins, affected)

	p.Move(inst, chosen)
	newSum := sumNetCosts(db, p, pins, affected)
	delta := newSum - oldSum

	if acceptMove(delta, T, rng) {
		*costPtr += delta
		stats.AcceptedExplore++
		return
	}
	p.Move(inst, oldSite)
	stats.RejectedExplore++
}

// acceptMove applies the Metropolis criterion (spec §4.E "Acceptance").
func acceptMove(delta, T float64, rng *rand.Rand) bool {
	if delta < 0 {
		return true
	}
	if T <= 0 {
		return false
	}
	return rng.Float64() < math.Exp(-delta/T)
}
