// Package anneal implements the simulated-annealing placement refiner
// (spec §4.E): local swap/shift moves accepted under a Metropolis
// criterion, with a temperature schedule, reheat rule, and full move
// statistics.
package anneal

// Config holds every SA knob, all independently settable (spec §4.E).
type Config struct {
	InitialTemp  float64
	FinalTemp    float64
	CoolingRate  float64
	MovesPerTemp int
	MaxIterations int
	ProbRefine  float64
	ProbExplore float64
	WInitial    float64
	Seed        int64
}

// DefaultConfig returns the spec's default SA configuration.
func DefaultConfig() Config {
	return Config{
		InitialTemp:   1000.0,
		FinalTemp:     0.01,
		CoolingRate:   0.97,
		MovesPerTemp:  4000,
		MaxIterations: 15000,
		ProbRefine:    0.5,
		ProbExplore:   0.5,
		WInitial:      0.5,
		Seed:          42,
	}
}
