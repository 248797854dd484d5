package anneal

// Stats reports the full trajectory and outcome of an SA run (spec
// §4.E "Statistics returned").
type Stats struct {
	InitialCost float64
	BestCost    float64
	Iterations  int

	AcceptedRefine  int
	RejectedRefine  int
	AcceptedExplore int
	RejectedExplore int
	Improvements    int

	TemperatureHistory []float64
	CostHistory        []float64
}
