package model

// EnsembleResult holds every trajectory of an ensemble together with the
// scenario and seed that produced them. All statistics are derived from
// Runs on demand; nothing here is updated independently of them.
type EnsembleResult struct {
	Scenario Scenario
	Seed     uint64
	Runs     []Trajectory
}

// RunCount returns the number of simulated runs.
func (r *EnsembleResult) RunCount() int {
	return len(r.Runs)
}

// Weeks returns the projection length.
func (r *EnsembleResult) Weeks() int {
	return r.Scenario.Weeks
}

// DistributionStats describes one cross-run distribution of final balances.
type DistributionStats struct {
	Count  int
	Mean   float64
	StdDev float64 // population standard deviation
	Min    float64
	Max    float64
	P10    float64
	P50    float64
	P90    float64

	// Threshold is the reference value; Below counts runs strictly under it.
	Threshold     float64
	Below         int
	FractionBelow float64
}

// EnsembleSummary holds the final-week statistics reported for an ensemble.
type EnsembleSummary struct {
	Runs  int
	Weeks int
	Seed  uint64

	Accounts map[Account]DistributionStats

	// Liquid is current plus savings; threshold 0 (probability of shortfall).
	Liquid DistributionStats
	// Total is all four accounts; threshold is the initial total
	// (probability of ending worse off than at the start).
	Total DistributionStats

	InitialTotal float64
}

// TotalChange is the mean change in total balance against the start.
func (s EnsembleSummary) TotalChange() float64 {
	return s.Total.Mean - s.InitialTotal
}

// WeekBand holds the spread of a series across runs at one week.
type WeekBand struct {
	Week int
	Mean float64
	P10  float64
	P50  float64
	P90  float64
}

// Bin is one histogram bucket covering [Lo, Hi), the last bin also includes Hi.
type Bin struct {
	Lo    float64
	Hi    float64
	Count int
}
