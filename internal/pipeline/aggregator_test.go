package pipeline

import (
	"math"
	"testing"

	"github.com/theirongolddev/fincast/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

func TestMeanAndStdDev(t *testing.T) {
	tests := []struct {
		name       string
		values     []float64
		mean, sdev float64
	}{
		{"empty", nil, 0, 0},
		{"single", []float64{42}, 42, 0},
		{"pair", []float64{1, 3}, 2, 1},
		{"population", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.values); !almostEqual(got, tt.mean) {
				t.Errorf("Mean = %v, want %v", got, tt.mean)
			}
			if got := StdDev(tt.values); !almostEqual(got, tt.sdev) {
				t.Errorf("StdDev = %v, want %v", got, tt.sdev)
			}
		})
	}
}

func TestFractionBelowIsStrict(t *testing.T) {
	values := []float64{-5, 0, 0, 3, 10}
	if got := CountBelow(values, 0); got != 1 {
		t.Fatalf("CountBelow(0) = %d, want 1", got)
	}
	if got := FractionBelow(values, 0); got != 0.2 {
		t.Fatalf("FractionBelow(0) = %v, want 0.2", got)
	}
	if got := FractionBelow(values, 100); got != 1 {
		t.Fatalf("FractionBelow(100) = %v, want 1", got)
	}
	if got := FractionBelow(nil, 1); got != 0 {
		t.Fatalf("FractionBelow(nil) = %v, want 0", got)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{50, 10, 40, 20, 30}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{10, 14},
		{50, 30},
		{90, 46},
		{100, 50},
	}
	for _, tt := range tests {
		if got := Percentile(values, tt.p); !almostEqual(got, tt.want) {
			t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if values[0] != 50 {
		t.Fatal("Percentile reordered its input")
	}
}

func TestDescribe(t *testing.T) {
	st := Describe([]float64{900, 1000, 1100, 1200}, 1000)
	if st.Count != 4 {
		t.Errorf("Count = %d, want 4", st.Count)
	}
	if st.Mean != 1050 {
		t.Errorf("Mean = %v, want 1050", st.Mean)
	}
	if st.Min != 900 || st.Max != 1200 {
		t.Errorf("Min/Max = %v/%v, want 900/1200", st.Min, st.Max)
	}
	if st.Below != 1 || st.FractionBelow != 0.25 {
		t.Errorf("Below = %d (%v), want 1 (0.25)", st.Below, st.FractionBelow)
	}
	if st.Threshold != 1000 {
		t.Errorf("Threshold = %v, want 1000", st.Threshold)
	}
}

func handEnsemble() *model.EnsembleResult {
	s := model.Scenario{
		Name:           "hand",
		CurrentBalance: 100,
		SavingsBalance: 1000,
		ISABalance:     500,
		LISABalance:    500,
		Weeks:          2,
	}
	mk := func(sav, isa, lisa float64) model.Trajectory {
		return model.Trajectory{
			Current: []float64{100, 100},
			Savings: []float64{1000, sav},
			ISA:     []float64{500, isa},
			LISA:    []float64{500, lisa},
		}
	}
	return &model.EnsembleResult{
		Scenario: s,
		Seed:     9,
		Runs: []model.Trajectory{
			mk(-200, 400, 500),
			mk(800, 600, 500),
			mk(1400, 500, 700),
		},
	}
}

func TestSummarize_HandBuiltEnsemble(t *testing.T) {
	sum := Summarize(handEnsemble())

	if sum.Runs != 3 || sum.Weeks != 2 || sum.Seed != 9 {
		t.Fatalf("header = %d runs, %d weeks, seed %d", sum.Runs, sum.Weeks, sum.Seed)
	}
	if sum.InitialTotal != 2100 {
		t.Fatalf("InitialTotal = %v, want 2100", sum.InitialTotal)
	}

	// Liquid finals: -100, 900, 1500. One run is below zero.
	if !almostEqual(sum.Liquid.Mean, 2300.0/3) {
		t.Errorf("Liquid.Mean = %v, want %v", sum.Liquid.Mean, 2300.0/3)
	}
	if sum.Liquid.FractionBelow != 1.0/3 {
		t.Errorf("Liquid.FractionBelow = %v, want 1/3", sum.Liquid.FractionBelow)
	}

	// Totals: 800, 2000, 2700 against 2100.
	if sum.Total.Below != 2 {
		t.Errorf("Total.Below = %d, want 2", sum.Total.Below)
	}
	if !almostEqual(sum.TotalChange(), 5500.0/3-2100) {
		t.Errorf("TotalChange = %v, want %v", sum.TotalChange(), 5500.0/3-2100)
	}

	lisa := sum.Accounts[model.LISA]
	if lisa.Below != 0 || lisa.Threshold != 500 {
		t.Errorf("LISA below = %d threshold = %v, want 0 and 500", lisa.Below, lisa.Threshold)
	}
	isa := sum.Accounts[model.ISA]
	if isa.Below != 1 || isa.Mean != 500 {
		t.Errorf("ISA below = %d mean = %v, want 1 and 500", isa.Below, isa.Mean)
	}
	if cur := sum.Accounts[model.Current]; cur.StdDev != 0 || cur.Mean != 100 {
		t.Errorf("current = %+v, want constant 100", cur)
	}
}

func TestWeeklyBands(t *testing.T) {
	bands := WeeklyBands(handEnsemble(), AccountSeries(model.Savings))
	if len(bands) != 2 {
		t.Fatalf("len(bands) = %d, want 2", len(bands))
	}
	if b := bands[0]; b.Mean != 1000 || b.P10 != 1000 || b.P90 != 1000 {
		t.Errorf("week 0 band = %+v, want flat 1000", b)
	}
	b := bands[1]
	if b.Week != 1 || b.P50 != 800 {
		t.Errorf("week 1 band = %+v, want median 800", b)
	}
	if !(b.P10 < b.P50 && b.P50 < b.P90) {
		t.Errorf("week 1 band not ordered: %+v", b)
	}

	total := WeeklyBands(handEnsemble(), TotalSeries)
	if total[0].Mean != 2100 {
		t.Errorf("total week 0 mean = %v, want 2100", total[0].Mean)
	}
	liquid := WeeklyBands(handEnsemble(), LiquidSeries)
	if liquid[1].P50 != 900 {
		t.Errorf("liquid week 1 median = %v, want 900", liquid[1].P50)
	}
}

func TestDefaultBinCount(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 1},
		{1, 1},
		{100, 4},
		{1000, 9},
		{10000, 20},
	}
	for _, tt := range tests {
		if got := DefaultBinCount(tt.n); got != tt.want {
			t.Errorf("DefaultBinCount(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestHistogram(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 10}
	bins := Histogram(values, 5)
	if len(bins) != 5 {
		t.Fatalf("len(bins) = %d, want 5", len(bins))
	}

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total != len(values) {
		t.Fatalf("bin counts sum to %d, want %d", total, len(values))
	}
	if bins[0].Lo != 0 || bins[4].Hi != 10 {
		t.Fatalf("range = [%v, %v], want [0, 10]", bins[0].Lo, bins[4].Hi)
	}
	if bins[4].Count != 2 {
		t.Fatalf("last bin count = %d, want 2 (max lands in last bin)", bins[4].Count)
	}
}

func TestHistogram_Degenerate(t *testing.T) {
	bins := Histogram([]float64{3100, 3100, 3100}, 4)
	if len(bins) != 1 {
		t.Fatalf("len(bins) = %d, want 1", len(bins))
	}
	if bins[0].Count != 3 || bins[0].Lo != 3099.5 || bins[0].Hi != 3100.5 {
		t.Fatalf("bin = %+v", bins[0])
	}
	if Histogram(nil, 3) != nil {
		t.Fatal("Histogram(nil) should be nil")
	}
}
