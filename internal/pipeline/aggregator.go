// Package pipeline runs projection ensembles and aggregates their results.
package pipeline

import (
	"math"
	"sort"

	"github.com/theirongolddev/fincast/internal/model"
)

// FinalBalances returns the last-week balance of an account for every run.
func FinalBalances(res *model.EnsembleResult, a model.Account) []float64 {
	out := make([]float64, len(res.Runs))
	for i, tr := range res.Runs {
		out[i] = tr.Final(a)
	}
	return out
}

// FinalLiquid returns the last-week current plus savings balance per run.
func FinalLiquid(res *model.EnsembleResult) []float64 {
	out := make([]float64, len(res.Runs))
	for i, tr := range res.Runs {
		out[i] = tr.Liquid(tr.Len() - 1)
	}
	return out
}

// FinalTotal returns the last-week balance across all accounts per run.
func FinalTotal(res *model.EnsembleResult) []float64 {
	out := make([]float64, len(res.Runs))
	for i, tr := range res.Runs {
		out[i] = tr.Total(tr.Len() - 1)
	}
	return out
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// CountBelow counts values strictly less than ref.
func CountBelow(values []float64, ref float64) int {
	n := 0
	for _, v := range values {
		if v < ref {
			n++
		}
	}
	return n
}

// FractionBelow returns the share of values strictly less than ref, in [0, 1].
func FractionBelow(values []float64, ref float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return float64(CountBelow(values, ref)) / float64(len(values))
}

// Percentile returns the p-th percentile (0-100) with linear interpolation
// between closest ranks. values need not be sorted.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := lo + 1
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Describe computes the summary statistics of a distribution against a threshold.
func Describe(values []float64, threshold float64) model.DistributionStats {
	stats := model.DistributionStats{
		Count:     len(values),
		Threshold: threshold,
	}
	if len(values) == 0 {
		return stats
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	stats.Mean = Mean(values)
	stats.StdDev = StdDev(values)
	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]
	stats.P10 = percentileSorted(sorted, 10)
	stats.P50 = percentileSorted(sorted, 50)
	stats.P90 = percentileSorted(sorted, 90)
	stats.Below = CountBelow(values, threshold)
	stats.FractionBelow = float64(stats.Below) / float64(len(values))

	return stats
}

// Summarize computes the final-week statistics for an ensemble.
// Each account is measured against its own starting balance, current plus
// savings against zero and the total against the initial total.
func Summarize(res *model.EnsembleResult) model.EnsembleSummary {
	s := res.Scenario
	sum := model.EnsembleSummary{
		Runs:         res.RunCount(),
		Weeks:        s.Weeks,
		Seed:         res.Seed,
		Accounts:     make(map[model.Account]model.DistributionStats, len(model.Accounts)),
		InitialTotal: s.InitialTotal(),
	}

	for _, a := range model.Accounts {
		sum.Accounts[a] = Describe(FinalBalances(res, a), s.InitialBalance(a))
	}
	sum.Liquid = Describe(FinalLiquid(res), 0)
	sum.Total = Describe(FinalTotal(res), sum.InitialTotal)

	return sum
}

// Series selects one value per week from a trajectory.
type Series func(tr model.Trajectory, week int) float64

// AccountSeries selects a single account's balance.
func AccountSeries(a model.Account) Series {
	return func(tr model.Trajectory, week int) float64 {
		return tr.At(a, week)
	}
}

// LiquidSeries selects current plus savings.
func LiquidSeries(tr model.Trajectory, week int) float64 {
	return tr.Liquid(week)
}

// TotalSeries selects the total across all accounts.
func TotalSeries(tr model.Trajectory, week int) float64 {
	return tr.Total(week)
}

// WeeklyBands computes the cross-run spread of a series at every week.
func WeeklyBands(res *model.EnsembleResult, series Series) []model.WeekBand {
	weeks := res.Weeks()
	bands := make([]model.WeekBand, weeks)
	col := make([]float64, len(res.Runs))

	for w := 0; w < weeks; w++ {
		for i, tr := range res.Runs {
			col[i] = series(tr, w)
		}
		mean := Mean(col)
		sort.Float64s(col)
		bands[w] = model.WeekBand{
			Week: w,
			Mean: mean,
			P10:  percentileSorted(col, 10),
			P50:  percentileSorted(col, 50),
			P90:  percentileSorted(col, 90),
		}
	}
	return bands
}

// DefaultBinCount returns the histogram bin count used for n samples, n^0.33.
func DefaultBinCount(n int) int {
	bins := int(math.Pow(float64(n), 0.33))
	if bins < 1 {
		bins = 1
	}
	return bins
}

// Histogram buckets values into equal-width bins spanning [min, max].
func Histogram(values []float64, bins int) []model.Bin {
	if len(values) == 0 {
		return nil
	}
	if bins < 1 {
		bins = 1
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	// A degenerate distribution gets a single bin centred on the value.
	if hi == lo {
		return []model.Bin{{Lo: lo - 0.5, Hi: hi + 0.5, Count: len(values)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]model.Bin, bins)
	for i := range out {
		out[i].Lo = lo + width*float64(i)
		out[i].Hi = lo + width*float64(i+1)
	}
	out[bins-1].Hi = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out
}
