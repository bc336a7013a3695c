package pipeline

import (
	"testing"

	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/projection"
)

func BenchmarkSimulate(b *testing.B) {
	s := model.DefaultScenario()
	sampler := projection.NewSampler(1, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = projection.Simulate(s, sampler)
	}
}

func BenchmarkRunEnsemble(b *testing.B) {
	s := model.DefaultScenario()
	opts := Options{Runs: 1000, Seed: SeedPtr(1)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := RunEnsemble(s, opts)
		if err != nil {
			b.Fatal(err)
		}
		_ = res
	}
}

func BenchmarkSummarize(b *testing.B) {
	res, err := RunEnsemble(model.DefaultScenario(), Options{Runs: 1000, Seed: SeedPtr(1)})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Summarize(res)
	}
}
