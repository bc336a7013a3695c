package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/projection"

	"github.com/rs/zerolog/log"
)

var (
	// ErrInvalidRuns is returned when an ensemble is asked for fewer than one run.
	ErrInvalidRuns = errors.New("runs must be at least 1")
	// ErrNonFinite is returned when a run ends with a NaN or infinite balance.
	ErrNonFinite = errors.New("projection produced a non-finite balance")
)

// ProgressFunc is called as runs complete.
// current is the number of runs finished so far, total is the ensemble size.
type ProgressFunc func(current, total int)

// SamplerFactory returns the sampler for one run, by run index.
type SamplerFactory func(run int) projection.Sampler

// Options controls an ensemble.
type Options struct {
	Runs    int
	Workers int // 0 means GOMAXPROCS

	// Seed fixes the random stream. When nil a seed is drawn from
	// crypto/rand and recorded on the result so the run can be repeated.
	Seed *uint64

	// Sampler overrides the seeded samplers entirely.
	Sampler SamplerFactory

	Progress ProgressFunc
}

// SeedPtr is a helper for filling Options.Seed from a literal.
func SeedPtr(v uint64) *uint64 {
	return &v
}

// RunEnsemble simulates the scenario opts.Runs times and returns every
// trajectory. Run i draws from stream i of the seed, so the result does
// not depend on how many workers shared the work.
func RunEnsemble(s model.Scenario, opts Options) (*model.EnsembleResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if opts.Runs < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidRuns, opts.Runs)
	}

	seed := randomSeed()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	samplerFor := opts.Sampler
	if samplerFor == nil {
		samplerFor = func(run int) projection.Sampler {
			return projection.NewSampler(seed, uint64(run))
		}
	}

	// Bounded worker pool over run indices
	numWorkers := opts.Workers
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > opts.Runs {
		numWorkers = opts.Runs
	}

	log.Debug().
		Str("scenario", s.Name).
		Int("runs", opts.Runs).
		Int("weeks", s.Weeks).
		Int("workers", numWorkers).
		Uint64("seed", seed).
		Msg("starting ensemble")
	start := time.Now()

	work := make(chan int, opts.Runs)
	runs := make([]model.Trajectory, opts.Runs)
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range runs {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				runs[idx] = projection.Simulate(s, samplerFor(idx))
				n := processed.Add(1)
				if opts.Progress != nil {
					opts.Progress(int(n), opts.Runs)
				}
			}
		}()
	}

	wg.Wait()

	for i, tr := range runs {
		for _, a := range model.Accounts {
			if v := tr.Final(a); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: run %d %s = %g", ErrNonFinite, i, a, v)
			}
		}
	}

	log.Debug().
		Int("runs", opts.Runs).
		Dur("elapsed", time.Since(start)).
		Msg("ensemble complete")

	return &model.EnsembleResult{
		Scenario: s,
		Seed:     seed,
		Runs:     runs,
	}, nil
}

func randomSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}
