// Package prop is a small property-based checker: random inputs from a
// generator, a predicate, and shrinking of the first counterexample.
package prop

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Generator produces a value of type T from a PRNG and a size hint.
type Generator[T any] func(r *rand.Rand, size int) T

// Shrinker produces candidate smaller values that aim to preserve failure.
type Shrinker[T any] func(v T) []T

// Property1 is a unary property predicate.
type Property1[A any] func(a A) bool

// Options control property checking.
type Options struct {
	Trials          int   // number of trials
	Seed            int64 // random seed; 0 means time.Now().UnixNano()
	Size            int   // size hint for generators
	Parallelism     int   // concurrent trials; <=0 means GOMAXPROCS
	MaxShrinkRounds int   // limit for shrinking attempts
}

// Result is the outcome of a property check.
type Result[A any] struct {
	PassedTrials int
	Failed       bool
	FailingInput A
	ShrunkInput  A
	Seed         int64
	Duration     time.Duration
	ShrinkRounds int
}

func (o Options) withDefaults() Options {
	if o.Trials <= 0 {
		o.Trials = 200
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.Size <= 0 {
		o.Size = 30
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	if o.MaxShrinkRounds <= 0 {
		o.MaxShrinkRounds = 200
	}
	return o
}

// ForAll1 checks prop against opts.Trials generated inputs. Each trial's
// input depends only on the seed and the trial index, so a reported seed
// reproduces the failure. The lowest-numbered failing trial is the one
// reported and shrunk.
func ForAll1[A any](gen Generator[A], shrink Shrinker[A], prop Property1[A], opts Options) Result[A] {
	start := time.Now()
	opts = opts.withDefaults()

	var (
		mu      sync.Mutex
		failIdx = -1
		failing A
		passed  int
	)
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(opts.Parallelism)
	for i := 0; i < opts.Trials; i++ {
		idx := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			r := rand.New(rand.NewSource(deriveSeed(opts.Seed, idx)))
			a := gen(r, opts.Size)
			ok := prop(a)

			mu.Lock()
			defer mu.Unlock()
			if ok {
				passed++
			} else if failIdx < 0 || idx < failIdx {
				failIdx, failing = idx, a
			}
			return nil
		})
	}
	_ = g.Wait()

	res := Result[A]{PassedTrials: passed, Seed: opts.Seed}
	if failIdx >= 0 {
		res.Failed = true
		res.FailingInput = failing
		res.ShrunkInput, res.ShrinkRounds = shrinkFailure(failing, shrink, prop, opts.MaxShrinkRounds)
	}
	res.Duration = time.Since(start)
	return res
}

// shrinkFailure greedily replaces the counterexample with the first smaller
// candidate that still fails.
func shrinkFailure[A any](best A, shrink Shrinker[A], prop Property1[A], maxRounds int) (A, int) {
	if shrink == nil {
		return best, 0
	}
	rounds := 0
	for rounds < maxRounds {
		progressed := false
		for _, c := range shrink(best) {
			if !prop(c) {
				best = c
				progressed = true
				break
			}
		}
		rounds++
		if !progressed {
			break
		}
	}
	return best, rounds
}

// deriveSeed deterministically mixes base seed with trial index via SHA-256.
func deriveSeed(base int64, idx int) int64 {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], uint64(base))
	binary.LittleEndian.PutUint64(b[8:16], uint64(idx))
	h := sha256.Sum256(b[:])
	return int64(binary.LittleEndian.Uint64(h[0:8]))
}
