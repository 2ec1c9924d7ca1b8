package probability

import (
	"runtime"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSimulations is the number of paths used when none is configured.
	DefaultSimulations = 1000
	chunkSize          = 250
)

// Task runs one simulation using rng. Tasks write into pre-allocated slots
// indexed by sim; nothing is accumulated while workers are running.
type Task func(rng *rand.Rand, sim int) error

// Simulate runs simulations tasks on up to workers goroutines. Simulations
// are split into fixed chunks and every chunk draws from its own generator
// seeded from (seed, chunk), so the output depends only on seed and never on
// scheduling.
func Simulate(simulations, workers int, seed uint64, task Task) error {
	return simulate(simulations, workers, seed, func() Task { return task })
}

// Walk runs simulations random walks of days steps from start with daily
// volatility vol and hands every path to fn. The path slice is reused within
// a chunk, so fn must not keep it.
func Walk(simulations, workers int, seed uint64, start, vol float64, days int, fn func(sim int, path []float64) error) error {
	return simulate(simulations, workers, seed, func() Task {
		var path []float64
		return func(rng *rand.Rand, sim int) error {
			path = RandomWalk(rng, start, vol, days, path)
			return fn(sim, path)
		}
	})
}

// simulate calls newTask once per chunk, so a task may hold chunk-local
// scratch space.
func simulate(simulations, workers int, seed uint64, newTask func() Task) error {
	if simulations <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(workers)

	chunks := (simulations + chunkSize - 1) / chunkSize
	for c := 0; c < chunks; c++ {
		g.Go(func() error {
			rng, task := NewRand(seed, uint64(c)), newTask()
			hi := min((c+1)*chunkSize, simulations)
			for sim := c * chunkSize; sim < hi; sim++ {
				if err := task(rng, sim); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// NewRand returns a generator for one stream of seed.
func NewRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewSource(splitmix(seed ^ splitmix(stream+0x9e3779b97f4a7c15))))
}

func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// RandomWalk fills dst with days prices following S(t+1) = S(t)·(1 + vol·z)
// from start and returns it. dst is allocated when shorter than days.
func RandomWalk(rng *rand.Rand, start, vol float64, days int, dst []float64) []float64 {
	if len(dst) < days {
		dst = make([]float64, days)
	}
	s := start
	for d := 0; d < days; d++ {
		s += vol * rng.NormFloat64() * s
		dst[d] = s
	}
	return dst[:days]
}

// Derive returns an independent seed for stream of seed.
func Derive(seed, stream uint64) uint64 {
	return splitmix(seed ^ splitmix(stream+0x632be59bd9b4e019))
}

// Parallel calls fn for every index in [0,n) on up to workers goroutines
// and returns the first error.
func Parallel(n, workers int, fn func(i int) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}
