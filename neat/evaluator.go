package neat

import (
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// FitnessEvaluator assigns a Fitness to every genome of a generation.
// Fitness values must be non-negative for fitness-proportional reproduction
// to behave.
type FitnessEvaluator interface {
	Evaluate(genomes []*Genome) error
}

// FitnessFunc adapts a plain function to FitnessEvaluator.
type FitnessFunc func(genomes []*Genome) error

func (f FitnessFunc) Evaluate(genomes []*Genome) error { return f(genomes) }

// GoalEvaluator reports whether a genome solves the task.
type GoalEvaluator interface {
	IsGoalMet(g *Genome) bool
}

// GoalFunc adapts a plain function to GoalEvaluator.
type GoalFunc func(g *Genome) bool

func (f GoalFunc) IsGoalMet(g *Genome) bool { return f(g) }

// ParallelEvaluator scores genomes concurrently on a bounded worker pool.
// Each worker writes only to its own genome's Fitness. Score must be safe
// for concurrent use.
type ParallelEvaluator struct {
	Workers int // Defaults to GOMAXPROCS when <= 0.
	Score   func(g *Genome) (float64, error)
}

// Evaluate implements FitnessEvaluator. A genome whose evaluation fails keeps
// a fitness of 0 and its error is joined into the returned error.
func (e *ParallelEvaluator) Evaluate(genomes []*Genome) error {
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := pool.New().WithErrors().WithMaxGoroutines(workers)
	for i, g := range genomes {
		p.Go(func() error {
			fitness, err := e.Score(g)
			if err != nil {
				g.Fitness = 0
				return fmt.Errorf("genome %d: %w", i, err)
			}
			g.Fitness = fitness
			return nil
		})
	}
	return p.Wait()
}
