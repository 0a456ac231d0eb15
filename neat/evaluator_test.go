package neat

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelEvaluatorScoresEveryGenome(t *testing.T) {
	genomes := make([]*Genome, 50)
	for i := range genomes {
		genomes[i] = xorSeed()
		genomes[i].Connections[0].Weight = float64(i)
	}

	var calls atomic.Int32
	e := &ParallelEvaluator{Workers: 4, Score: func(g *Genome) (float64, error) {
		calls.Add(1)
		return g.Connections[0].Weight * 2, nil
	}}

	assert.NoError(t, e.Evaluate(genomes))
	assert.Equal(t, int32(50), calls.Load())
	for i, g := range genomes {
		assert.Equal(t, float64(2*i), g.Fitness)
	}
}

func TestParallelEvaluatorJoinsErrors(t *testing.T) {
	errOdd := errors.New("odd weight")
	genomes := make([]*Genome, 6)
	for i := range genomes {
		genomes[i] = xorSeed()
		genomes[i].Connections[0].Weight = float64(i)
		genomes[i].Fitness = 99
	}

	e := &ParallelEvaluator{Score: func(g *Genome) (float64, error) {
		if int(g.Connections[0].Weight)%2 == 1 {
			return 0, errOdd
		}
		return 1, nil
	}}

	err := e.Evaluate(genomes)

	assert.ErrorIs(t, err, errOdd)
	for i, g := range genomes {
		if i%2 == 1 {
			assert.Zero(t, g.Fitness)
		} else {
			assert.Equal(t, 1.0, g.Fitness)
		}
	}
}

func TestGoalFunc(t *testing.T) {
	var goal GoalEvaluator = GoalFunc(func(g *Genome) bool { return g.Fitness > 1 })

	assert.True(t, goal.IsGoalMet(genomeWithFitness(2)))
	assert.False(t, goal.IsGoalMet(genomeWithFitness(1)))
}
