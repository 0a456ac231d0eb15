package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genomeWithFitness(f float64) *Genome {
	g := xorSeed()
	g.Fitness = f
	return g
}

func TestSpeciesAdjustedFitness(t *testing.T) {
	s := NewSpecies(1, genomeWithFitness(4))
	s.AddMember(genomeWithFitness(2))

	s.CalculateAdjustedFitness()

	assert.Equal(t, 2.0, s.Members[0].AdjustedFitness)
	assert.Equal(t, 1.0, s.Members[1].AdjustedFitness)
	assert.Equal(t, 3.0, s.AdjustedFitnessSum())
	assert.Equal(t, 3.0, s.AverageFitness())
}

func TestSpeciesStagnation(t *testing.T) {
	s := NewSpecies(1, genomeWithFitness(5))

	s.UpdateStagnation()
	assert.Equal(t, 5.0, s.TopFitness)
	assert.Zero(t, s.GenerationsWithoutImprovement)

	s.UpdateStagnation()
	s.UpdateStagnation()
	assert.Equal(t, 2, s.GenerationsWithoutImprovement)

	s.Members[0].Fitness = 6
	s.UpdateStagnation()
	assert.Zero(t, s.GenerationsWithoutImprovement)
}

func TestSpeciesResetKeepsRepresentativeFromMembers(t *testing.T) {
	rep := genomeWithFitness(1)
	other := genomeWithFitness(2)
	s := NewSpecies(1, rep)
	s.AddMember(other)
	s.TopFitness = 2

	s.Reset(rand.New(rand.NewSource(1)))

	assert.Empty(t, s.Members)
	assert.Zero(t, s.TopFitness)
	assert.True(t, s.Representative == rep || s.Representative == other)

	// Nothing to draw from: the old representative stays.
	prev := s.Representative
	s.Reset(rand.New(rand.NewSource(1)))
	assert.Same(t, prev, s.Representative)
}

func TestGenerateOffspringCarriesElitesAsCopies(t *testing.T) {
	config := testConfig()
	config.SpeciesElitismFraction = 0.5
	tracker := NewInnovationTracker(2, 1)
	tracker.PrimeFromPopulation([]*Genome{xorSeed()})

	s := NewSpecies(1, genomeWithFitness(1))
	for _, f := range []float64{7, 3, 5} {
		s.AddMember(genomeWithFitness(f))
	}

	offspring := s.GenerateOffspring(6, config, tracker, rand.New(rand.NewSource(2)))

	require.Len(t, offspring, 6)
	assert.Equal(t, 7.0, offspring[0].Fitness)
	assert.Equal(t, 5.0, offspring[1].Fitness)
	for _, child := range offspring {
		for _, m := range s.Members {
			assert.NotSame(t, m, child)
		}
	}
}

func TestGenerateOffspringEliteCountCappedByQuota(t *testing.T) {
	config := testConfig()
	config.SpeciesElitismFraction = 1
	s := NewSpecies(1, genomeWithFitness(1))
	s.AddMember(genomeWithFitness(2))
	s.AddMember(genomeWithFitness(3))

	offspring := s.GenerateOffspring(2, config, NewInnovationTracker(2, 1), rand.New(rand.NewSource(1)))

	require.Len(t, offspring, 2)
	assert.Equal(t, 3.0, offspring[0].Fitness)
	assert.Equal(t, 2.0, offspring[1].Fitness)
	assert.Empty(t, s.GenerateOffspring(0, config, NewInnovationTracker(2, 1), rand.New(rand.NewSource(1))))
}

func TestComputeOffspringQuotas(t *testing.T) {
	a := NewSpecies(1, &Genome{AdjustedFitness: 3})
	b := NewSpecies(2, &Genome{AdjustedFitness: 1})

	assert.Equal(t, []int{15, 5}, computeOffspringQuotas([]*Species{a, b}, 20))

	zero := NewSpecies(3, &Genome{})
	assert.Equal(t, []int{0}, computeOffspringQuotas([]*Species{zero}, 20))
}
