package neat

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietPopulation(t *testing.T, config *Config, eval FitnessEvaluator) *Population {
	t.Helper()
	p, err := NewPopulation(config, eval)
	require.NoError(t, err)
	p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return p
}

// connectionCountFitness rewards larger genomes; it is cheap and deterministic.
var connectionCountFitness = FitnessFunc(func(genomes []*Genome) error {
	for _, g := range genomes {
		g.Fitness = float64(len(g.Connections))
	}
	return nil
})

func TestNewPopulationSeedsMinimalGenomes(t *testing.T) {
	config := testConfig()
	p := quietPopulation(t, config, connectionCountFitness)

	require.Len(t, p.Genomes(), config.PopulationSize)
	for _, g := range p.Genomes() {
		assert.Len(t, g.Nodes, 3)
		require.Len(t, g.Connections, 1)
		for _, c := range g.Connections {
			assert.Equal(t, 2, c.OutNodeID)
			assert.LessOrEqual(t, c.InNodeID, 1)
			assert.InDelta(t, 0, c.Weight, config.NewConnectionWeightRange)
		}
	}
}

func TestNewPopulationFullyConnected(t *testing.T) {
	config := testConfig()
	config.StartFullyConnected = true
	p := quietPopulation(t, config, connectionCountFitness)

	for _, g := range p.Genomes() {
		assert.Len(t, g.Connections, 2)
		assert.Contains(t, g.Connections, 0)
		assert.Contains(t, g.Connections, 1)
	}
}

func TestNewPopulationRejectsBadInput(t *testing.T) {
	config := testConfig()
	config.PopulationSize = 0
	_, err := NewPopulation(config, connectionCountFitness)
	assert.Error(t, err)

	_, err = NewPopulation(testConfig(), nil)
	assert.Error(t, err)
}

func TestEvolveKeepsPopulationSize(t *testing.T) {
	config := testConfig()
	config.AddNodeRate = 0.2
	config.AddConnectionRate = 0.3
	p := quietPopulation(t, config, connectionCountFitness)

	for i := 0; i < 10; i++ {
		require.NoError(t, p.Evolve())
		assert.Len(t, p.Genomes(), config.PopulationSize)
		assert.Equal(t, i+1, p.Generation())
		assert.NotEmpty(t, p.Species())
	}

	seen := make(map[*Genome]bool)
	for _, g := range p.Genomes() {
		assert.False(t, seen[g], "genome appears twice in one generation")
		seen[g] = true
	}
}

func TestEvolveSpeciesMembershipIsExclusive(t *testing.T) {
	config := testConfig()
	config.CompatibilityThreshold = 0.5
	p := quietPopulation(t, config, connectionCountFitness)

	require.NoError(t, p.Evolve())

	count := 0
	seen := make(map[*Genome]bool)
	for _, s := range p.Species() {
		assert.NotEmpty(t, s.Members)
		for _, m := range s.Members {
			assert.False(t, seen[m])
			seen[m] = true
			count++
		}
	}
	assert.Equal(t, config.PopulationSize, count)
}

func TestEvolvePropagatesEvaluatorError(t *testing.T) {
	boom := errors.New("boom")
	p := quietPopulation(t, testConfig(), FitnessFunc(func([]*Genome) error { return boom }))

	err := p.Evolve()

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, p.Generation())
}

func TestCullCanRemoveEverySpecies(t *testing.T) {
	config := testConfig()
	config.SpeciesStagnationLimit = 2
	p := quietPopulation(t, config, connectionCountFitness)

	a := NewSpecies(0, genomeWithFitness(0))
	b := NewSpecies(1, genomeWithFitness(0))
	a.GenerationsWithoutImprovement = 5
	b.GenerationsWithoutImprovement = 5
	p.species = []*Species{a, b}

	p.updateAndCullSpecies()

	assert.Empty(t, p.Species())
	assert.Nil(t, p.reproduce())
}

func TestCullSparesLastSpecies(t *testing.T) {
	config := testConfig()
	config.SpeciesStagnationLimit = 2
	p := quietPopulation(t, config, connectionCountFitness)

	a := NewSpecies(0, genomeWithFitness(0))
	a.GenerationsWithoutImprovement = 5
	p.species = []*Species{a}

	p.updateAndCullSpecies()

	require.Len(t, p.Species(), 1)
	assert.Len(t, p.reproduce(), config.PopulationSize)
}

func TestEvolveSurvivesFlatFitness(t *testing.T) {
	config := testConfig()
	config.SpeciesStagnationLimit = 1
	config.CompatibilityThreshold = 0.1
	config.WeightMutationRate = 1
	p := quietPopulation(t, config, FitnessFunc(func(genomes []*Genome) error {
		for _, g := range genomes {
			g.Fitness = 0
		}
		return nil
	}))

	// Flat zero fitness never improves on TopFitness, so every species
	// eventually stagnates together.
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Evolve())
		require.Len(t, p.Genomes(), config.PopulationSize)
	}
}

func TestBestGenomeAndStats(t *testing.T) {
	p := quietPopulation(t, testConfig(), connectionCountFitness)
	assert.Zero(t, p.Stats().BestFitness)

	for i, g := range p.Genomes() {
		g.Fitness = float64(i)
	}
	best := p.BestGenome()
	require.NotNil(t, best)
	assert.Equal(t, float64(len(p.Genomes())-1), best.Fitness)

	stats := p.Stats()
	assert.Equal(t, best.Fitness, stats.BestFitness)
	assert.InDelta(t, float64(len(p.Genomes())-1)/2, stats.MeanFitness, 1e-9)
	assert.Equal(t, len(p.Genomes()), stats.PopulationSize)

	empty := &Population{}
	assert.Nil(t, empty.BestGenome())
}

func TestLastStatsDescribeEvaluatedGeneration(t *testing.T) {
	p := quietPopulation(t, testConfig(), FitnessFunc(func(genomes []*Genome) error {
		for _, g := range genomes {
			g.Fitness = 2
		}
		return nil
	}))

	require.NoError(t, p.Evolve())

	stats := p.LastStats()
	assert.Equal(t, 0, stats.Generation)
	assert.Equal(t, 2.0, stats.BestFitness)
	assert.Equal(t, 2.0, stats.MeanFitness)
	assert.Zero(t, stats.FitnessStdev)
	assert.Equal(t, len(p.Species()), stats.SpeciesCount)
}

func TestSeedFromGenome(t *testing.T) {
	config := testConfig()
	p := quietPopulation(t, config, connectionCountFitness)

	seed := xorSeed()
	seed.AddNode(&NodeGene{ID: 40, Type: HiddenNode})
	seed.AddConnection(conn(0, 40, 90, 1))
	seed.AddConnection(conn(40, 2, 91, 1))

	p.SeedFromGenome(seed)

	require.Len(t, p.Genomes(), config.PopulationSize)
	assert.NotSame(t, seed, p.Genomes()[0])
	assert.Equal(t, len(seed.Connections), len(p.Genomes()[0].Connections))
	node, innov := p.Tracker().Counters()
	assert.GreaterOrEqual(t, node, 41)
	assert.GreaterOrEqual(t, innov, 92)
	for _, g := range p.Genomes()[1:] {
		assert.Contains(t, g.Nodes, 40)
	}
}

func TestRunStopsWhenGoalMet(t *testing.T) {
	config := testConfig()
	config.AddConnectionRate = 0.5
	p := quietPopulation(t, config, connectionCountFitness)

	var hooked int
	goal := GoalFunc(func(g *Genome) bool { return g.Fitness >= 2 })
	result, err := p.Run(200, goal, 5, func(_ *Population, champion *Genome) {
		hooked++
		assert.NotNil(t, champion)
	})

	require.NoError(t, err)
	assert.True(t, result.GoalMet)
	require.NotNil(t, result.Best)
	assert.GreaterOrEqual(t, result.Best.Fitness, 2.0)
	assert.Equal(t, result.Generations, hooked)
	assert.Equal(t, result.Generations, p.Generation())
}

type countingEvaluator struct{ calls int }

func (e *countingEvaluator) Evaluate(genomes []*Genome) error {
	e.calls++
	return connectionCountFitness(genomes)
}

func TestRunWithoutGoalRunsAllGenerations(t *testing.T) {
	eval := &countingEvaluator{}
	p := quietPopulation(t, testConfig(), eval)

	result, err := p.Run(3, nil, 0, nil)

	require.NoError(t, err)
	assert.False(t, result.GoalMet)
	assert.Equal(t, 3, result.Generations)
	assert.NotNil(t, result.Best)
	assert.Equal(t, 3, eval.calls)
	assert.Same(t, eval, p.Evaluator, "evaluator restored after Run")
	assert.Equal(t, 3, p.Generation())
}
