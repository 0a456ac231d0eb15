package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neatlab/neat-go/neat"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	sqlite := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, sqlite.Init(ctx))
	t.Cleanup(func() { _ = sqlite.Close() })

	memory := NewMemoryStore()
	require.NoError(t, memory.Init(ctx))

	return map[string]Store{"sqlite": sqlite, "memory": memory}
}

func champion(fitness float64) *neat.Genome {
	g := neat.NewGenome()
	g.AddNode(&neat.NodeGene{ID: 0, Type: neat.InputNode})
	g.AddNode(&neat.NodeGene{ID: 1, Type: neat.OutputNode})
	g.AddConnection(&neat.ConnectionGene{InNodeID: 0, OutNodeID: 1, Weight: fitness, Enabled: true, Innovation: 0})
	g.Fitness = fitness
	return g
}

func TestStoreBestGenome(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			runID := NewRunID()

			_, ok, err := s.BestGenome(ctx, runID)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.SaveGenome(ctx, runID, 0, champion(1)))
			require.NoError(t, s.SaveGenome(ctx, runID, 1, champion(3)))
			require.NoError(t, s.SaveGenome(ctx, runID, 2, champion(3)))
			require.NoError(t, s.SaveGenome(ctx, runID, 3, champion(2)))
			require.NoError(t, s.SaveGenome(ctx, "other-run", 0, champion(10)))

			best, ok, err := s.BestGenome(ctx, runID)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, 3.0, best.Fitness)
			assert.Equal(t, 3.0, best.Connections[0].Weight)

			// Saving the same generation again replaces it.
			require.NoError(t, s.SaveGenome(ctx, runID, 3, champion(5)))
			best, _, err = s.BestGenome(ctx, runID)
			require.NoError(t, err)
			assert.Equal(t, 5.0, best.Fitness)
		})
	}
}

func TestStoreGenerations(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			runID := NewRunID()
			for _, gen := range []int{2, 0, 1} {
				require.NoError(t, s.SaveGeneration(ctx, GenerationRecord{
					RunID:          runID,
					Generation:     gen,
					BestFitness:    float64(gen),
					MeanFitness:    0.5,
					SpeciesCount:   gen + 1,
					PopulationSize: 150,
				}))
			}

			records, err := s.Generations(ctx, runID)
			require.NoError(t, err)
			require.Len(t, records, 3)
			for i, rec := range records {
				assert.Equal(t, runID, rec.RunID)
				assert.Equal(t, i, rec.Generation)
				assert.Equal(t, float64(i), rec.BestFitness)
				assert.Equal(t, i+1, rec.SpeciesCount)
			}

			empty, err := s.Generations(ctx, "unknown")
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestStoreRequiresInit(t *testing.T) {
	ctx := context.Background()
	for name, s := range map[string]Store{
		"sqlite": NewSQLiteStore(filepath.Join(t.TempDir(), "x.db")),
		"memory": NewMemoryStore(),
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.SaveGenome(ctx, "r", 0, champion(1)), errNotInitialized)
			_, err := s.Generations(ctx, "r")
			assert.ErrorIs(t, err, errNotInitialized)
		})
	}

	assert.Error(t, NewSQLiteStore("").Init(ctx))
}

func TestNewRunIDIsUnique(t *testing.T) {
	assert.NotEqual(t, NewRunID(), NewRunID())
	assert.Len(t, NewRunID(), 36)
}
