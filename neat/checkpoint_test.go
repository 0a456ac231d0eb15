package neat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointRoundTrip(t *testing.T) {
	config := testConfig()
	config.AddNodeRate = 0.3
	p := quietPopulation(t, config, connectionCountFitness)
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Evolve())
	}

	path := filepath.Join(t.TempDir(), "pop.gz")
	require.NoError(t, p.SaveCheckpoint(path))

	loaded, err := LoadCheckpoint(path, config, connectionCountFitness)
	require.NoError(t, err)

	assert.Equal(t, p.Generation(), loaded.Generation())
	require.Len(t, loaded.Genomes(), len(p.Genomes()))
	for i, g := range p.Genomes() {
		assert.Equal(t, g.TopologyString(), loaded.Genomes()[i].TopologyString())
	}
	require.Len(t, loaded.Species(), len(p.Species()))
	for i, s := range p.Species() {
		assert.Equal(t, s.ID, loaded.Species()[i].ID)
		assert.Equal(t, s.GenerationsWithoutImprovement, loaded.Species()[i].GenerationsWithoutImprovement)
		assert.Len(t, loaded.Species()[i].Members, len(s.Members))
	}

	wantNode, wantInnov := p.Tracker().Counters()
	gotNode, gotInnov := loaded.Tracker().Counters()
	assert.Equal(t, wantNode, gotNode)
	assert.Equal(t, wantInnov, gotInnov)

	loaded.Logger = p.Logger
	require.NoError(t, loaded.Evolve())
	assert.Equal(t, p.Generation()+1, loaded.Generation())
}

func TestLoadCheckpointErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCheckpoint(filepath.Join(dir, "missing.gz"), testConfig(), connectionCountFitness)
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.gz")
	require.NoError(t, os.WriteFile(garbage, []byte("not gzip"), 0o644))
	_, err = LoadCheckpoint(garbage, testConfig(), connectionCountFitness)
	assert.Error(t, err)
}
