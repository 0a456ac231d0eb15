package neat

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"
)

// checkpointData holds the parts of a Population needed to resume a run.
// The Config is not saved; the caller supplies it on load. The random source
// is not saved either, so a resumed run is not bit-identical to an
// uninterrupted one.
type checkpointData struct {
	Genomes        []*Genome
	Species        []*Species
	Generation     int
	NextSpeciesID  int
	NextNodeID     int
	NextInnovation int
}

// SaveCheckpoint writes the population state to filePath as gzip-compressed gob.
func (p *Population) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)

	nextNode, nextInnov := p.tracker.Counters()
	data := checkpointData{
		Genomes:        p.genomes,
		Species:        p.species,
		Generation:     p.generation,
		NextSpeciesID:  p.nextSpeciesID,
		NextNodeID:     nextNode,
		NextInnovation: nextInnov,
	}
	if err := gob.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint '%s': %w", filePath, err)
	}

	p.Logger.Info("checkpoint saved",
		slog.String("path", filePath),
		slog.Int("generation", p.generation))
	return nil
}

// LoadCheckpoint restores a population written by SaveCheckpoint. The config
// must describe the same input/output layout as the saved run.
func LoadCheckpoint(checkpointPath string, config *Config, evaluator FitnessEvaluator) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if evaluator == nil {
		return nil, errors.New("fitness evaluator is required")
	}

	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	var data checkpointData
	if err := gob.NewDecoder(gzReader).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}
	if len(data.Genomes) == 0 {
		return nil, fmt.Errorf("checkpoint '%s': %w", checkpointPath, ErrEmptyPopulation)
	}

	// gob leaves empty maps nil.
	for _, g := range data.Genomes {
		g.initMaps()
	}
	for _, sp := range data.Species {
		for _, g := range sp.Members {
			g.initMaps()
		}
		if sp.Representative != nil {
			sp.Representative.initMaps()
		}
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	tracker := NewInnovationTracker(config.InputNodeCount, config.OutputNodeCount)
	tracker.restore(data.NextNodeID, data.NextInnovation)

	p := &Population{
		Config:        config,
		Evaluator:     evaluator,
		Logger:        slog.Default(),
		genomes:       data.Genomes,
		species:       data.Species,
		tracker:       tracker,
		generation:    data.Generation,
		rng:           rand.New(rand.NewSource(seed)),
		nextSpeciesID: data.NextSpeciesID,
	}
	p.Logger.Info("checkpoint loaded",
		slog.String("path", checkpointPath),
		slog.Int("generation", p.generation))
	return p, nil
}
