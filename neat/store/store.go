// Package store persists evolution runs: per-generation statistics and the
// champion genome of every generation.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/neatlab/neat-go/neat"
)

var errNotInitialized = errors.New("store is not initialized")

// GenerationRecord is the persisted summary of one evaluated generation.
type GenerationRecord struct {
	RunID          string
	Generation     int
	BestFitness    float64
	MeanFitness    float64
	FitnessStdev   float64
	SpeciesCount   int
	PopulationSize int
}

// Store defines persistence operations for evolution runs.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, runID string, generation int, genome *neat.Genome) error
	// BestGenome returns the fittest genome saved for runID. The earliest
	// generation wins ties.
	BestGenome(ctx context.Context, runID string) (*neat.Genome, bool, error)
	SaveGeneration(ctx context.Context, record GenerationRecord) error
	Generations(ctx context.Context, runID string) ([]GenerationRecord, error)
	Close() error
}

// NewRunID returns a fresh identifier for an evolution run.
func NewRunID() string {
	return uuid.NewString()
}

// RecordFromStats converts population stats into a record for runID.
func RecordFromStats(runID string, stats neat.GenerationStats) GenerationRecord {
	return GenerationRecord{
		RunID:          runID,
		Generation:     stats.Generation,
		BestFitness:    stats.BestFitness,
		MeanFitness:    stats.MeanFitness,
		FitnessStdev:   stats.FitnessStdev,
		SpeciesCount:   stats.SpeciesCount,
		PopulationSize: stats.PopulationSize,
	}
}
