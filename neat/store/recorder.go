package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neatlab/neat-go/neat"
)

// Recorder writes the stats and champion of each evaluated generation of one
// run to a Store.
type Recorder struct {
	Store  Store
	RunID  string
	Logger *slog.Logger

	err error
}

// NewRecorder binds store to a fresh run ID.
func NewRecorder(store Store) *Recorder {
	return &Recorder{Store: store, RunID: NewRunID(), Logger: slog.Default()}
}

// Record saves the population's last evaluated generation and its champion.
func (r *Recorder) Record(ctx context.Context, p *neat.Population, champion *neat.Genome) error {
	stats := p.LastStats()
	if err := r.Store.SaveGeneration(ctx, RecordFromStats(r.RunID, stats)); err != nil {
		return fmt.Errorf("save generation %d of run %s: %w", stats.Generation, r.RunID, err)
	}
	if champion == nil {
		return nil
	}
	if err := r.Store.SaveGenome(ctx, r.RunID, stats.Generation, champion); err != nil {
		return fmt.Errorf("save champion of generation %d of run %s: %w", stats.Generation, r.RunID, err)
	}
	return nil
}

// Hook adapts Record to the per-generation callback of Population.Run. The
// first failure is logged and kept for Err; later generations are skipped.
func (r *Recorder) Hook(ctx context.Context) func(*neat.Population, *neat.Genome) {
	return func(p *neat.Population, champion *neat.Genome) {
		if r.err != nil {
			return
		}
		if err := r.Record(ctx, p, champion); err != nil {
			r.err = err
			r.Logger.Error("failed to record generation",
				slog.String("run_id", r.RunID),
				slog.Any("error", err))
		}
	}
}

// Err returns the first error seen by Hook.
func (r *Recorder) Err() error { return r.err }
