package store

import (
	"context"
	"sort"
	"sync"

	"github.com/neatlab/neat-go/neat"
)

type savedGenome struct {
	generation int
	genome     *neat.Genome
}

// MemoryStore keeps everything in process memory. Saved genomes are copied
// so later mutation of the population does not leak into the store.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	genomes     map[string][]savedGenome
	generations map[string]map[int]GenerationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.genomes = make(map[string][]savedGenome)
	s.generations = make(map[string]map[int]GenerationRecord)
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, runID string, generation int, genome *neat.Genome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	saved := s.genomes[runID]
	for i := range saved {
		if saved[i].generation == generation {
			saved[i].genome = genome.Copy()
			return nil
		}
	}
	s.genomes[runID] = append(saved, savedGenome{generation: generation, genome: genome.Copy()})
	return nil
}

func (s *MemoryStore) BestGenome(_ context.Context, runID string) (*neat.Genome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, errNotInitialized
	}
	var best *savedGenome
	for i := range s.genomes[runID] {
		cur := &s.genomes[runID][i]
		if best == nil || cur.genome.Fitness > best.genome.Fitness ||
			(cur.genome.Fitness == best.genome.Fitness && cur.generation < best.generation) {
			best = cur
		}
	}
	if best == nil {
		return nil, false, nil
	}
	return best.genome.Copy(), true, nil
}

func (s *MemoryStore) SaveGeneration(_ context.Context, record GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	byGen, ok := s.generations[record.RunID]
	if !ok {
		byGen = make(map[int]GenerationRecord)
		s.generations[record.RunID] = byGen
	}
	byGen[record.Generation] = record
	return nil
}

func (s *MemoryStore) Generations(_ context.Context, runID string) ([]GenerationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	records := make([]GenerationRecord, 0, len(s.generations[runID]))
	for _, rec := range s.generations[runID] {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Generation < records[j].Generation })
	return records, nil
}

func (s *MemoryStore) Close() error { return nil }
