package neat

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// ErrEmptyPopulation is returned when an operation needs at least one genome.
var ErrEmptyPopulation = errors.New("population is empty")

// Population holds the state of the NEAT evolutionary process.
type Population struct {
	Config    *Config
	Evaluator FitnessEvaluator
	Logger    *slog.Logger

	genomes    []*Genome
	species    []*Species
	tracker    *InnovationTracker
	generation int
	rng        *rand.Rand

	nextSpeciesID int
	lastStats     GenerationStats
}

// NewPopulation validates the config and seeds the first generation.
func NewPopulation(config *Config, evaluator FitnessEvaluator) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if evaluator == nil {
		return nil, errors.New("fitness evaluator is required")
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	p := &Population{
		Config:    config,
		Evaluator: evaluator,
		Logger:    slog.Default(),
		tracker:   NewInnovationTracker(config.InputNodeCount, config.OutputNodeCount),
		rng:       rand.New(rand.NewSource(seed)),
	}
	p.genomes = CreateNewPopulation(config, p.tracker, p.rng)
	return p, nil
}

// Evolve runs one generation: evaluate, speciate, cull, reproduce. The
// steps are strictly sequential.
func (p *Population) Evolve() error {
	start := time.Now()

	if err := p.Evaluator.Evaluate(p.genomes); err != nil {
		return fmt.Errorf("fitness evaluation failed in generation %d: %w", p.generation, err)
	}

	p.speciate()
	p.updateAndCullSpecies()

	next := p.reproduce()
	if next == nil {
		p.Logger.Warn("all species extinct, re-seeding population",
			slog.Int("generation", p.generation))
		next = CreateNewPopulation(p.Config, p.tracker, p.rng)
	}

	p.lastStats = p.Stats()
	p.Logger.Info("generation complete",
		slog.Int("generation", p.generation),
		slog.Float64("best_fitness", p.lastStats.BestFitness),
		slog.Float64("mean_fitness", p.lastStats.MeanFitness),
		slog.Int("species", p.lastStats.SpeciesCount),
		slog.Duration("duration", time.Since(start)))

	p.genomes = next
	p.generation++
	p.tracker.ResetForNextGeneration()
	return nil
}

// speciate assigns every genome to the first species whose representative is
// within CompatibilityThreshold, creating a new species when none is.
func (p *Population) speciate() {
	for _, s := range p.species {
		s.Reset(p.rng)
	}

	for _, g := range p.genomes {
		placed := false
		for _, s := range p.species {
			if CompatibilityDistance(g, s.Representative, p.Config) < p.Config.CompatibilityThreshold {
				s.AddMember(g)
				placed = true
				break
			}
		}
		if !placed {
			s := NewSpecies(p.nextSpeciesID, g)
			p.nextSpeciesID++
			p.species = append(p.species, s)
			p.Logger.Debug("created new species", slog.Int("species", s.ID))
		}
	}

	remaining := p.species[:0]
	for _, s := range p.species {
		if len(s.Members) > 0 {
			remaining = append(remaining, s)
		}
	}
	clear(p.species[len(remaining):])
	p.species = remaining
}

// BestGenome returns the genome with the highest fitness, or nil for an
// empty population.
func (p *Population) BestGenome() *Genome {
	var best *Genome
	for _, g := range p.genomes {
		if best == nil || g.Fitness > best.Fitness {
			best = g
		}
	}
	return best
}

// SeedFromGenome replaces the population with a copy of seed plus mutants of
// it, each mutated twice. The tracker is primed from seed first so new
// mutations never reuse its IDs.
func (p *Population) SeedFromGenome(seed *Genome) {
	p.tracker.PrimeFromPopulation([]*Genome{seed})
	next, nextInnov := p.tracker.Counters()
	p.Logger.Info("innovation tracker primed",
		slog.Int("next_node_id", next),
		slog.Int("next_innovation", nextInnov))

	genomes := make([]*Genome, 0, p.Config.PopulationSize)
	genomes = append(genomes, seed.Copy())
	for i := 1; i < p.Config.PopulationSize; i++ {
		mutant := seed.Copy()
		mutant.Mutate(p.Config, p.tracker, p.rng)
		mutant.Mutate(p.Config, p.tracker, p.rng)
		genomes = append(genomes, mutant)
	}
	p.genomes = genomes
	p.species = nil
}

// Genomes returns the current generation.
func (p *Population) Genomes() []*Genome { return p.genomes }

// Species returns the species built during the last Evolve.
func (p *Population) Species() []*Species { return p.species }

// Generation returns the number of completed generations.
func (p *Population) Generation() int { return p.generation }

// Tracker returns the run's innovation tracker.
func (p *Population) Tracker() *InnovationTracker { return p.tracker }

// GenerationStats summarizes a population.
type GenerationStats struct {
	Generation     int
	BestFitness    float64
	MeanFitness    float64
	FitnessStdev   float64
	SpeciesCount   int
	PopulationSize int
}

// LastStats returns the summary of the most recently evaluated generation,
// taken inside Evolve before the genomes were replaced.
func (p *Population) LastStats() GenerationStats { return p.lastStats }

// Stats summarizes the current genomes' fitness. Right after Evolve the
// current genomes are unevaluated offspring; see LastStats.
func (p *Population) Stats() GenerationStats {
	fitnesses := make([]float64, 0, len(p.genomes))
	for _, g := range p.genomes {
		fitnesses = append(fitnesses, g.Fitness)
	}
	best := 0.0
	if len(fitnesses) > 0 {
		best = MaxFloat(fitnesses)
	}
	return GenerationStats{
		Generation:     p.generation,
		BestFitness:    best,
		MeanFitness:    Mean(fitnesses),
		FitnessStdev:   Stdev(fitnesses),
		SpeciesCount:   len(p.species),
		PopulationSize: len(p.genomes),
	}
}

// RunResult reports the outcome of Run.
type RunResult struct {
	Best        *Genome // Copy of the all-time best genome.
	Generations int     // Generations evolved during this call.
	GoalMet     bool
}

// Run evolves up to maxGenerations generations. After each one, the best
// genome of the evaluated generation is compared with the all-time best; the
// goal (if any) is checked whenever a new all-time best appears or every
// goalCheckInterval generations. onGeneration, if set, is called after every
// generation with that generation's champion.
func (p *Population) Run(maxGenerations int, goal GoalEvaluator, goalCheckInterval int, onGeneration func(p *Population, champion *Genome)) (RunResult, error) {
	var result RunResult
	if goalCheckInterval <= 0 {
		goalCheckInterval = 1
	}

	for i := 0; i < maxGenerations; i++ {
		// Evolve replaces the genomes, so the champion must be found by the
		// evaluator hook below rather than after the call.
		champion, err := p.evolveTrackingChampion()
		if err != nil {
			return result, err
		}
		result.Generations++
		if champion == nil {
			return result, ErrEmptyPopulation
		}
		if onGeneration != nil {
			onGeneration(p, champion)
		}

		newBest := result.Best == nil || champion.Fitness > result.Best.Fitness
		if newBest {
			result.Best = champion.Copy()
		}

		if goal != nil && (newBest || p.generation%goalCheckInterval == 0) {
			if goal.IsGoalMet(champion) {
				p.Logger.Info("goal achieved",
					slog.Int("generation", p.generation),
					slog.Float64("fitness", champion.Fitness))
				result.Best = champion.Copy()
				result.GoalMet = true
				return result, nil
			}
		}
	}
	return result, nil
}

// evolveTrackingChampion runs Evolve and returns the best genome of the
// generation that was evaluated.
func (p *Population) evolveTrackingChampion() (*Genome, error) {
	var champion *Genome
	evaluator := p.Evaluator
	p.Evaluator = FitnessFunc(func(genomes []*Genome) error {
		if err := evaluator.Evaluate(genomes); err != nil {
			return err
		}
		for _, g := range genomes {
			if champion == nil || g.Fitness > champion.Fitness {
				champion = g
			}
		}
		return nil
	})
	defer func() { p.Evaluator = evaluator }()

	if err := p.Evolve(); err != nil {
		return nil, err
	}
	return champion, nil
}
