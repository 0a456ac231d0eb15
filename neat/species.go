package neat

import (
	"math"
	"math/rand"
	"sort"
)

// Species represents a group of genetically similar genomes.
type Species struct {
	ID                            int
	Members                       []*Genome
	Representative                *Genome // Compared against during speciation; not owned.
	TopFitness                    float64 // Best raw fitness seen since the last Reset.
	GenerationsWithoutImprovement int
}

// NewSpecies creates a species with representative as its first member.
func NewSpecies(id int, representative *Genome) *Species {
	s := &Species{ID: id, Representative: representative}
	s.AddMember(representative)
	return s
}

// AddMember appends a genome to the species.
func (s *Species) AddMember(g *Genome) {
	s.Members = append(s.Members, g)
}

// CalculateAdjustedFitness applies explicit fitness sharing: each member's
// adjusted fitness is its raw fitness divided by the species size.
func (s *Species) CalculateAdjustedFitness() {
	n := float64(len(s.Members))
	for _, g := range s.Members {
		g.AdjustedFitness = g.Fitness / n
	}
}

// AdjustedFitnessSum returns the total adjusted fitness of all members.
func (s *Species) AdjustedFitnessSum() float64 {
	sum := 0.0
	for _, g := range s.Members {
		sum += g.AdjustedFitness
	}
	return sum
}

// AverageFitness returns the mean raw fitness of the members.
func (s *Species) AverageFitness() float64 {
	return Mean(s.fitnesses())
}

// UpdateStagnation resets the stagnation counter if the best member beats
// TopFitness, otherwise increments it.
func (s *Species) UpdateStagnation() {
	current := 0.0
	if len(s.Members) > 0 {
		current = MaxFloat(s.fitnesses())
	}
	if current > s.TopFitness {
		s.TopFitness = current
		s.GenerationsWithoutImprovement = 0
	} else {
		s.GenerationsWithoutImprovement++
	}
}

// GenerateOffspring produces count genomes for the next generation. The top
// ceil(len(Members)*SpeciesElitismFraction) members are carried over
// unchanged (as copies); the rest come from crossover of two random members
// (with probability CrossoverRate, when there are at least two) or a copy of
// one, and are mutated once.
func (s *Species) GenerateOffspring(count int, config *Config, tracker *InnovationTracker, rng *rand.Rand) []*Genome {
	if count <= 0 || len(s.Members) == 0 {
		return nil
	}
	offspring := make([]*Genome, 0, count)

	sort.SliceStable(s.Members, func(i, j int) bool {
		return s.Members[i].Fitness > s.Members[j].Fitness
	})

	eliteCount := int(math.Ceil(float64(len(s.Members)) * config.SpeciesElitismFraction))
	eliteCount = min(eliteCount, count, len(s.Members))
	for i := 0; i < eliteCount; i++ {
		offspring = append(offspring, s.Members[i].Copy())
	}

	for i := eliteCount; i < count; i++ {
		var child *Genome
		if rng.Float64() < config.CrossoverRate && len(s.Members) > 1 {
			parent1 := s.selectParent(rng)
			parent2 := s.selectParent(rng)
			child = Crossover(parent1, parent2, rng)
		} else {
			child = s.selectParent(rng).Copy()
		}
		child.Mutate(config, tracker, rng)
		offspring = append(offspring, child)
	}
	return offspring
}

// selectParent picks a member uniformly at random.
func (s *Species) selectParent(rng *rand.Rand) *Genome {
	return s.Members[rng.Intn(len(s.Members))]
}

// Reset prepares the species for the next speciation pass: a new
// representative is drawn from the current members (the old one is kept if
// there are none), membership is cleared and TopFitness drops to zero.
func (s *Species) Reset(rng *rand.Rand) {
	if len(s.Members) > 0 {
		s.Representative = s.selectParent(rng)
	}
	s.Members = nil
	s.TopFitness = 0
}

func (s *Species) fitnesses() []float64 {
	fitnesses := make([]float64, 0, len(s.Members))
	for _, g := range s.Members {
		fitnesses = append(fitnesses, g.Fitness)
	}
	return fitnesses
}
