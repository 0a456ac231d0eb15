package neat

import (
	"math"
	"math/rand"
)

// CreateNewPopulation seeds popSize genomes holding only the input and output
// nodes. Each genome gets either one random input->output connection, or the
// full input x output bipartite set when StartFullyConnected is set.
func CreateNewPopulation(config *Config, tracker *InnovationTracker, rng *rand.Rand) []*Genome {
	genomes := make([]*Genome, 0, config.PopulationSize)
	for i := 0; i < config.PopulationSize; i++ {
		genomes = append(genomes, newSeedGenome(config, tracker, rng))
	}
	return genomes
}

func newSeedGenome(config *Config, tracker *InnovationTracker, rng *rand.Rand) *Genome {
	g := NewGenome()
	inputs := config.InputNodeIDs()
	outputs := config.OutputNodeIDs()
	for _, id := range inputs {
		g.AddNode(&NodeGene{ID: id, Type: InputNode})
	}
	for _, id := range outputs {
		g.AddNode(&NodeGene{ID: id, Type: OutputNode})
	}

	if config.StartFullyConnected {
		for _, in := range inputs {
			for _, out := range outputs {
				g.AddConnection(&ConnectionGene{
					InNodeID:   in,
					OutNodeID:  out,
					Weight:     uniform(rng, config.NewConnectionWeightRange),
					Enabled:    true,
					Innovation: tracker.InnovationNumber(in, out),
				})
			}
		}
		return g
	}

	in := inputs[rng.Intn(len(inputs))]
	out := outputs[rng.Intn(len(outputs))]
	g.AddConnection(&ConnectionGene{
		InNodeID:   in,
		OutNodeID:  out,
		Weight:     uniform(rng, config.NewConnectionWeightRange),
		Enabled:    true,
		Innovation: tracker.InnovationNumber(in, out),
	})
	return g
}

// computeOffspringQuotas gives each species round(speciesSum/total*popSize)
// offspring, where the sums are of member adjusted fitness. A non-positive
// total yields zero quotas; the caller tops up the shortfall.
func computeOffspringQuotas(species []*Species, popSize int) []int {
	sums := make([]float64, len(species))
	total := 0.0
	for i, s := range species {
		sums[i] = s.AdjustedFitnessSum()
		total += sums[i]
	}

	quotas := make([]int, len(species))
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return quotas
	}
	for i, sum := range sums {
		quotas[i] = max(0, int(math.Round(sum/total*float64(popSize))))
	}
	return quotas
}

// reproduce builds the next generation from the surviving species. It
// returns nil when there are no species left to breed from.
func (p *Population) reproduce() []*Genome {
	if len(p.species) == 0 {
		return nil
	}

	popSize := p.Config.PopulationSize
	quotas := computeOffspringQuotas(p.species, popSize)

	next := make([]*Genome, 0, popSize)
	for i, s := range p.species {
		if quotas[i] > 0 {
			next = append(next, s.GenerateOffspring(quotas[i], p.Config, p.tracker, p.rng)...)
		}
	}

	// Rounding can leave the generation short.
	for len(next) < popSize {
		s := p.species[p.rng.Intn(len(p.species))]
		next = append(next, s.GenerateOffspring(1, p.Config, p.tracker, p.rng)...)
	}

	if len(next) > popSize {
		next = next[:popSize]
	}
	return next
}
