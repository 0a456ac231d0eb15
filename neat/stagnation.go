package neat

import "log/slog"

// updateAndCullSpecies computes adjusted fitness and stagnation for every
// species, then removes the ones stagnant for longer than
// SpeciesStagnationLimit. Nothing is culled when only one species exists.
// Every species may be removed at once, which the caller treats as
// extinction.
func (p *Population) updateAndCullSpecies() {
	for _, s := range p.species {
		s.CalculateAdjustedFitness()
		s.UpdateStagnation()
	}

	if len(p.species) <= 1 {
		return
	}

	remaining := p.species[:0]
	for _, s := range p.species {
		if s.GenerationsWithoutImprovement > p.Config.SpeciesStagnationLimit {
			p.Logger.Info("species removed due to stagnation",
				slog.Int("species", s.ID),
				slog.Int("generations_without_improvement", s.GenerationsWithoutImprovement),
				slog.Int("members", len(s.Members)))
			continue
		}
		remaining = append(remaining, s)
	}
	clear(p.species[len(remaining):])
	p.species = remaining
}
