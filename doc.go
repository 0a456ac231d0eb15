// Package neat provides a Go implementation of the NeuroEvolution of Augmenting Topologies (NEAT) algorithm.
//
// NEAT evolves both the weights and the structure of neural networks. Genes
// carry historical markings (innovation numbers) so that genomes with
// different topologies can be aligned for crossover and compared for
// speciation, and new structure is protected inside species until it has had
// time to optimize.
//
// The library lives in three packages:
//
//   - neat: genomes, mutation, crossover, speciation and the population loop
//   - neat/nn: compiles a genome into a feed-forward or recurrent network
//   - neat/store: records run statistics and champions in SQLite or memory
//
// Basic usage:
//
//	config, err := neat.LoadConfig("config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	evaluator := &neat.ParallelEvaluator{Score: func(g *neat.Genome) (float64, error) {
//		net, err := nn.Create(g, config)
//		if errors.Is(err, nn.ErrCycle) {
//			return 0, nil
//		}
//		if err != nil {
//			return 0, err
//		}
//		// ... activate net and compute a non-negative fitness
//	}}
//
//	pop, err := neat.NewPopulation(config, evaluator)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	result, err := pop.Run(100, neat.GoalFunc(func(g *neat.Genome) bool {
//		return g.Fitness > 15.9
//	}), 1, nil)
//	if err != nil {
//		log.Fatalf("Error running evolution: %v", err)
//	}
//	fmt.Println(result.Best.TopologyString())
package neat
