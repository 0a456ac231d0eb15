package neat

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Genome represents an individual organism in the population.
// It consists of NodeGenes and ConnectionGenes.
type Genome struct {
	Nodes           map[int]*NodeGene       // Map node ID -> NodeGene
	Connections     map[int]*ConnectionGene // Map innovation number -> ConnectionGene
	Fitness         float64
	AdjustedFitness float64 // Fitness divided by the size of the genome's species.
}

// NewGenome creates an empty Genome.
func NewGenome() *Genome {
	return &Genome{
		Nodes:       make(map[int]*NodeGene),
		Connections: make(map[int]*ConnectionGene),
	}
}

func (g *Genome) initMaps() {
	if g.Nodes == nil {
		g.Nodes = make(map[int]*NodeGene)
	}
	if g.Connections == nil {
		g.Connections = make(map[int]*ConnectionGene)
	}
}

// AddNode inserts (or replaces) a node gene keyed by its ID.
func (g *Genome) AddNode(node *NodeGene) {
	g.Nodes[node.ID] = node
}

// AddConnection inserts (or replaces) a connection gene keyed by its
// innovation number. A genome holds at most one gene per innovation number.
func (g *Genome) AddConnection(conn *ConnectionGene) {
	g.Connections[conn.Innovation] = conn
}

// SortedNodes returns the node genes ordered by ID.
func (g *Genome) SortedNodes() []*NodeGene {
	nodes := make([]*NodeGene, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// SortedConnections returns the connection genes ordered by innovation number.
// Crossover and compatibility distance walk this order.
func (g *Genome) SortedConnections() []*ConnectionGene {
	conns := make([]*ConnectionGene, 0, len(g.Connections))
	for _, c := range g.Connections {
		conns = append(conns, c)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].Innovation < conns[j].Innovation })
	return conns
}

// Copy returns a deep copy of the genome, fitness values included.
func (g *Genome) Copy() *Genome {
	c := NewGenome()
	for id, n := range g.Nodes {
		c.Nodes[id] = n.Copy()
	}
	for innov, conn := range g.Connections {
		c.Connections[innov] = conn.Copy()
	}
	c.Fitness = g.Fitness
	c.AdjustedFitness = g.AdjustedFitness
	return c
}

// Crossover creates a child from two parents. The fitter parent (parent1 on a
// tie) contributes all of its nodes and all of its disjoint and excess
// connections; matching connections are taken whole from a randomly chosen
// parent. Genes found only in the weaker parent are dropped.
func Crossover(parent1, parent2 *Genome, rng *rand.Rand) *Genome {
	fitter, weaker := parent1, parent2
	if parent2.Fitness > parent1.Fitness {
		fitter, weaker = parent2, parent1
	}

	child := NewGenome()
	for id, n := range fitter.Nodes {
		child.Nodes[id] = n.Copy()
	}

	genes1 := fitter.SortedConnections()
	genes2 := weaker.SortedConnections()
	i, j := 0, 0
	for i < len(genes1) {
		if j >= len(genes2) || genes1[i].Innovation < genes2[j].Innovation {
			// Disjoint or excess gene from the fitter parent.
			child.AddConnection(genes1[i].Copy())
			i++
			continue
		}
		if genes1[i].Innovation > genes2[j].Innovation {
			j++
			continue
		}
		if rng.Intn(2) == 0 {
			child.AddConnection(genes1[i].Copy())
		} else {
			child.AddConnection(genes2[j].Copy())
		}
		i++
		j++
	}
	return child
}

// Mutate applies each mutation operator independently with its configured
// probability, in a fixed order: weight, add connection, add node, toggle.
func (g *Genome) Mutate(config *Config, tracker *InnovationTracker, rng *rand.Rand) {
	if rng.Float64() < config.WeightMutationRate {
		g.mutateWeight(config, rng)
	}
	if rng.Float64() < config.AddConnectionRate {
		g.mutateAddConnection(config, tracker, rng)
	}
	if rng.Float64() < config.AddNodeRate {
		g.mutateAddNode(config, tracker, rng)
	}
	if rng.Float64() < config.ToggleEnableRate {
		g.mutateToggleEnable(rng)
	}
}

// mutateWeight perturbs or replaces the weight of one random connection.
func (g *Genome) mutateWeight(config *Config, rng *rand.Rand) {
	conns := g.SortedConnections()
	if len(conns) == 0 {
		return
	}
	gene := conns[rng.Intn(len(conns))]
	if rng.Float64() < config.WeightShiftRate {
		gene.Weight += uniform(rng, 1.0) * config.WeightShiftStrength
	} else {
		gene.Weight = uniform(rng, config.NewConnectionWeightRange)
	}
}

// mutateAddConnection attempts to add a new connection between two
// previously unconnected nodes.
func (g *Genome) mutateAddConnection(config *Config, tracker *InnovationTracker, rng *rand.Rand) {
	possibleInputs := g.SortedNodes()
	possibleOutputs := make([]*NodeGene, 0, len(possibleInputs))
	for _, n := range possibleInputs {
		if n.Type != InputNode {
			possibleOutputs = append(possibleOutputs, n)
		}
	}
	if len(possibleInputs) == 0 || len(possibleOutputs) == 0 {
		return
	}

	for i := 0; i < config.AddConnectionAttempts; i++ {
		from := possibleInputs[rng.Intn(len(possibleInputs))]
		to := possibleOutputs[rng.Intn(len(possibleOutputs))]

		if from.ID == to.ID || g.connectionExists(from.ID, to.ID) {
			continue
		}
		// A path from the target back to the source means the new edge closes a cycle.
		if !config.AllowRecurrent && g.pathExists(to.ID, from.ID) {
			continue
		}

		weight := uniform(rng, config.NewConnectionWeightRange)
		innov := tracker.InnovationNumber(from.ID, to.ID)
		g.AddConnection(&ConnectionGene{
			InNodeID:   from.ID,
			OutNodeID:  to.ID,
			Weight:     weight,
			Enabled:    true,
			Innovation: innov,
		})
		return
	}
}

// mutateAddNode splits a random enabled connection with a new hidden node.
// The incoming link gets the configured weight, the outgoing link keeps the
// original weight.
func (g *Genome) mutateAddNode(config *Config, tracker *InnovationTracker, rng *rand.Rand) {
	enabled := make([]*ConnectionGene, 0, len(g.Connections))
	for _, c := range g.SortedConnections() {
		if c.Enabled {
			enabled = append(enabled, c)
		}
	}
	if len(enabled) == 0 {
		return
	}

	old := enabled[rng.Intn(len(enabled))]
	old.Enabled = false

	newNodeID := tracker.NodeID()
	g.AddNode(&NodeGene{ID: newNodeID, Type: HiddenNode})

	in1 := tracker.InnovationNumber(old.InNodeID, newNodeID)
	in2 := tracker.InnovationNumber(newNodeID, old.OutNodeID)

	g.AddConnection(&ConnectionGene{
		InNodeID:   old.InNodeID,
		OutNodeID:  newNodeID,
		Weight:     config.AddNodeNewLinkWeight,
		Enabled:    true,
		Innovation: in1,
	})
	g.AddConnection(&ConnectionGene{
		InNodeID:   newNodeID,
		OutNodeID:  old.OutNodeID,
		Weight:     old.Weight,
		Enabled:    true,
		Innovation: in2,
	})
}

// mutateToggleEnable flips the enabled flag of one random connection.
// Re-enabling is not checked for cycles; the add-connection check already
// considers disabled edges.
func (g *Genome) mutateToggleEnable(rng *rand.Rand) {
	conns := g.SortedConnections()
	if len(conns) == 0 {
		return
	}
	gene := conns[rng.Intn(len(conns))]
	gene.Enabled = !gene.Enabled
}

func (g *Genome) connectionExists(in, out int) bool {
	for _, c := range g.Connections {
		if c.InNodeID == in && c.OutNodeID == out {
			return true
		}
	}
	return false
}

// pathExists reports whether end is reachable from start. Disabled
// connections count, since they may be re-enabled later.
func (g *Genome) pathExists(start, end int) bool {
	if start == end {
		return true
	}

	dg := simple.NewDirectedGraph()
	for _, c := range g.Connections {
		// Self-loops never connect two distinct nodes.
		if c.InNodeID == c.OutNodeID {
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(c.InNodeID), simple.Node(c.OutNodeID)))
	}
	if dg.Node(int64(start)) == nil || dg.Node(int64(end)) == nil {
		return false
	}
	return topo.PathExistsIn(dg, simple.Node(start), simple.Node(end))
}

// CompatibilityDistance measures how structurally and numerically different
// two genomes are:
//
//	d = c1*E/N + c2*D/N + c3*W
//
// E and D count excess and disjoint genes, W is the mean absolute weight
// difference of matching genes, and N is the larger connection count (1 when
// below 20).
func CompatibilityDistance(g1, g2 *Genome, config *Config) float64 {
	genes1 := g1.SortedConnections()
	genes2 := g2.SortedConnections()

	excess, disjoint, matching := 0, 0, 0
	weightDiff := 0.0

	i, j := 0, 0
	for i < len(genes1) || j < len(genes2) {
		switch {
		case i >= len(genes1):
			excess++
			j++
		case j >= len(genes2):
			excess++
			i++
		case genes1[i].Innovation == genes2[j].Innovation:
			matching++
			weightDiff += math.Abs(genes1[i].Weight - genes2[j].Weight)
			i++
			j++
		case genes1[i].Innovation < genes2[j].Innovation:
			disjoint++
			i++
		default:
			disjoint++
			j++
		}
	}

	n := max(len(genes1), len(genes2))
	if n < 20 {
		n = 1
	}
	avgWeightDiff := 0.0
	if matching > 0 {
		avgWeightDiff = weightDiff / float64(matching)
	}

	return config.ExcessCoefficient*float64(excess)/float64(n) +
		config.DisjointCoefficient*float64(disjoint)/float64(n) +
		config.WeightDiffCoefficient*avgWeightDiff
}

// Pruned returns a new genome holding only the enabled connections and the
// nodes they touch. With no enabled connections the input and output nodes
// are kept so the genome stays usable.
func (g *Genome) Pruned() *Genome {
	pruned := NewGenome()
	pruned.Fitness = g.Fitness

	for innov, c := range g.Connections {
		if c.Enabled {
			pruned.Connections[innov] = c.Copy()
		}
	}

	if len(pruned.Connections) == 0 {
		for id, n := range g.Nodes {
			if n.Type == InputNode || n.Type == OutputNode {
				pruned.Nodes[id] = n.Copy()
			}
		}
		return pruned
	}

	for _, c := range pruned.Connections {
		for _, id := range []int{c.InNodeID, c.OutNodeID} {
			if n, ok := g.Nodes[id]; ok {
				pruned.Nodes[id] = n.Copy()
			}
		}
	}
	return pruned
}

// TopologyString lists nodes by ID and connections by innovation number.
func (g *Genome) TopologyString() string {
	var sb strings.Builder
	sb.WriteString("Nodes:\n")
	for _, n := range g.SortedNodes() {
		fmt.Fprintf(&sb, "  Node %d: %s\n", n.ID, n.Type)
	}
	sb.WriteString("\nConnections (Innovation, In -> Out, Weight, Enabled):\n")
	for _, c := range g.SortedConnections() {
		state := "D"
		if c.Enabled {
			state = "E"
		}
		fmt.Fprintf(&sb, "  Innov %d: %d -> %d, w=%.3f, %s\n", c.Innovation, c.InNodeID, c.OutNodeID, c.Weight, state)
	}
	return sb.String()
}

// String returns a short summary of the genome.
func (g *Genome) String() string {
	enabled := 0
	for _, c := range g.Connections {
		if c.Enabled {
			enabled++
		}
	}
	return fmt.Sprintf("Genome(Nodes: %d, Connections: %d/%d enabled, Fitness: %.4f)",
		len(g.Nodes), enabled, len(g.Connections), g.Fitness)
}
