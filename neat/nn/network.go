// Package nn compiles NEAT genomes into runnable neural networks.
package nn

import (
	"errors"
	"fmt"
	"sort"

	"github.com/neatlab/neat-go/neat"
)

var (
	// ErrCycle is returned by Create when recurrence is disabled and the
	// enabled connections of a genome form a cycle.
	ErrCycle = errors.New("network contains a cycle")
	// ErrInputSize is returned when the number of inputs passed to Activate
	// does not match the number of input neurons.
	ErrInputSize = errors.New("input size mismatch")
)

// Synapse is a weighted incoming edge. From indexes the owning network's
// neuron slice.
type Synapse struct {
	From   int
	Weight float64
}

// Neuron is one node of a compiled network.
type Neuron struct {
	ID     int
	Type   neat.NodeType
	Inputs []Synapse
	Value  float64

	activation neat.ActivationFunc
}

// Network is the phenotype built from a genome. It owns its neurons and is
// not safe for concurrent use; build one per evaluation.
type Network struct {
	neurons     []Neuron
	index       map[int]int // node ID -> position in neurons
	inputs      []int       // neuron positions, ordered by node ID
	outputs     []int
	evalOrder   []int // non-input neurons in topological order (feed-forward only)
	isRecurrent bool
}

// Create builds a network from the genome's nodes and enabled connections.
// Neurons are laid out by ascending node ID. When config.AllowRecurrent is
// false the neurons are topologically sorted and a cycle among enabled
// connections fails with ErrCycle.
func Create(g *neat.Genome, config *neat.Config) (*Network, error) {
	net := &Network{
		index:       make(map[int]int, len(g.Nodes)),
		isRecurrent: config.AllowRecurrent,
	}

	hiddenFn := config.HiddenActivationFunc()
	outputFn := config.OutputActivationFunc()
	for _, node := range g.SortedNodes() {
		n := Neuron{ID: node.ID, Type: node.Type}
		switch node.Type {
		case neat.InputNode:
			net.inputs = append(net.inputs, len(net.neurons))
		case neat.OutputNode:
			n.activation = outputFn
			net.outputs = append(net.outputs, len(net.neurons))
		default:
			n.activation = hiddenFn
		}
		net.index[node.ID] = len(net.neurons)
		net.neurons = append(net.neurons, n)
	}

	for _, conn := range g.SortedConnections() {
		if !conn.Enabled {
			continue
		}
		from, okFrom := net.index[conn.InNodeID]
		to, okTo := net.index[conn.OutNodeID]
		if !okFrom || !okTo {
			// Dangling connection; nothing to wire it to.
			continue
		}
		net.neurons[to].Inputs = append(net.neurons[to].Inputs, Synapse{From: from, Weight: conn.Weight})
	}

	if !net.isRecurrent {
		order, err := net.topologicalOrder()
		if err != nil {
			return nil, err
		}
		net.evalOrder = order
	}
	return net, nil
}

// topologicalOrder runs Kahn's algorithm over the enabled edges. The queue is
// kept sorted so the order is deterministic. Input neurons are left out of
// the result.
func (n *Network) topologicalOrder() ([]int, error) {
	inDegree := make([]int, len(n.neurons))
	outgoing := make([][]int, len(n.neurons))
	for to := range n.neurons {
		for _, s := range n.neurons[to].Inputs {
			inDegree[to]++
			outgoing[s.From] = append(outgoing[s.From], to)
		}
	}

	queue := []int{}
	for i, d := range inDegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}

	sorted := make([]int, 0, len(n.neurons))
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		sorted = append(sorted, u)

		for _, v := range outgoing[u] {
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
		sort.Ints(queue)
	}

	if len(sorted) != len(n.neurons) {
		return nil, fmt.Errorf("%w: sorted %d of %d nodes", ErrCycle, len(sorted), len(n.neurons))
	}

	order := make([]int, 0, len(sorted))
	for _, i := range sorted {
		if n.neurons[i].Type != neat.InputNode {
			order = append(order, i)
		}
	}
	return order, nil
}

// Activate runs the network once for a feed-forward network, or for two
// steps for a recurrent one.
func (n *Network) Activate(inputs []float64) ([]float64, error) {
	steps := 1
	if n.isRecurrent {
		steps = 2
	}
	return n.ActivateSteps(inputs, steps)
}

// ActivateSteps sets the input values and propagates them. Feed-forward
// networks ignore steps. Recurrent networks start every call from zeroed
// neuron values and run steps synchronous updates, where each neuron reads
// only the values from before the current step. The snapshot is taken
// before the inputs are clamped, so inputs reach their targets one step
// late. Outputs are returned in ascending output node ID order.
func (n *Network) ActivateSteps(inputs []float64, steps int) ([]float64, error) {
	if len(inputs) != len(n.inputs) {
		return nil, fmt.Errorf("%w: expected %d inputs, got %d", ErrInputSize, len(n.inputs), len(inputs))
	}

	if n.isRecurrent {
		n.activateRecurrent(inputs, steps)
	} else {
		n.activateFeedForward(inputs)
	}

	outputs := make([]float64, len(n.outputs))
	for i, idx := range n.outputs {
		outputs[i] = n.neurons[idx].Value
	}
	return outputs, nil
}

func (n *Network) activateFeedForward(inputs []float64) {
	for i, idx := range n.inputs {
		n.neurons[idx].Value = inputs[i]
	}
	for _, idx := range n.evalOrder {
		neuron := &n.neurons[idx]
		sum := 0.0
		for _, s := range neuron.Inputs {
			sum += s.Weight * n.neurons[s.From].Value
		}
		neuron.Value = neuron.activation(sum)
	}
}

func (n *Network) activateRecurrent(inputs []float64, steps int) {
	for i := range n.neurons {
		n.neurons[i].Value = 0
	}

	snapshot := make([]float64, len(n.neurons))
	for step := 0; step < steps; step++ {
		for i := range n.neurons {
			snapshot[i] = n.neurons[i].Value
		}
		for i, idx := range n.inputs {
			n.neurons[idx].Value = inputs[i]
		}
		for i := range n.neurons {
			neuron := &n.neurons[i]
			if neuron.Type == neat.InputNode {
				continue
			}
			sum := 0.0
			for _, s := range neuron.Inputs {
				sum += s.Weight * snapshot[s.From]
			}
			neuron.Value = neat.Sigmoid(sum)
		}
	}
}

// IsRecurrent reports whether the network was built with recurrence allowed.
func (n *Network) IsRecurrent() bool { return n.isRecurrent }

// NumInputs returns the number of input neurons.
func (n *Network) NumInputs() int { return len(n.inputs) }

// NumOutputs returns the number of output neurons.
func (n *Network) NumOutputs() int { return len(n.outputs) }

// Neurons returns the compiled neurons in node ID order.
func (n *Network) Neurons() []Neuron { return n.neurons }
