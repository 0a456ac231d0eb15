package neat

import (
	"fmt"
	"strings"
)

// NodeType is the role a node plays in the network.
type NodeType int

const (
	InputNode NodeType = iota
	HiddenNode
	OutputNode
)

// String returns the canonical upper-case name used in serialized genomes.
func (t NodeType) String() string {
	switch t {
	case InputNode:
		return "INPUT"
	case HiddenNode:
		return "HIDDEN"
	case OutputNode:
		return "OUTPUT"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t NodeType) MarshalText() ([]byte, error) {
	switch t {
	case InputNode, HiddenNode, OutputNode:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("unknown node type %d", int(t))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *NodeType) UnmarshalText(text []byte) error {
	switch strings.ToUpper(strings.TrimSpace(string(text))) {
	case "INPUT":
		*t = InputNode
	case "HIDDEN":
		*t = HiddenNode
	case "OUTPUT":
		*t = OutputNode
	default:
		return fmt.Errorf("unknown node type %q", string(text))
	}
	return nil
}

// --------------------------- NodeGene ---------------------------

// NodeGene represents a node (neuron) in the genome. Two genomes holding a
// NodeGene with the same ID refer to the same historical node.
type NodeGene struct {
	ID   int
	Type NodeType
}

// String returns a string representation of the NodeGene.
func (ng *NodeGene) String() string {
	return fmt.Sprintf("NodeGene(ID: %d, Type: %s)", ng.ID, ng.Type)
}

// Copy creates a copy of the NodeGene.
func (ng *NodeGene) Copy() *NodeGene {
	return &NodeGene{ID: ng.ID, Type: ng.Type}
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionGene is a directed, weighted edge between two nodes, stamped with
// the innovation number it received when it first appeared.
type ConnectionGene struct {
	InNodeID   int
	OutNodeID  int
	Weight     float64
	Enabled    bool
	Innovation int
}

// String returns a string representation of the ConnectionGene.
func (cg *ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(Innov: %d, %d->%d, Weight: %.3f, Enabled: %t)",
		cg.Innovation, cg.InNodeID, cg.OutNodeID, cg.Weight, cg.Enabled)
}

// Copy creates a deep copy of the ConnectionGene.
func (cg *ConnectionGene) Copy() *ConnectionGene {
	c := *cg
	return &c
}
