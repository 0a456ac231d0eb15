package neat

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrSerialization is returned (wrapped) by every genome encode/decode failure.
var ErrSerialization = errors.New("genome serialization failed")

type nodeRecord struct {
	ID   int      `json:"id"`
	Type NodeType `json:"type"`
}

type connectionRecord struct {
	InNodeID   int     `json:"inNodeId"`
	OutNodeID  int     `json:"outNodeId"`
	Weight     float64 `json:"weight"`
	Enabled    bool    `json:"enabled"`
	Innovation int     `json:"innovationNumber"`
}

type genomeRecord struct {
	Nodes           []nodeRecord       `json:"nodes"`
	Connections     []connectionRecord `json:"connections"`
	Fitness         float64            `json:"fitness"`
	AdjustedFitness float64            `json:"adjustedFitness"`
}

// MarshalJSON encodes nodes ordered by ID and connections ordered by
// innovation number.
func (g *Genome) MarshalJSON() ([]byte, error) {
	rec := genomeRecord{
		Nodes:           make([]nodeRecord, 0, len(g.Nodes)),
		Connections:     make([]connectionRecord, 0, len(g.Connections)),
		Fitness:         g.Fitness,
		AdjustedFitness: g.AdjustedFitness,
	}
	for _, n := range g.SortedNodes() {
		rec.Nodes = append(rec.Nodes, nodeRecord{ID: n.ID, Type: n.Type})
	}
	for _, c := range g.SortedConnections() {
		rec.Connections = append(rec.Connections, connectionRecord{
			InNodeID:   c.InNodeID,
			OutNodeID:  c.OutNodeID,
			Weight:     c.Weight,
			Enabled:    c.Enabled,
			Innovation: c.Innovation,
		})
	}
	return json.Marshal(rec)
}

// UnmarshalJSON rebuilds the genome from the encoding produced by MarshalJSON.
func (g *Genome) UnmarshalJSON(data []byte) error {
	var rec genomeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	*g = *NewGenome()
	for _, n := range rec.Nodes {
		g.AddNode(&NodeGene{ID: n.ID, Type: n.Type})
	}
	for _, c := range rec.Connections {
		if _, dup := g.Connections[c.Innovation]; dup {
			return fmt.Errorf("duplicate innovation number %d", c.Innovation)
		}
		g.AddConnection(&ConnectionGene{
			InNodeID:   c.InNodeID,
			OutNodeID:  c.OutNodeID,
			Weight:     c.Weight,
			Enabled:    c.Enabled,
			Innovation: c.Innovation,
		})
	}
	g.Fitness = rec.Fitness
	g.AdjustedFitness = rec.AdjustedFitness
	return nil
}

// ToJSON encodes the genome as indented JSON.
func (g *Genome) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %w", ErrSerialization, err)
	}
	return data, nil
}

// GenomeFromJSON decodes a genome produced by ToJSON.
func GenomeFromJSON(data []byte) (*Genome, error) {
	g := NewGenome()
	if err := json.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrSerialization, err)
	}
	return g, nil
}

// SaveGenomeFile writes the genome as JSON to filePath.
func SaveGenomeFile(g *Genome, filePath string) error {
	data, err := g.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("%w: write '%s': %w", ErrSerialization, filePath, err)
	}
	return nil
}

// LoadGenomeFile reads a genome written by SaveGenomeFile.
func LoadGenomeFile(filePath string) (*Genome, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read '%s': %w", ErrSerialization, filePath, err)
	}
	return GenomeFromJSON(data)
}
