package neat

import "sync"

// connectionKey identifies a structural edge for innovation lookup.
type connectionKey struct {
	in, out int
}

// InnovationTracker hands out node IDs and innovation numbers for one
// evolutionary run. Structural mutations that add the same (in, out) edge
// during one generation share an innovation number; the cache is cleared
// between generations while the counters keep growing.
//
// All methods are safe for concurrent use.
type InnovationTracker struct {
	mu             sync.Mutex
	nextNodeID     int
	nextInnovation int
	innovations    map[connectionKey]int
}

// NewInnovationTracker creates a tracker whose first hidden node ID follows
// the input and output node IDs (inputs 0..n-1, outputs n..n+m-1).
func NewInnovationTracker(inputNodes, outputNodes int) *InnovationTracker {
	return &InnovationTracker{
		nextNodeID:  inputNodes + outputNodes,
		innovations: make(map[connectionKey]int),
	}
}

// InnovationNumber returns the innovation number for the edge in->out,
// reusing the one handed out earlier this generation if there is one.
func (t *InnovationTracker) InnovationNumber(in, out int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := connectionKey{in: in, out: out}
	if innov, ok := t.innovations[key]; ok {
		return innov
	}
	innov := t.nextInnovation
	t.nextInnovation++
	t.innovations[key] = innov
	return innov
}

// NodeID allocates the next hidden node ID.
func (t *InnovationTracker) NodeID() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextNodeID
	t.nextNodeID++
	return id
}

// ResetForNextGeneration clears the per-generation edge cache. Counters are
// left untouched.
func (t *InnovationTracker) ResetForNextGeneration() {
	t.mu.Lock()
	defer t.mu.Unlock()

	clear(t.innovations)
}

// PrimeFromPopulation advances both counters past the largest node ID and
// innovation number found in genomes, so genomes loaded from disk never
// collide with new mutations.
func (t *InnovationTracker) PrimeFromPopulation(genomes []*Genome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	maxNodeID, maxInnovation := -1, -1
	for _, g := range genomes {
		for id := range g.Nodes {
			maxNodeID = max(maxNodeID, id)
		}
		for innov := range g.Connections {
			maxInnovation = max(maxInnovation, innov)
		}
	}
	if maxNodeID+1 > t.nextNodeID {
		t.nextNodeID = maxNodeID + 1
	}
	if maxInnovation+1 > t.nextInnovation {
		t.nextInnovation = maxInnovation + 1
	}
}

// Counters reports the next node ID and next innovation number.
func (t *InnovationTracker) Counters() (nextNodeID, nextInnovation int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nextNodeID, t.nextInnovation
}

// restore sets both counters; used when loading a checkpoint.
func (t *InnovationTracker) restore(nextNodeID, nextInnovation int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextNodeID = nextNodeID
	t.nextInnovation = nextInnovation
	clear(t.innovations)
}
