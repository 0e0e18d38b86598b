package pawian

import (
	"fmt"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/mat"
)

// EventSet is the event-indexed table behind a Pawian momentum-tuple
// file: an ordered set of particles, one FourVecs block per particle,
// and optionally one weight per event. The schema, meaning the
// particles, the event count and the weight presence, is validated at
// construction and stays fixed; the numbers themselves may change.
type EventSet struct {
	names   []string
	blocks  []*FourVecs
	weights []float64
}

// NewEventSet returns a zeroed table for the given particles and number
// of events, without weights, keeping the particle order as given.
func NewEventSet(names []string, events int) (*EventSet, error) {
	blocks := make([]*FourVecs, len(names))
	for i := range blocks {
		blocks[i] = NewFourVecs(events)
	}
	set, err := EventSetFrom(names, blocks, nil)
	if err != nil {
		return nil, errDecorate(err, "NewEventSet")
	}
	return set, nil
}

// EventSetFrom assembles a table from per-particle blocks, which must
// all hold the same number of events, and optional per-event weights.
// The set takes ownership of its arguments and names each block after
// its particle.
func EventSetFrom(names []string, blocks []*FourVecs, weights []float64) (*EventSet, error) {
	if len(names) == 0 {
		return nil, &SchemaError{message: "a set needs at least one particle"}
	}
	if len(blocks) != len(names) {
		return nil, &SchemaError{message: fmt.Sprintf("%d particles but %d momentum blocks", len(names), len(blocks))}
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return nil, &SchemaError{message: "empty particle name"}
		}
		if name == WeightLabel {
			return nil, &SchemaError{message: fmt.Sprintf("%q is reserved for the weight column", WeightLabel)}
		}
		if seen[name] {
			return nil, &SchemaError{message: fmt.Sprintf("duplicate particle %q", name)}
		}
		seen[name] = true
	}
	events := blocks[0].Events()
	for i, b := range blocks {
		if b.Events() != events {
			return nil, &SchemaError{message: fmt.Sprintf("particle %q has %d events while %q has %d", names[i], b.Events(), names[0], events)}
		}
	}
	if weights != nil && len(weights) != events {
		return nil, &SchemaError{message: fmt.Sprintf("%d weights for %d events", len(weights), events)}
	}
	for i, b := range blocks {
		b.name = names[i]
	}
	return &EventSet{names: names, blocks: blocks, weights: weights}, nil
}

// Len returns the number of events in the set.
func (e *EventSet) Len() int {
	if len(e.blocks) == 0 {
		return 0
	}
	return e.blocks[0].Events()
}

// Particles returns the particle names, in table order.
func (e *EventSet) Particles() []string {
	p := make([]string, len(e.names))
	copy(p, e.names)
	return p
}

// HasWeights reports whether the events carry weights.
func (e *EventSet) HasWeights() bool {
	return e.weights != nil
}

// Weights returns the per-event weights. Querying a set that carries
// none is an ErrNoWeights.
func (e *EventSet) Weights() ([]float64, error) {
	if e.weights == nil {
		return nil, fmt.Errorf("pawian: %w", ErrNoWeights)
	}
	return e.weights, nil
}

// Intensities returns the weights under the name partial-wave analysis
// uses for them.
func (e *EventSet) Intensities() ([]float64, error) {
	return e.Weights()
}

// SetWeights attaches one weight per event to the set.
func (e *EventSet) SetWeights(w []float64) error {
	if len(w) != e.Len() {
		return &SchemaError{message: fmt.Sprintf("%d weights for %d events", len(w), e.Len())}
	}
	e.weights = w
	return nil
}

// Particle returns the block of the named particle. Asking for a
// particle the set does not have is an ErrUnknownParticle.
func (e *EventSet) Particle(name string) (*FourVecs, error) {
	for i, n := range e.names {
		if n == name {
			return e.blocks[i], nil
		}
	}
	return nil, fmt.Errorf("pawian: %w %q, the set has %v", ErrUnknownParticle, name, e.names)
}

// P4 returns the four-momentum of the named particle in event i.
func (e *EventSet) P4(name string, i int) (fmom.PxPyPzE, error) {
	b, err := e.Particle(name)
	if err != nil {
		return fmom.PxPyPzE{}, err
	}
	return b.P4(i), nil
}

// gather evaluates a per-block column function for every particle and
// collects the results, one column per particle in Particles order.
func (e *EventSet) gather(f func(*FourVecs, ...[]float64) []float64) *mat.Dense {
	n := e.Len()
	if n == 0 {
		return nil
	}
	out := mat.NewDense(n, len(e.blocks), nil)
	col := make([]float64, n)
	for j, b := range e.blocks {
		out.SetCol(j, f(b, col))
	}
	return out
}

// Energy returns the energies of all particles, one column per particle
// in Particles order, or nil for an empty set.
func (e *EventSet) Energy() *mat.Dense {
	return e.gather((*FourVecs).Energy)
}

// Rho2 returns the squared spatial-momentum moduli of all particles,
// one column per particle in Particles order.
func (e *EventSet) Rho2() *mat.Dense {
	return e.gather((*FourVecs).Rho2)
}

// Rho returns the spatial-momentum moduli of all particles, one column
// per particle in Particles order.
func (e *EventSet) Rho() *mat.Dense {
	return e.gather((*FourVecs).Rho)
}

// Mass2 returns the squared invariant masses of all particles, one
// column per particle in Particles order.
func (e *EventSet) Mass2() *mat.Dense {
	return e.gather((*FourVecs).Mass2)
}

// Mass returns the invariant masses of all particles, one column per
// particle in Particles order. Spacelike entries come out as NaN.
func (e *EventSet) Mass() *mat.Dense {
	return e.gather((*FourVecs).Mass)
}

// PxPyPz returns views of the three spatial-momentum columns of every
// particle, in Particles order.
func (e *EventSet) PxPyPz() []mat.Matrix {
	views := make([]mat.Matrix, len(e.blocks))
	for i, b := range e.blocks {
		views[i] = b.PxPyPz()
	}
	return views
}
