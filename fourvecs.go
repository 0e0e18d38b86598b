package pawian

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/mat"
)

// Labels of the energy component and of the weight pseudo-column, as
// they appear in the ROOT trees that accompany the ASCII format.
const (
	EnergyLabel = "E"
	WeightLabel = "weight"
)

// the four momentum components of a block, in storage order
const ncomp = 4

// MomentumLabels returns the labels of the four momentum-component
// columns, in storage order. The weight label is not among them.
func MomentumLabels() []string {
	return []string{"p_x", "p_y", "p_z", EnergyLabel}
}

// FourVecs is a block of four-momenta: one row per event, the four
// components p_x, p_y, p_z, E as columns. It is what EventSet stores
// per particle, and it can stand alone as the single-particle slice of
// a set. The embedded matrix gives direct element access; an empty
// block (zero events) has no matrix to address.
type FourVecs struct {
	name string
	*mat.Dense
}

// NewFourVecs returns a zeroed block with room for the given number of
// events. A count of zero (or less) gives an empty block.
func NewFourVecs(events int) *FourVecs {
	if events <= 0 {
		return &FourVecs{}
	}
	return &FourVecs{Dense: mat.NewDense(events, ncomp, nil)}
}

// Name returns the particle name of the block. Blocks sliced off an
// EventSet are named after their particle; a standalone block has no
// name unless one was set.
func (F *FourVecs) Name() string {
	return F.name
}

// SetName names the particle the block belongs to.
func (F *FourVecs) SetName(name string) {
	F.name = name
}

// FourVecsFrom builds a block from a flat, row-major slice of
// four-momentum tuples.
func FourVecsFrom(data []float64) (*FourVecs, error) {
	if len(data) == 0 {
		return &FourVecs{}, nil
	}
	if len(data)%ncomp != 0 {
		return nil, &SchemaError{message: fmt.Sprintf("flat data length %d does not divide into %v tuples", len(data), MomentumLabels())}
	}
	return &FourVecs{Dense: mat.NewDense(len(data)/ncomp, ncomp, data)}, nil
}

// Dense2FourVecs interprets an events×4 matrix as a four-momentum
// block. The columns must hold, in order, the MomentumLabels
// components; a matrix of any other width is rejected.
func Dense2FourVecs(d *mat.Dense) (*FourVecs, error) {
	if d == nil {
		return &FourVecs{}, nil
	}
	if _, c := d.Dims(); c != ncomp {
		return nil, &SchemaError{message: fmt.Sprintf("matrix with %d columns cannot hold the %v components", c, MomentumLabels())}
	}
	return &FourVecs{Dense: d}, nil
}

// FourVecs2Dense returns the matrix underlying the block, or nil for an
// empty block.
func FourVecs2Dense(f *FourVecs) *mat.Dense {
	return f.Dense
}

// Events returns the number of events (rows) in the block.
func (F *FourVecs) Events() int {
	if F == nil || F.Dense == nil {
		return 0
	}
	r, _ := F.Dims()
	return r
}

// P4 returns the four-momentum of event i.
func (F *FourVecs) P4(i int) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(F.At(i, 0), F.At(i, 1), F.At(i, 2), F.At(i, 3))
}

// SetP4 stores the four-momentum p in row i of the block.
func (F *FourVecs) SetP4(i int, p fmom.PxPyPzE) {
	F.Set(i, 0, p.Px())
	F.Set(i, 1, p.Py())
	F.Set(i, 2, p.Pz())
	F.Set(i, 3, p.E())
}

// PxPyPz returns a view of the three spatial-momentum columns, or nil
// for an empty block.
func (F *FourVecs) PxPyPz() mat.Matrix {
	n := F.Events()
	if n == 0 {
		return nil
	}
	return F.Slice(0, n, 0, 3)
}

// Energy copies the energy column into dst, if given and large enough,
// or into a fresh slice.
func (F *FourVecs) Energy(dst ...[]float64) []float64 {
	d := getCopySlice(F.Events(), dst...)
	for i := range d {
		d[i] = F.At(i, 3)
	}
	return d
}

// Rho2 computes the squared modulus of the spatial momentum,
// p_x²+p_y²+p_z², per event.
func (F *FourVecs) Rho2(dst ...[]float64) []float64 {
	d := getCopySlice(F.Events(), dst...)
	for i := range d {
		x, y, z := F.At(i, 0), F.At(i, 1), F.At(i, 2)
		d[i] = x*x + y*y + z*z
	}
	return d
}

// Rho computes the modulus of the spatial momentum, per event.
func (F *FourVecs) Rho(dst ...[]float64) []float64 {
	d := F.Rho2(dst...)
	for i, v := range d {
		d[i] = math.Sqrt(v)
	}
	return d
}

// Mass2 computes the squared invariant mass, E²−ρ², per event.
func (F *FourVecs) Mass2(dst ...[]float64) []float64 {
	d := getCopySlice(F.Events(), dst...)
	for i := range d {
		x, y, z, e := F.At(i, 0), F.At(i, 1), F.At(i, 2), F.At(i, 3)
		d[i] = e*e - (x*x + y*y + z*z)
	}
	return d
}

// Mass computes the invariant mass, per event. Spacelike rows (negative
// Mass2) come out as NaN; for measured tuples that is part of the data,
// not an error.
func (F *FourVecs) Mass(dst ...[]float64) []float64 {
	d := F.Mass2(dst...)
	for i, v := range d {
		d[i] = math.Sqrt(v)
	}
	return d
}

// getCopySlice returns dst[0] trimmed to n if one was given with enough
// room, or a fresh slice of length n.
func getCopySlice(n int, dst ...[]float64) []float64 {
	var d []float64
	if len(dst) > 0 && len(dst[0]) >= n {
		d = dst[0][:n]
	} else {
		d = make([]float64, n)
	}
	return d
}
