// Package qa computes the usual quality-assurance quantities over an
// event set: per-particle mass and momentum summaries, histograms of
// any derived column, and invariant masses of particle combinations.
// It is the numeric half of the QA plots Pawian itself writes into
// pawianHists.root.
package qa

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/fmom"
	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	pawian "github.com/redeboer/pawian-tools"
)

// Summary holds the weighted first and second moments of one
// particle's invariant mass and spatial-momentum modulus.
type Summary struct {
	Particle string
	MeanMass float64
	StdMass  float64
	MeanRho  float64
	StdRho   float64
}

// Summarize computes a Summary per particle, in table order. The
// event weights, when the set carries them, weigh the moments.
func Summarize(set *pawian.EventSet) []Summary {
	names := set.Particles()
	out := make([]Summary, len(names))
	if set.Len() == 0 {
		for j, name := range names {
			out[j].Particle = name
		}
		return out
	}
	var weights []float64
	if set.HasWeights() {
		weights, _ = set.Weights()
	}
	masses := set.Mass()
	rhos := set.Rho()
	var col []float64
	for j, name := range names {
		s := &out[j]
		s.Particle = name
		col = mat.Col(col, j, masses)
		s.MeanMass, s.StdMass = stat.MeanStdDev(col, weights)
		col = mat.Col(col, j, rhos)
		s.MeanRho, s.StdRho = stat.MeanStdDev(col, weights)
	}
	return out
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: mass %.6g +- %.3g, rho %.6g +- %.3g",
		s.Particle, s.MeanMass, s.StdMass, s.MeanRho, s.StdRho)
}

// CombinedMass computes, per event, the invariant mass of the summed
// four-momenta of the named particles. A single name gives that
// particle's own mass column; pairs and larger combinations are the
// spectra partial-wave analyses fit in the first place.
func CombinedMass(set *pawian.EventSet, names ...string) ([]float64, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("qa: a combination needs at least one particle")
	}
	blocks := make([]*pawian.FourVecs, len(names))
	for i, name := range names {
		b, err := set.Particle(name)
		if err != nil {
			return nil, fmt.Errorf("qa: %w", err)
		}
		blocks[i] = b
	}
	out := make([]float64, set.Len())
	for i := range out {
		p := blocks[0].P4(i)
		var sum fmom.P4 = &p
		for _, b := range blocks[1:] {
			q := b.P4(i)
			sum = fmom.Add(sum, &q)
		}
		out[i] = sum.M()
	}
	return out, nil
}

// MassHist fills a histogram with the per-event invariant mass of the
// named particle combination, weighted by the event weights when the
// set carries them. With lo >= hi the range is taken from the data,
// padded by half a bin on each side. NaN masses (spacelike tuples) are
// left out of the histogram.
func MassHist(set *pawian.EventSet, bins int, lo, hi float64, names ...string) (*hbook.H1D, error) {
	if bins < 1 {
		return nil, fmt.Errorf("qa: a histogram needs at least one bin, not %d", bins)
	}
	masses, err := CombinedMass(set, names...)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, 0, len(masses))
	for _, m := range masses {
		if !math.IsNaN(m) {
			vals = append(vals, m)
		}
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("qa: no timelike entries for %v", names)
	}
	if lo >= hi {
		lo, hi = floats.Min(vals), floats.Max(vals)
		pad := (hi - lo) / float64(2*bins)
		if pad == 0 {
			pad = 0.5
		}
		lo, hi = lo-pad, hi+pad
	}
	var weights []float64
	if set.HasWeights() {
		weights, _ = set.Weights()
	}
	h := hbook.NewH1D(bins, lo, hi)
	for i, m := range masses {
		if math.IsNaN(m) {
			continue
		}
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		h.Fill(m, w)
	}
	return h, nil
}
