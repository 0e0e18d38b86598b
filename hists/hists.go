// Package hists imports momentum tuples from pawianHists.root files,
// the binary companion Pawian writes next to its ASCII data. Only the
// two four-vector trees are of interest here; the histograms that give
// the file its name are Pawian's own QA output.
package hists

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"go-hep.org/x/hep/fmom"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rphys"
	"go-hep.org/x/hep/groot/rtree"

	pawian "github.com/redeboer/pawian-tools"
)

// The two momentum-tuple trees of a pawianHists.root file.
const (
	DataTree   = "_dataFourvecs"
	FittedTree = "_fittedFourvecs"
)

// TreeName resolves a tuple kind to the tree holding it: anything
// containing "dat" names the measured tuples, anything containing
// "fit" the fitted ones.
func TreeName(kind string) (string, error) {
	k := strings.ToLower(kind)
	switch {
	case strings.Contains(k, "dat"):
		return DataTree, nil
	case strings.Contains(k, "fit"):
		return FittedTree, nil
	}
	return "", fmt.Errorf("hists: kind %q names neither the data nor the fitted tuples", kind)
}

// Read loads the momentum tuples of the given kind ("data" or
// "fitted") from a pawianHists.root file. The particles are the branch
// names of the tree, minus the weight branch; a constant weight branch
// means no weighting was applied and yields a weightless set.
func Read(name, kind string) (*pawian.EventSet, error) {
	tname, err := TreeName(kind)
	if err != nil {
		return nil, err
	}
	f, err := groot.Open(name)
	if err != nil {
		return nil, fmt.Errorf("hists: %w", err)
	}
	defer f.Close()
	obj, err := f.Get(tname)
	if err != nil {
		return nil, fmt.Errorf("hists: %s has no tree %q: %w", name, tname, err)
	}
	t, ok := obj.(rtree.Tree)
	if !ok {
		return nil, fmt.Errorf("hists: %s: %q is a %T, not a tree", name, tname, obj)
	}
	set, err := readTree(t)
	if err != nil {
		return nil, fmt.Errorf("hists: %s/%s: %w", name, tname, err)
	}
	return set, nil
}

// slot receives one particle's values for the event being read. Older
// Pawian versions split the TLorentzVector over component branches,
// newer ones write the object itself; a particle branch without
// sub-branches is the latter.
type slot struct {
	split bool
	obj   rphys.LorentzVector
	comp  [4]float64
}

func readTree(t rtree.Tree) (*pawian.EventSet, error) {
	var (
		names     []string
		slots     []*slot
		rvars     []rtree.ReadVar
		hasWeight bool
		weight    float64
	)
	for _, b := range t.Branches() {
		name := b.Name()
		if name == pawian.WeightLabel {
			hasWeight = true
			rvars = append(rvars, rtree.ReadVar{Name: name, Value: &weight})
			continue
		}
		names = append(names, name)
		s := &slot{split: len(b.Branches()) > 0}
		slots = append(slots, s)
		if s.split {
			rvars = append(rvars,
				rtree.ReadVar{Name: name + ".fP.fX", Value: &s.comp[0]},
				rtree.ReadVar{Name: name + ".fP.fY", Value: &s.comp[1]},
				rtree.ReadVar{Name: name + ".fP.fZ", Value: &s.comp[2]},
				rtree.ReadVar{Name: name + ".fE", Value: &s.comp[3]},
			)
		} else {
			rvars = append(rvars, rtree.ReadVar{Name: name, Value: &s.obj})
		}
	}
	if len(names) == 0 {
		return nil, errors.New("no particle branches")
	}

	n := int(t.Entries())
	set, err := pawian.NewEventSet(names, n)
	if err != nil {
		return nil, err
	}
	blocks := make([]*pawian.FourVecs, len(names))
	for i, name := range names {
		if blocks[i], err = set.Particle(name); err != nil {
			return nil, err
		}
	}
	var weights []float64
	if hasWeight {
		weights = make([]float64, 0, n)
	}

	r, err := rtree.NewReader(t, rvars)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	err = r.Read(func(ctx rtree.RCtx) error {
		i := int(ctx.Entry)
		for j, s := range slots {
			if s.split {
				blocks[j].SetRow(i, s.comp[:])
			} else {
				blocks[j].SetP4(i, fmom.NewPxPyPzE(s.obj.Px(), s.obj.Py(), s.obj.Pz(), s.obj.E()))
			}
		}
		if hasWeight {
			weights = append(weights, weight)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(weights) > 0 {
		if constant(weights) {
			log.Printf("hists: weight branch is constant at %v, leaving the set weightless", weights[0])
		} else if err := set.SetWeights(weights); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// constant reports whether every weight equals the first one.
func constant(w []float64) bool {
	for _, v := range w[1:] {
		if v != w[0] {
			return false
		}
	}
	return true
}
