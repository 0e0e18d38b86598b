package qa

import (
	"fmt"
	"strings"

	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	pawian "github.com/redeboer/pawian-tools"
)

// PlotOptions modulates PlotMass. Use DefaultPlotOptions and the
// accessor methods.
type PlotOptions struct {
	bins   int
	lo, hi float64
	title  string
}

// DefaultPlotOptions returns options for a 100-bin histogram with a
// data-driven range and an automatic title.
func DefaultPlotOptions() *PlotOptions {
	return &PlotOptions{bins: 100}
}

// Bins sets, if given, and returns the number of histogram bins.
func (O *PlotOptions) Bins(n ...int) int {
	if len(n) > 0 {
		O.bins = n[0]
	}
	return O.bins
}

// Range sets, if given, and returns the histogram range. With lo >= hi
// the range comes from the data.
func (O *PlotOptions) Range(limits ...float64) (float64, float64) {
	if len(limits) >= 2 {
		O.lo, O.hi = limits[0], limits[1]
	}
	return O.lo, O.hi
}

// Title sets, if given, and returns the plot title. An empty title is
// generated from the particle names.
func (O *PlotOptions) Title(t ...string) string {
	if len(t) > 0 {
		O.title = t[0]
	}
	return O.title
}

// PlotMass writes a PNG mass spectrum of the named particle
// combination to the given file.
func PlotMass(set *pawian.EventSet, name string, opts *PlotOptions, names ...string) error {
	if opts == nil {
		opts = DefaultPlotOptions()
	}
	h, err := MassHist(set, opts.bins, opts.lo, opts.hi, names...)
	if err != nil {
		return err
	}
	p := hplot.New()
	p.Title.Text = opts.title
	if p.Title.Text == "" {
		p.Title.Text = "Mass of " + strings.Join(names, " ")
	}
	p.X.Label.Text = fmt.Sprintf("m(%s) [GeV/c^2]", strings.Join(names, " "))
	p.Y.Label.Text = "events"
	p.Add(plotter.NewGrid())
	p.Add(hplot.NewH1D(h))
	if err := p.Save(15*vg.Centimeter, 10*vg.Centimeter, name); err != nil {
		return fmt.Errorf("qa: plot %s: %w", name, err)
	}
	return nil
}
