package pawian

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// the particles of the committed sample files, with their PDG masses
var sampleNames = []string{"pi+", "D0", "D-"}
var sampleMasses = []float64{0.13957, 1.86484, 1.86961}

func writeTemp(Te *testing.T, name, content string) string {
	path := filepath.Join(Te.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		Te.Fatal(err)
	}
	return path
}

func TestReadDataSample(Te *testing.T) {
	fmt.Println("Weighted sample read test!")
	set, err := ReadASCII("samples/momentum_tuples_data.dat")
	if err != nil {
		Te.Fatal(err)
	}
	if set.Len() != 100 {
		Te.Errorf("got %d events, want 100", set.Len())
	}
	if p := set.Particles(); len(p) != 3 || p[0] != "1" || p[2] != "3" {
		Te.Errorf("inferred particles %v, want the ordinals 1 2 3", p)
	}
	if !set.HasWeights() {
		Te.Error("the sample is weighted")
	}
	w, err := set.Weights()
	if err != nil {
		Te.Fatal(err)
	}
	if w[1] != 0.981397 || w[99] != 0.990203 {
		Te.Errorf("weights [1]=%v [99]=%v, want 0.981397 and 0.990203", w[1], w[99])
	}
	first, err := set.P4("1", 0)
	if err != nil {
		Te.Fatal(err)
	}
	if first.Px() != -0.698302 || first.Py() != 0.301869 || first.Pz() != -0.855127 || first.E() != 1.15303 {
		Te.Errorf("first tuple read back as %v", first)
	}
	// per-particle mean mass must land within 1e-5 of the PDG mass the
	// sample was generated with
	masses := set.Mass()
	for j, want := range sampleMasses {
		mean := stat.Mean(mat.Col(nil, j, masses), nil)
		if !scalar.EqualWithinAbs(mean, want, 1e-5) {
			Te.Errorf("particle %d mean mass %v, want %v within 1e-5", j+1, mean, want)
		}
	}
}

func TestReadDataSampleNamed(Te *testing.T) {
	fmt.Println("Weighted sample read test, explicit names!")
	o := DefaultOptions()
	o.Particles(sampleNames...)
	set, err := ReadASCII("samples/momentum_tuples_data.dat", o)
	if err != nil {
		Te.Fatal(err)
	}
	got := set.Particles()
	for i, name := range sampleNames {
		if got[i] != name {
			Te.Errorf("particles %v, want %v", got, sampleNames)
			break
		}
	}
	pi, err := set.Particle("pi+")
	if err != nil {
		Te.Fatal(err)
	}
	if pi.Name() != "pi+" || pi.Events() != 100 {
		Te.Errorf("pi+ block: name %q, %d events", pi.Name(), pi.Events())
	}
}

func TestReadMCSample(Te *testing.T) {
	fmt.Println("Weightless sample read test!")
	_, err := ReadASCII("samples/momentum_tuples_mc.dat")
	var perr *ParseError
	if !errors.As(err, &perr) {
		Te.Fatalf("a weightless file without a particle specification must not parse, got %v", err)
	}
	o := DefaultOptions()
	o.Count(3)
	set, err := ReadASCII("samples/momentum_tuples_mc.dat", o)
	if err != nil {
		Te.Fatal(err)
	}
	if set.Len() != 50 {
		Te.Errorf("got %d events, want 50", set.Len())
	}
	if set.HasWeights() {
		Te.Error("the MC sample carries no weights")
	}
	if _, err := set.Weights(); !errors.Is(err, ErrNoWeights) {
		Te.Errorf("want ErrNoWeights, got %v", err)
	}
	masses := set.Mass()
	for j, want := range sampleMasses {
		mean := stat.Mean(mat.Col(nil, j, masses), nil)
		if !scalar.EqualWithinAbs(mean, want, 1e-5) {
			Te.Errorf("particle %d mean mass %v, want %v within 1e-5", j+1, mean, want)
		}
	}
}

func TestInference(Te *testing.T) {
	fmt.Println("Structure inference test!")
	weighted2 := `0.98
1 2 3 4
5 6 7 8
0.99
1 2 3 4
5 6 7 8
`
	path := writeTemp(Te, "w2.dat", weighted2)
	set, err := ReadASCII(path)
	if err != nil {
		Te.Fatal(err)
	}
	if set.Len() != 2 || len(set.Particles()) != 2 {
		Te.Errorf("got %d events of %d particles, want 2 of 2", set.Len(), len(set.Particles()))
	}

	// a single weighted event has no second weight row to delimit it
	single := `0.5
1 2 3 4
5 6 7 8
9 10 11 12
`
	path = writeTemp(Te, "single.dat", single)
	set, err = ReadASCII(path)
	if err != nil {
		Te.Fatal(err)
	}
	if set.Len() != 1 || len(set.Particles()) != 3 {
		Te.Errorf("got %d events of %d particles, want 1 of 3", set.Len(), len(set.Particles()))
	}

	// blank lines and stray whitespace are noise
	sloppy := "\n  0.5\n\n  1\t2  3 4\n5 6 7 8\n\n"
	path = writeTemp(Te, "sloppy.dat", sloppy)
	set, err = ReadASCII(path)
	if err != nil {
		Te.Fatal(err)
	}
	if set.Len() != 1 || len(set.Particles()) != 2 {
		Te.Errorf("got %d events of %d particles, want 1 of 2", set.Len(), len(set.Particles()))
	}
}

func TestParseErrors(Te *testing.T) {
	fmt.Println("Malformed input test!")
	cases := []struct {
		name    string
		content string
		opts    func(*Options)
		blame   string
	}{
		{"mismatch.dat", "0.5\n1 2 3 4\n5 6 7 8\n", func(o *Options) { o.Particles("a", "b", "c") }, "not the 3 given"},
		{"weightless.dat", "1 2 3 4\n5 6 7 8\n", nil, "give the particle"},
		{"indivisible.dat", "0.5\n1 2 3 4\n5 6 7 8\n0.6\n1 2 3 4\n", nil, "do not divide"},
		{"flat-indivisible.dat", "1 2 3 4\n5 6 7 8\n9 10 11 12\n", func(o *Options) { o.Count(2) }, "do not divide"},
		{"badline.dat", "0.5\n1 2 3\n", nil, "holds 3 numbers"},
		{"nan.dat", "0.5\nx y z w\n", nil, "is not a number"},
		{"empty.dat", "\n\n", nil, "no data"},
		{"noweight.dat", "0.5\n1 2 3 4\n0.6\n1 2 3 4\n5 6 7 8\n0.7\n", nil, "does not start with a weight"},
		{"nothingafter.dat", "0.5\n0.6\n", nil, "no momentum tuples"},
	}
	for _, c := range cases {
		o := DefaultOptions()
		if c.opts != nil {
			c.opts(o)
		}
		path := writeTemp(Te, c.name, c.content)
		_, err := ReadASCII(path, o)
		var perr *ParseError
		if !errors.As(err, &perr) {
			Te.Errorf("%s: want a ParseError, got %v", c.name, err)
			continue
		}
		if !strings.Contains(err.Error(), c.blame) {
			Te.Errorf("%s: error %q does not name the problem (%q)", c.name, err, c.blame)
		}
		if perr.FileName() != path {
			Te.Errorf("%s: error blames file %q", c.name, perr.FileName())
		}
		if deco := perr.Decorate(""); len(deco) == 0 || deco[len(deco)-1] != "ReadASCII" {
			Te.Errorf("%s: decoration %v does not end in the caller", c.name, deco)
		}
	}
	// the 2-for-3 mismatch must name the count found in the file too
	path := writeTemp(Te, "mismatch2.dat", "0.5\n1 2 3 4\n5 6 7 8\n")
	o := DefaultOptions()
	o.Particles("a", "b", "c")
	_, err := ReadASCII(path, o)
	if err == nil || !strings.Contains(err.Error(), "holds 2 particles") {
		Te.Errorf("mismatch error %q does not name the count in the file", err)
	}
}

func TestRoundTrip(Te *testing.T) {
	fmt.Println("Write/read round-trip test!")
	set, err := ReadASCII("samples/momentum_tuples_data.dat")
	if err != nil {
		Te.Fatal(err)
	}
	for _, name := range []string{"copy.dat", "copy.dat.gz", "copy.dat.zst"} {
		path := filepath.Join(Te.TempDir(), name)
		if err := set.WriteASCII(path); err != nil {
			Te.Fatal(err)
		}
		back, err := ReadASCII(path)
		if err != nil {
			Te.Fatal(err)
		}
		if back.Len() != set.Len() {
			Te.Errorf("%s: %d events came back, want %d", name, back.Len(), set.Len())
		}
		w1, _ := set.Weights()
		w2, err := back.Weights()
		if err != nil {
			Te.Fatal(err)
		}
		if !floats.Equal(w1, w2) {
			Te.Errorf("%s: weights did not round-trip", name)
		}
		for i, p := range set.Particles() {
			a := set.blocks[i]
			b, err := back.Particle(p)
			if err != nil {
				Te.Fatal(err)
			}
			if !mat.Equal(a, b) {
				Te.Errorf("%s: particle %s did not round-trip", name, p)
			}
		}
	}
}

func TestWriteLayout(Te *testing.T) {
	fmt.Println("Writer layout test!")
	set, err := NewEventSet([]string{"a", "b"}, 2)
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		base := float64(i * 8)
		set.blocks[0].SetRow(i, []float64{base + 1, base + 2, base + 3, base + 4})
		set.blocks[1].SetRow(i, []float64{base + 5, base + 6, base + 7, base + 8})
	}
	if err := set.SetWeights([]float64{0.5, 0.25}); err != nil {
		Te.Fatal(err)
	}
	path := filepath.Join(Te.TempDir(), "layout.dat")
	if err := set.WriteASCII(path); err != nil {
		Te.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		Te.Fatal(err)
	}
	want := "0.5\n1 2 3 4\n5 6 7 8\n0.25\n9 10 11 12\n13 14 15 16\n"
	if string(raw) != want {
		Te.Errorf("wrote\n%s\nwant\n%s", raw, want)
	}

	// fixed precision trims the numbers
	o := DefaultOptions()
	o.Precision(2)
	if o.Precision() != 2 {
		Te.Error("precision accessor did not stick")
	}
	set.blocks[0].Set(0, 0, 1.23456)
	if err := set.WriteASCII(path, o); err != nil {
		Te.Fatal(err)
	}
	raw, err = os.ReadFile(path)
	if err != nil {
		Te.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), "0.5\n1.2 2 3 4\n") {
		Te.Errorf("precision 2 wrote\n%s", raw)
	}
}

func TestWeightlessRoundTrip(Te *testing.T) {
	fmt.Println("Weightless round-trip test!")
	o := DefaultOptions()
	o.Particles(sampleNames...)
	set, err := ReadASCII("samples/momentum_tuples_mc.dat", o)
	if err != nil {
		Te.Fatal(err)
	}
	path := filepath.Join(Te.TempDir(), "mc.dat.gz")
	if err := set.WriteASCII(path); err != nil {
		Te.Fatal(err)
	}
	back, err := ReadASCII(path, o)
	if err != nil {
		Te.Fatal(err)
	}
	if back.HasWeights() {
		Te.Error("a weightless set must write a weightless file")
	}
	if back.Len() != set.Len() {
		Te.Errorf("%d events came back, want %d", back.Len(), set.Len())
	}
	a := set.Mass()
	b := back.Mass()
	if !mat.EqualApprox(a, b, 0) {
		Te.Error("masses did not round-trip")
	}
	if math.IsNaN(mat.Sum(a)) {
		Te.Error("the MC sample has no spacelike tuples")
	}
}
