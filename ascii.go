package pawian

/*
The flat ASCII format, as written by Pawian itself: one momentum tuple
"p_x p_y p_z E" per line, events back to back. In weighted files each
event starts with an extra line holding only the weight. Neither the
particles nor the weight presence are declared anywhere in the file;
both are inferred from the row structure (see the package comment).
Files ending in .gz or .zst are (de)compressed transparently.
*/

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Options modulates how momentum-tuple files are read and written. Use
// DefaultOptions and the accessor methods; the zero value reads only
// weighted files (no particle specification) and writes shortest
// round-trip numbers.
type Options struct {
	particles []string
	count     int
	precision int
}

// DefaultOptions returns options with no particle specification and
// shortest round-trip number formatting.
func DefaultOptions() *Options {
	return &Options{precision: -1}
}

// Particles sets, if given, and returns the particle names expected in
// the file, in their per-event order. Explicit names take precedence
// over a Count specification.
func (O *Options) Particles(names ...string) []string {
	if len(names) > 0 {
		O.particles = names
	}
	return O.particles
}

// Count sets, if given, and returns the expected number of particles
// per event. A count without names stands for the ordinal particle
// names "1".."n".
func (O *Options) Count(n ...int) int {
	if len(n) > 0 {
		O.count = n[0]
	}
	return O.count
}

// Precision sets, if given, and returns the number of significant
// digits written per number. The default -1 writes the shortest string
// that parses back to the same float64.
func (O *Options) Precision(digits ...int) int {
	if len(digits) > 0 {
		O.precision = digits[0]
	}
	return O.precision
}

// names resolves the particle specification: explicit names win,
// otherwise a count generates ordinal names, otherwise nil.
func (O *Options) names() []string {
	if len(O.particles) > 0 {
		return O.particles
	}
	if O.count > 0 {
		return ordinalNames(O.count)
	}
	return nil
}

func ordinalNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = strconv.Itoa(i + 1)
	}
	return names
}

// ReadASCII reads a momentum-tuple file into an EventSet, inferring
// weight presence and, where the structure allows it, the number of
// particles per event. A weightless file carries no structure to infer
// from, so there the options must name the particles (or their count);
// for a weighted file a specification is optional but must agree with
// the inferred count. Files ending in .gz or .zst are decompressed on
// the fly.
func ReadASCII(name string, opts ...*Options) (*EventSet, error) {
	o := DefaultOptions()
	if len(opts) > 0 && opts[0] != nil {
		o = opts[0]
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("pawian: %w", err)
	}
	defer f.Close()
	r, err := newDecompressor(name, f)
	if err != nil {
		return nil, fmt.Errorf("pawian: open %s: %w", name, err)
	}
	defer r.Close()
	rows, err := readFlat(r, name)
	if err != nil {
		return nil, errDecorate(err, "ReadASCII")
	}
	set, err := reshape(rows, name, o.names())
	if err != nil {
		return nil, errDecorate(err, "ReadASCII")
	}
	return set, nil
}

// WriteASCII writes the set in the flat format ReadASCII reads: per
// event the weight line, if the set is weighted, then one momentum
// tuple per particle in table order. Files ending in .gz or .zst are
// compressed. The default formatting round-trips every number exactly.
func (e *EventSet) WriteASCII(name string, opts ...*Options) error {
	o := DefaultOptions()
	if len(opts) > 0 && opts[0] != nil {
		o = opts[0]
	}
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("pawian: %w", err)
	}
	w, err := newCompressor(name, f)
	if err != nil {
		f.Close()
		return fmt.Errorf("pawian: create %s: %w", name, err)
	}
	err = e.write(w, o.Precision())
	if err2 := w.Close(); err == nil {
		err = err2
	}
	if err2 := f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return fmt.Errorf("pawian: write %s: %w", name, err)
	}
	return nil
}

// row is one non-blank line of the file: a single weight value (n==1)
// or a full momentum tuple (n==ncomp), plus the line it came from.
type row struct {
	vals [ncomp]float64
	n    int
	line int
}

// readFlat parses every non-blank line into a row, rejecting lines that
// hold neither 1 nor 4 numbers.
func readFlat(r io.Reader, name string) ([]row, error) {
	var rows []row
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 1 && len(fields) != ncomp {
			return nil, &ParseError{filename: name, message: fmt.Sprintf("line %d holds %d numbers, a line holds 1 (a weight) or %d (a momentum tuple)", line, len(fields), ncomp)}
		}
		rw := row{n: len(fields), line: line}
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, &ParseError{filename: name, message: fmt.Sprintf("line %d: %q is not a number", line, field)}
			}
			rw.vals[i] = v
		}
		rows = append(rows, rw)
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{filename: name, message: fmt.Sprintf("read failed: %v", err)}
	}
	return rows, nil
}

// reshape pivots the flat rows into an EventSet. Weight presence comes
// from the first row: a file beginning with a momentum tuple has no
// weights. The particle count of a weighted file is the gap between its
// first two weight rows; names, when given, must match that count.
func reshape(rows []row, name string, names []string) (*EventSet, error) {
	if len(rows) == 0 {
		return nil, &ParseError{filename: name, message: "the file holds no data"}
	}
	if rows[0].n == ncomp {
		return reshapeFlat(rows, name, names)
	}
	return reshapeWeighted(rows, name, names)
}

// reshapeFlat handles the weightless layout: nothing but momentum
// tuples, for which only the caller can say how many particles make an
// event.
func reshapeFlat(rows []row, name string, names []string) (*EventSet, error) {
	if len(names) == 0 {
		return nil, &ParseError{filename: name, message: "a weightless file does not say how many particles make an event; give the particle names or their count"}
	}
	n := len(names)
	if len(rows)%n != 0 {
		return nil, &ParseError{filename: name, message: fmt.Sprintf("%d momentum tuples do not divide into events of %d particles", len(rows), n)}
	}
	set, err := NewEventSet(names, len(rows)/n)
	if err != nil {
		return nil, errDecorate(err, "reshape")
	}
	for k, rw := range rows {
		if rw.n != ncomp {
			return nil, &ParseError{filename: name, message: fmt.Sprintf("line %d holds a single value, a weightless file holds only momentum tuples", rw.line)}
		}
		set.blocks[k%n].SetRow(k/n, rw.vals[:])
	}
	return set, nil
}

// reshapeWeighted handles the weighted layout: each event is one weight
// row followed by one momentum tuple per particle. The count of a
// single-event file is the number of tuples after its weight.
func reshapeWeighted(rows []row, name string, names []string) (*EventSet, error) {
	second := -1
	for k := 1; k < len(rows); k++ {
		if rows[k].n == 1 {
			second = k
			break
		}
	}
	n := second - 1
	if second < 0 {
		n = len(rows) - 1
	}
	if n < 1 {
		return nil, &ParseError{filename: name, message: fmt.Sprintf("line %d: no momentum tuples follow the weight", rows[0].line)}
	}
	if len(names) > 0 && len(names) != n {
		return nil, &ParseError{filename: name, message: fmt.Sprintf("the file holds %d particles per event, not the %d given (%v)", n, len(names), names)}
	}
	if len(names) == 0 {
		names = ordinalNames(n)
	}
	stride := n + 1
	if len(rows)%stride != 0 {
		return nil, &ParseError{filename: name, message: fmt.Sprintf("%d rows do not divide into events of one weight and %d momentum tuples", len(rows), n)}
	}
	events := len(rows) / stride
	set, err := NewEventSet(names, events)
	if err != nil {
		return nil, errDecorate(err, "reshape")
	}
	weights := make([]float64, events)
	for i := 0; i < events; i++ {
		base := i * stride
		if rows[base].n != 1 {
			return nil, &ParseError{filename: name, message: fmt.Sprintf("line %d: event %d does not start with a weight", rows[base].line, i)}
		}
		weights[i] = rows[base].vals[0]
		for j := 0; j < n; j++ {
			rw := rows[base+1+j]
			if rw.n != ncomp {
				return nil, &ParseError{filename: name, message: fmt.Sprintf("line %d: expected the momentum tuple of particle %q in event %d", rw.line, names[j], i)}
			}
			set.blocks[j].SetRow(i, rw.vals[:])
		}
	}
	set.weights = weights
	return set, nil
}

func (e *EventSet) write(w io.Writer, prec int) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for i := 0; i < e.Len(); i++ {
		if e.weights != nil {
			buf = strconv.AppendFloat(buf[:0], e.weights[i], 'g', prec, 64)
			buf = append(buf, '\n')
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
		for _, b := range e.blocks {
			buf = buf[:0]
			for c := 0; c < ncomp; c++ {
				if c > 0 {
					buf = append(buf, ' ')
				}
				buf = strconv.AppendFloat(buf, b.At(i, c), 'g', prec, 64)
			}
			buf = append(buf, '\n')
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// zstql adapts the zstd decoder, whose Close returns nothing, to
// io.ReadCloser.
type zstql struct {
	*zstd.Decoder
}

func (z zstql) Close() error {
	z.Decoder.Close()
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// newDecompressor wraps f according to the suffix of name. The returned
// reader's Close does not close f itself.
func newDecompressor(name string, f *os.File) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".gzip":
		return gzip.NewReader(f)
	case ".zst", ".zstd":
		d, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		return zstql{d}, nil
	}
	return io.NopCloser(f), nil
}

// newCompressor wraps f according to the suffix of name. Closing the
// returned writer flushes the compressor but leaves f open.
func newCompressor(name string, f *os.File) (io.WriteCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".gzip":
		return gzip.NewWriter(f), nil
	case ".zst", ".zstd":
		return zstd.NewWriter(f)
	}
	return nopWriteCloser{f}, nil
}
