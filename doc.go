// Package pawian reads, reshapes and writes momentum-tuple data files
// from partial-wave analysis, and computes the usual kinematic
// quantities over them.
//
// The ASCII files handled here carry one event after another. An event
// is an optional weight line followed by one four-momentum line per
// particle, the particles always in the same order:
//
//	0.99407
//	-0.00357645   0.0962561   0.0181079    0.170545
//	   0.224019    0.623156    0.215051     1.99057
//	  -0.174404   -0.719412   -0.233159      2.0243
//	0.990748
//	 -0.0328198   0.0524406   0.0310079    0.155783
//	  -0.619592    0.141315     0.32135     1.99619
//	   0.698477   -0.193756   -0.352357     2.03593
//
// Whitespace is arbitrary and blank lines are skipped. The files carry
// no header, so ReadASCII infers the layout from the rows themselves: a
// single-value line before the first momentum tuple means the file is
// weighted, and the distance to the next single-value line then fixes
// the number of particles per event. A weightless file has no such
// structure, so the caller must name its particles.
//
// ReadASCII pivots the flat line stream into an EventSet: one row per
// event holding the four momentum components of every particle, plus
// the weight when present. Energy, momentum modulus and invariant mass
// are computed from the set on demand; nothing is cached. WriteASCII
// writes a set back in the flat layout above.
package pawian
