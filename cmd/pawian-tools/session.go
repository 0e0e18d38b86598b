package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Session is the optional YAML file describing one analysis session:
// the input file, its particles, and the histogram settings. Flags
// given on the command line override the file's values.
type Session struct {
	Input     string     `yaml:"input"`
	Kind      string     `yaml:"kind"`
	Particles []string   `yaml:"particles"`
	Count     int        `yaml:"count"`
	Bins      int        `yaml:"bins"`
	Range     [2]float64 `yaml:"range"`
	Combine   [][]string `yaml:"combine"`
	Output    string     `yaml:"output"`
}

// DefaultSession returns a session reading measured tuples into a
// 100-bin histogram.
func DefaultSession() *Session {
	return &Session{Kind: "data", Bins: 100}
}

// LoadSession reads a session file over the defaults.
func LoadSession(path string) (*Session, error) {
	s := DefaultSession()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("session %s: %w", path, err)
	}
	return s, nil
}

// parseCombos turns "pi+,D0 pi+,D-" style flag values into particle
// combinations, one per comma-joined group.
func parseCombos(groups []string) [][]string {
	var out [][]string
	for _, g := range groups {
		var names []string
		for _, n := range strings.Split(g, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		if len(names) > 0 {
			out = append(out, names)
		}
	}
	return out
}
