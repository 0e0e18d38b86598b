// Command pawian-tools works on Pawian momentum-tuple files: it
// converts the tuple trees of a pawianHists.root file to the flat
// ASCII format, prints per-particle kinematic summaries, and plots
// mass spectra.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	pawian "github.com/redeboer/pawian-tools"
	"github.com/redeboer/pawian-tools/hists"
	"github.com/redeboer/pawian-tools/qa"
)

var (
	sessionFile string
	kind        string
	particles   []string
	count       int
	bins        int
	massRange   []float64
	combos      []string
	output      string
)

func main() {
	log.SetPrefix("pawian-tools: ")
	log.SetFlags(0)

	rootCmd := &cobra.Command{
		Use:           "pawian-tools",
		Short:         "read, convert and summarize Pawian momentum-tuple files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session", "", "YAML session file; flags override its values")
	rootCmd.PersistentFlags().StringSliceVar(&particles, "particles", nil, "particle names, in their per-event order")
	rootCmd.PersistentFlags().IntVar(&count, "count", 0, "number of particles per event (names become ordinals)")

	convertCmd := &cobra.Command{
		Use:   "convert <pawianHists.root> <out.dat>",
		Short: "extract a momentum-tuple tree into the flat ASCII format",
		Args:  cobra.ExactArgs(2),
		RunE:  runConvert,
	}
	convertCmd.Flags().StringVar(&kind, "kind", "data", "which tuples to extract: data or fitted")

	summaryCmd := &cobra.Command{
		Use:   "summary <file.dat>",
		Short: "print per-particle mean mass and momentum",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSummary,
	}

	plotCmd := &cobra.Command{
		Use:   "plot <file.dat>",
		Short: "write a PNG mass spectrum",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlot,
	}
	plotCmd.Flags().IntVar(&bins, "bins", 0, "histogram bins")
	plotCmd.Flags().Float64SliceVar(&massRange, "range", nil, "histogram range, lo,hi")
	plotCmd.Flags().StringArrayVar(&combos, "combine", nil, "particle combination to plot, comma-joined; repeatable")
	plotCmd.Flags().StringVarP(&output, "output", "o", "", "output PNG file")

	rootCmd.AddCommand(convertCmd, summaryCmd, plotCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// session merges the optional session file with the flags; a flag the
// user set wins over the file.
func session(cmd *cobra.Command, args []string) (*Session, error) {
	s := DefaultSession()
	if sessionFile != "" {
		var err error
		if s, err = LoadSession(sessionFile); err != nil {
			return nil, err
		}
	}
	if len(args) > 0 {
		s.Input = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("particles") {
		s.Particles = particles
	}
	if flags.Changed("count") {
		s.Count = count
	}
	if flags.Changed("kind") {
		s.Kind = kind
	}
	if flags.Changed("bins") {
		s.Bins = bins
	}
	if flags.Changed("range") && len(massRange) >= 2 {
		s.Range = [2]float64{massRange[0], massRange[1]}
	}
	if flags.Changed("combine") {
		s.Combine = parseCombos(combos)
	}
	if flags.Changed("output") {
		s.Output = output
	}
	if s.Input == "" {
		return nil, fmt.Errorf("no input file, give one as an argument or in the session file")
	}
	return s, nil
}

// read loads the session's input, an ASCII tuple file.
func read(s *Session) (*pawian.EventSet, error) {
	o := pawian.DefaultOptions()
	if len(s.Particles) > 0 {
		o.Particles(s.Particles...)
	} else if s.Count > 0 {
		o.Count(s.Count)
	}
	return pawian.ReadASCII(s.Input, o)
}

func runConvert(cmd *cobra.Command, args []string) error {
	k := kind
	if sessionFile != "" && !cmd.Flags().Changed("kind") {
		s, err := LoadSession(sessionFile)
		if err != nil {
			return err
		}
		if s.Kind != "" {
			k = s.Kind
		}
	}
	set, err := hists.Read(args[0], k)
	if err != nil {
		return err
	}
	log.Printf("%s: %d events of %v", args[0], set.Len(), set.Particles())
	return set.WriteASCII(args[1])
}

func runSummary(cmd *cobra.Command, args []string) error {
	s, err := session(cmd, args)
	if err != nil {
		return err
	}
	set, err := read(s)
	if err != nil {
		return err
	}
	weighted := ""
	if set.HasWeights() {
		weighted = ", weighted"
	}
	fmt.Printf("%s: %d events%s\n", s.Input, set.Len(), weighted)
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "particle\tmass\tsigma\trho\tsigma")
	for _, sum := range qa.Summarize(set) {
		fmt.Fprintf(w, "%s\t%.6g\t%.3g\t%.6g\t%.3g\n",
			sum.Particle, sum.MeanMass, sum.StdMass, sum.MeanRho, sum.StdRho)
	}
	return w.Flush()
}

func runPlot(cmd *cobra.Command, args []string) error {
	s, err := session(cmd, args)
	if err != nil {
		return err
	}
	set, err := read(s)
	if err != nil {
		return err
	}
	combine := s.Combine
	if len(combine) == 0 {
		for _, p := range set.Particles() {
			combine = append(combine, []string{p})
		}
	}
	out := s.Output
	if out == "" {
		out = "mass.png"
	}
	for _, names := range combine {
		path := out
		if len(combine) > 1 {
			path = fmt.Sprintf("%s_%s.png", strings.TrimSuffix(out, ".png"), sanitize(names))
		}
		o := qa.DefaultPlotOptions()
		if s.Bins > 0 {
			o.Bins(s.Bins)
		}
		o.Range(s.Range[0], s.Range[1])
		if err := qa.PlotMass(set, path, o, names...); err != nil {
			return err
		}
		log.Printf("wrote %s", path)
	}
	return nil
}

// sanitize joins particle names into a filename-safe suffix.
func sanitize(names []string) string {
	s := strings.Join(names, "_")
	r := strings.NewReplacer("+", "p", "-", "m", "/", "", "*", "")
	return r.Replace(s)
}
