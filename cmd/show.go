package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/setupmatrix/setup"
	"github.com/inference-sim/setupmatrix/setup/expr"
	"github.com/inference-sim/setupmatrix/setup/sample"
)

var (
	showFormat  string
	showSamples int // samples drawn to preview distribution means
)

const previewSeed = 1

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the setup-time matrix of a model",
	Run: func(cmd *cobra.Command, args []string) {
		h, s := mustOpenSession(context.Background())
		defer h.close()

		switch showFormat {
		case "table":
			if err := renderMatrix(os.Stdout, s, h.file.Variables); err != nil {
				logrus.Fatalf("Rendering matrix failed: %v", err)
			}
		case "yaml":
			writeRecordsToStdout(s.StoreData())
		default:
			logrus.Fatalf("Unknown format %q; valid: table, yaml", showFormat)
		}
	},
}

// renderMatrix writes the matrix grid followed by one line per configured
// setup time with its validity and a preview: the value of an evaluable
// expression or the sampled mean of a distribution.
func renderMatrix(w io.Writer, s *setup.Session, variables map[string]float64) error {
	types := s.ClientTypes()
	store := s.Store()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprint(tw, "from \\ to")
	for _, to := range types {
		fmt.Fprintf(tw, "\t%s", to)
	}
	fmt.Fprintln(tw)
	for _, from := range types {
		fmt.Fprint(tw, from)
		for _, to := range types {
			cell := "-"
			if v, ok := store.Get(from, to); ok {
				cell = v.String()
			}
			fmt.Fprintf(tw, "\t%s", cell)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d of %d pairs configured\n", store.Len(), len(types)*len(types))
	for _, p := range store.Pairs() {
		v, _ := store.Get(p.From, p.To)
		fmt.Fprintf(w, "%s: %s [%s]%s\n", p, v, v.Kind(), describe(s, v, variables))
	}
	return nil
}

func describe(s *setup.Session, v setup.Value, variables map[string]float64) string {
	if pos := s.Check(v); pos != nil {
		return fmt.Sprintf(" invalid at %d: %s", pos.Offset, pos.Message)
	}
	if d, ok := v.Distribution(); ok {
		if showSamples <= 0 {
			return ""
		}
		mean, err := sample.Mean(d, showSamples, previewSeed)
		if err != nil {
			return " (" + err.Error() + ")"
		}
		return fmt.Sprintf(" mean ≈ %.4g", mean)
	}
	formula, ok := v.Expression()
	if !ok {
		return ""
	}
	result, err := expr.Evaluate(formula, variables)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" = %g", result)
}

// writeRecordsToStdout marshals setup-time records to YAML and writes to stdout.
func writeRecordsToStdout(records []setup.Record) {
	data, err := yaml.Marshal(map[string][]setup.Record{"setup_times": records})
	if err != nil {
		logrus.Fatalf("YAML marshal failed: %v", err)
	}
	fmt.Print(string(data))
}

func init() {
	addModelFlags(showCmd)
	showCmd.Flags().StringVar(&showFormat, "format", "table", "Output format (table, yaml)")
	showCmd.Flags().IntVar(&showSamples, "samples", 10000, "Samples drawn to preview distribution means (0 = off)")
	rootCmd.AddCommand(showCmd)
}
