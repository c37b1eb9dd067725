package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/setupmatrix/setup"
	"github.com/inference-sim/setupmatrix/setup/importer"
)

var (
	importModelPath string
	importCSVPath   string
	importAccept    bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Merge setup times from another model file or a CSV matrix",
	Long:  "Merge externally sourced setup times into the model. Conflicts are listed; without --yes the import is cancelled and nothing is written.",
	Run: func(cmd *cobra.Command, args []string) {
		src, err := importSource(importModelPath, importCSVPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		candidates, err := src.Candidates()
		if err != nil {
			logrus.Fatalf("Reading import source failed: %v", err)
		}

		ctx := context.Background()
		h, s := mustOpenSession(ctx)
		defer h.close()

		result, err := s.Import(candidates, printingResolver(os.Stdout, importAccept))
		if errors.Is(err, setup.ErrEmptyImport) {
			logrus.Fatalf("Nothing to import: %v", err)
		}
		if err != nil {
			logrus.Fatalf("Import failed: %v", err)
		}
		if !result.Applied {
			fmt.Println("import cancelled; rerun with --yes to apply")
			return
		}
		if err := h.save(ctx, s.StoreData()); err != nil {
			logrus.Fatalf("Saving model failed: %v", err)
		}
	},
}

func importSource(modelFile, csvFile string) (importer.Source, error) {
	switch {
	case modelFile != "" && csvFile != "":
		return nil, fmt.Errorf("--from and --csv are mutually exclusive")
	case modelFile != "":
		return importer.ModelFileSource{Path: modelFile}, nil
	case csvFile != "":
		return importer.CSVMatrixSource{Path: csvFile}, nil
	default:
		return nil, fmt.Errorf("one of --from or --csv is required")
	}
}

// printingResolver lists every conflict as "pair: old -> new" and returns accept.
func printingResolver(w io.Writer, accept bool) setup.Resolver {
	return func(conflicts []setup.Conflict) bool {
		changed := 0
		for _, c := range conflicts {
			old := "-"
			if c.HasOld {
				old = c.Old.String()
			}
			marker := " "
			if c.Changed() {
				marker = "*"
				changed++
			}
			fmt.Fprintf(w, "%s %s: %s -> %s\n", marker, c.Pair, old, c.New)
		}
		fmt.Fprintf(w, "%d setup times, %d changed\n", len(conflicts), changed)
		return accept
	}
}

func init() {
	addModelFlags(importCmd)
	importCmd.Flags().StringVar(&importModelPath, "from", "", "Model file to import setup times from")
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "CSV matrix to import setup times from")
	importCmd.Flags().BoolVar(&importAccept, "yes", false, "Apply the import")
	rootCmd.AddCommand(importCmd)
}
