package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/setupmatrix/setup"
)

// EditScript is a recorded sequence of cell edits, replayed through the
// pending-edit controller exactly as an interactive session would issue them.
type EditScript struct {
	Steps []EditStep `yaml:"steps"`
}

// EditStep selects one pair, by name or by cell, and optionally edits it.
// Setting a value without an explicit active flag activates the pair.
type EditStep struct {
	From         string              `yaml:"from,omitempty"`
	To           string              `yaml:"to,omitempty"`
	Cell         []int               `yaml:"cell,omitempty"` // [row, col]
	Expression   string              `yaml:"expression,omitempty"`
	Distribution *setup.Distribution `yaml:"distribution,omitempty"`
	Active       *bool               `yaml:"active,omitempty"`
}

var editScriptPath string

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Replay a scripted editing session on the setup-time matrix",
	Run: func(cmd *cobra.Command, args []string) {
		script, err := loadEditScript(editScriptPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx := context.Background()
		h, s := mustOpenSession(ctx)
		defer h.close()

		if err := applyEditScript(s, script); err != nil {
			logrus.Fatalf("Edit script failed: %v", err)
		}
		records := s.StoreData()
		if err := h.save(ctx, records); err != nil {
			logrus.Fatalf("Saving model failed: %v", err)
		}
		fmt.Printf("applied %d steps, %d setup times\n", len(script.Steps), len(records))
	},
}

// loadEditScript reads an edit script with strict field checking.
func loadEditScript(path string) (*EditScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading edit script: %w", err)
	}
	var script EditScript
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&script); err != nil {
		return nil, fmt.Errorf("parsing edit script %s: %w", path, err)
	}
	return &script, nil
}

// applyEditScript replays script against s. Nothing is committed for the
// last step; the caller's StoreData does that.
func applyEditScript(s *setup.Session, script *EditScript) error {
	for i, step := range script.Steps {
		prefix := fmt.Sprintf("step[%d]", i)
		if err := selectStep(s, step); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}

		value, err := stepValue(step)
		if err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
		editor := s.Editor()
		if !value.IsZero() {
			editor.SetValue(value)
			if pos := s.Check(value); pos != nil {
				p, _ := editor.Current()
				logrus.Warnf("%s: expression for %s is invalid at offset %d: %s", prefix, p, pos.Offset, pos.Message)
			}
			if step.Active == nil {
				editor.SetActive(true)
			}
		}
		if step.Active != nil {
			editor.SetActive(*step.Active)
		}
	}
	return nil
}

func selectStep(s *setup.Session, step EditStep) error {
	switch {
	case len(step.Cell) > 0:
		if len(step.Cell) != 2 {
			return fmt.Errorf("cell must be [row, col], got %v", step.Cell)
		}
		if step.From != "" || step.To != "" {
			return fmt.Errorf("cell and from/to are mutually exclusive")
		}
		return s.SelectCell(step.Cell[0], step.Cell[1])
	case step.From != "" && step.To != "":
		return s.SelectPair(setup.Pair{From: step.From, To: step.To})
	default:
		return fmt.Errorf("step must name a cell or a from/to pair")
	}
}

func stepValue(step EditStep) (setup.Value, error) {
	switch {
	case step.Expression != "" && step.Distribution != nil:
		return setup.Value{}, fmt.Errorf("expression and distribution are mutually exclusive")
	case step.Distribution != nil:
		v := setup.DistributionValue(*step.Distribution)
		if err := setup.ValidateValue(v); err != nil {
			return setup.Value{}, err
		}
		return v, nil
	case step.Expression != "":
		return setup.ExpressionValue(step.Expression), nil
	default:
		return setup.Value{}, nil
	}
}

func init() {
	addModelFlags(editCmd)
	editCmd.Flags().StringVar(&editScriptPath, "script", "", "Path to the YAML edit script")
	_ = editCmd.MarkFlagRequired("script")
	rootCmd.AddCommand(editCmd)
}
