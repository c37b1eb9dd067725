package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/setupmatrix/setup"
)

var (
	fillPolicyName string
	fillValue      string
	fillValueDist  string
	fillSame       string
	fillSameDist   string
	fillChange     string
	fillChangeDist string
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Populate the whole setup-time matrix with a fill policy",
	Long: `Clear the setup-time matrix and repopulate it:
  off                 leave the matrix empty
  uniform             --value for every pair
  uniform-on-change   --value for every pair of different client types
  dual                --same on the diagonal, --change everywhere else`,
	Run: func(cmd *cobra.Command, args []string) {
		policy, err := setup.ParseFillPolicy(fillPolicyName)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		values, err := fillValuesFromFlags()
		if err != nil {
			logrus.Fatalf("Invalid fill value: %v", err)
		}

		ctx := context.Background()
		h, s := mustOpenSession(ctx)
		defer h.close()

		if err := s.Fill(policy, values); err != nil {
			logrus.Fatalf("Fill failed: %v", err)
		}
		if err := h.save(ctx, s.StoreData()); err != nil {
			logrus.Fatalf("Saving model failed: %v", err)
		}
		fmt.Printf("%s: %d setup times\n", policy, s.Store().Len())
	},
}

func fillValuesFromFlags() (setup.FillValues, error) {
	var values setup.FillValues
	var err error
	if values.All, err = parseValue(fillValue, fillValueDist); err != nil {
		return values, fmt.Errorf("--value: %w", err)
	}
	if values.Same, err = parseValue(fillSame, fillSameDist); err != nil {
		return values, fmt.Errorf("--same: %w", err)
	}
	if values.Change, err = parseValue(fillChange, fillChangeDist); err != nil {
		return values, fmt.Errorf("--change: %w", err)
	}
	return values, nil
}

func init() {
	addModelFlags(fillCmd)
	fillCmd.Flags().StringVar(&fillPolicyName, "policy", "", "Fill policy (off, uniform, uniform-on-change, dual)")
	fillCmd.Flags().StringVar(&fillValue, "value", "", "Expression for uniform policies")
	fillCmd.Flags().StringVar(&fillValueDist, "value-dist", "", "Distribution for uniform policies, e.g. exponential:mean=10")
	fillCmd.Flags().StringVar(&fillSame, "same", "", "Expression for same-type pairs (dual)")
	fillCmd.Flags().StringVar(&fillSameDist, "same-dist", "", "Distribution for same-type pairs (dual)")
	fillCmd.Flags().StringVar(&fillChange, "change", "", "Expression for type changes (dual)")
	fillCmd.Flags().StringVar(&fillChangeDist, "change-dist", "", "Distribution for type changes (dual)")
	_ = fillCmd.MarkFlagRequired("policy")
	rootCmd.AddCommand(fillCmd)
}
