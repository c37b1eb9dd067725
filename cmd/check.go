package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/setupmatrix/setup"
)

var checkClientTypes int

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether the matrix editor may open for a number of client types",
	Run: func(cmd *cobra.Command, args []string) {
		mem := availableMemoryMB(maxMemoryMB, envConfig)
		if err := setup.CheckAdmission(checkClientTypes, mem); err != nil {
			logrus.Fatalf("Cannot open setup matrix: %v", err)
		}
		fmt.Printf("ok: %d client types, %d MB available\n", checkClientTypes, mem)
	},
}

func init() {
	checkCmd.Flags().IntVar(&checkClientTypes, "client-types", 0, "Number of client types")
	_ = checkCmd.MarkFlagRequired("client-types")
	rootCmd.AddCommand(checkCmd)
}
