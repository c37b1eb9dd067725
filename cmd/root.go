package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel    string // Log verbosity level
	maxMemoryMB int64  // Heap budget for the admission gate, 0 = detect
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "setupmatrix",
	Short: "Edit client-type setup-time matrices of simulation models",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("log") && envConfig.LogLevel != "" {
			logLevel = envConfig.LogLevel
		}
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	if err := loadEnvConfig(); err != nil {
		logrus.Fatalf("%v", err)
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().Int64Var(&maxMemoryMB, "max-memory-mb", 0, "Available memory in MB for the editor (0 = SETUPMATRIX_MAX_MEMORY_MB, GOMEMLIMIT or a quarter of physical memory)")
}
