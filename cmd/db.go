package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/setupmatrix/setup/persist"
	"github.com/inference-sim/setupmatrix/setup/sqlite"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Copy models between YAML files and a SQLite model database",
}

var dbPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Store a YAML model file in the database",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		m, err := persist.Load(modelPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := m.Validate(); err != nil {
			logrus.Fatalf("Model file %s: %v", modelPath, err)
		}
		store := mustOpenDB(ctx)
		defer store.Close() //nolint:errcheck // process exits right after
		if err := store.PutModel(ctx, modelName, m); err != nil {
			logrus.Fatalf("Storing model failed: %v", err)
		}
		fmt.Printf("stored %q: %d client types, %d setup times\n", modelName, len(m.ClientTypes), len(m.SetupTimes))
	},
}

var dbPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Write a stored model to a YAML model file",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store := mustOpenDB(ctx)
		defer store.Close() //nolint:errcheck // process exits right after
		m, err := store.Model(ctx, modelName)
		if err != nil {
			logrus.Fatalf("Loading model failed: %v", err)
		}
		if err := persist.Save(modelPath, m); err != nil {
			logrus.Fatalf("%v", err)
		}
		fmt.Printf("wrote %q to %s\n", modelName, modelPath)
	},
}

var dbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored models",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store := mustOpenDB(ctx)
		defer store.Close() //nolint:errcheck // process exits right after
		names, err := store.ListModels(ctx)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
	},
}

func mustOpenDB(ctx context.Context) *sqlite.Store {
	path := dbPath
	if path == "" {
		path = envConfig.DBPath
	}
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		logrus.Fatalf("Opening model database failed: %v", err)
	}
	return store
}

func init() {
	for _, c := range []*cobra.Command{dbPushCmd, dbPullCmd} {
		c.Flags().StringVar(&modelPath, "model", "", "Path to the YAML model file")
		c.Flags().StringVar(&modelName, "name", "", "Model name inside the database")
		_ = c.MarkFlagRequired("model")
		_ = c.MarkFlagRequired("name")
	}
	dbCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite model database (default SETUPMATRIX_DB)")

	dbCmd.AddCommand(dbPushCmd)
	dbCmd.AddCommand(dbPullCmd)
	dbCmd.AddCommand(dbListCmd)
	rootCmd.AddCommand(dbCmd)
}
