package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/setupmatrix/setup"
	"github.com/inference-sim/setupmatrix/setup/expr"
	"github.com/inference-sim/setupmatrix/setup/persist"
	"github.com/inference-sim/setupmatrix/setup/sqlite"
)

var (
	modelPath string // YAML model file
	dbPath    string // SQLite model database
	modelName string // model name inside the database
)

func addModelFlags(c *cobra.Command) {
	c.Flags().StringVar(&modelPath, "model", "", "Path to the YAML model file")
	c.Flags().StringVar(&dbPath, "db", "", "Path to the SQLite model database (default SETUPMATRIX_DB)")
	c.Flags().StringVar(&modelName, "name", "", "Model name inside the database")
}

// modelHandle is a loaded model together with where to store it back.
type modelHandle struct {
	file *persist.ModelFile
	path string
	db   *sqlite.Store
	name string
}

// openModel loads the model named by the --model or --db/--name flags.
func openModel(ctx context.Context, path, db, name string) (*modelHandle, error) {
	if db == "" && path == "" {
		db = envConfig.DBPath
	}
	switch {
	case path != "" && db != "":
		return nil, fmt.Errorf("--model and --db are mutually exclusive")
	case path != "":
		m, err := persist.Load(path)
		if err != nil {
			return nil, err
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("model file %s: %w", path, err)
		}
		return &modelHandle{file: m, path: path}, nil
	case db != "":
		if name == "" {
			return nil, fmt.Errorf("--name is required with --db")
		}
		store, err := sqlite.Open(ctx, db)
		if err != nil {
			return nil, err
		}
		m, err := store.Model(ctx, name)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		return &modelHandle{file: m, db: store, name: name}, nil
	default:
		return nil, fmt.Errorf("one of --model or --db is required")
	}
}

// session opens an editing session over the model's matrix.
func (h *modelHandle) session(memMB int64) (*setup.Session, error) {
	return setup.Open(setup.SessionConfig{
		ClientTypes: h.file.ClientTypes,
		MaxMemoryMB: memMB,
		Records:     h.file.SetupTimes,
		Default:     h.file.DefaultValue(),
		Validator:   expr.Validate,
		Variables:   h.file.VariableNames(),
	})
}

// save stores the session data back to where the model came from.
func (h *modelHandle) save(ctx context.Context, records []setup.Record) error {
	h.file.SetupTimes = records
	if h.db != nil {
		if err := h.db.SaveSetupTimes(ctx, h.name, records); err != nil {
			return err
		}
		logrus.Infof("Saved %d setup times to model %q", len(records), h.name)
		return nil
	}
	if err := persist.Save(h.path, h.file); err != nil {
		return err
	}
	logrus.Infof("Saved %d setup times to %s", len(records), h.path)
	return nil
}

func (h *modelHandle) close() {
	if h.db != nil {
		if err := h.db.Close(); err != nil {
			logrus.Warnf("closing model database: %v", err)
		}
	}
}

// mustOpenSession loads the model from flags and opens a session, exiting on failure.
func mustOpenSession(ctx context.Context) (*modelHandle, *setup.Session) {
	h, err := openModel(ctx, modelPath, dbPath, modelName)
	if err != nil {
		logrus.Fatalf("Loading model failed: %v", err)
	}
	s, err := h.session(availableMemoryMB(maxMemoryMB, envConfig))
	if err != nil {
		h.close()
		logrus.Fatalf("Cannot open setup matrix: %v", err)
	}
	return h, s
}
