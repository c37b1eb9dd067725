// Package persist reads and writes simulation model files holding the
// client types and the setup-time matrix in YAML.
package persist

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/setupmatrix/setup"
)

// CurrentVersion is written by Save.
const CurrentVersion = "1"

// DefaultDistribution is shown for unset pairs when a model names none.
var DefaultDistribution = setup.Distribution{Type: "exponential", Params: map[string]float64{"mean": 1}}

// ModelFile is the persisted part of a simulation model the matrix editor
// needs. Loaded from YAML via Load(path).
type ModelFile struct {
	Version     string              `yaml:"version"`
	ClientTypes []setup.ClientType  `yaml:"client_types"`
	Variables   map[string]float64  `yaml:"variables,omitempty"` // name -> preview value
	Default     *setup.Distribution `yaml:"default_distribution,omitempty"`
	SetupTimes  []setup.Record      `yaml:"setup_times,omitempty"`
}

// Load reads and parses a model file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Load(path string) (*ModelFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	var m ModelFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("parsing model file %s: %w", path, err)
	}
	if m.Version == "" {
		m.Version = CurrentVersion
	}
	return &m, nil
}

// Save writes m to path, replacing any existing file.
func Save(path string, m *ModelFile) error {
	m.Version = CurrentVersion
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshalling model file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*.yaml")
	if err != nil {
		return fmt.Errorf("writing model file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing model file: %w", err)
	}
	return nil
}

// Validate checks client types, variables, the default distribution and
// every setup-time record.
func (m *ModelFile) Validate() error {
	seen := make(map[setup.ClientType]bool, len(m.ClientTypes))
	for i, t := range m.ClientTypes {
		if t == "" {
			return fmt.Errorf("client_types[%d]: empty name", i)
		}
		if seen[t] {
			return fmt.Errorf("client_types[%d]: duplicate client type %q", i, t)
		}
		seen[t] = true
	}
	for name, v := range m.Variables {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("variables.%s must be a finite number, got %f", name, v)
		}
	}
	if m.Default != nil {
		if err := setup.ValidateValue(setup.DistributionValue(*m.Default)); err != nil {
			return fmt.Errorf("default_distribution: %w", err)
		}
	}
	if err := setup.NewStore().LoadRecords(m.SetupTimes); err != nil {
		return fmt.Errorf("setup_times: %w", err)
	}
	return nil
}

// DefaultValue returns the value shown for unset pairs.
func (m *ModelFile) DefaultValue() setup.Value {
	if m.Default != nil {
		return setup.DistributionValue(*m.Default)
	}
	return setup.DistributionValue(DefaultDistribution)
}

// VariableNames returns the model variables in sorted order.
func (m *ModelFile) VariableNames() []string {
	names := make([]string, 0, len(m.Variables))
	for name := range m.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Candidates converts the setup times into merge candidates.
func (m *ModelFile) Candidates() (setup.Candidates, error) {
	c := setup.Candidates{}
	for i, r := range m.SetupTimes {
		v, err := r.Value()
		if err != nil {
			return nil, fmt.Errorf("setup_times[%d]: %w", i, err)
		}
		c.Add(r.From, r.To, v)
	}
	return c, nil
}
