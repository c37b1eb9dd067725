// Package importer provides external sources of setup times for the merge importer.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/setupmatrix/setup"
	"github.com/inference-sim/setupmatrix/setup/persist"
)

// Source yields merge candidates. An empty result is not an error here;
// the merge importer rejects it.
type Source interface {
	Candidates() (setup.Candidates, error)
}

// ModelFileSource imports the setup times of another model file.
type ModelFileSource struct {
	Path string
}

func (s ModelFileSource) Candidates() (setup.Candidates, error) {
	m, err := persist.Load(s.Path)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("model file %s: %w", s.Path, err)
	}
	return m.Candidates()
}

// CSVMatrixSource imports a matrix from CSV. The header row lists target
// client types after one leading cell; every further row starts with the
// source client type. Non-empty cells are expressions, empty cells are skipped.
type CSVMatrixSource struct {
	Path string
}

func (s CSVMatrixSource) Candidates() (setup.Candidates, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("CSV matrix path must not be empty")
	}
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV matrix %s: %w", s.Path, err)
	}
	defer file.Close() //nolint:errcheck // read-only file

	c, err := ReadCSVMatrix(file)
	if err != nil {
		return nil, fmt.Errorf("CSV matrix %s: %w", s.Path, err)
	}
	return c, nil
}

// ReadCSVMatrix parses the CSV matrix format of CSVMatrixSource.
func ReadCSVMatrix(r io.Reader) (setup.Candidates, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return setup.Candidates{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("header must list at least one target client type")
	}
	targets := make([]setup.ClientType, len(header)-1)
	for i, name := range header[1:] {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("header column %d: empty client type", i+1)
		}
		targets[i] = name
	}

	c := setup.Candidates{}
	rowIdx := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowIdx, err)
		}
		rowIdx++
		from := strings.TrimSpace(record[0])
		if from == "" {
			return nil, fmt.Errorf("row %d: empty client type", rowIdx)
		}
		if len(record)-1 > len(targets) {
			return nil, fmt.Errorf("row %d: %d cells for %d client types", rowIdx, len(record)-1, len(targets))
		}
		for i, cell := range record[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			c.Add(from, targets[i], setup.ExpressionValue(cell))
		}
	}
	logrus.Debugf("CSV matrix: %d rows, %d setup times", rowIdx, c.Len())
	return c, nil
}
