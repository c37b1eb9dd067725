package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/setupmatrix/setup"
)

func TestReadCSVMatrix(t *testing.T) {
	input := `from,A,B
A,1,"exp(1/10)"
B,,2
`
	c, err := ReadCSVMatrix(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, "1", c["A"]["A"].String())
	assert.Equal(t, "exp(1/10)", c["A"]["B"].String())
	assert.Equal(t, "2", c["B"]["B"].String())
	_, ok := c["B"]["A"]
	assert.False(t, ok, "empty cell must be skipped")
}

func TestReadCSVMatrix_Empty(t *testing.T) {
	c, err := ReadCSVMatrix(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestReadCSVMatrix_Errors(t *testing.T) {
	tests := map[string]string{
		"header only one column": "from\n",
		"empty target":           "from,A,\n",
		"too many cells":         "from,A\nA,1,2\n",
		"empty source":           "from,A\n,1\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSVMatrix(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestModelFileSource_MergesIntoStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
client_types: [A, B]
setup_times:
  - from: A
    to: B
    kind: expression
    expression: "12"
`), 0644))

	var src Source = ModelFileSource{Path: path}
	c, err := src.Candidates()
	require.NoError(t, err)

	store := setup.NewStore()
	store.Set("A", "A", setup.ExpressionValue("1"))
	result, err := (&setup.MergeImporter{Resolve: setup.AcceptAll}).Merge(store, c)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, 2, store.Len())
}

func TestCSVMatrixSource_MissingFile(t *testing.T) {
	_, err := CSVMatrixSource{Path: filepath.Join(t.TempDir(), "none.csv")}.Candidates()
	assert.Error(t, err)
	_, err = CSVMatrixSource{}.Candidates()
	assert.Error(t, err)
}
