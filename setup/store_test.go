package setup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetThenGet(t *testing.T) {
	s := NewStore()
	values := []Value{
		ExpressionValue("5"),
		ExpressionValue("exp(1/10)"),
		DistributionValue(Distribution{Type: "exponential", Params: map[string]float64{"mean": 10}}),
	}
	for _, v := range values {
		s.Set("A", "B", v)
		got, ok := s.Get("A", "B")
		require.True(t, ok)
		assert.True(t, got.Equal(v), "got %s, want %s", got, v)
	}
	assert.Equal(t, 1, s.Len())
}

func TestStore_RemoveThenGet(t *testing.T) {
	s := NewStore()
	s.Set("A", "A", ExpressionValue("1"))
	s.Remove("A", "A")
	_, ok := s.Get("A", "A")
	assert.False(t, ok)
	assert.False(t, s.IsActive())

	// absent pair
	s.Remove("X", "Y")
	assert.Equal(t, 0, s.Len())
}

func TestStore_ClearAndIsActive(t *testing.T) {
	s := NewStore()
	assert.False(t, s.IsActive())
	s.Set("A", "B", ExpressionValue("1"))
	s.Set("B", "A", ExpressionValue("2"))
	assert.True(t, s.IsActive())
	s.Clear()
	assert.False(t, s.IsActive())
	assert.Empty(t, s.Pairs())
}

func TestStore_DirectionMatters(t *testing.T) {
	s := NewStore()
	s.Set("A", "B", ExpressionValue("1"))
	_, ok := s.Get("B", "A")
	assert.False(t, ok, "(B, A) must be distinct from (A, B)")
}

func TestStore_RecordsRoundTrip(t *testing.T) {
	s := NewStore()
	s.Set("B", "A", ExpressionValue("w+1"))
	s.Set("A", "A", DistributionValue(Distribution{Type: "gamma", Params: map[string]float64{"shape": 2, "scale": 3}}))
	s.Set("A", "B", ExpressionValue("not valid ((("))

	records := s.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "A", records[0].From)
	assert.Equal(t, "A", records[0].To)
	assert.Equal(t, "distribution", records[0].Kind)
	assert.Equal(t, "expression", records[1].Kind)
	assert.Equal(t, "not valid (((", records[1].Expression)

	loaded := NewStore()
	require.NoError(t, loaded.LoadRecords(records))
	assert.True(t, loaded.Equal(s))
}

func TestStore_LoadRecords_RejectsMalformedWithoutWriting(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{"unknown kind", Record{From: "A", To: "B", Kind: "table"}},
		{"distribution missing", Record{From: "A", To: "B", Kind: "distribution"}},
		{"unknown distribution", Record{From: "A", To: "B", Kind: "distribution", Distribution: &Distribution{Type: "zipf"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			err := s.LoadRecords([]Record{{From: "A", To: "A", Kind: "expression", Expression: "1"}, tt.record})
			assert.Error(t, err)
			assert.False(t, s.IsActive(), "no record may be written when one is malformed")
		})
	}
}

func TestStore_LoadRecords_RejectsDuplicatePair(t *testing.T) {
	s := NewStore()
	err := s.LoadRecords([]Record{
		{From: "A", To: "B", Kind: "expression", Expression: "1"},
		{From: "B", To: "A", Kind: "expression", Expression: "2"},
		{From: "A", To: "B", Kind: "expression", Expression: "3"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicatePair))
	assert.Contains(t, err.Error(), "record[2] A -> B")
	assert.False(t, s.IsActive())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.Set("A", "B", ExpressionValue("1"))
	snap := s.Snapshot()
	s.Set("A", "B", ExpressionValue("2"))
	v, ok := snap.Get("A", "B")
	require.True(t, ok)
	assert.Equal(t, "1", v.String())
}
