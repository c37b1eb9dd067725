package setup

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, records ...Record) *Session {
	t.Helper()
	s, err := Open(SessionConfig{
		ClientTypes: []ClientType{"A", "B"},
		MaxMemoryMB: 1024,
		Records:     records,
		Default:     defaultDist,
		Validator: func(expression string, known []string) *ErrorPosition {
			if expression == "bad" {
				return &ErrorPosition{Offset: 0, Message: "bad expression"}
			}
			return nil
		},
		Variables: []string{"w"},
	})
	require.NoError(t, err)
	return s
}

func TestOpen_AdmissionRejectsLargeModels(t *testing.T) {
	types := make([]ClientType, 501)
	for i := range types {
		types[i] = fmt.Sprintf("type-%d", i)
	}
	_, err := Open(SessionConfig{ClientTypes: types, MaxMemoryMB: 1024, Default: defaultDist})
	assert.True(t, errors.Is(err, ErrTooManyClientTypes))
}

func TestOpen_RejectsBadClientTypes(t *testing.T) {
	tests := map[string][]ClientType{
		"duplicate": {"A", "A"},
		"empty":     {"A", ""},
	}
	for name, types := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Open(SessionConfig{ClientTypes: types, MaxMemoryMB: 1024, Default: defaultDist})
			assert.Error(t, err)
		})
	}
}

func TestOpen_KeepsRecordsForUnknownTypes(t *testing.T) {
	s := newTestSession(t, Record{From: "A", To: "Z", Kind: "expression", Expression: "1"})
	_, ok := s.Store().Get("A", "Z")
	assert.True(t, ok)
	assert.Len(t, s.StoreData(), 1)
}

func TestSession_CellAddressing(t *testing.T) {
	s := newTestSession(t)
	p, err := s.Cell(0, 1)
	require.NoError(t, err)
	assert.Equal(t, Pair{From: "A", To: "B"}, p)

	_, err = s.Cell(2, 0)
	assert.Error(t, err)
	_, err = s.Cell(0, -1)
	assert.Error(t, err)

	cell, ok := s.CellOf(Pair{From: "B", To: "A"})
	require.True(t, ok)
	assert.Equal(t, Cell{Row: 1, Col: 0}, cell)
}

func TestSession_EditThenStoreData(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SelectCell(0, 1))
	s.Editor().SetValue(ExpressionValue("w*2"))
	s.Editor().SetActive(true)

	// pending edit is committed by StoreData even without navigation
	records := s.StoreData()
	require.Len(t, records, 1)
	assert.Equal(t, Record{From: "A", To: "B", Kind: "expression", Expression: "w*2"}, records[0])
}

func TestSession_SelectPairUnknownType(t *testing.T) {
	s := newTestSession(t)
	assert.Error(t, s.SelectPair(Pair{From: "A", To: "Q"}))
}

func TestSession_FillReloadsCurrentPair(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SelectCell(0, 0))
	s.Editor().SetValue(ExpressionValue("pending"))
	s.Editor().SetActive(true)

	require.NoError(t, s.Fill(FillDual, FillValues{Same: ExpressionValue("1"), Change: ExpressionValue("2")}))
	assert.Equal(t, "1", s.Editor().Value().String())
	assert.True(t, s.Editor().Active())
	assert.Equal(t, 4, s.Store().Len())
}

func TestSession_ImportCommitsPendingFirst(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SelectCell(1, 1))
	s.Editor().SetValue(ExpressionValue("7"))
	s.Editor().SetActive(true)

	c := Candidates{}
	c.Add("A", "B", ExpressionValue("9"))
	result, err := s.Import(c, CancelAll)
	require.NoError(t, err)
	assert.False(t, result.Applied)

	got, ok := s.Store().Get("B", "B")
	require.True(t, ok, "pending edit must be committed before the merge")
	assert.Equal(t, "7", got.String())
	_, ok = s.Store().Get("A", "B")
	assert.False(t, ok)
}

func TestSession_CheckIsDisplayOnly(t *testing.T) {
	s := newTestSession(t)
	assert.NotNil(t, s.Check(ExpressionValue("bad")))
	assert.Nil(t, s.Check(ExpressionValue("w")))
	assert.Nil(t, s.Check(defaultDist))

	require.NoError(t, s.SelectCell(0, 0))
	s.Editor().SetValue(ExpressionValue("bad"))
	s.Editor().SetActive(true)
	records := s.StoreData()
	require.Len(t, records, 1)
	assert.Equal(t, "bad", records[0].Expression)
}
