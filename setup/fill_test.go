package setup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fillTypes = []ClientType{"A", "B", "C"}

func TestFill_Off_EmptiesMatrix(t *testing.T) {
	s := NewStore()
	s.Set("A", "B", ExpressionValue("1"))
	require.NoError(t, Fill(FillOff, s, fillTypes, FillValues{}))
	assert.False(t, s.IsActive())
}

func TestFill_Uniform_IncludesDiagonal(t *testing.T) {
	s := NewStore()
	v := ExpressionValue("3")
	require.NoError(t, Fill(FillUniform, s, fillTypes, FillValues{All: v}))
	assert.Equal(t, 9, s.Len())
	for _, i := range fillTypes {
		for _, j := range fillTypes {
			got, ok := s.Get(i, j)
			require.True(t, ok, "(%s, %s) unset", i, j)
			assert.True(t, got.Equal(v))
		}
	}
}

func TestFill_UniformOnChange_LeavesDiagonalUnset(t *testing.T) {
	s := NewStore()
	s.Set("A", "A", ExpressionValue("old"))
	v := DistributionValue(Distribution{Type: "constant", Params: map[string]float64{"value": 4}})
	require.NoError(t, Fill(FillUniformOnChange, s, fillTypes, FillValues{All: v}))

	for _, i := range fillTypes {
		for _, j := range fillTypes {
			got, ok := s.Get(i, j)
			if i == j {
				assert.False(t, ok, "diagonal (%s, %s) must be unset", i, j)
				continue
			}
			require.True(t, ok)
			assert.True(t, got.Equal(v))
		}
	}
}

func TestFill_Dual_Example(t *testing.T) {
	// GIVEN client types A, B
	s := NewStore()
	same := ExpressionValue("exp(1/10)")
	change := ExpressionValue("5")

	// WHEN filled with the dual policy
	require.NoError(t, Fill(FillDual, s, []ClientType{"A", "B"}, FillValues{Same: same, Change: change}))

	// THEN exactly four entries exist
	want := map[Pair]string{
		{From: "A", To: "A"}: "exp(1/10)",
		{From: "A", To: "B"}: "5",
		{From: "B", To: "A"}: "5",
		{From: "B", To: "B"}: "exp(1/10)",
	}
	assert.Equal(t, len(want), s.Len())
	for p, formula := range want {
		got, ok := s.Get(p.From, p.To)
		require.True(t, ok, "%s unset", p)
		assert.Equal(t, formula, got.String())
	}
}

func TestFill_Idempotent(t *testing.T) {
	values := FillValues{Same: ExpressionValue("1"), Change: ExpressionValue("2")}
	once := NewStore()
	require.NoError(t, Fill(FillDual, once, fillTypes, values))
	twice := NewStore()
	require.NoError(t, Fill(FillDual, twice, fillTypes, values))
	require.NoError(t, Fill(FillDual, twice, fillTypes, values))
	assert.True(t, once.Equal(twice))
}

func TestFill_MissingValueLeavesStoreUntouched(t *testing.T) {
	tests := []struct {
		name   string
		policy FillPolicy
		values FillValues
	}{
		{"uniform without value", FillUniform, FillValues{}},
		{"on-change without value", FillUniformOnChange, FillValues{Same: ExpressionValue("1")}},
		{"dual without change", FillDual, FillValues{Same: ExpressionValue("1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.Set("A", "B", ExpressionValue("keep"))
			assert.Error(t, Fill(tt.policy, s, fillTypes, tt.values))
			assert.Equal(t, 1, s.Len())
		})
	}
}

func TestParseFillPolicy(t *testing.T) {
	for name := range ValidFillPolicies {
		p, err := ParseFillPolicy(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.String())
	}
	_, err := ParseFillPolicy("diagonal")
	assert.True(t, errors.Is(err, ErrUnknownFillPolicy))
	assert.Contains(t, err.Error(), "off, uniform, uniform-on-change, dual")
}

func TestFillPolicy_NamesCoverEveryPolicy(t *testing.T) {
	policies := []FillPolicy{FillOff, FillUniform, FillUniformOnChange, FillDual}
	assert.Len(t, ValidFillPolicies, len(policies))
	for _, p := range policies {
		got, err := ParseFillPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	assert.Equal(t, "FillPolicy(9)", FillPolicy(9).String())
}
