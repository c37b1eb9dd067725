package setup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultDist = DistributionValue(Distribution{Type: "exponential", Params: map[string]float64{"mean": 100}})

func TestPendingEdit_FlushOnNavigation(t *testing.T) {
	// GIVEN an empty store and an Idle controller
	store := NewStore()
	c := NewPendingEditController(store, defaultDist)
	a := Pair{From: "A", To: "B"}
	b := Pair{From: "B", To: "A"}
	v1 := ExpressionValue("5")

	// WHEN pair A is edited and the user moves to B
	c.SelectPair(a)
	c.SetValue(v1)
	c.SetActive(true)
	_, ok := store.Get(a.From, a.To)
	assert.False(t, ok, "no store write before navigation")
	c.SelectPair(b)

	// THEN A was written on the A -> B transition
	got, ok := store.Get(a.From, a.To)
	require.True(t, ok)
	assert.True(t, got.Equal(v1))

	// AND reloading A shows V1 as active
	c.SelectPair(a)
	assert.True(t, c.Value().Equal(v1))
	assert.True(t, c.Active())
}

func TestPendingEdit_DeactivationRemoves(t *testing.T) {
	store := NewStore()
	a := Pair{From: "A", To: "A"}
	store.Set(a.From, a.To, ExpressionValue("3"))
	c := NewPendingEditController(store, defaultDist)

	c.SelectPair(a)
	assert.True(t, c.Active(), "stored pair loads as active")
	c.SetValue(ExpressionValue("7"))
	c.SetActive(false)
	c.SelectPair(Pair{From: "A", To: "B"})

	_, ok := store.Get(a.From, a.To)
	assert.False(t, ok)
}

func TestPendingEdit_UnsetPairLoadsDefaultInactive(t *testing.T) {
	store := NewStore()
	c := NewPendingEditController(store, defaultDist)
	c.SelectPair(Pair{From: "A", To: "B"})

	assert.False(t, c.Active())
	assert.True(t, c.Value().Equal(defaultDist))

	// leaving without activating writes nothing
	c.SelectPair(Pair{From: "B", To: "B"})
	assert.False(t, store.IsActive())
}

func TestPendingEdit_FirstSelectionDoesNotFlush(t *testing.T) {
	store := NewStore()
	c := NewPendingEditController(store, defaultDist)
	_, editing := c.Current()
	assert.False(t, editing)

	c.CommitNow() // Idle: nothing to flush
	c.SelectPair(Pair{From: "A", To: "A"})
	assert.False(t, store.IsActive())

	p, editing := c.Current()
	assert.True(t, editing)
	assert.Equal(t, Pair{From: "A", To: "A"}, p)
}

func TestPendingEdit_ReselectSamePairKeepsPendingState(t *testing.T) {
	store := NewStore()
	c := NewPendingEditController(store, defaultDist)
	a := Pair{From: "A", To: "B"}
	c.SelectPair(a)
	c.SetValue(ExpressionValue("9"))
	c.SetActive(true)

	c.SelectPair(a)
	assert.Equal(t, "9", c.Value().String())
	assert.True(t, c.Active())
	assert.False(t, store.IsActive())
}

func TestPendingEdit_CommitNowIsIdempotent(t *testing.T) {
	store := NewStore()
	c := NewPendingEditController(store, defaultDist)
	c.SelectPair(Pair{From: "A", To: "B"})
	c.SetValue(ExpressionValue("2*x"))
	c.SetActive(true)

	c.CommitNow()
	first := NewStore()
	require.NoError(t, first.LoadRecords(store.Records()))
	c.CommitNow()

	assert.True(t, store.Equal(first))
	p, editing := c.Current()
	assert.True(t, editing, "CommitNow must not leave the Editing state")
	assert.Equal(t, Pair{From: "A", To: "B"}, p)
}

func TestPendingEdit_InvalidExpressionStillFlushed(t *testing.T) {
	store := NewStore()
	c := NewPendingEditController(store, defaultDist)
	c.SelectPair(Pair{From: "A", To: "B"})
	c.SetValue(ExpressionValue("1 +* ("))
	c.SetActive(true)
	c.CommitNow()

	got, ok := store.Get("A", "B")
	require.True(t, ok)
	assert.Equal(t, "1 +* (", got.String())
}

func TestPendingEdit_ReloadDiscardsPending(t *testing.T) {
	store := NewStore()
	c := NewPendingEditController(store, defaultDist)
	c.SelectPair(Pair{From: "A", To: "B"})
	c.SetValue(ExpressionValue("1"))
	c.SetActive(true)

	store.Set("A", "B", ExpressionValue("42"))
	c.Reload()
	assert.Equal(t, "42", c.Value().String())
	assert.True(t, c.Active())
}
