package setup

import "github.com/sirupsen/logrus"

// PendingEditController holds at most one uncommitted cell edit.
//
// It has two states: Idle (nothing selected) and Editing(pair). Moving to a
// different pair flushes the pending edit into the store first: an active
// edit is written, an inactive one removes the pair. Nothing reaches the
// store between flushes.
type PendingEditController struct {
	store        *Store
	defaultValue Value

	editing bool
	pair    Pair
	value   Value
	active  bool
}

// NewPendingEditController creates an Idle controller over store.
// defaultValue is shown for pairs that have no stored value.
func NewPendingEditController(store *Store, defaultValue Value) *PendingEditController {
	return &PendingEditController{store: store, defaultValue: defaultValue}
}

// SelectPair flushes the edit of the previously selected pair, if it differs
// from p, then loads p. Selecting the pair already being edited is a no-op.
func (c *PendingEditController) SelectPair(p Pair) {
	if c.editing {
		if c.pair == p {
			return
		}
		c.flush()
	}
	c.pair = p
	c.editing = true
	c.load()
}

// Current returns the pair being edited, or false when Idle.
func (c *PendingEditController) Current() (Pair, bool) {
	return c.pair, c.editing
}

// Value returns the pending value of the current pair.
func (c *PendingEditController) Value() Value { return c.value }

// Active reports whether the current pair will be written on the next flush.
func (c *PendingEditController) Active() bool { return c.active }

// SetValue replaces the pending value. The store is not touched.
func (c *PendingEditController) SetValue(v Value) { c.value = v }

// SetActive toggles whether the pending value is written or the pair removed
// on the next flush.
func (c *PendingEditController) SetActive(active bool) { c.active = active }

// CommitNow flushes the current edit without changing state. Idle is a no-op.
func (c *PendingEditController) CommitNow() {
	if c.editing {
		c.flush()
	}
}

// Reload discards the pending edit and reloads the current pair from the store.
func (c *PendingEditController) Reload() {
	if c.editing {
		c.load()
	}
}

func (c *PendingEditController) flush() {
	if c.active && !c.value.IsZero() {
		logrus.Debugf("setup matrix: commit %s = %s", c.pair, c.value)
		c.store.Set(c.pair.From, c.pair.To, c.value)
		return
	}
	logrus.Debugf("setup matrix: clear %s", c.pair)
	c.store.Remove(c.pair.From, c.pair.To)
}

func (c *PendingEditController) load() {
	if v, ok := c.store.Get(c.pair.From, c.pair.To); ok {
		c.value = v
		c.active = true
		return
	}
	c.value = c.defaultValue
	c.active = false
}
