package setup

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// ErrEmptyImport is returned when an import source yielded no values.
var ErrEmptyImport = errors.New("import source contains no setup times")

// Candidates are externally sourced setup times keyed from -> to.
type Candidates map[ClientType]map[ClientType]Value

// Add sets the candidate for (from, to).
func (c Candidates) Add(from, to ClientType, v Value) {
	row, ok := c[from]
	if !ok {
		row = make(map[ClientType]Value)
		c[from] = row
	}
	row[to] = v
}

// Len counts candidate pairs.
func (c Candidates) Len() int {
	n := 0
	for _, row := range c {
		n += len(row)
	}
	return n
}

// Conflict shows one imported pair next to the value it would replace.
type Conflict struct {
	Pair   Pair
	Old    Value
	HasOld bool
	New    Value
}

// Changed reports whether applying the conflict alters the store.
func (c Conflict) Changed() bool {
	return !c.HasOld || !c.Old.Equal(c.New)
}

// Resolver decides, for the whole import, whether to apply the candidates.
type Resolver func(conflicts []Conflict) bool

// AcceptAll applies every import.
func AcceptAll([]Conflict) bool { return true }

// CancelAll rejects every import.
func CancelAll([]Conflict) bool { return false }

// MergeResult describes a finished merge.
type MergeResult struct {
	Old       Snapshot   // store content before the merge
	Conflicts []Conflict // one per candidate pair, sorted by pair
	Applied   bool
}

// MergeImporter merges candidate values into a store after a single
// accept or cancel decision.
type MergeImporter struct {
	Resolve Resolver
}

// Merge presents every candidate next to its current value and, if the
// resolver accepts, writes all candidates. Pairs without a candidate keep
// their values. A cancelled merge writes nothing, and a nil Resolve cancels.
func (m *MergeImporter) Merge(store *Store, candidates Candidates) (MergeResult, error) {
	if candidates.Len() == 0 {
		return MergeResult{}, ErrEmptyImport
	}
	for from, row := range candidates {
		for to, v := range row {
			if v.IsZero() {
				return MergeResult{}, fmt.Errorf("import candidate %s has no value", Pair{From: from, To: to})
			}
		}
	}
	old := store.Snapshot()
	conflicts := make([]Conflict, 0, candidates.Len())
	for from, row := range candidates {
		for to, v := range row {
			prev, ok := old.Get(from, to)
			conflicts = append(conflicts, Conflict{Pair: Pair{From: from, To: to}, Old: prev, HasOld: ok, New: v})
		}
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Pair.Less(conflicts[j].Pair) })

	result := MergeResult{Old: old, Conflicts: conflicts}
	resolve := m.Resolve
	if resolve == nil {
		resolve = CancelAll
	}
	if !resolve(conflicts) {
		logrus.Infof("setup matrix: import of %d setup times cancelled", len(conflicts))
		return result, nil
	}
	for _, c := range conflicts {
		store.Set(c.Pair.From, c.Pair.To, c.New)
	}
	result.Applied = true
	logrus.Infof("setup matrix: imported %d setup times", len(conflicts))
	return result, nil
}
