package setup

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ClientType names a category of simulation entity. Both matrix axes use it.
type ClientType = string

// Pair is an ordered transition from one client type to another.
// From == To is legal and describes a re-setup on the same type.
type Pair struct {
	From ClientType
	To   ClientType
}

func (p Pair) String() string { return p.From + " -> " + p.To }

// Less orders pairs by From, then To.
func (p Pair) Less(o Pair) bool {
	if p.From != o.From {
		return p.From < o.From
	}
	return p.To < o.To
}

// Cell addresses a pair by its position in the ordered client-type list.
type Cell struct {
	Row int // index of the From type
	Col int // index of the To type
}

// Snapshot is a nested copy of store content, keyed from -> to.
type Snapshot map[ClientType]map[ClientType]Value

// Get returns the value stored for (from, to), if any.
func (s Snapshot) Get(from, to ClientType) (Value, bool) {
	row, ok := s[from]
	if !ok {
		return Value{}, false
	}
	v, ok := row[to]
	return v, ok
}

// Store is the sparse setup-time relation. A missing pair means the host
// engine's default applies. Store performs no validation and never errors.
type Store struct {
	entries map[Pair]Value
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[Pair]Value)}
}

// Get returns the value for (from, to) and whether one is set.
func (s *Store) Get(from, to ClientType) (Value, bool) {
	v, ok := s.entries[Pair{From: from, To: to}]
	return v, ok
}

// Set overwrites the value for (from, to).
func (s *Store) Set(from, to ClientType, v Value) {
	s.entries[Pair{From: from, To: to}] = v
}

// Remove deletes the value for (from, to). Removing an absent pair is a no-op.
func (s *Store) Remove(from, to ClientType) {
	delete(s.entries, Pair{From: from, To: to})
}

// Clear removes every entry.
func (s *Store) Clear() {
	clear(s.entries)
}

// IsActive reports whether at least one setup time is configured.
func (s *Store) IsActive() bool {
	return len(s.entries) > 0
}

// Len returns the number of configured pairs.
func (s *Store) Len() int {
	return len(s.entries)
}

// Pairs returns all configured pairs in sorted order.
func (s *Store) Pairs() []Pair {
	pairs := make([]Pair, 0, len(s.entries))
	for p := range s.entries {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Less(pairs[j]) })
	return pairs
}

// Snapshot copies the current content into a nested map.
func (s *Store) Snapshot() Snapshot {
	snap := make(Snapshot)
	for p, v := range s.entries {
		row, ok := snap[p.From]
		if !ok {
			row = make(map[ClientType]Value)
			snap[p.From] = row
		}
		row[p.To] = v
	}
	return snap
}

// Equal reports whether both stores hold the same pairs with equal values.
func (s *Store) Equal(o *Store) bool {
	if len(s.entries) != len(o.entries) {
		return false
	}
	for p, v := range s.entries {
		ov, ok := o.entries[p]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Record is the persisted form of one store entry.
// Exactly one of Expression and Distribution is meaningful, selected by Kind.
type Record struct {
	From         ClientType    `yaml:"from"`
	To           ClientType    `yaml:"to"`
	Kind         string        `yaml:"kind"`
	Expression   string        `yaml:"expression,omitempty"`
	Distribution *Distribution `yaml:"distribution,omitempty"`
}

// Value converts the record into a store value.
func (r Record) Value() (Value, error) {
	kind, err := ParseValueKind(r.Kind)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", Pair{From: r.From, To: r.To}, err)
	}
	switch kind {
	case KindDistribution:
		if r.Distribution == nil {
			return Value{}, fmt.Errorf("%s: distribution record without distribution", Pair{From: r.From, To: r.To})
		}
		return DistributionValue(*r.Distribution), nil
	default:
		return ExpressionValue(r.Expression), nil
	}
}

// RecordOf builds the persisted form of (p, v).
func RecordOf(p Pair, v Value) Record {
	rec := Record{From: p.From, To: p.To, Kind: v.Kind().String()}
	switch v.Kind() {
	case KindDistribution:
		d, _ := v.Distribution()
		rec.Distribution = &d
	case KindExpression:
		rec.Expression, _ = v.Expression()
	}
	return rec
}

// Records exports the store content in sorted pair order.
func (s *Store) Records() []Record {
	pairs := s.Pairs()
	records := make([]Record, 0, len(pairs))
	for _, p := range pairs {
		records = append(records, RecordOf(p, s.entries[p]))
	}
	return records
}

// ErrDuplicatePair is returned when a record list names the same pair twice.
var ErrDuplicatePair = errors.New("duplicate pair")

// LoadRecords adds records to the store. Records are checked before any
// write, so a malformed record or a repeated pair leaves the store unchanged.
func (s *Store) LoadRecords(records []Record) error {
	values := make([]Value, len(records))
	seen := make(map[Pair]bool, len(records))
	for i, r := range records {
		pair := Pair{From: r.From, To: r.To}
		if seen[pair] {
			return fmt.Errorf("record[%d] %s: %w", i, pair, ErrDuplicatePair)
		}
		seen[pair] = true
		v, err := r.Value()
		if err != nil {
			return fmt.Errorf("record[%d]: %w", i, err)
		}
		if err := ValidateValue(v); err != nil {
			return fmt.Errorf("record[%d] %s: %w", i, pair, err)
		}
		values[i] = v
	}
	for i, r := range records {
		s.Set(r.From, r.To, values[i])
	}
	return nil
}

// ValidateValue checks the structural well-formedness of v. Expressions are
// not parsed here; syntax is the validator's concern and never blocks storage.
func ValidateValue(v Value) error {
	switch v.Kind() {
	case KindDistribution:
		d, _ := v.Distribution()
		if !ValidDistributionTypes[d.Type] {
			return fmt.Errorf("unknown distribution type %q", d.Type)
		}
		for name, p := range d.Params {
			if math.IsNaN(p) || math.IsInf(p, 0) {
				return fmt.Errorf("distribution param %s must be a finite number, got %f", name, p)
			}
		}
		return nil
	case KindExpression:
		return nil
	default:
		return fmt.Errorf("setup value has no kind")
	}
}
