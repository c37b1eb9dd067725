package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SessionConfig holds everything needed to open a matrix editing session.
type SessionConfig struct {
	ClientTypes []ClientType // both axes, in display order
	MaxMemoryMB int64
	Records     []Record // persisted setup times
	Default     Value    // shown for pairs without a setup time
	Validator   Validator
	Variables   []string // model variables visible to expressions
}

// Session is one editor session over a setup-time matrix. The store is
// filled from persisted records on Open and converted back only by StoreData.
type Session struct {
	types     []ClientType
	index     map[ClientType]int
	store     *Store
	editor    *PendingEditController
	validator Validator
	variables []string
}

// Open checks admission, validates the client types and loads the records.
// When admission fails nothing is built and the error wraps ErrTooManyClientTypes.
func Open(cfg SessionConfig) (*Session, error) {
	if err := CheckAdmission(len(cfg.ClientTypes), cfg.MaxMemoryMB); err != nil {
		return nil, err
	}
	index := make(map[ClientType]int, len(cfg.ClientTypes))
	for i, t := range cfg.ClientTypes {
		if t == "" {
			return nil, fmt.Errorf("client type %d has an empty name", i)
		}
		if _, dup := index[t]; dup {
			return nil, fmt.Errorf("duplicate client type %q", t)
		}
		index[t] = i
	}
	if cfg.Default.IsZero() {
		return nil, fmt.Errorf("session requires a default setup value")
	}

	store := NewStore()
	if err := store.LoadRecords(cfg.Records); err != nil {
		return nil, fmt.Errorf("loading setup times: %w", err)
	}
	for _, p := range store.Pairs() {
		_, fromKnown := index[p.From]
		_, toKnown := index[p.To]
		if !fromKnown || !toKnown {
			logrus.Warnf("setup time %s references an unknown client type; keeping it", p)
		}
	}

	return &Session{
		types:     append([]ClientType(nil), cfg.ClientTypes...),
		index:     index,
		store:     store,
		editor:    NewPendingEditController(store, cfg.Default),
		validator: cfg.Validator,
		variables: append([]string(nil), cfg.Variables...),
	}, nil
}

// ClientTypes returns the matrix axes in display order.
func (s *Session) ClientTypes() []ClientType {
	return append([]ClientType(nil), s.types...)
}

// Store exposes the backing store. Writes made directly bypass the pending edit.
func (s *Session) Store() *Store { return s.store }

// Editor returns the pending-edit controller.
func (s *Session) Editor() *PendingEditController { return s.editor }

// Cell resolves a (row, col) position to its pair.
func (s *Session) Cell(row, col int) (Pair, error) {
	n := len(s.types)
	if row < 0 || row >= n || col < 0 || col >= n {
		return Pair{}, fmt.Errorf("cell (%d, %d) outside %dx%d matrix", row, col, n, n)
	}
	return Pair{From: s.types[row], To: s.types[col]}, nil
}

// CellOf returns the position of p, or false if either type is unknown.
func (s *Session) CellOf(p Pair) (Cell, bool) {
	row, ok1 := s.index[p.From]
	col, ok2 := s.index[p.To]
	if !ok1 || !ok2 {
		return Cell{}, false
	}
	return Cell{Row: row, Col: col}, true
}

// SelectCell selects the pair at (row, col), flushing the previous edit.
func (s *Session) SelectCell(row, col int) error {
	p, err := s.Cell(row, col)
	if err != nil {
		return err
	}
	s.editor.SelectPair(p)
	return nil
}

// SelectPair selects p, flushing the previous edit.
func (s *Session) SelectPair(p Pair) error {
	if _, ok := s.CellOf(p); !ok {
		return fmt.Errorf("pair %s references an unknown client type", p)
	}
	s.editor.SelectPair(p)
	return nil
}

// Fill commits the pending edit, applies policy to the whole matrix and
// reloads the current pair so the editor shows the new content.
func (s *Session) Fill(policy FillPolicy, values FillValues) error {
	s.editor.CommitNow()
	if err := Fill(policy, s.store, s.types, values); err != nil {
		return err
	}
	s.editor.Reload()
	return nil
}

// Import commits the pending edit and merges candidates, asking resolve
// to accept or cancel. The current pair is reloaded afterwards.
func (s *Session) Import(candidates Candidates, resolve Resolver) (MergeResult, error) {
	s.editor.CommitNow()
	importer := &MergeImporter{Resolve: resolve}
	result, err := importer.Merge(s.store, candidates)
	if err != nil {
		return result, err
	}
	s.editor.Reload()
	return result, nil
}

// Check reports the first problem in an expression value for display.
// Distributions and sessions without a validator always pass.
func (s *Session) Check(v Value) *ErrorPosition {
	formula, ok := v.Expression()
	if !ok || s.validator == nil {
		return nil
	}
	return s.validator(formula, s.variables)
}

// StoreData commits the pending edit and exports the matrix for persistence.
func (s *Session) StoreData() []Record {
	s.editor.CommitNow()
	return s.store.Records()
}
