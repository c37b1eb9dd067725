package setup

import (
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"
)

// ValueKind tags the active variant of a Value.
type ValueKind int

const (
	// KindNone marks the zero Value. It is never stored.
	KindNone ValueKind = iota
	KindDistribution
	KindExpression
)

// String returns the persisted name of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindDistribution:
		return "distribution"
	case KindExpression:
		return "expression"
	default:
		return "none"
	}
}

// ParseValueKind maps a persisted kind name back to its ValueKind.
func ParseValueKind(name string) (ValueKind, error) {
	switch name {
	case "distribution":
		return KindDistribution, nil
	case "expression":
		return KindExpression, nil
	default:
		return KindNone, fmt.Errorf("unknown setup value kind %q; valid: distribution, expression", name)
	}
}

// Distribution parameterizes a setup-time probability distribution.
// The matrix never samples it; the host engine does.
type Distribution struct {
	Type   string             `yaml:"type" json:"type"`
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
}

// ValidDistributionTypes is the set of distribution names the host engine understands.
var ValidDistributionTypes = map[string]bool{
	"exponential": true, "gaussian": true, "lognormal": true, "gamma": true,
	"uniform": true, "constant": true, "erlang": true, "triangular": true,
}

// Equal reports whether d and o describe the same distribution.
func (d Distribution) Equal(o Distribution) bool {
	return d.Type == o.Type && maps.Equal(d.Params, o.Params)
}

// String renders the distribution as type(k=v,...) with sorted parameter names.
func (d Distribution) String() string {
	keys := make([]string, 0, len(d.Params))
	for k := range d.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strconv.FormatFloat(d.Params[k], 'g', -1, 64))
	}
	return d.Type + "(" + strings.Join(parts, ",") + ")"
}

// Value is a single setup time: either a distribution or an expression, never both.
// The zero Value has KindNone.
type Value struct {
	kind ValueKind
	dist Distribution
	expr string
}

// DistributionValue wraps d. Params are copied so later mutation of the
// caller's map does not leak into stored values.
func DistributionValue(d Distribution) Value {
	return Value{kind: KindDistribution, dist: Distribution{Type: d.Type, Params: maps.Clone(d.Params)}}
}

// ExpressionValue wraps a formula. The formula is kept verbatim, valid or not.
func ExpressionValue(formula string) Value {
	return Value{kind: KindExpression, expr: formula}
}

// Kind returns the active variant.
func (v Value) Kind() ValueKind { return v.kind }

// IsZero reports whether v carries no variant.
func (v Value) IsZero() bool { return v.kind == KindNone }

// Distribution returns the distribution variant.
func (v Value) Distribution() (Distribution, bool) {
	if v.kind != KindDistribution {
		return Distribution{}, false
	}
	return Distribution{Type: v.dist.Type, Params: maps.Clone(v.dist.Params)}, true
}

// Expression returns the expression variant.
func (v Value) Expression() (string, bool) {
	if v.kind != KindExpression {
		return "", false
	}
	return v.expr, true
}

// Equal reports whether v and o hold the same variant with the same content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindDistribution:
		return v.dist.Equal(o.dist)
	case KindExpression:
		return v.expr == o.expr
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindDistribution:
		return v.dist.String()
	case KindExpression:
		return v.expr
	default:
		return "<none>"
	}
}
