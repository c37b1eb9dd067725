package setup

import (
	"errors"
	"fmt"
	"strings"
)

// FillPolicy selects how Fill populates the whole matrix.
type FillPolicy int

const (
	// FillOff leaves the matrix empty.
	FillOff FillPolicy = iota
	// FillUniform writes the same value to every pair, diagonal included.
	FillUniform
	// FillUniformOnChange writes the same value to every pair with from != to.
	FillUniformOnChange
	// FillDual writes one value to the diagonal and another everywhere else.
	FillDual
)

// ErrUnknownFillPolicy is returned by ParseFillPolicy for unrecognized names.
var ErrUnknownFillPolicy = errors.New("unknown fill policy")

var fillPolicyNames = [...]string{
	FillOff:             "off",
	FillUniform:         "uniform",
	FillUniformOnChange: "uniform-on-change",
	FillDual:            "dual",
}

var fillPoliciesByName = func() map[string]FillPolicy {
	m := make(map[string]FillPolicy, len(fillPolicyNames))
	for p, name := range fillPolicyNames {
		m[name] = FillPolicy(p)
	}
	return m
}()

// ValidFillPolicies is the set of recognized fill policy names.
var ValidFillPolicies = func() map[string]bool {
	m := make(map[string]bool, len(fillPolicyNames))
	for _, name := range fillPolicyNames {
		m[name] = true
	}
	return m
}()

func (p FillPolicy) String() string {
	if p >= 0 && int(p) < len(fillPolicyNames) {
		return fillPolicyNames[p]
	}
	return fmt.Sprintf("FillPolicy(%d)", int(p))
}

// ParseFillPolicy maps a policy name to its FillPolicy.
func ParseFillPolicy(name string) (FillPolicy, error) {
	p, ok := fillPoliciesByName[name]
	if !ok {
		return FillOff, fmt.Errorf("%w %q; valid: %s", ErrUnknownFillPolicy, name, strings.Join(fillPolicyNames[:], ", "))
	}
	return p, nil
}

// FillValues supplies the values a fill policy writes.
type FillValues struct {
	All    Value // FillUniform, FillUniformOnChange
	Same   Value // FillDual, from == to
	Change Value // FillDual, from != to
}

// Fill clears store and repopulates it over clientTypes × clientTypes
// according to policy. The result depends only on the policy, the client
// types and the supplied values. Missing values are reported before the
// store is cleared, so an error leaves the store untouched.
func Fill(policy FillPolicy, store *Store, clientTypes []ClientType, values FillValues) error {
	if err := values.check(policy); err != nil {
		return err
	}
	store.Clear()
	for _, from := range clientTypes {
		for _, to := range clientTypes {
			switch policy {
			case FillOff:
			case FillUniform:
				store.Set(from, to, values.All)
			case FillUniformOnChange:
				if from != to {
					store.Set(from, to, values.All)
				}
			case FillDual:
				if from == to {
					store.Set(from, to, values.Same)
				} else {
					store.Set(from, to, values.Change)
				}
			}
		}
	}
	return nil
}

func (v FillValues) check(policy FillPolicy) error {
	switch policy {
	case FillOff:
		return nil
	case FillUniform, FillUniformOnChange:
		if v.All.IsZero() {
			return fmt.Errorf("fill policy %s requires a value", policy)
		}
		return nil
	case FillDual:
		if v.Same.IsZero() || v.Change.IsZero() {
			return fmt.Errorf("fill policy %s requires a same-type and a change value", policy)
		}
		return nil
	default:
		return fmt.Errorf("%w %s", ErrUnknownFillPolicy, policy)
	}
}
