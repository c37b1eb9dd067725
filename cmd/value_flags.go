package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inference-sim/setupmatrix/setup"
)

// parseDistribution parses "type:key=value,key=value", e.g. "exponential:mean=10".
func parseDistribution(text string) (setup.Distribution, error) {
	typ, paramList, _ := strings.Cut(strings.TrimSpace(text), ":")
	d := setup.Distribution{Type: typ}
	if paramList != "" {
		d.Params = make(map[string]float64)
		for _, kv := range strings.Split(paramList, ",") {
			key, raw, ok := strings.Cut(kv, "=")
			key = strings.TrimSpace(key)
			if !ok || key == "" {
				return setup.Distribution{}, fmt.Errorf("distribution parameter %q must be key=value", kv)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return setup.Distribution{}, fmt.Errorf("distribution parameter %s: %w", key, err)
			}
			d.Params[key] = v
		}
	}
	if err := setup.ValidateValue(setup.DistributionValue(d)); err != nil {
		return setup.Distribution{}, err
	}
	return d, nil
}

// parseValue builds a setup value from an expression or a distribution
// flag. At most one may be set; an empty pair yields the zero Value.
func parseValue(expression, distribution string) (setup.Value, error) {
	switch {
	case expression != "" && distribution != "":
		return setup.Value{}, fmt.Errorf("expression %q and distribution %q are mutually exclusive", expression, distribution)
	case expression != "":
		return setup.ExpressionValue(expression), nil
	case distribution != "":
		d, err := parseDistribution(distribution)
		if err != nil {
			return setup.Value{}, err
		}
		return setup.DistributionValue(d), nil
	default:
		return setup.Value{}, nil
	}
}
