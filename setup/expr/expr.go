// Package expr checks and evaluates setup-time expressions written in HCL
// native expression syntax, e.g. "exp(1/10)" or "w * 2 + 5".
package expr

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/inference-sim/setupmatrix/setup"
)

const filename = "setup-time"

// Validate implements setup.Validator. It reports syntax errors, variables
// outside knownVariables and calls to unknown functions, whichever comes
// first in the expression.
func Validate(expression string, knownVariables []string) *setup.ErrorPosition {
	parsed, diags := hclsyntax.ParseExpression([]byte(expression), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return positionOf(diags)
	}

	known := make(map[string]bool, len(knownVariables))
	for _, name := range knownVariables {
		known[name] = true
	}

	var problems []*setup.ErrorPosition
	for _, traversal := range parsed.Variables() {
		if !known[traversal.RootName()] {
			problems = append(problems, &setup.ErrorPosition{
				Offset:  traversal.SourceRange().Start.Byte,
				Message: fmt.Sprintf("unknown variable %q", traversal.RootName()),
			})
		}
	}
	hclsyntax.VisitAll(parsed, func(n hclsyntax.Node) hcl.Diagnostics {
		if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
			if _, defined := functions[call.Name]; !defined {
				problems = append(problems, &setup.ErrorPosition{
					Offset:  call.NameRange.Start.Byte,
					Message: fmt.Sprintf("unknown function %q; available: %s", call.Name, strings.Join(FunctionNames(), ", ")),
				})
			}
		}
		if what := nonNumeric(n); what != "" {
			problems = append(problems, &setup.ErrorPosition{
				Offset:  n.Range().Start.Byte,
				Message: what + " is not a number",
			})
		}
		return nil
	})
	if len(problems) == 0 {
		return nil
	}
	sort.SliceStable(problems, func(i, j int) bool { return problems[i].Offset < problems[j].Offset })
	return problems[0]
}

// nonNumeric names the kind of n when n can never produce a number.
func nonNumeric(n hclsyntax.Node) string {
	switch e := n.(type) {
	case *hclsyntax.TemplateExpr, *hclsyntax.TemplateWrapExpr, *hclsyntax.TemplateJoinExpr:
		return "string"
	case *hclsyntax.TupleConsExpr:
		return "list"
	case *hclsyntax.ObjectConsExpr:
		return "object"
	case *hclsyntax.ForExpr:
		return "for expression"
	case *hclsyntax.SplatExpr:
		return "splat expression"
	case *hclsyntax.LiteralValueExpr:
		if e.Val.IsNull() {
			return "null"
		}
		if !e.Val.Type().Equals(cty.Number) {
			return e.Val.Type().FriendlyName()
		}
	}
	return ""
}

// Evaluate computes the numeric value of expression with the given variables.
func Evaluate(expression string, variables map[string]float64) (float64, error) {
	parsed, diags := hclsyntax.ParseExpression([]byte(expression), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return 0, positionOf(diags)
	}

	vars := make(map[string]cty.Value, len(variables))
	for name, v := range variables {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("variable %s must be a finite number, got %f", name, v)
		}
		vars[name] = cty.NumberFloatVal(v)
	}
	ctx := &hcl.EvalContext{Variables: vars, Functions: functions}

	val, diags := parsed.Value(ctx)
	if diags.HasErrors() {
		return 0, positionOf(diags)
	}
	if val.IsNull() || !val.IsKnown() || !val.Type().Equals(cty.Number) {
		return 0, fmt.Errorf("expression %q does not evaluate to a number", expression)
	}
	f, _ := val.AsBigFloat().Float64()
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("expression %q is not finite", expression)
	}
	return f, nil
}

// IsConstant reports whether expression references no variables.
func IsConstant(expression string) bool {
	parsed, diags := hclsyntax.ParseExpression([]byte(expression), filename, hcl.InitialPos)
	return !diags.HasErrors() && len(parsed.Variables()) == 0
}

func positionOf(diags hcl.Diagnostics) *setup.ErrorPosition {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		pos := &setup.ErrorPosition{Message: d.Summary}
		if d.Detail != "" {
			pos.Message += ": " + d.Detail
		}
		if d.Subject != nil {
			pos.Offset = d.Subject.Start.Byte
		}
		return pos
	}
	return &setup.ErrorPosition{Message: diags.Error()}
}
