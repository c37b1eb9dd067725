package expr

import (
	"fmt"
	"math"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// functions available to setup-time expressions.
var functions = map[string]function.Function{
	"exp":   unary(math.Exp),
	"log":   unary(math.Log),
	"sqrt":  unary(math.Sqrt),
	"abs":   unary(math.Abs),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"min":   binary(math.Min),
	"max":   binary(math.Max),
	"pow":   binary(math.Pow),
}

// FunctionNames lists the functions expressions may call, sorted.
func FunctionNames() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unary(f func(float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "x", Type: cty.Number}},
		Type:   function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			x, _ := args[0].AsBigFloat().Float64()
			return numberVal(f(x))
		},
	})
}

func binary(f func(float64, float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "a", Type: cty.Number},
			{Name: "b", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			a, _ := args[0].AsBigFloat().Float64()
			b, _ := args[1].AsBigFloat().Float64()
			return numberVal(f(a, b))
		},
	})
}

// big.Float cannot hold NaN, so undefined results become errors.
func numberVal(v float64) (cty.Value, error) {
	if math.IsNaN(v) {
		return cty.NilVal, fmt.Errorf("result is not a number")
	}
	return cty.NumberFloatVal(v), nil
}
