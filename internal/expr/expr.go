// Package expr synthesizes the scripted-expression representation of a
// driver's distance metric for the host's live expression evaluator.
//
// The emitted grammar is a fixed subset the host is known to support:
// fabs, sqrt, pow, acos, clamp, the four arithmetic operators, decimal
// literals, named symbols, and the constant pi. Nothing else is ever
// emitted, and the engine never parses expressions back.
//
// Contract: with every live symbol equal to its recorded pose literal, the
// synthesized expression evaluates to the same number metric.Distance
// returns for the same pairs, up to the configured rounding precision.
// Synthesis is deterministic: identical inputs produce identical strings.
package expr

import (
	"strings"

	"github.com/poserig/combokeys/internal/metric"
)

// Symbol pairs a live-bound variable name with its rounded pose literal.
type Symbol struct {
	// Name is the variable symbol bound by the host evaluator.
	Name string

	// Literal is the recorded pose value, rounded and formatted with
	// metric.Literal.
	Literal string
}

// Distance builds the expression computing live distance-from-pose under
// the given metric kind.
//
// With no symbols the driver is unconstrained and the expression is the
// constant "1.0".
func Distance(kind metric.Kind, symbols []Symbol) string {
	if len(symbols) == 0 {
		return "1.0"
	}

	switch kind {
	case metric.Euclidean:
		terms := make([]string, len(symbols))
		for i, s := range symbols {
			terms[i] = "pow(" + s.Name + "-" + s.Literal + ",2.0)"
		}
		return "sqrt(" + strings.Join(terms, "+") + ")"

	case metric.Quaternion:
		terms := make([]string, len(symbols))
		for i, s := range symbols {
			terms[i] = s.Name + "*" + s.Literal
		}
		return "acos((2.0*pow(clamp(" + strings.Join(terms, "+") + ",-1.0,1.0),2.0))-1.0)/pi"

	default: // metric.Absolute
		if len(symbols) == 1 {
			return "fabs(" + symbols[0].Name + "-" + symbols[0].Literal + ")"
		}
		terms := make([]string, len(symbols))
		for i, s := range symbols {
			terms[i] = "fabs(" + s.Name + "-" + s.Literal + ")"
		}
		return "(" + strings.Join(terms, "+") + ")/" + metric.FloatLiteral(len(symbols))
	}
}

// Product builds the multiply-combination expression over driver symbols.
// The empty product is the identity "1.0": a target with no drivers is
// fully activated and only its falloff shapes the result.
func Product(symbols []string) string {
	if len(symbols) == 0 {
		return "1.0"
	}
	return strings.Join(symbols, "*")
}

// Mean builds the average-combination expression over driver symbols.
func Mean(symbols []string) string {
	if len(symbols) == 0 {
		return "1.0"
	}
	if len(symbols) == 1 {
		return symbols[0]
	}
	return "(" + strings.Join(symbols, "+") + ")/" + metric.FloatLiteral(len(symbols))
}
