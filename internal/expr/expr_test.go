package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poserig/combokeys/internal/metric"
)

func TestDistance_AbsoluteTwoVariables(t *testing.T) {
	symbols := []Symbol{
		{Name: "var0", Literal: "1.0"},
		{Name: "var1", Literal: "0.5"},
	}
	got := Distance(metric.Absolute, symbols)
	assert.Equal(t, "(fabs(var0-1.0)+fabs(var1-0.5))/2.0", got)
}

func TestDistance_AbsoluteSingleVariable(t *testing.T) {
	got := Distance(metric.Absolute, []Symbol{{Name: "jaw", Literal: "0.25"}})
	assert.Equal(t, "fabs(jaw-0.25)", got)
}

func TestDistance_Euclidean(t *testing.T) {
	symbols := []Symbol{
		{Name: "var0", Literal: "3.0"},
		{Name: "var1", Literal: "4.0"},
	}
	got := Distance(metric.Euclidean, symbols)
	assert.Equal(t, "sqrt(pow(var0-3.0,2.0)+pow(var1-4.0,2.0))", got)
}

func TestDistance_Quaternion(t *testing.T) {
	symbols := []Symbol{
		{Name: "w", Literal: "1.0"},
		{Name: "x", Literal: "0.0"},
		{Name: "y", Literal: "0.0"},
		{Name: "z", Literal: "0.0"},
	}
	got := Distance(metric.Quaternion, symbols)
	assert.Equal(t,
		"acos((2.0*pow(clamp(w*1.0+x*0.0+y*0.0+z*0.0,-1.0,1.0),2.0))-1.0)/pi",
		got)
}

func TestDistance_NoVariables(t *testing.T) {
	for _, kind := range []metric.Kind{metric.Absolute, metric.Euclidean, metric.Quaternion} {
		assert.Equal(t, "1.0", Distance(kind, nil))
	}
}

func TestDistance_Deterministic(t *testing.T) {
	symbols := []Symbol{
		{Name: "a", Literal: "0.1"},
		{Name: "b", Literal: "0.2"},
		{Name: "c", Literal: "0.3"},
	}
	first := Distance(metric.Euclidean, symbols)
	second := Distance(metric.Euclidean, symbols)
	assert.Equal(t, first, second)
}

func TestProduct(t *testing.T) {
	assert.Equal(t, "1.0", Product(nil))
	assert.Equal(t, "d0", Product([]string{"d0"}))
	assert.Equal(t, "d0*d1*d2", Product([]string{"d0", "d1", "d2"}))
}

func TestMean(t *testing.T) {
	assert.Equal(t, "1.0", Mean(nil))
	assert.Equal(t, "d0", Mean([]string{"d0"}))
	assert.Equal(t, "(d0+d1+d2)/3.0", Mean([]string{"d0", "d1", "d2"}))
}
