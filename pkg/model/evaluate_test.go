package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func identityModel() *Model {
	return &Model{
		MetricNames: []string{"a", "b"},
		Means:       []float64{0, 0},
		StdDevs:     []float64{1, 1},
		Rotation: [][]float64{
			{1, 0},
			{0, 1},
		},
		Clusters: []Cluster{
			{
				Center: []float64{0, 0},
				Regressors: []Regressor{
					{Function: BasisConstant, Weight: 2},
					{Function: BasisPower, Index: 0, Exponent: 1, Weight: 3},
				},
			},
		},
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	m := identityModel()

	first := m.Evaluate([]float64{4, 1})
	second := m.Evaluate([]float64{4, 1})

	require.Equal(t, first, second)
}

func TestEvaluateWeightedSum(t *testing.T) {
	m := identityModel()

	// constant term: 2*1 = 2; power term: 3*pow(|4|,1) = 12; sum = 14.
	got := m.Evaluate([]float64{4, 1})
	require.InDelta(t, 14.0, got, 1e-9)
}

func TestEvaluateNearestClusterTieBreaksLowestIndex(t *testing.T) {
	m := identityModel()
	m.Clusters = []Cluster{
		{
			Center: []float64{1, 1},
			Regressors: []Regressor{{Function: BasisConstant, Weight: 1}},
		},
		{
			Center: []float64{1, 1},
			Regressors: []Regressor{{Function: BasisConstant, Weight: 99}},
		},
	}

	got := m.Evaluate([]float64{1, 1})
	require.InDelta(t, 1.0, got, 1e-9)
}

func TestEvaluateReturnsAbsoluteValue(t *testing.T) {
	m := identityModel()
	m.Clusters[0].Regressors = []Regressor{
		{Function: BasisConstant, Weight: -5},
	}

	got := m.Evaluate([]float64{0, 0})
	require.InDelta(t, 5.0, got, 1e-9)
}

func TestSplitProportional(t *testing.T) {
	shares := Split(100, []float64{1, 3})
	require.InDelta(t, 25.0, shares[0], 1e-9)
	require.InDelta(t, 75.0, shares[1], 1e-9)
}

func TestSplitZeroSumYieldsZeroShares(t *testing.T) {
	shares := Split(100, []float64{0, 0, 0})
	require.Equal(t, []float64{0, 0, 0}, shares)
}

func TestEuclideanDistanceZeroForEqualVectors(t *testing.T) {
	require.Equal(t, 0.0, euclideanDistance([]float64{1, 2, 3}, []float64{1, 2, 3}))
}
