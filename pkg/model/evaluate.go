package model

import "math"

// Evaluate implements the §4.2 algorithm:
//  1. Project:      x'  = inputs · rotation
//  2. Standardize:   x'' = (x' - means) / stddevs
//  3. Pick the cluster whose centroid is nearest x'' (Euclidean,
//     ties broken by the earliest cluster index).
//  4. Sum that cluster's weighted regressors evaluated on x' (not
//     x''), and return the absolute value.
//
// Evaluate never fails: a successfully loaded model guarantees
// dimensions line up (Load enforces it), matching §4.2 ("the
// evaluator itself never fails after successful load").
func (m *Model) Evaluate(inputs []float64) float64 {
	projected := m.project(inputs)
	standardized := m.standardize(projected)
	cluster := m.nearestCluster(standardized)

	var sum float64
	for _, r := range cluster.Regressors {
		sum += r.Weight * r.evaluate(projected)
	}

	return math.Abs(sum)
}

func (m *Model) project(inputs []float64) []float64 {
	dim := m.ProjectedDim()
	out := make([]float64, dim)
	for j := 0; j < dim; j++ {
		var sum float64
		for i, v := range inputs {
			sum += v * m.Rotation[i][j]
		}
		out[j] = sum
	}
	return out
}

func (m *Model) standardize(projected []float64) []float64 {
	out := make([]float64, len(projected))
	for j, v := range projected {
		out[j] = (v - m.Means[j]) / m.StdDevs[j]
	}
	return out
}

func (m *Model) nearestCluster(standardized []float64) Cluster {
	best := 0
	bestDist := euclideanDistance(standardized, m.Clusters[0].Center)
	for i := 1; i < len(m.Clusters); i++ {
		d := euclideanDistance(standardized, m.Clusters[i].Center)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return m.Clusters[best]
}

func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// Split apportions a single global energy delta across cores in
// proportion to each core's model evaluation (§4.2 "Per-core energy
// split"). When the evaluations sum to zero, every share is zero
// (§7 ModelArithmetic: accumulate other fields normally, shares are
// zero for that tick).
func Split(globalDelta float64, perCoreEvaluations []float64) []float64 {
	shares := make([]float64, len(perCoreEvaluations))

	var sum float64
	for _, v := range perCoreEvaluations {
		sum += v
	}
	if sum == 0 {
		return shares
	}

	for i, v := range perCoreEvaluations {
		shares[i] = globalDelta * v / sum
	}
	return shares
}
