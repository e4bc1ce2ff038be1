// Package model implements the Energy Model Evaluator (§4.2): a
// read-only-after-load regression model that turns a vector of
// per-core counter values into a non-negative scalar, which callers
// normalize across cores to apportion one global energy reading.
//
// Model loading is an external collaborator per spec scope (only the
// evaluator contract is under test), but a loader still has to exist
// for the binary to run, so it lives here next to the type it builds,
// the way the teacher's ELFSymTab owns its own Load method.
package model

// Model is read-only after Load (§3).
type Model struct {
	MetricNames []string
	Means       []float64
	StdDevs     []float64

	// Rotation has len(MetricNames) rows and ProjectedDim() columns.
	Rotation [][]float64

	Clusters []Cluster
}

// ProjectedDim is the dimensionality of the rotated space, i.e. the
// number of columns in Rotation.
func (m *Model) ProjectedDim() int {
	if len(m.Rotation) == 0 {
		return 0
	}
	return len(m.Rotation[0])
}

// Cluster is one regression cluster: a centroid in the rotated space
// plus a weighted sum of basis functions over the rotated input.
type Cluster struct {
	Center     []float64
	Regressors []Regressor
}

// BasisFunction is the closed set of regressor shapes §4.2 allows.
type BasisFunction string

const (
	BasisConstant BasisFunction = "constant"
	BasisPower    BasisFunction = "power"
	BasisProduct  BasisFunction = "product"
	BasisSqrt     BasisFunction = "sqrt"
	BasisLog2     BasisFunction = "log2"
)

// Regressor is a tagged union over BasisFunction, evaluated by a type
// switch rather than function-pointer dispatch (§9): this keeps a
// loaded model pure data, and evaluation allocation-free.
type Regressor struct {
	Function BasisFunction

	// Index is used by power, sqrt, log2.
	Index int

	// Index2 is used by product.
	Index2 int

	// Exponent is used by power.
	Exponent float64

	Weight float64
}
