package model

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// modelFile mirrors the on-disk JSON shape of a model file: plain
// data, decoded then validated into a Model.
type modelFile struct {
	MetricNames []string      `json:"metric_names"`
	Means       []float64     `json:"means"`
	StdDevs     []float64     `json:"std_devs"`
	Rotation    [][]float64   `json:"rotation_matrix"`
	Clusters    []clusterFile `json:"clusters"`
}

type clusterFile struct {
	Center     []float64      `json:"center"`
	Regressors []regressorFile `json:"regressors"`
}

type regressorFile struct {
	Function string  `json:"function"`
	Index    int     `json:"index"`
	Index2   int     `json:"index2"`
	Exponent float64 `json:"exponent"`
	Weight   float64 `json:"weight"`
}

// Load reads a model file from pathname and validates it into a
// Model. It is the loader counterpart to Evaluate: once Load
// succeeds, Evaluate is guaranteed never to fail (§4.2).
func Load(pathname string) (*Model, error) {
	raw, err := os.ReadFile(pathname)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model file %q", pathname)
	}

	var file modelFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrapf(ErrMalformedModel, "failed to decode %q: %s", pathname, err)
	}

	m, err := buildModel(&file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to validate model file %q", pathname)
	}

	return m, nil
}

func buildModel(file *modelFile) (*Model, error) {
	nMetrics := len(file.MetricNames)
	if nMetrics == 0 {
		return nil, errors.Wrap(ErrMalformedModel, "metric_names is empty")
	}
	if len(file.Means) != nMetrics || len(file.StdDevs) != nMetrics {
		return nil, errors.Wrap(ErrMalformedModel, "means/std_devs length mismatch with metric_names")
	}
	if len(file.Rotation) != nMetrics {
		return nil, errors.Wrap(ErrMalformedModel, "rotation row count mismatch with metric_names")
	}

	projectedDim := 0
	if nMetrics > 0 {
		projectedDim = len(file.Rotation[0])
	}
	for _, row := range file.Rotation {
		if len(row) != projectedDim {
			return nil, errors.Wrap(ErrMalformedModel, "rotation rows have inconsistent width")
		}
	}

	if len(file.Clusters) == 0 {
		return nil, errors.Wrap(ErrMalformedModel, "clusters is empty")
	}

	clusters := make([]Cluster, len(file.Clusters))
	for i, cf := range file.Clusters {
		if len(cf.Center) != projectedDim {
			return nil, errors.Wrapf(ErrMalformedModel, "cluster %d center dimension mismatch", i)
		}

		regressors := make([]Regressor, len(cf.Regressors))
		for j, rf := range cf.Regressors {
			fn := BasisFunction(rf.Function)
			switch fn {
			case BasisConstant, BasisPower, BasisProduct, BasisSqrt, BasisLog2:
			default:
				return nil, errors.Wrapf(ErrMalformedModel, "cluster %d regressor %d has unknown function %q", i, j, rf.Function)
			}
			if rf.Index < 0 || rf.Index >= projectedDim {
				return nil, errors.Wrapf(ErrMalformedModel, "cluster %d regressor %d index out of range", i, j)
			}
			if fn == BasisProduct && (rf.Index2 < 0 || rf.Index2 >= projectedDim) {
				return nil, errors.Wrapf(ErrMalformedModel, "cluster %d regressor %d index2 out of range", i, j)
			}

			regressors[j] = Regressor{
				Function: fn,
				Index:    rf.Index,
				Index2:   rf.Index2,
				Exponent: rf.Exponent,
				Weight:   rf.Weight,
			}
		}

		clusters[i] = Cluster{
			Center:     cf.Center,
			Regressors: regressors,
		}
	}

	for i, v := range file.StdDevs {
		if v == 0 {
			return nil, errors.Wrapf(ErrMalformedModel, "std_devs[%d] is zero", i)
		}
	}

	return &Model{
		MetricNames: file.MetricNames,
		Means:       file.Means,
		StdDevs:     file.StdDevs,
		Rotation:    file.Rotation,
		Clusters:    clusters,
	}, nil
}
