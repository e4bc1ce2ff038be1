package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const validModelJSON = `{
  "metric_names": ["instructions", "cycles"],
  "means": [100, 200],
  "std_devs": [10, 20],
  "rotation_matrix": [[1, 0], [0, 1]],
  "clusters": [
    {
      "center": [0, 0],
      "regressors": [
        {"function": "constant", "weight": 1.5},
        {"function": "power", "index": 0, "exponent": 1, "weight": 0.2}
      ]
    }
  ]
}`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadValidModel(t *testing.T) {
	path := writeTemp(t, validModelJSON)

	m, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"instructions", "cycles"}, m.MetricNames)
	require.Equal(t, 2, m.ProjectedDim())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeTemp(t, "{not json")

	_, err := Load(path)
	require.ErrorIs(t, err, ErrMalformedModel)
}

func TestLoadRejectsEmptyMetricNames(t *testing.T) {
	path := writeTemp(t, `{"metric_names": [], "means": [], "std_devs": [], "rotation_matrix": [], "clusters": []}`)

	_, err := Load(path)
	require.ErrorIs(t, err, ErrMalformedModel)
}

func TestLoadRejectsZeroStdDev(t *testing.T) {
	path := writeTemp(t, `{
		"metric_names": ["a"],
		"means": [0],
		"std_devs": [0],
		"rotation_matrix": [[1]],
		"clusters": [{"center": [0], "regressors": [{"function": "constant", "weight": 1}]}]
	}`)

	_, err := Load(path)
	require.ErrorIs(t, err, ErrMalformedModel)
}

func TestLoadRejectsUnknownBasisFunction(t *testing.T) {
	path := writeTemp(t, `{
		"metric_names": ["a"],
		"means": [0],
		"std_devs": [1],
		"rotation_matrix": [[1]],
		"clusters": [{"center": [0], "regressors": [{"function": "exp", "weight": 1}]}]
	}`)

	_, err := Load(path)
	require.ErrorIs(t, err, ErrMalformedModel)
}

func TestLoadRejectsRotationRowMismatch(t *testing.T) {
	path := writeTemp(t, `{
		"metric_names": ["a", "b"],
		"means": [0, 0],
		"std_devs": [1, 1],
		"rotation_matrix": [[1, 0]],
		"clusters": [{"center": [0, 0], "regressors": []}]
	}`)

	_, err := Load(path)
	require.ErrorIs(t, err, ErrMalformedModel)
}
