package model

import "github.com/pkg/errors"

// ErrMalformedModel is returned while loading a model file with
// missing or mistyped fields. The evaluator itself never fails once a
// model has loaded successfully (§4.2).
var ErrMalformedModel = errors.New("malformed energy model")
