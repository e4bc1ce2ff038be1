package report

import "github.com/pkg/errors"

var ErrWriteFailed = errors.New("failed to write report")
