package tracer

import "github.com/pkg/errors"

var (
	ErrAttachFailed      = errors.New("failed to attach to root process")
	ErrUnexpectedStatus  = errors.New("unexpected wait status")
	ErrReadRegistersFail = errors.New("failed to read registers")
	ErrUnknownThread     = errors.New("operation on untracked thread")
)
