package engine

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned by every per-entity mutation entry point before
// the backing project has been loaded into the engine.
var ErrNotReady = errors.New("engine: project not loaded")

// MutationError reports a malformed mutation payload. The mutation is
// rejected locally and no event is emitted; the model is untouched.
type MutationError struct {
	Reason string
}

func (e *MutationError) Error() string {
	return "engine: invalid mutation: " + e.Reason
}

// IsInvalidMutation reports whether err is a rejected mutation payload.
func IsInvalidMutation(err error) bool {
	var me *MutationError
	return errors.As(err, &me)
}

func invalidMutation(format string, args ...any) error {
	return &MutationError{Reason: fmt.Sprintf(format, args...)}
}
