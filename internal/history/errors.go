package history

import (
	"errors"
	"fmt"
)

var (
	ErrIndexOutOfRange = errors.New("history index out of range")
	ErrNotFound        = errors.New("period not found in history")
	ErrPersist         = errors.New("history not persisted")
)

// PersistError reports that a change was applied in memory but could not be
// written to the repository.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersist, e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

func (e *PersistError) Is(target error) bool {
	return target == ErrPersist
}
