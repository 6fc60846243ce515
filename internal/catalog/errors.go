package catalog

import (
	"errors"
	"fmt"
)

// ErrFileNotFound matches any NotFoundError through errors.Is.
var ErrFileNotFound = errors.New("file not found")

// NotFoundError reports an operation on a file that does not exist on disk.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// Is lets errors.Is(err, ErrFileNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

// StoreError wraps a failure of the persistent store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err is or wraps a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
