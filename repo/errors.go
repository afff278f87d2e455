package repo

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialRequired means the user has not registered a token.
	ErrCredentialRequired = errors.New("credential required")
	// ErrNoPick means the user has not picked a repository.
	ErrNoPick = errors.New("no repository picked")
	// ErrNotFound means a stored value or a requested repository does not
	// exist.
	ErrNotFound = errors.New("not found")
	// ErrNotImplemented means the provider does not support an operation.
	ErrNotImplemented = errors.New("not implemented by provider")
)

// UpstreamError is an unexpected HTTP status from a provider.
type UpstreamError struct {
	// Op is the operation that failed.
	Op string
	// Status is the HTTP status code.
	Status int
}

func (err *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream responded with status %d", err.Op, err.Status)
}
