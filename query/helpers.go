package query

import (
	"errors"

	"github.com/goliatone/go-credentials/internal/errmap"
	"github.com/goliatone/go-credentials/scope"
)

// ErrEmailRequired indicates the status query omitted the email.
var ErrEmailRequired = errors.New("go-credentials: email required")

// ErrRequestIDRequired indicates the detail query omitted the request.
var ErrRequestIDRequired = errors.New("go-credentials: reset request id required")

func safeScopeGuard(g scope.Guard) scope.Guard {
	return scope.Ensure(g)
}

// presentError gives query failures the same rich shape the commands use.
func presentError(err error) error {
	if errors.Is(err, ErrEmailRequired) || errors.Is(err, ErrRequestIDRequired) {
		return errmap.Validation(err)
	}
	if mapped := errmap.Present(err); errmap.IsRich(mapped) {
		return mapped
	}
	return errmap.Internal(err, "go-credentials: query failed")
}

func internalError(err error, message string) error {
	return errmap.Internal(err, message)
}
