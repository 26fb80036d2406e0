// Package errmap turns go-credentials sentinels into go-errors rich errors so
// commands and queries present failures the same way.
package errmap

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-credentials/pkg/types"
	goerrors "github.com/goliatone/go-errors"
)

// Stable text codes shared by every handler.
const (
	TextCodeValidation      = "VALIDATION_FAILED"
	TextCodeForbidden       = "FORBIDDEN"
	TextCodeNotPending      = "REQUEST_NOT_PENDING"
	TextCodeNotFound        = "REQUEST_NOT_FOUND"
	TextCodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	TextCodeAlertNotOpen    = "ALERT_NOT_OPEN"
	TextCodeCredentialGone  = "CREDENTIAL_NOT_FOUND"
	TextCodeInternalFailure = "INTERNAL_ERROR"
)

// Present maps the shared sentinels in pkg/types. Errors that are already rich
// and unknown errors are returned unchanged.
func Present(err error) error {
	if err == nil || IsRich(err) {
		return err
	}
	switch {
	case errors.Is(err, types.ErrUnauthorized):
		return goerrors.Wrap(err, goerrors.CategoryAuthz, "go-credentials: not authorized").
			WithCode(goerrors.CodeForbidden).
			WithTextCode(TextCodeForbidden)
	case errors.Is(err, types.ErrActorRequired):
		return goerrors.Wrap(err, goerrors.CategoryAuthz, "go-credentials: actor required").
			WithCode(goerrors.CodeForbidden).
			WithTextCode(TextCodeForbidden)
	case errors.Is(err, types.ErrRequestNotPending):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "go-credentials: reset request already reviewed").
			WithCode(http.StatusConflict).
			WithTextCode(TextCodeNotPending)
	case errors.Is(err, types.ErrRequestNotFound):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "go-credentials: reset request not found").
			WithCode(goerrors.CodeNotFound).
			WithTextCode(TextCodeNotFound)
	case errors.Is(err, types.ErrAccountNotFound):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, types.ErrAccountNotFound.Error()).
			WithCode(goerrors.CodeNotFound).
			WithTextCode(TextCodeAccountNotFound)
	case errors.Is(err, types.ErrAlertNotOpen):
		return goerrors.Wrap(err, goerrors.CategoryValidation, types.ErrAlertNotOpen.Error()).
			WithCode(http.StatusConflict).
			WithTextCode(TextCodeAlertNotOpen)
	case errors.Is(err, types.ErrCredentialNotFound):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, types.ErrCredentialNotFound.Error()).
			WithCode(goerrors.CodeNotFound).
			WithTextCode(TextCodeCredentialGone)
	}
	return err
}

// Validation wraps a caller input error as a 400.
func Validation(err error) error {
	if err == nil || IsRich(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeValidation)
}

// Internal wraps an infrastructure failure as a 500 with a static message.
func Internal(err error, message string) error {
	if err == nil || IsRich(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithCode(goerrors.CodeInternal).
		WithTextCode(TextCodeInternalFailure)
}

// IsRich reports whether err already carries a go-errors presentation.
func IsRich(err error) bool {
	var richErr *goerrors.Error
	return goerrors.As(err, &richErr)
}
