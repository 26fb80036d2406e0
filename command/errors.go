package command

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-credentials/internal/errmap"
	"github.com/goliatone/go-credentials/pkg/types"
	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = types.ErrActorRequired
	// ErrEmailRequired occurs when intake omits the email address.
	ErrEmailRequired = errors.New("go-credentials: email required")
	// ErrRequestIDRequired occurs when a review command omits the request.
	ErrRequestIDRequired = errors.New("go-credentials: reset request id required")
	// ErrAlertIDRequired occurs when an alert command omits the alert.
	ErrAlertIDRequired = errors.New("go-credentials: security alert id required")
	// ErrResetRequestsDisabled indicates intake is switched off via feature gate.
	ErrResetRequestsDisabled = errors.New("go-credentials: password reset requests disabled")
	// ErrRateLimited indicates the email exhausted its daily cap or is cooling down.
	ErrRateLimited = errors.New("go-credentials: too many password reset requests")
	// ErrWeakPassword indicates the new password does not satisfy the policy.
	ErrWeakPassword = errors.New("go-credentials: password must be at least 8 characters and include an uppercase letter, a lowercase letter, a digit and a symbol")
	// ErrRequestHasNoAccount indicates the request email never matched an account.
	ErrRequestHasNoAccount = errors.New("go-credentials: reset request is not linked to an account")
	// ErrInvalidReviewStatus occurs when a status update targets a non-terminal status.
	ErrInvalidReviewStatus = errors.New("go-credentials: status must be approved or rejected")
	// ErrNewPasswordRequired occurs when an approval omits the new password.
	ErrNewPasswordRequired = errors.New("go-credentials: approval requires a new password")
	// ErrInvalidRetention occurs when cleanup is asked for less than one day.
	ErrInvalidRetention = errors.New("go-credentials: cleanup requires older_than_days >= 1")
	// ErrBookkeepingIncomplete indicates the new secret is live but a later
	// record could not be written.
	ErrBookkeepingIncomplete = errors.New("go-credentials: password replaced but bookkeeping incomplete")
	// ErrReviewPartiallyApplied indicates the request was marked approved but
	// the credential or account update that follows did not complete. Only
	// stores without a shared transaction can end up here.
	ErrReviewPartiallyApplied = errors.New("go-credentials: reset request approved but credential update incomplete")
)

const (
	textCodeValidation      = errmap.TextCodeValidation
	textCodeWeakPassword    = "WEAK_PASSWORD"
	textCodeDailyLimit      = "RESET_DAILY_LIMIT"
	textCodeCooldown        = "RESET_COOLDOWN"
	textCodeNotPending      = errmap.TextCodeNotPending
	textCodeNotFound        = errmap.TextCodeNotFound
	textCodeNoAccount       = "REQUEST_HAS_NO_ACCOUNT"
	textCodeForbidden       = errmap.TextCodeForbidden
	textCodeDisabled        = "RESET_REQUESTS_DISABLED"
	textCodeAlertNotOpen    = errmap.TextCodeAlertNotOpen
	textCodeCredentialGone  = errmap.TextCodeCredentialGone
	textCodeBookkeeping     = "BOOKKEEPING_INCOMPLETE"
	textCodePartialReview   = "REVIEW_PARTIALLY_APPLIED"
	textCodeInternalFailure = errmap.TextCodeInternalFailure
)

// presentError converts workflow sentinels into rich errors carrying a
// category, an HTTP status and a stable text code. errors.Is keeps matching
// the sentinel.
func presentError(err error) error {
	if err == nil || errmap.IsRich(err) {
		return err
	}

	switch {
	case errors.Is(err, ErrWeakPassword):
		return goerrors.Wrap(err, goerrors.CategoryValidation, ErrWeakPassword.Error()).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(textCodeWeakPassword)
	case errors.Is(err, ErrRequestHasNoAccount):
		return goerrors.Wrap(err, goerrors.CategoryValidation, ErrRequestHasNoAccount.Error()).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(textCodeNoAccount)
	case errors.Is(err, ErrResetRequestsDisabled):
		return goerrors.Wrap(err, goerrors.CategoryAuthz, ErrResetRequestsDisabled.Error()).
			WithCode(goerrors.CodeForbidden).
			WithTextCode(textCodeDisabled)
	case errors.Is(err, ErrBookkeepingIncomplete):
		return goerrors.Wrap(err, goerrors.CategoryInternal, ErrBookkeepingIncomplete.Error()).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeBookkeeping)
	case errors.Is(err, ErrEmailRequired),
		errors.Is(err, ErrRequestIDRequired),
		errors.Is(err, ErrAlertIDRequired),
		errors.Is(err, ErrInvalidReviewStatus),
		errors.Is(err, ErrNewPasswordRequired),
		errors.Is(err, ErrInvalidRetention):
		return errmap.Validation(err)
	}
	return errmap.Present(err)
}

// rateLimitError carries the limiter state so a UI can render a countdown.
func rateLimitError(status types.RateLimitStatus) error {
	textCode := textCodeDailyLimit
	message := "go-credentials: daily password reset limit reached"
	if status.Reason == types.RateLimitReasonCooldown {
		textCode = textCodeCooldown
		message = "go-credentials: please wait before submitting another password reset request"
	}
	return goerrors.Wrap(ErrRateLimited, goerrors.CategoryValidation, message).
		WithCode(http.StatusTooManyRequests).
		WithTextCode(textCode).
		WithMetadata(map[string]any{
			"attempts_remaining": status.AttemptsRemaining,
			"remaining_seconds":  status.RemainingSeconds,
		})
}

func internalError(err error, message string) error {
	return errmap.Internal(err, message)
}
