package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/google/uuid"
)

// UpdateRequestStatusInput is the single entry point used by review screens:
// rejected closes the request, approved requires NewPassword.
type UpdateRequestStatusInput struct {
	RequestID   uuid.UUID
	Status      types.ResetStatus
	NewPassword string
	Notes       string
	IPAddress   string
	Actor       types.ActorRef
	Result      *types.ResetRequestDetails
}

// Type implements gocommand.Message.
func (UpdateRequestStatusInput) Type() string {
	return "command.password_reset_request.update_status"
}

// Validate implements gocommand.Message.
func (input UpdateRequestStatusInput) Validate() error {
	switch {
	case input.RequestID == uuid.Nil:
		return ErrRequestIDRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	case !input.Status.IsTerminal():
		return ErrInvalidReviewStatus
	case input.Status == types.ResetStatusApproved && input.NewPassword == "":
		return ErrNewPasswordRequired
	default:
		return nil
	}
}

// UpdateRequestStatusCommand dispatches to the reject or approve handler.
type UpdateRequestStatusCommand struct {
	reject  *RejectResetRequestCommand
	approve *ApproveResetRequestCommand
}

// NewUpdateRequestStatusCommand wraps the review handlers.
func NewUpdateRequestStatusCommand(reject *RejectResetRequestCommand, approve *ApproveResetRequestCommand) *UpdateRequestStatusCommand {
	return &UpdateRequestStatusCommand{reject: reject, approve: approve}
}

var _ gocommand.Commander[UpdateRequestStatusInput] = (*UpdateRequestStatusCommand)(nil)

// Execute validates the target status and delegates.
func (c *UpdateRequestStatusCommand) Execute(ctx context.Context, input UpdateRequestStatusInput) error {
	if err := input.Validate(); err != nil {
		return presentError(err)
	}
	if input.Status == types.ResetStatusRejected {
		if c.reject == nil {
			return types.ErrServiceNotReady
		}
		return c.reject.Execute(ctx, RejectResetRequestInput{
			RequestID: input.RequestID,
			Notes:     input.Notes,
			IPAddress: input.IPAddress,
			Actor:     input.Actor,
			Result:    input.Result,
		})
	}
	if c.approve == nil {
		return types.ErrServiceNotReady
	}
	result := &ApproveResetRequestResult{}
	err := c.approve.Execute(ctx, ApproveResetRequestInput{
		RequestID:   input.RequestID,
		NewPassword: input.NewPassword,
		Notes:       input.Notes,
		IPAddress:   input.IPAddress,
		Actor:       input.Actor,
		Result:      result,
	})
	if input.Result != nil && result.Request.ID != uuid.Nil {
		*input.Result = result.Request
	}
	return err
}
