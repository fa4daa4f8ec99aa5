package apperr

import "fmt"

var (
	// Validation
	ErrEmptyMessage    = Validation("message cannot be empty")
	ErrMessageTooLong  = Validation("message is longer than 200 characters")
	ErrEmptyGroupName  = Validation("group name cannot be empty")
	ErrGroupNameTooLong = Validation("group name is longer than 50 characters")
	ErrNoRecipients    = Validation("at least one friend must be selected")
	ErrNoGroupSelected = Validation("a group must be selected")
	ErrBadResponse     = Validation("response must be yes, no or maybe")

	// Expiration
	ErrInvalidExpiration = New(CodeInvalidExpiration, "expiration must be between 1 minute and 7 days")

	// Authorization
	ErrNotRecipient    = NotAuthorized("you are not a recipient of this ping")
	ErrNotSender       = NotAuthorized("only the sender can delete a ping")
	ErrNotGroupCreator = NotAuthorized("only the group creator can change the group")

	// Lookups
	ErrPingNotFound  = NotFound("ping not found")
	ErrGroupNotFound = NotFound("group not found")
	ErrUserNotFound  = NotFound("user not found")

	// Optimistic mutations that the store refused. The local read model has
	// already been rolled back when one of these surfaces.
	ErrResponseSync = New(CodeSyncFailed, "response could not be saved")
	ErrDeleteSync   = New(CodeSyncFailed, "ping could not be deleted")
	ErrWriteSync    = New(CodeSyncFailed, "change could not be saved")
)

func ResponseSync(cause error) error {
	return Wrap(CodeSyncFailed, "response could not be saved", cause)
}

func DeleteSync(cause error) error {
	return Wrap(CodeSyncFailed, "ping could not be deleted", cause)
}

func WriteSync(cause error) error {
	return Wrap(CodeSyncFailed, "change could not be saved", cause)
}

func NotFoundf(what, id string) error {
	return New(CodeNotFound, fmt.Sprintf("%s %q not found", what, id))
}
