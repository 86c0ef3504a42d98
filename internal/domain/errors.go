package domain

import "errors"

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrSecretNotFound = errors.New("secret not found")

	// Generation failure taxonomy
	ErrCredentialInvalid = errors.New("generation credential rejected")
	ErrPermissionDenied  = errors.New("generation permission denied")
	ErrQuotaExceeded     = errors.New("generation quota exceeded")
	ErrGenerationTimeout = errors.New("generation timed out")
	ErrGenerationNetwork = errors.New("generation network failure")

	// Membership lookup could not determine whether the bot is still a member
	ErrMembershipIndeterminate = errors.New("membership indeterminate")
)
