package botErrors

import (
	"errors"
	"fmt"
)

var ErrNoAccess = errors.New("no access")

var ErrAlreadyProcessed = errors.New("review already processed")

var ErrReviewInProgress = fmt.Errorf("%w: another decision is in progress", ErrAlreadyProcessed)

var ErrParse = errors.New("review message could not be parsed")

var ErrStorage = errors.New("storage failure")

var ErrDelivery = errors.New("message delivery failed")

var ErrReasonTooShort = errors.New("denial reason is too short")

var ErrReasonTooLong = errors.New("denial reason is too long")

var ErrNoDialog = errors.New("no pending dialog")

var ErrMirroringDisabled = errors.New("gallery mirroring is disabled")

var ErrGalleryConfig = errors.New("gallery configuration is incomplete")

var ErrGalleryConnection = errors.New("gallery connection error")

var ErrGalleryTimeout = errors.New("gallery timeout")

var ErrNoSource = errors.New("no source message to submit")

// ValidationReason says why a submission was refused.
type ValidationReason string

const (
	NoAttachments      ValidationReason = "no_attachments"
	NoEligibleMedia    ValidationReason = "no_eligible_media"
	AllAlreadyApproved ValidationReason = "all_already_approved"
)

// ValidationError is a user-facing, non-retryable submission failure.
type ValidationError struct {
	Reason  ValidationReason
	Skipped int
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case NoAttachments:
		return "Message has no attachments."
	case NoEligibleMedia:
		return "No image/video attachments found."
	case AllAlreadyApproved:
		return fmt.Sprintf("All %d image/video attachment(s) already approved.", e.Skipped)
	}
	return string(e.Reason)
}

// CooldownError is returned while a submitter is rate limited.
type CooldownError struct {
	Remaining string
}

func (e *CooldownError) Error() string {
	return "cooldown, retry in " + e.Remaining
}
