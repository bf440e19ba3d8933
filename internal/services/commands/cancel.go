package commands

import (
	"errors"

	"media-approve/pkg/botErrors"
)

// ErrorText maps a pipeline error to the text shown to the acting user.
func ErrorText(err error) string {
	var verr *botErrors.ValidationError
	var cerr *botErrors.CooldownError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.As(err, &cerr):
		return "Please wait " + cerr.Remaining + " before submitting again."
	case errors.Is(err, botErrors.ErrNoAccess):
		return "You do not have permission to do this."
	case errors.Is(err, botErrors.ErrReviewInProgress):
		return "Another reviewer is handling this request right now."
	case errors.Is(err, botErrors.ErrAlreadyProcessed):
		return "This request has already been processed."
	case errors.Is(err, botErrors.ErrParse):
		return "Error: could not read this review message. Please check it manually."
	case errors.Is(err, botErrors.ErrReasonTooShort):
		return "The reason is too short, please write a bit more."
	case errors.Is(err, botErrors.ErrReasonTooLong):
		return "The reason is too long, please shorten it."
	case errors.Is(err, botErrors.ErrNoDialog):
		return NoDenyDialog
	case errors.Is(err, botErrors.ErrNoSource):
		return NoSource
	case errors.Is(err, botErrors.ErrDelivery):
		return "Could not post the message. Please try again later."
	case errors.Is(err, botErrors.ErrStorage):
		return "Storage is unavailable, please try again later."
	}
	return "Something went wrong, please try again later."
}
