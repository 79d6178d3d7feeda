package estimate

import (
	"errors"

	"github.com/bastiangx/farecast/pkg/api"
)

// ErrConfigMissing blocks every submission when no API base URL is set.
var ErrConfigMissing = api.ErrConfigMissing

// ErrValidation matches every validation failure via errors.Is.
var ErrValidation = errors.New("invalid submission")

var (
	ErrEndpointsRequired error = validationError("Please select both cities.")
	ErrSameEndpoint      error = validationError("From and To cannot be the same city.")
	ErrDateRequired      error = validationError("Please pick a travel date.")
	ErrDateInvalid       error = validationError("Please pick a valid travel date (YYYY-MM-DD).")
	ErrDateNotFuture     error = validationError("Please pick a future date (tomorrow onwards).")
)

// validationError is a user-facing message for a rejected submission.
type validationError string

func (e validationError) Error() string { return string(e) }

func (e validationError) Is(target error) bool { return target == ErrValidation }
