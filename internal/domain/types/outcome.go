package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// OutcomeKind tags the result of one logical authenticated call.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeUnauthorizedUser
	OutcomeBadRequest
	OutcomeImageRejected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeUnauthorizedUser:
		return "unauthorized-user"
	case OutcomeBadRequest:
		return "bad-request"
	case OutcomeImageRejected:
		return "image-rejected"
	default:
		return "unknown"
	}
}

// Outcome is what the gateway hands back to endpoint functions once device
// credential problems have been resolved.
type Outcome struct {
	Kind    OutcomeKind
	Data    json.RawMessage
	Message string
	Image   ImageRejection
}

// Decode unmarshals the success payload into v. A success without payload
// leaves v untouched.
func (o Outcome) Decode(v any) error {
	if o.Kind != OutcomeSuccess {
		return fmt.Errorf("decode %s outcome: %w", o.Kind, o.Err())
	}
	if len(o.Data) == 0 {
		return nil
	}
	return json.Unmarshal(o.Data, v)
}

// Err converts a non-success outcome into an error value; it returns nil
// for OutcomeSuccess.
func (o Outcome) Err() error {
	switch o.Kind {
	case OutcomeSuccess:
		return nil
	case OutcomeUnauthorizedUser:
		return ErrUnauthorizedUser
	case OutcomeBadRequest:
		return &BadRequestError{Message: o.Message}
	case OutcomeImageRejected:
		return &ImageRejectedError{Reason: o.Image}
	default:
		return errors.New("empty outcome")
	}
}
