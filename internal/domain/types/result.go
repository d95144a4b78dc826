package types

import "encoding/json"

// ResultKind tags the variant held by a Result.
type ResultKind int

const (
	ResultSuccess ResultKind = iota + 1
	ResultUnauthorized
	ResultNotProcessable
	ResultImageRejected
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultUnauthorized:
		return "unauthorized"
	case ResultNotProcessable:
		return "not-processable"
	case ResultImageRejected:
		return "image-rejected"
	default:
		return "unknown"
	}
}

// UnauthorizedReason says which credential the backend rejected.
type UnauthorizedReason int

const (
	ReasonDevice UnauthorizedReason = iota + 1
	ReasonUser
)

func (r UnauthorizedReason) String() string {
	switch r {
	case ReasonDevice:
		return "device"
	case ReasonUser:
		return "user"
	default:
		return "unknown"
	}
}

// ImageRejection says why an upload was refused.
type ImageRejection int

const (
	ImageFormat ImageRejection = iota + 1
	ImageTooBig
)

func (r ImageRejection) String() string {
	switch r {
	case ImageFormat:
		return "format"
	case ImageTooBig:
		return "too-big"
	default:
		return "unknown"
	}
}

// Result is a decoded response envelope. Exactly one variant is populated,
// selected by Kind; Data is only set for ResultSuccess.
type Result struct {
	Kind    ResultKind
	Data    json.RawMessage
	Reason  UnauthorizedReason
	Message string
	Image   ImageRejection
}
