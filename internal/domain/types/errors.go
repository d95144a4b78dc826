package types

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches any network, timeout or decoding failure.
	ErrTransport = errors.New("transport error")
	// ErrRenewalFailed means no usable device token could be obtained.
	ErrRenewalFailed = errors.New("device renewal failed")
	// ErrDeviceRejected means the backend refused a device credential
	// exchange, e.g. it no longer knows the stored device id.
	ErrDeviceRejected = errors.New("device identity rejected")
	// ErrRenewalLoop means a freshly renewed device token was rejected too.
	ErrRenewalLoop = errors.New("renewed device token rejected")
	// ErrNoUserSession is returned for user-scoped calls without a stored user token.
	ErrNoUserSession = errors.New("no user session")
	// ErrUnauthorizedUser means the backend rejected the user token.
	ErrUnauthorizedUser = errors.New("user session rejected")
)

// TransportError describes a request that never produced a valid envelope.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports a match against ErrTransport so callers need not know the type.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// BadRequestError carries the backend's NotProcessable message.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	if e.Message == "" {
		return "request rejected"
	}
	return "request rejected: " + e.Message
}

// ImageRejectedError is returned when an upload is refused.
type ImageRejectedError struct {
	Reason ImageRejection
}

func (e *ImageRejectedError) Error() string {
	return "image rejected: " + e.Reason.String()
}
