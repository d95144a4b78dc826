package domain

import (
	interfaces "banbds/internal/domain/interfaces"
	types "banbds/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	DeviceID           = types.DeviceID
	DeviceToken        = types.DeviceToken
	UserToken          = types.UserToken
	Credentials        = types.Credentials
	SessionState       = types.SessionState
	Fingerprint        = types.Fingerprint
	Request            = types.Request
	Upload             = types.Upload
	Result             = types.Result
	ResultKind         = types.ResultKind
	UnauthorizedReason = types.UnauthorizedReason
	ImageRejection     = types.ImageRejection
	Outcome            = types.Outcome
	OutcomeKind        = types.OutcomeKind
	TransportError     = types.TransportError
	BadRequestError    = types.BadRequestError
	ImageRejectedError = types.ImageRejectedError
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	KeyValueStore       = interfaces.KeyValueStore
	DeviceRegistrar     = interfaces.DeviceRegistrar
	Transport           = interfaces.Transport
	FingerprintProvider = interfaces.FingerprintProvider
	DeviceSession       = interfaces.DeviceSession
	UserTokenSource     = interfaces.UserTokenSource
	Caller              = interfaces.Caller
)

const (
	StateNoIdentity   = types.StateNoIdentity
	StateDeviceIDOnly = types.StateDeviceIDOnly
	StateValidToken   = types.StateValidToken

	ResultSuccess        = types.ResultSuccess
	ResultUnauthorized   = types.ResultUnauthorized
	ResultNotProcessable = types.ResultNotProcessable
	ResultImageRejected  = types.ResultImageRejected

	ReasonDevice = types.ReasonDevice
	ReasonUser   = types.ReasonUser

	ImageFormat = types.ImageFormat
	ImageTooBig = types.ImageTooBig

	OutcomeSuccess          = types.OutcomeSuccess
	OutcomeUnauthorizedUser = types.OutcomeUnauthorizedUser
	OutcomeBadRequest       = types.OutcomeBadRequest
	OutcomeImageRejected    = types.OutcomeImageRejected
)

// Sentinel errors re-exported for callers that only import domain.
var (
	ErrTransport        = types.ErrTransport
	ErrRenewalFailed    = types.ErrRenewalFailed
	ErrDeviceRejected   = types.ErrDeviceRejected
	ErrRenewalLoop      = types.ErrRenewalLoop
	ErrNoUserSession    = types.ErrNoUserSession
	ErrUnauthorizedUser = types.ErrUnauthorizedUser
)
