package interfaces

import (
	"context"

	domaintypes "banbds/internal/domain/types"
)

// DeviceRegistrar exchanges device attributes for backend credentials.
type DeviceRegistrar interface {
	// RegisterDevice bootstraps a new identity from a full fingerprint.
	RegisterDevice(
		ctx context.Context,
		fp domaintypes.Fingerprint,
	) (domaintypes.DeviceID, domaintypes.DeviceToken, error)
	// RenewDevice exchanges a known device id for a fresh token.
	RenewDevice(ctx context.Context, id domaintypes.DeviceID) (domaintypes.DeviceToken, error)
}

// Transport sends a single request with the given credentials and decodes
// the response envelope. Failures to obtain an envelope are returned as
// *domaintypes.TransportError.
type Transport interface {
	Send(
		ctx context.Context,
		req domaintypes.Request,
		creds domaintypes.Credentials,
	) (domaintypes.Result, error)
}

// FingerprintProvider reads hardware and OS attributes of this device.
type FingerprintProvider interface {
	Fingerprint(ctx context.Context) (domaintypes.Fingerprint, error)
}
