package types

// SessionState describes how much of the device identity is persisted locally.
type SessionState int

const (
	// StateNoIdentity means neither a device id nor a token is stored.
	StateNoIdentity SessionState = iota
	// StateDeviceIDOnly means the device id is known but the token is missing
	// or was invalidated.
	StateDeviceIDOnly
	// StateValidToken means a token is stored and will be attempted as is.
	StateValidToken
)

func (s SessionState) String() string {
	switch s {
	case StateNoIdentity:
		return "no-identity"
	case StateDeviceIDOnly:
		return "device-id-only"
	case StateValidToken:
		return "valid-token"
	default:
		return "unknown"
	}
}
