package types

// DeviceID identifies an installed client. It is issued by the backend on
// bootstrap and kept for the lifetime of the installation.
type DeviceID string

// String returns the string form of the device id.
func (id DeviceID) String() string { return string(id) }

// DeviceToken is the bearer credential tied to a DeviceID.
type DeviceToken string

// String returns the string form of the token.
func (t DeviceToken) String() string { return string(t) }

// UserToken is the bearer credential of a logged-in account.
type UserToken string

// String returns the string form of the token.
func (t UserToken) String() string { return string(t) }

// Credentials are the tokens attached to a single outbound request.
type Credentials struct {
	Device DeviceToken
	User   UserToken
}
