// Package account manages the user session layered on top of the device
// session: login, logout, profile and one-time passwords.
//
// The user token is persisted next to the device identity and attached by
// the gateway to user-scoped calls. A rejected user token is cleared
// locally; the caller routes the user back to login.
package account
