// Package device manages the device identity used to authenticate every
// backend call.
//
// It bootstraps an identity from the device fingerprint, renews the token
// from the stored device id when only the token is missing, and replaces a
// token the backend rejected. All reads and writes of the device id and
// token go through this package.
package device
