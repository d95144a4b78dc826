// Package api provides the HTTP transport to the listing backend.
//
// It implements domain.DeviceRegistrar (device bootstrap and renewal) and
// domain.Transport (one attempt of an authenticated call). Every response
// body is decoded once into the closed domain.Result variant; bodies that
// are not a valid envelope surface as *domain.TransportError regardless of
// the HTTP status code.
//
// Requests carry the device token in the x-banbds-device-token header and,
// for user-scoped calls, the user token as an Authorization bearer. All
// requests accept a context for cancellation and deadlines.
package api
