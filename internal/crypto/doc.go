// Package crypto exposes the small primitives shared by the client.
//
// Contents
//
//   - Short one-way digests of identifying bytes (Fingerprint)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
package crypto
