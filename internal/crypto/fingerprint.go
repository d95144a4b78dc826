package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	digestLabel = "banbds device id v1\x00"
	digestBytes = 10
)

// Fingerprint returns a short, stable hex digest of identifying bytes such
// as a hardware address, so the raw value never leaves the device. The
// input is hashed under a fixed label; empty input yields "".
func Fingerprint(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	h := sha256.New()
	h.Write([]byte(digestLabel))
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil)[:digestBytes])
}
