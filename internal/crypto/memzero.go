package crypto

import "runtime"

// Wipe zeroes every buffer passed, typically derived keys and decrypted
// plaintext once they are no longer needed.
//
//go:noinline
func Wipe(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
		runtime.KeepAlive(b)
	}
}
