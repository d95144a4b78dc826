package store

// FastScrypt lowers the KDF cost for the duration of a test.
func FastScrypt() (restore func()) {
	old := scryptParams
	scryptParams = [3]int{1 << 10, 8, 1}
	return func() { scryptParams = old }
}
