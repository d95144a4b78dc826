package interfaces

import "context"

// KeyValueStore is the local persistence used for device and user
// credentials. A missing key is reported with ok=false, not an error.
// Each Set replaces the value atomically.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
