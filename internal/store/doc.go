// Package store provides the local key-value persistence that holds the
// device id, device token and user token.
//
// Backends:
//   - FileStore: one JSON file under the configured home directory,
//     optionally sealed with a passphrase (scrypt + XChaCha20-Poly1305).
//   - RedisStore: keys under a prefix on a Redis server.
//   - SQLiteStore: a single table in a local SQLite database.
//   - MemoryStore: process-local, used by tests and one-shot runs.
//
// All backends implement domain.KeyValueStore and replace values atomically,
// so a reader sees either the previous value or the new one.
package store
