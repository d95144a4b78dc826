// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (wire/state) and contracts (interfaces) only.
//
// The definitions live in the types and interfaces subpackages; this package
// re-exports them as aliases so most callers need a single import.
package domain
