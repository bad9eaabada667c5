// Package store persists pickled core state in passphrase-protected files.
// The pickle blobs are already integrity checked; this layer adds a
// passphrase-derived outer envelope so files at rest require neither the
// pickle key nor key management from the CLI user.
package store
