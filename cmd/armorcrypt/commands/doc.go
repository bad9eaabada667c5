// Package commands implements the armorcrypt CLI: account creation,
// one-time key management and group session lifecycle, all persisted as
// passphrase-protected pickles.
package commands
