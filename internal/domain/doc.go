// Package domain holds the shared types of the armorcrypt core: fixed-size
// key material, the wire envelopes exchanged between clients, and the error
// taxonomy every layer reports through.
//
// Nothing in this package performs I/O or cryptography; it exists so the
// protocol, service, and persistence packages agree on one vocabulary.
package domain
