package app

import "io"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home string    // state directory, e.g. $HOME/.armorcrypt
	Rand io.Reader // randomness source; defaults to crypto/rand.Reader
}
