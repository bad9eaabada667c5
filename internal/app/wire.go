package app

import (
	"crypto/rand"
	"io"

	"armorcrypt/internal/domain"
	"armorcrypt/internal/store"
)

// Wire bundles the dependencies commands draw from.
type Wire struct {
	Store domain.PickleStore
	Rand  io.Reader
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) *Wire {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.Reader
	}
	return &Wire{
		Store: store.NewFileStore(cfg.Home),
		Rand:  rng,
	}
}
