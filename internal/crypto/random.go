package crypto

import (
	"fmt"
	"io"

	"armorcrypt/internal/domain"
)

// RandRead fills b from rng, wrapping any failure as ErrKeyGeneration.
func RandRead(rng io.Reader, b []byte) error {
	if _, err := io.ReadFull(rng, b); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
	}
	return nil
}
