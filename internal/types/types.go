// README: Common value objects shared across modules.
package types

import (
	"crypto/rand"
	"encoding/hex"
)

// ID is a 32-char hex identifier.
type ID string

// NewID returns a random identifier.
func NewID() ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return ID(hex.EncodeToString(b[:]))
}

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
