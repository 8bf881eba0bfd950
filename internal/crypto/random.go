package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// randReader is the random source used for key generation, encapsulation
// and nonces. It defaults to nil (which uses crypto/rand) but can be
// overridden for testing.
var randReader io.Reader

func random() io.Reader {
	if randReader != nil {
		return randReader
	}
	return rand.Reader
}

// RandomBytes returns n bytes from the package random source.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(random(), b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}

// SetRandReaderForTesting replaces the random source until the returned
// func is called. Tests use it to force entropy failures.
func SetRandReaderForTesting(r io.Reader) func() {
	previous := randReader
	randReader = r
	return func() { randReader = previous }
}
