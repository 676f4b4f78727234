package authenticate

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/wizerr"
)

// DefaultPBKDF2Iterations is a reasonable default iteration count for
// callers that opt into WithKDF without specifying their own.
const DefaultPBKDF2Iterations = 210000

func pbkdf2SHA256(passphrase, salt []byte, iterations, keyLen int) ([]byte, error) {
	if iterations <= 0 {
		iterations = DefaultPBKDF2Iterations
	}
	if len(passphrase) == 0 {
		return nil, wizerr.New(wizerr.Passphrase, "empty passphrase", "")
	}
	return pbkdf2.Key(passphrase, salt, iterations, keyLen, sha256.New), nil
}
