package authenticate

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/wizerr"
)

// ConcatKDF derives outputLen bytes of key material from sharedSecret and
// fixedInfo via the NIST SP 800-56A section 5.8.1 single-step
// concatenation KDF, hashing with SHA3-512. It is an opt-in extension
// (OQ-3) for callers deriving keys from a shared secret rather than a
// stored passphrase; it plays no part in Generate/Authenticate.
func ConcatKDF(sharedSecret, fixedInfo []byte, outputLen int) ([]byte, error) {
	if len(sharedSecret) == 0 {
		return nil, wizerr.New(wizerr.Key, "empty shared secret", "")
	}
	if outputLen <= 0 {
		return nil, wizerr.New(wizerr.Key, "invalid output length", "")
	}

	const hashLen = 64 // SHA3-512 digest size
	out := make([]byte, 0, outputLen+hashLen)
	for counter := uint32(1); len(out) < outputLen; counter++ {
		var counterBytes [4]byte
		binary.BigEndian.PutUint32(counterBytes[:], counter)

		h := sha3.New512()
		h.Write(counterBytes[:])
		h.Write(sharedSecret)
		h.Write(fixedInfo)
		out = append(out, h.Sum(nil)...)
	}
	return out[:outputLen], nil
}
