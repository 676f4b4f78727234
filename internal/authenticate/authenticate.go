// Package authenticate implements the §4.8 secret authenticator: binding
// a human passphrase to a random key so that authentication becomes the
// ability to re-derive the key's id. Grounded directly on
// original_source/wizard/secret.c's GenerateSecretKey/
// AuthenticateSecretKey: the passphrase is used as raw AES-CTR key
// material (SecretKeyCipher=AES, SecretKeyMode=CTR, SecretKeyHash=SHA256),
// never as PBKDF input, unless the caller opts into WithKDF.
package authenticate

import (
	"crypto/subtle"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/cipherengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hashengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hmacengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/keyringfile"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/random"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/wizerr"
)

const (
	secretKeyHash = hashengine.SHA256
	maxCollisionRetries = 10000
)

// KeyDerivation selects how a passphrase becomes AES key material.
type KeyDerivation int

const (
	// Raw pads/truncates the passphrase bytes to the cipher's key length,
	// matching the original tool's default (no PBKDF).
	Raw KeyDerivation = iota
	// PBKDF2WithSHA256 runs RFC 2898 PBKDF2 over the passphrase before use,
	// an opt-in extension (OQ-3) for callers who want a conventional KDF.
	PBKDF2WithSHA256
)

// Authenticator binds a keyring file path to a key length and key
// derivation policy.
type Authenticator struct {
	path          string
	keyLengthBits int
	derivation    KeyDerivation
	pbkdf2Iters   int
	src           *random.Source
	nonce         *buffer.Buffer
}

// Acquire returns a new Authenticator bound to the keyring file at path.
// keyLengthBits is the length, in bits, of generated secret keys.
func Acquire(path string, keyLengthBits int) (*Authenticator, error) {
	if keyLengthBits%8 != 0 || keyLengthBits <= 0 {
		return nil, wizerr.New(wizerr.Authenticate, "invalid key length", "must be a positive multiple of 8 bits")
	}
	src, err := random.Acquire(hashengine.SHA256)
	if err != nil {
		return nil, err
	}
	nonce, err := src.GetKey(cipherengine.MaxBlockSize)
	if err != nil {
		return nil, wizerr.Wrap(wizerr.Authenticate, "could not generate cipher nonce", err)
	}
	return &Authenticator{path: path, keyLengthBits: keyLengthBits, src: src, nonce: nonce}, nil
}

// WithKDF switches the Authenticator to PBKDF2-HMAC-SHA256 passphrase
// derivation, the opt-in extension resolving OQ-3.
func (a *Authenticator) WithKDF(iterations int) *Authenticator {
	a.derivation = PBKDF2WithSHA256
	a.pbkdf2Iters = iterations
	return a
}

func (a *Authenticator) deriveCipherKey(passphrase []byte) ([]byte, error) {
	switch a.derivation {
	case Raw:
		key := make([]byte, cipherengine.MaxBlockSize*2) // AES-256
		copy(key, passphrase)
		return key, nil
	case PBKDF2WithSHA256:
		return pbkdf2SHA256(passphrase, a.nonce.Bytes(), a.pbkdf2Iters, cipherengine.MaxBlockSize*2)
	default:
		return nil, wizerr.New(wizerr.Authenticate, "unsupported key derivation", "")
	}
}

func (a *Authenticator) wrapCipher(passphrase, nonce []byte) (*cipherengine.Context, error) {
	ctx, err := cipherengine.Acquire(cipherengine.AES, cipherengine.CTR)
	if err != nil {
		return nil, err
	}
	key, err := a.deriveCipherKey(passphrase)
	if err != nil {
		return nil, err
	}
	if err := ctx.SetKey(key); err != nil {
		return nil, err
	}
	if err := ctx.SetNonce(nonce); err != nil {
		return nil, err
	}
	return ctx, nil
}

// Generate draws a random key_length-bit key, derives its id as
// HMAC-SHA256(passphrase, key), retrying on id collision against the
// keyring file, wraps the key under the passphrase, and appends the
// record to the keyring file. It returns the new id.
func (a *Authenticator) Generate(passphrase []byte) (*buffer.Buffer, error) {
	var (
		key *buffer.Buffer
		id  *buffer.Buffer
	)
	for attempt := 0; ; attempt++ {
		if attempt >= maxCollisionRetries {
			return nil, wizerr.New(wizerr.Key, "could not find an unused id", "too many collisions")
		}
		k, err := a.src.GetKey(a.keyLengthBits / 8)
		if err != nil {
			return nil, wizerr.Wrap(wizerr.Authenticate, "could not generate key", err)
		}
		digest, err := hmacengine.Construct(secretKeyHash, passphrase, k.Bytes())
		if err != nil {
			return nil, wizerr.Wrap(wizerr.Authenticate, "could not compute id", err)
		}
		probe := keyringfile.Acquire(a.path)
		probe.SetID(digest)
		if err := keyringfile.Export(probe); err == nil {
			continue // id collision: discard and retry
		}
		key, id = k, digest
		break
	}

	ctx, err := a.wrapCipher(passphrase, a.nonce.Bytes())
	if err != nil {
		return nil, wizerr.Wrap(wizerr.Authenticate, "could not prepare wrap cipher", err)
	}
	wrapped := key.Clone()
	if err := ctx.Encipher(wrapped); err != nil {
		return nil, wizerr.Wrap(wizerr.Authenticate, "could not wrap key", err)
	}

	rec := keyringfile.Acquire(a.path)
	rec.SetID(id)
	rec.SetNonce(a.nonce)
	rec.SetKey(wrapped)
	if err := keyringfile.Import(rec); err != nil {
		return nil, wizerr.Wrap(wizerr.Key, "could not persist keyring record", err)
	}
	return id, nil
}

// Authenticate reads the keyring record for id, unwraps its key using
// passphrase, and recomputes HMAC-SHA256(passphrase, key), comparing it
// to id in constant time. It returns a wizerr.Authenticate error on any
// failure: missing record, malformed record, or a mismatch.
func (a *Authenticator) Authenticate(id *buffer.Buffer, passphrase []byte) error {
	rec := keyringfile.Acquire(a.path)
	rec.SetID(id)
	if err := keyringfile.Export(rec); err != nil {
		return wizerr.Wrap(wizerr.Authenticate, "keyring record not found", err)
	}

	ctx, err := a.wrapCipher(passphrase, rec.GetNonce().Bytes())
	if err != nil {
		return wizerr.Wrap(wizerr.Authenticate, "could not prepare unwrap cipher", err)
	}
	key := rec.GetKey().Clone()
	if err := ctx.Decipher(key); err != nil {
		return wizerr.Wrap(wizerr.Authenticate, "could not unwrap key", err)
	}

	digest, err := hmacengine.Construct(secretKeyHash, passphrase, key.Bytes())
	if err != nil {
		return wizerr.Wrap(wizerr.Authenticate, "could not compute id", err)
	}
	if subtle.ConstantTimeCompare(digest.Bytes(), id.Bytes()) != 1 {
		return wizerr.New(wizerr.Authenticate, "passphrase does not match", "")
	}
	return nil
}
