// Package keyring implements the in-memory session keyring of §4.7: an
// id-to-key map whose entries, except the session key itself, are stored
// wrapped under a process-unique AES-CTR session key and session nonce.
package keyring

import (
	"sync"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/cipherengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hashengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hmacengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/random"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/wizerr"
)

const sessionKeyLength = 32 // bytes; AES-256 session key

// Keyring is the process-local, lock-protected id→key map described in
// §4.7 and §5. The zero value is not usable; build one with Acquire.
type Keyring struct {
	mu           sync.Mutex
	src          *random.Source
	sessionID    *buffer.Buffer
	sessionKey   *buffer.Buffer
	sessionNonce *buffer.Buffer
	entries      map[string]*buffer.Buffer // hex(id) -> wrapped key; session id maps to the clear session key
}

// Acquire generates fresh session material (a session key and a session
// nonce), derives the id under which the session key itself is held in
// the clear, and returns a ready Keyring.
func Acquire() (*Keyring, error) {
	src, err := random.Acquire(hashengine.SHA256)
	if err != nil {
		return nil, err
	}
	sessionKey, err := src.GetKey(sessionKeyLength)
	if err != nil {
		return nil, wizerr.Wrap(wizerr.Keyring, "could not generate session key", err)
	}
	sessionNonce, err := src.GetKey(cipherengine.MaxBlockSize)
	if err != nil {
		return nil, wizerr.Wrap(wizerr.Keyring, "could not generate session nonce", err)
	}
	macKey, err := src.GetKey(sessionKeyLength)
	if err != nil {
		return nil, wizerr.Wrap(wizerr.Keyring, "could not generate session id MAC key", err)
	}
	sessionID, err := hmacengine.Construct(hashengine.SHA256, macKey.Bytes(), sessionKey.Bytes())
	if err != nil {
		return nil, wizerr.Wrap(wizerr.Keyring, "could not derive session id", err)
	}

	k := &Keyring{
		src:          src,
		sessionKey:   sessionKey,
		sessionNonce: sessionNonce,
		sessionID:    sessionID,
		entries:      make(map[string]*buffer.Buffer),
	}
	k.entries[sessionID.ToHex()] = sessionKey.Clone()
	return k, nil
}

func (k *Keyring) wrapCipher() (*cipherengine.Context, error) {
	ctx, err := cipherengine.Acquire(cipherengine.AES, cipherengine.CTR)
	if err != nil {
		return nil, err
	}
	if err := ctx.SetKey(k.sessionKey.Bytes()); err != nil {
		return nil, err
	}
	if err := ctx.SetNonce(k.sessionNonce.Bytes()); err != nil {
		return nil, err
	}
	return ctx, nil
}

// GenerateSessionKey creates a new random key of keyLength bytes, derives
// its id via HMAC-SHA256 under a disposable random MAC key, installs
// id→wrap(key), and returns the id.
func (k *Keyring) GenerateSessionKey(keyLength int) (*buffer.Buffer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	key, err := k.src.GetKey(keyLength)
	if err != nil {
		return nil, wizerr.Wrap(wizerr.Keyring, "could not generate key", err)
	}
	macKey, err := k.src.GetKey(keyLength)
	if err != nil {
		return nil, wizerr.Wrap(wizerr.Keyring, "could not generate id MAC key", err)
	}
	id, err := hmacengine.Construct(hashengine.SHA256, macKey.Bytes(), key.Bytes())
	if err != nil {
		return nil, wizerr.Wrap(wizerr.Keyring, "could not construct id MAC", err)
	}
	if err := k.setLocked(id, key); err != nil {
		return nil, err
	}
	return id, nil
}

// Set wraps key under the session key and stores it at id, overwriting
// any existing entry. Setting the keyring's own session id is refused:
// that entry is maintained by Acquire/Destroy only.
func (k *Keyring) Set(id, key *buffer.Buffer) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if id.ToHex() == k.sessionID.ToHex() {
		return wizerr.New(wizerr.Keyring, "id is reserved for the session key", "")
	}
	return k.setLocked(id, key)
}

func (k *Keyring) setLocked(id, key *buffer.Buffer) error {
	ctx, err := k.wrapCipher()
	if err != nil {
		return wizerr.Wrap(wizerr.Keyring, "could not prepare wrap cipher", err)
	}
	wrapped := key.Clone()
	if err := ctx.Encipher(wrapped); err != nil {
		return wizerr.Wrap(wizerr.Keyring, "could not wrap key", err)
	}
	k.entries[id.ToHex()] = wrapped
	return nil
}

// Get looks up id and returns the unwrapped key. It fails with
// wizerr.Keyring if id is absent. The keyring's own session id returns
// the session key, which is never wrapped.
func (k *Keyring) Get(id *buffer.Buffer) (*buffer.Buffer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	hexID := id.ToHex()
	wrapped, ok := k.entries[hexID]
	if !ok {
		return nil, wizerr.New(wizerr.Keyring, "id not found", "")
	}
	if hexID == k.sessionID.ToHex() {
		return wrapped.Clone(), nil
	}
	ctx, err := k.wrapCipher()
	if err != nil {
		return nil, wizerr.Wrap(wizerr.Keyring, "could not prepare unwrap cipher", err)
	}
	key := wrapped.Clone()
	if err := ctx.Decipher(key); err != nil {
		return nil, wizerr.Wrap(wizerr.Keyring, "could not unwrap key", err)
	}
	return key, nil
}

// SessionID returns the id under which this keyring's own session key is
// addressable, for diagnostics.
func (k *Keyring) SessionID() *buffer.Buffer {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.sessionID
}

// Len reports the number of entries currently held, including the
// session key's own entry, for diagnostics.
func (k *Keyring) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

// Destroy zeroes the session key, the session nonce, and every wrapped
// value, then discards the map storage. A destroyed Keyring must not be
// used again.
func (k *Keyring) Destroy() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.sessionKey != nil {
		k.sessionKey.Destroy()
	}
	if k.sessionNonce != nil {
		k.sessionNonce.Destroy()
	}
	for key, wrapped := range k.entries {
		wrapped.Destroy()
		delete(k.entries, key)
	}
}
