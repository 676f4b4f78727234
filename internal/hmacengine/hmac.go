// Package hmacengine implements the HMAC engine: a keyed-hash wrapper over
// internal/hashengine per RFC 2104.
package hmacengine

import (
	"crypto/hmac"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hashengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/wizerr"
)

// hashFactory returns a constructor compatible with crypto/hmac.New for
// the given hashengine.Algorithm. CRC64 and None are not valid MAC hashes.
func hashFactory(algo hashengine.Algorithm) (func() hashStd, error) {
	switch algo {
	case hashengine.MD5, hashengine.SHA1, hashengine.SHA224, hashengine.SHA256,
		hashengine.SHA384, hashengine.SHA512,
		hashengine.SHA3224, hashengine.SHA3256, hashengine.SHA3384, hashengine.SHA3512:
		return func() hashStd {
			c, _ := hashengine.Acquire(algo)
			_ = c.Initialise()
			return hashAdapter{c}
		}, nil
	default:
		return nil, wizerr.New(wizerr.MAC, "unsupported HMAC hash algorithm", "CRC-64 and None cannot back an HMAC")
	}
}

// hashStd is the subset of hash.Hash that crypto/hmac.New needs.
type hashStd = interface {
	Write(p []byte) (int, error)
	Sum(b []byte) []byte
	Reset()
	Size() int
	BlockSize() int
}

// hashAdapter adapts a hashengine.Context to the standard hash.Hash shape
// so crypto/hmac.New can drive it directly.
type hashAdapter struct {
	c *hashengine.Context
}

func (a hashAdapter) Write(p []byte) (int, error) {
	if err := a.c.Update(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (a hashAdapter) Sum(b []byte) []byte {
	// Sum finalises the underlying streaming context, so the adapter takes
	// no further Write until Reset. crypto/hmac, whose Sum path
	// Context.Finalise uses, keeps to that: it Resets the outer hash before
	// every reuse (including after hashing down a long key in New).
	_ = a.c.Finalise()
	d, _ := a.c.Digest()
	return append(b, d.Bytes()...)
}

func (a hashAdapter) Reset() {
	_ = a.c.Initialise()
}

func (a hashAdapter) Size() int { return a.c.DigestSize() }

func (a hashAdapter) BlockSize() int { return a.c.BlockSize() }

// Context is an HMAC context over a chosen hash algorithm.
type Context struct {
	algo hashengine.Algorithm
	h    hashStd
}

// Acquire returns a new HMAC Context for the given hash algorithm.
func Acquire(algo hashengine.Algorithm) (*Context, error) {
	if _, err := hashFactory(algo); err != nil {
		return nil, err
	}
	return &Context{algo: algo}, nil
}

// Initialise primes the HMAC with key, computing K (hashed down if longer
// than the block size, else zero-padded) and the ipad/opad per RFC 2104.
func (c *Context) Initialise(key []byte) error {
	factory, err := hashFactory(c.algo)
	if err != nil {
		return err
	}
	c.h = hmac.New(func() hashStd { return factory() }, key)
	return nil
}

// Update feeds bytes into the HMAC's inner hash.
func (c *Context) Update(p []byte) error {
	if c.h == nil {
		return wizerr.New(wizerr.MAC, "update before initialise", "")
	}
	_, err := c.h.Write(p)
	return err
}

// Finalise computes digest = H(opad || H(ipad || message)) and returns it.
func (c *Context) Finalise() (*buffer.Buffer, error) {
	if c.h == nil {
		return nil, wizerr.New(wizerr.MAC, "finalise before initialise", "")
	}
	return buffer.FromBytes(c.h.Sum(nil)), nil
}

// Reset re-initialises the HMAC under key, discarding any accumulated
// message. It derives ipad/opad from key again; no pads are kept from an
// earlier Initialise.
func (c *Context) Reset(key []byte) error {
	return c.Initialise(key)
}

// Construct is the one-shot equivalent of Initialise/Update/Finalise.
func Construct(algo hashengine.Algorithm, key, msg []byte) (*buffer.Buffer, error) {
	c, err := Acquire(algo)
	if err != nil {
		return nil, err
	}
	if err := c.Initialise(key); err != nil {
		return nil, err
	}
	if err := c.Update(msg); err != nil {
		return nil, err
	}
	return c.Finalise()
}
