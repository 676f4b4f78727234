// Package hashengine implements the streaming hash engine: a uniform
// contract over CRC-64, MD5, SHA-1, the SHA-2 family, the SHA-3 family and
// a "None" placeholder algorithm, backed by the Go standard library and
// golang.org/x/crypto/sha3.
package hashengine

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	stdhash "hash"
	"hash/crc64"

	"golang.org/x/crypto/sha3"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/wizerr"
)

// Algorithm identifies a supported hash family.
type Algorithm int

const (
	Undefined Algorithm = iota
	None
	CRC64
	MD5
	SHA1
	SHA224
	SHA256
	SHA384
	SHA512
	SHA3224
	SHA3256
	SHA3384
	SHA3512
)

// state mirrors the HashState machine in §3: Uninitialised -> Initialised
// -> Updated -> Finalised, with Update only legal from Initialised or
// Updated and Finalise legal from Updated or Initialised.
type state int

const (
	uninitialised state = iota
	initialised
	updated
	finalised
)

var crc64Table = crc64.MakeTable(crc64.ECMA)

// sizes holds the (block_size, digest_size) pair for every algorithm, per
// the table in §3.
var sizes = map[Algorithm][2]int{
	None:    {0, 0},
	CRC64:   {8, 8},
	MD5:     {64, 16},
	SHA1:    {64, 20},
	SHA224:  {64, 28},
	SHA256:  {64, 32},
	SHA384:  {128, 48},
	SHA512:  {128, 64},
	SHA3224: {144, 28},
	SHA3256: {136, 32},
	SHA3384: {104, 48},
	SHA3512: {72, 64},
}

// Context is a hash context. Its zero value is not usable; build one with
// Acquire.
type Context struct {
	algo   Algorithm
	state  state
	h      stdhash.Hash
	crc    uint64
	digest *buffer.Buffer
}

// Acquire returns a new Context for algo in the Uninitialised state.
func Acquire(algo Algorithm) (*Context, error) {
	if _, ok := sizes[algo]; !ok {
		return nil, wizerr.New(wizerr.Hash, "unsupported hash algorithm", "")
	}
	return &Context{algo: algo, state: uninitialised}, nil
}

// BlockSize returns the algorithm's block size in bytes.
func (c *Context) BlockSize() int { return sizes[c.algo][0] }

// DigestSize returns the algorithm's digest size in bytes.
func (c *Context) DigestSize() int { return sizes[c.algo][1] }

// Initialise transitions the context to Initialised, constructing the
// underlying streaming hash.
func (c *Context) Initialise() error {
	switch c.algo {
	case None, CRC64:
		// these two are accumulated by hand, not via hash.Hash
	case MD5:
		c.h = md5.New()
	case SHA1:
		c.h = sha1.New()
	case SHA224:
		c.h = sha256.New224()
	case SHA256:
		c.h = sha256.New()
	case SHA384:
		c.h = sha512.New384()
	case SHA512:
		c.h = sha512.New()
	case SHA3224:
		c.h = sha3.New224()
	case SHA3256:
		c.h = sha3.New256()
	case SHA3384:
		c.h = sha3.New384()
	case SHA3512:
		c.h = sha3.New512()
	default:
		return wizerr.New(wizerr.Hash, "unsupported hash algorithm", "")
	}
	c.crc = 0
	c.digest = nil
	c.state = initialised
	return nil
}

// Update feeds bytes into the hash. It is legal from Initialised or
// Updated; calling it after Finalise is an error.
func (c *Context) Update(p []byte) error {
	if c.state != initialised && c.state != updated {
		return wizerr.New(wizerr.Hash, "update after finalise", "hash context must be (re)initialised first")
	}
	switch c.algo {
	case None:
		// accepts any input, contributes nothing
	case CRC64:
		c.crc = crc64.Update(c.crc, crc64Table, p)
	default:
		c.h.Write(p)
	}
	c.state = updated
	return nil
}

// Finalise transitions the context to Finalised, making Digest available.
// It is legal from Updated or Initialised (an empty-input digest).
func (c *Context) Finalise() error {
	if c.state != updated && c.state != initialised {
		return wizerr.New(wizerr.Hash, "finalise from invalid state", "")
	}
	switch c.algo {
	case None:
		c.digest, _ = buffer.New(0)
	case CRC64:
		b, _ := buffer.New(8)
		data := b.Bytes()
		v := c.crc
		for i := 7; i >= 0; i-- {
			data[i] = byte(v)
			v >>= 8
		}
		c.digest = b
	default:
		c.digest = buffer.FromBytes(c.h.Sum(nil))
	}
	c.state = finalised
	return nil
}

// Digest returns the finalised digest. It is an error to call this before
// Finalise.
func (c *Context) Digest() (*buffer.Buffer, error) {
	if c.state != finalised {
		return nil, wizerr.New(wizerr.Hash, "digest requested before finalise", "")
	}
	return c.digest, nil
}

// HexDigest returns the finalised digest rendered as lowercase hex.
func (c *Context) HexDigest() (string, error) {
	d, err := c.Digest()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(d.Bytes()), nil
}

// Sum is the one-shot convenience form: Acquire, Initialise, Update(p),
// Finalise, Digest.
func Sum(algo Algorithm, p []byte) (*buffer.Buffer, error) {
	c, err := Acquire(algo)
	if err != nil {
		return nil, err
	}
	if err := c.Initialise(); err != nil {
		return nil, err
	}
	if err := c.Update(p); err != nil {
		return nil, err
	}
	if err := c.Finalise(); err != nil {
		return nil, err
	}
	return c.Digest()
}
