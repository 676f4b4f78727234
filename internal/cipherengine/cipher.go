// Package cipherengine implements the symmetric block-cipher service:
// key schedule and mode driver for {AES, Serpent, Twofish} in {ECB, CBC,
// CFB, OFB, CTR}, plus a CTR-only Chacha stream-cipher path. AES comes
// from the standard library; Serpent and Twofish come from the wider Go
// ecosystem, matching how the rest of the retrieval pack reaches for
// golang.org/x/crypto for anything beyond AES.
package cipherengine

import (
	gocipher "crypto/cipher"

	"github.com/aead/serpent"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/twofish"

	stdaes "crypto/aes"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/random"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/wizerr"
)

// Algorithm selects the cipher family.
type Algorithm int

const (
	UndefinedCipher Algorithm = iota
	NoCipher
	AES
	Serpent
	Twofish
	Chacha
)

// Mode selects the block mode driver.
type Mode int

const (
	UndefinedMode Mode = iota
	CBC
	CFB
	CTR
	ECB
	OFB
)

// MaxBlockSize is the largest block size any supported cipher uses.
const MaxBlockSize = 16

// Context is a cipher context. Build one with Acquire; set a key and a
// nonce before calling Encipher/Decipher.
type Context struct {
	algo      Algorithm
	mode      Mode
	blockSize int

	block gocipher.Block // nil when algo == Chacha or NoCipher

	key           *buffer.Buffer
	nonce         *buffer.Buffer // the generated/set nonce, block-sized
	workingNonce  []byte         // the live chaining value; ResetNonce restores it from nonce
	chachaCounter uint32
}

// Acquire returns a new Context for the given algorithm and mode. The key
// schedule is not yet run; call SetKey before Encipher/Decipher.
func Acquire(algo Algorithm, mode Mode) (*Context, error) {
	bs, err := blockSizeOf(algo)
	if err != nil {
		return nil, err
	}
	switch mode {
	case CBC, CFB, CTR, ECB, OFB:
	default:
		return nil, wizerr.New(wizerr.Cipher, "unsupported cipher mode", "")
	}
	if algo == Chacha && mode != CTR {
		return nil, wizerr.New(wizerr.Cipher, "chacha supports CTR mode only", "it has no block permutation for ECB/CBC/CFB/OFB to drive")
	}
	return &Context{algo: algo, mode: mode, blockSize: bs}, nil
}

func blockSizeOf(algo Algorithm) (int, error) {
	switch algo {
	case AES, Serpent, Twofish, Chacha:
		return 16, nil
	default:
		return 0, wizerr.New(wizerr.Cipher, "unsupported cipher algorithm", "")
	}
}

// BlockSize returns the context's block size in bytes.
func (c *Context) BlockSize() int { return c.blockSize }

// SetKey runs the algorithm's key schedule over k. Accepted lengths are
// {16,24,32} for AES/Serpent/Twofish and 32 for Chacha. k is copied; the
// caller's slice is not retained.
func (c *Context) SetKey(k []byte) error {
	keyCopy := buffer.FromBytes(k)
	switch c.algo {
	case AES:
		switch len(k) {
		case 16, 24, 32:
		default:
			return wizerr.New(wizerr.Cipher, "invalid AES key length", "")
		}
		block, err := stdaes.NewCipher(keyCopy.Bytes())
		if err != nil {
			return wizerr.Wrap(wizerr.Cipher, "AES key schedule failed", err)
		}
		c.block = block
	case Serpent:
		switch len(k) {
		case 16, 24, 32:
		default:
			return wizerr.New(wizerr.Cipher, "invalid Serpent key length", "")
		}
		block, err := serpent.NewCipher(keyCopy.Bytes())
		if err != nil {
			return wizerr.Wrap(wizerr.Cipher, "Serpent key schedule failed", err)
		}
		c.block = block
	case Twofish:
		switch len(k) {
		case 16, 24, 32:
		default:
			return wizerr.New(wizerr.Cipher, "invalid Twofish key length", "")
		}
		block, err := twofish.NewCipher(keyCopy.Bytes())
		if err != nil {
			return wizerr.Wrap(wizerr.Cipher, "Twofish key schedule failed", err)
		}
		c.block = block
	case Chacha:
		if len(k) != chacha20.KeySize {
			return wizerr.New(wizerr.Cipher, "invalid Chacha key length", "Chacha requires a 32-byte key")
		}
	default:
		return wizerr.New(wizerr.Cipher, "unsupported cipher algorithm", "")
	}
	c.key = keyCopy
	return nil
}

// GenerateNonce draws a fresh block-sized nonce from src, installs it, and
// returns it.
func (c *Context) GenerateNonce(src *random.Source) (*buffer.Buffer, error) {
	n, err := src.GetKey(c.blockSize)
	if err != nil {
		return nil, err
	}
	c.nonce = n
	c.workingNonce = append([]byte{}, n.Bytes()...)
	c.chachaCounter = 0
	return n, nil
}

// SetNonce installs a caller-supplied nonce; its length must equal
// BlockSize().
func (c *Context) SetNonce(n []byte) error {
	if len(n) != c.blockSize {
		return wizerr.New(wizerr.Cipher, "invalid nonce length", "")
	}
	c.nonce = buffer.FromBytes(n)
	c.workingNonce = append([]byte{}, n...)
	c.chachaCounter = 0
	return nil
}

// GetNonce returns the originally generated or set nonce.
func (c *Context) GetNonce() *buffer.Buffer { return c.nonce }

// ResetNonce restores the live chaining state to the originally generated
// or set nonce, so that Encipher then ResetNonce then Decipher recovers
// the original plaintext.
func (c *Context) ResetNonce() {
	if c.nonce != nil {
		c.workingNonce = append([]byte{}, c.nonce.Bytes()...)
	}
	c.chachaCounter = 0
}

func (c *Context) ready() error {
	if c.algo != Chacha && c.block == nil {
		return wizerr.New(wizerr.Cipher, "key not set", "")
	}
	if c.algo == Chacha && c.key == nil {
		return wizerr.New(wizerr.Cipher, "key not set", "")
	}
	if c.nonce == nil {
		return wizerr.New(wizerr.Cipher, "nonce not set", "")
	}
	return nil
}

// Encipher encrypts buf's content in place, preserving its length.
func (c *Context) Encipher(buf *buffer.Buffer) error {
	if err := c.ready(); err != nil {
		return err
	}
	if buf.Len() == 0 {
		return nil
	}
	return c.encipherModes(buf)
}

// Decipher decrypts buf's content in place, preserving its length. For
// CFB/OFB/CTR this is symmetric with Encipher given the same nonce state.
func (c *Context) Decipher(buf *buffer.Buffer) error {
	if err := c.ready(); err != nil {
		return err
	}
	if buf.Len() == 0 {
		return nil
	}
	return c.decipherModes(buf)
}
