// Package entropy implements the entropy (compression) coder adapter: one
// contract over BZIP, LZMA and ZIP streams, backed by real compressors
// from the Go ecosystem rather than the standard library's read-only
// compress/bzip2.
package entropy

import (
	"bytes"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/flate"
	"github.com/ulikunitz/xz"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/wizerr"
)

// Algorithm selects the compressed container §6 requires.
type Algorithm int

const (
	Undefined Algorithm = iota
	None
	BZIP
	LZMA
	ZIP
)

// Context holds the coder's configuration and its working buffer (chaos,
// per §3: compressed output after IncreaseEntropy, plaintext after
// RestoreEntropy).
type Context struct {
	algo  Algorithm
	level int
	chaos *buffer.Buffer
}

// Acquire returns a new Context. level is clamped to 0..9.
func Acquire(algo Algorithm, level int) (*Context, error) {
	if level < 0 {
		level = 0
	}
	if level > 9 {
		level = 9
	}
	switch algo {
	case None, BZIP, LZMA, ZIP:
	default:
		return nil, wizerr.New(wizerr.Entropy, "unsupported entropy algorithm", "")
	}
	return &Context{algo: algo, level: level}, nil
}

// Chaos returns the coder's current working buffer.
func (c *Context) Chaos() *buffer.Buffer { return c.chaos }

// IncreaseEntropy compresses plaintext; afterwards Chaos() holds the
// compressed bytes.
func (c *Context) IncreaseEntropy(plaintext []byte) error {
	var out bytes.Buffer
	switch c.algo {
	case None:
		out.Write(plaintext)
	case ZIP:
		level := flateLevel(c.level)
		w, err := flate.NewWriter(&out, level)
		if err != nil {
			return wizerr.Wrap(wizerr.Entropy, "could not open deflate writer", err)
		}
		if _, err := w.Write(plaintext); err != nil {
			return wizerr.Wrap(wizerr.Entropy, "deflate write failed", err)
		}
		if err := w.Close(); err != nil {
			return wizerr.Wrap(wizerr.Entropy, "deflate close failed", err)
		}
	case BZIP:
		w, err := bzip2.NewWriter(&out, &bzip2.WriterConfig{Level: bzipLevel(c.level)})
		if err != nil {
			return wizerr.Wrap(wizerr.Entropy, "could not open bzip2 writer", err)
		}
		if _, err := w.Write(plaintext); err != nil {
			return wizerr.Wrap(wizerr.Entropy, "bzip2 write failed", err)
		}
		if err := w.Close(); err != nil {
			return wizerr.Wrap(wizerr.Entropy, "bzip2 close failed", err)
		}
	case LZMA:
		cfg := xz.WriterConfig{}
		w, err := cfg.NewWriter(&out)
		if err != nil {
			return wizerr.Wrap(wizerr.Entropy, "could not open xz writer", err)
		}
		if _, err := w.Write(plaintext); err != nil {
			return wizerr.Wrap(wizerr.Entropy, "xz write failed", err)
		}
		if err := w.Close(); err != nil {
			return wizerr.Wrap(wizerr.Entropy, "xz close failed", err)
		}
	default:
		return wizerr.New(wizerr.Entropy, "unsupported entropy algorithm", "")
	}
	c.chaos = buffer.FromBytes(out.Bytes())
	return nil
}

// RestoreEntropy decompresses chaos; afterwards Chaos() holds plaintext of
// exactly expectedLength bytes. A truncated, corrupt, or wrong-length
// stream is an error.
func (c *Context) RestoreEntropy(expectedLength int, chaos []byte) error {
	var r io.Reader
	switch c.algo {
	case None:
		r = bytes.NewReader(chaos)
	case ZIP:
		r = flate.NewReader(bytes.NewReader(chaos))
	case BZIP:
		br, err := bzip2.NewReader(bytes.NewReader(chaos), nil)
		if err != nil {
			return wizerr.Wrap(wizerr.Entropy, "corrupt bzip2 stream", err)
		}
		defer br.Close()
		r = br
	case LZMA:
		xr, err := xz.NewReader(bytes.NewReader(chaos))
		if err != nil {
			return wizerr.Wrap(wizerr.Entropy, "corrupt xz stream", err)
		}
		r = xr
	default:
		return wizerr.New(wizerr.Entropy, "unsupported entropy algorithm", "")
	}

	out := make([]byte, expectedLength)
	n, err := io.ReadFull(r, out)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return wizerr.Wrap(wizerr.Entropy, "decompression failed", err)
	}
	if n != expectedLength {
		return wizerr.New(wizerr.Entropy, "decompressed length mismatch", "")
	}
	// Confirm the stream doesn't hold trailing plaintext beyond
	// expectedLength: that would mean the caller's expected length was
	// wrong, not that the stream is corrupt, but both are reported the
	// same way per §4.5.
	var extra [1]byte
	if m, _ := r.Read(extra[:]); m > 0 {
		return wizerr.New(wizerr.Entropy, "decompressed length mismatch", "stream longer than expected")
	}
	c.chaos = buffer.FromBytes(out)
	return nil
}

func flateLevel(level int) int {
	if level <= 0 {
		return flate.DefaultCompression
	}
	if level > 9 {
		return 9
	}
	return level
}

func bzipLevel(level int) int {
	if level <= 0 {
		return 6
	}
	if level > 9 {
		return 9
	}
	return level
}
