package cipherengine

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/wizerr"
)

func (c *Context) encipherModes(buf *buffer.Buffer) error {
	if c.algo == Chacha {
		return c.chachaXOR(buf)
	}
	switch c.mode {
	case ECB:
		return c.ecbEncipher(buf)
	case CBC:
		return c.cbcEncipher(buf)
	case CFB:
		return c.cfbEncipher(buf)
	case OFB:
		return c.ofbXOR(buf)
	case CTR:
		return c.ctrXOR(buf)
	default:
		return wizerr.New(wizerr.Cipher, "unsupported cipher mode", "")
	}
}

func (c *Context) decipherModes(buf *buffer.Buffer) error {
	if c.algo == Chacha {
		return c.chachaXOR(buf) // CTR keystream XOR is its own inverse
	}
	switch c.mode {
	case ECB:
		return c.ecbDecipher(buf)
	case CBC:
		return c.cbcDecipher(buf)
	case CFB:
		return c.cfbDecipher(buf)
	case OFB:
		return c.ofbXOR(buf) // OFB keystream XOR is its own inverse
	case CTR:
		return c.ctrXOR(buf) // CTR keystream XOR is its own inverse
	default:
		return wizerr.New(wizerr.Cipher, "unsupported cipher mode", "")
	}
}

func xorInto(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

// ecbEncipher encrypts every full block independently. The trailing
// partial block, if any, is not independently encrypted (ECB gives it no
// block to work with): its r < blockSize tail is XORed with the
// high-order r bytes of the ciphertext of the preceding full block, or
// with E_K(0) when the plaintext is shorter than one block. This is the
// toolkit's short-final convention, not a standard ECB extension.
func (c *Context) ecbEncipher(buf *buffer.Buffer) error {
	data := buf.Bytes()
	bs := c.blockSize
	full := len(data) / bs
	tail := len(data) % bs

	var prevCipher []byte
	for i := 0; i < full; i++ {
		block := data[i*bs : (i+1)*bs]
		out := make([]byte, bs)
		c.block.Encrypt(out, block)
		prevCipher = out
		copy(block, out)
	}
	if tail > 0 {
		if prevCipher == nil {
			zero := make([]byte, bs)
			prevCipher = make([]byte, bs)
			c.block.Encrypt(prevCipher, zero)
		}
		t := data[full*bs:]
		xorInto(t, t, prevCipher[:tail])
	}
	return nil
}

// ecbDecipher inverts ecbEncipher. Full blocks decrypt independently; the
// ciphertext of the preceding full block (recoverable before that block
// is overwritten) supplies the tail's keystream.
func (c *Context) ecbDecipher(buf *buffer.Buffer) error {
	data := buf.Bytes()
	bs := c.blockSize
	full := len(data) / bs
	tail := len(data) % bs

	var prevCipher []byte
	if tail > 0 {
		if full == 0 {
			zero := make([]byte, bs)
			prevCipher = make([]byte, bs)
			c.block.Encrypt(prevCipher, zero)
		} else {
			prevCipher = append([]byte{}, data[(full-1)*bs:full*bs]...)
		}
	}
	for i := 0; i < full; i++ {
		block := data[i*bs : (i+1)*bs]
		out := make([]byte, bs)
		c.block.Decrypt(out, block)
		copy(block, out)
	}
	if tail > 0 {
		t := data[full*bs:]
		xorInto(t, t, prevCipher[:tail])
	}
	return nil
}

// cbcEncipher chains c_i = E_K(p_i XOR c_{i-1}) over full blocks, c_{-1}
// = nonce. The trailing partial block is not independently enciphered:
// its tail is XORed with E_K(c_{n-1}) truncated to the tail length, where
// c_{n-1} is the preceding block's ciphertext (or the nonce, if the
// plaintext is shorter than one block), so ciphertext length always
// equals plaintext length.
func (c *Context) cbcEncipher(buf *buffer.Buffer) error {
	data := buf.Bytes()
	bs := c.blockSize
	full := len(data) / bs
	tail := len(data) % bs

	prev := c.workingNonce
	for i := 0; i < full; i++ {
		block := data[i*bs : (i+1)*bs]
		mixed := make([]byte, bs)
		xorInto(mixed, block, prev)
		out := make([]byte, bs)
		c.block.Encrypt(out, mixed)
		copy(block, out)
		prev = out
	}
	if tail > 0 {
		stream := make([]byte, bs)
		c.block.Encrypt(stream, prev)
		t := data[full*bs:]
		xorInto(t, t, stream[:tail])
	}
	c.workingNonce = prev
	return nil
}

// cbcDecipher inverts cbcEncipher.
func (c *Context) cbcDecipher(buf *buffer.Buffer) error {
	data := buf.Bytes()
	bs := c.blockSize
	full := len(data) / bs
	tail := len(data) % bs

	prev := c.workingNonce
	for i := 0; i < full; i++ {
		block := data[i*bs : (i+1)*bs]
		ciphertext := append([]byte{}, block...)
		out := make([]byte, bs)
		c.block.Decrypt(out, ciphertext)
		xorInto(out, out, prev)
		copy(block, out)
		prev = ciphertext
	}
	if tail > 0 {
		stream := make([]byte, bs)
		c.block.Encrypt(stream, prev)
		t := data[full*bs:]
		xorInto(t, t, stream[:tail])
	}
	c.workingNonce = prev
	return nil
}

// cfbEncipher is self-synchronising: c_i = p_i XOR E_K(c_{i-1}), c_{-1} =
// nonce. The last segment may be shorter than a block; the keystream is
// simply truncated, so no short-final special case is needed.
func (c *Context) cfbEncipher(buf *buffer.Buffer) error {
	data := buf.Bytes()
	bs := c.blockSize
	feedback := c.workingNonce
	for off := 0; off < len(data); off += bs {
		end := off + bs
		if end > len(data) {
			end = len(data)
		}
		seg := data[off:end]
		stream := make([]byte, bs)
		c.block.Encrypt(stream, feedback)
		xorInto(seg, seg, stream[:len(seg)])
		if len(seg) == bs {
			feedback = append([]byte{}, seg...)
		} else {
			padded := make([]byte, bs)
			copy(padded, seg)
			feedback = padded
		}
	}
	c.workingNonce = feedback
	return nil
}

func (c *Context) cfbDecipher(buf *buffer.Buffer) error {
	data := buf.Bytes()
	bs := c.blockSize
	feedback := c.workingNonce
	for off := 0; off < len(data); off += bs {
		end := off + bs
		if end > len(data) {
			end = len(data)
		}
		seg := data[off:end]
		ciphertext := append([]byte{}, seg...)
		stream := make([]byte, bs)
		c.block.Encrypt(stream, feedback)
		xorInto(seg, seg, stream[:len(seg)])
		if len(ciphertext) == bs {
			feedback = ciphertext
		} else {
			padded := make([]byte, bs)
			copy(padded, ciphertext)
			feedback = padded
		}
	}
	c.workingNonce = feedback
	return nil
}

// ofbXOR keystream-chains s_i = E_K(s_{i-1}), s_0 = nonce, and XORs it
// against the data; it is its own inverse.
func (c *Context) ofbXOR(buf *buffer.Buffer) error {
	data := buf.Bytes()
	bs := c.blockSize
	state := c.workingNonce
	for off := 0; off < len(data); off += bs {
		stream := make([]byte, bs)
		c.block.Encrypt(stream, state)
		state = stream
		end := off + bs
		if end > len(data) {
			end = len(data)
		}
		seg := data[off:end]
		xorInto(seg, seg, stream[:len(seg)])
	}
	c.workingNonce = state
	return nil
}

// ctrXOR treats the nonce as a big-endian block-sized counter and XORs
// E_K(nonce+i) against successive blocks; it is its own inverse.
func (c *Context) ctrXOR(buf *buffer.Buffer) error {
	data := buf.Bytes()
	bs := c.blockSize
	counter := append([]byte{}, c.workingNonce...)
	for off := 0; off < len(data); off += bs {
		stream := make([]byte, bs)
		c.block.Encrypt(stream, counter)
		end := off + bs
		if end > len(data) {
			end = len(data)
		}
		seg := data[off:end]
		xorInto(seg, seg, stream[:len(seg)])
		incrementCounter(counter)
	}
	c.workingNonce = counter
	return nil
}

func incrementCounter(counter []byte) {
	for i := len(counter) - 1; i >= 0; i-- {
		counter[i]++
		if counter[i] != 0 {
			return
		}
	}
}

// chachaXOR drives Chacha20 directly as a CTR-mode keystream cipher: the
// first four bytes of the live nonce state are its 32-bit big-endian
// counter, the remaining twelve are chacha20's fixed nonce. This is the
// only mode Chacha participates in (see Acquire).
func (c *Context) chachaXOR(buf *buffer.Buffer) error {
	counter := binary.BigEndian.Uint32(c.workingNonce[0:4])
	fixedNonce := c.workingNonce[4:16]

	stream, err := chacha20.NewUnauthenticatedCipher(c.key.Bytes(), fixedNonce)
	if err != nil {
		return wizerr.Wrap(wizerr.Cipher, "chacha20 setup failed", err)
	}
	stream.SetCounter(counter)

	data := buf.Bytes()
	stream.XORKeyStream(data, data)

	blocksConsumed := uint32((len(data) + 63) / 64)
	binary.BigEndian.PutUint32(c.workingNonce[0:4], counter+blocksConsumed)
	return nil
}
