// Package keyringfile implements the §4.9/§6 keyring file service: the
// binary on-disk record format and its import (append)/export (scan)
// operations, grounded on the original KeyringInfo surface
// (AcquireKeyringInfo/ImportKeyringKey/ExportKeyringKey/
// PrintKeyringProperties).
package keyringfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/wizerr"
)

// FormatVersion is the only record version this package writes or reads.
const FormatVersion uint16 = 1

// Info is a single keyring record's in-memory handle: the id/nonce/key
// triple to import or the id to export by, plus the backing file path.
type Info struct {
	path  string
	id    *buffer.Buffer
	nonce *buffer.Buffer
	key   *buffer.Buffer
}

// Acquire returns a new, empty Info bound to path.
func Acquire(path string) *Info {
	return &Info{path: path}
}

// SetPath sets the backing file path.
func (i *Info) SetPath(path string) { i.path = path }

// SetID sets the record's id.
func (i *Info) SetID(id *buffer.Buffer) { i.id = id }

// SetKey sets the record's (wrapped) key.
func (i *Info) SetKey(key *buffer.Buffer) { i.key = key }

// SetNonce sets the record's nonce.
func (i *Info) SetNonce(nonce *buffer.Buffer) { i.nonce = nonce }

// GetKey returns the record's key, populated by Export or set directly.
func (i *Info) GetKey() *buffer.Buffer { return i.key }

// GetNonce returns the record's nonce, populated by Export or set
// directly.
func (i *Info) GetNonce() *buffer.Buffer { return i.nonce }

func encodeRecord(id, nonce, key *buffer.Buffer) []byte {
	out := make([]byte, 0, 2+4+id.Len()+4+nonce.Len()+4+key.Len())
	var u16 [2]byte
	binary.LittleEndian.PutUint16(u16[:], FormatVersion)
	out = append(out, u16[:]...)
	out = appendLengthPrefixed(out, id.Bytes())
	out = appendLengthPrefixed(out, nonce.Bytes())
	out = appendLengthPrefixed(out, key.Bytes())
	return out
}

func appendLengthPrefixed(out, data []byte) []byte {
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(data)))
	out = append(out, u32[:]...)
	return append(out, data...)
}

// record is one decoded on-disk record, plus the byte length it occupied
// (so a linear scan can advance past it).
type record struct {
	version uint16
	id      []byte
	nonce   []byte
	key     []byte
	size    int
}

func decodeRecord(data []byte) (*record, error) {
	if len(data) < 2 {
		return nil, wizerr.New(wizerr.Key, "truncated keyring record", "missing version field")
	}
	off := 0
	version := binary.LittleEndian.Uint16(data[off:])
	off += 2

	id, n, err := readLengthPrefixed(data[off:])
	if err != nil {
		return nil, err
	}
	off += n

	nonce, n, err := readLengthPrefixed(data[off:])
	if err != nil {
		return nil, err
	}
	off += n

	key, n, err := readLengthPrefixed(data[off:])
	if err != nil {
		return nil, err
	}
	off += n

	return &record{version: version, id: id, nonce: nonce, key: key, size: off}, nil
}

func readLengthPrefixed(data []byte) ([]byte, int, error) {
	if len(data) < 4 {
		return nil, 0, wizerr.New(wizerr.Key, "truncated keyring record", "missing length field")
	}
	length := binary.LittleEndian.Uint32(data[0:4])
	if uint64(length)+4 > uint64(len(data)) {
		return nil, 0, wizerr.New(wizerr.Key, "truncated keyring record", "declared length exceeds remaining data")
	}
	return data[4 : 4+length], 4 + int(length), nil
}

// Import writes {version, id, nonce, key} for the id/nonce/key
// previously set on i to the file at i's path. It appends if the file
// exists, creating it with mode 0600 if not.
func Import(i *Info) error {
	if i.id == nil || i.nonce == nil || i.key == nil {
		return wizerr.New(wizerr.Key, "incomplete keyring record", "id, nonce and key must all be set before import")
	}
	f, err := os.OpenFile(i.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return wizerr.Wrap(wizerr.File, "could not open keyring file for writing", err)
	}
	defer f.Close()

	if _, err := f.Write(encodeRecord(i.id, i.nonce, i.key)); err != nil {
		return wizerr.Wrap(wizerr.File, "could not write keyring record", err)
	}
	return nil
}

// Export scans the file at i's path for a record whose id equals i's
// currently-set id; on a hit it populates i's nonce and key. It fails
// with wizerr.Key if no matching record is found.
func Export(i *Info) error {
	if i.id == nil {
		return wizerr.New(wizerr.Key, "no id set to export by", "")
	}
	data, err := os.ReadFile(i.path)
	if err != nil {
		return wizerr.Wrap(wizerr.File, "could not read keyring file", err)
	}

	for off := 0; off < len(data); {
		rec, err := decodeRecord(data[off:])
		if err != nil {
			return err
		}
		if len(rec.id) == i.id.Len() && buffer.FromBytes(rec.id).Equal(i.id) {
			i.nonce = buffer.FromBytes(rec.nonce)
			i.key = buffer.FromBytes(rec.key)
			return nil
		}
		off += rec.size
	}
	return wizerr.New(wizerr.Key, "keyring record not found", "")
}

// PrintProperties writes a human-readable listing of every record in the
// file at path to w, for diagnostics.
func PrintProperties(path string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return wizerr.Wrap(wizerr.File, "could not read keyring file", err)
	}
	n := 0
	for off := 0; off < len(data); {
		rec, err := decodeRecord(data[off:])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "record %d: version=%d id=%x nonce_len=%d key_len=%d\n",
			n, rec.version, rec.id, len(rec.nonce), len(rec.key))
		off += rec.size
		n++
	}
	fmt.Fprintf(w, "%d record(s)\n", n)
	return nil
}
