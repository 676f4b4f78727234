package keyringfile_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/keyringfile"
)

func TestImportThenExportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.wizard")

	in := keyringfile.Acquire(path)
	in.SetID(buffer.FromBytes([]byte("id-one")))
	in.SetNonce(buffer.FromBytes(make([]byte, 16)))
	in.SetKey(buffer.FromBytes([]byte("wrapped-key-one")))
	require.NoError(t, keyringfile.Import(in))

	out := keyringfile.Acquire(path)
	out.SetID(buffer.FromBytes([]byte("id-one")))
	require.NoError(t, keyringfile.Export(out))
	require.Equal(t, make([]byte, 16), out.GetNonce().Bytes())
	require.Equal(t, []byte("wrapped-key-one"), out.GetKey().Bytes())
}

func TestImportAppendsMultipleRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.wizard")

	for _, id := range []string{"alpha", "beta", "gamma"} {
		rec := keyringfile.Acquire(path)
		rec.SetID(buffer.FromBytes([]byte(id)))
		rec.SetNonce(buffer.FromBytes(make([]byte, 16)))
		rec.SetKey(buffer.FromBytes([]byte("key-for-" + id)))
		require.NoError(t, keyringfile.Import(rec))
	}

	out := keyringfile.Acquire(path)
	out.SetID(buffer.FromBytes([]byte("beta")))
	require.NoError(t, keyringfile.Export(out))
	require.Equal(t, []byte("key-for-beta"), out.GetKey().Bytes())

	var buf bytes.Buffer
	require.NoError(t, keyringfile.PrintProperties(path, &buf))
	require.Contains(t, buf.String(), "3 record(s)")
}

func TestExportMissingIDFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.wizard")
	rec := keyringfile.Acquire(path)
	rec.SetID(buffer.FromBytes([]byte("present")))
	rec.SetNonce(buffer.FromBytes(make([]byte, 16)))
	rec.SetKey(buffer.FromBytes([]byte("k")))
	require.NoError(t, keyringfile.Import(rec))

	out := keyringfile.Acquire(path)
	out.SetID(buffer.FromBytes([]byte("absent")))
	require.Error(t, keyringfile.Export(out))
}

func TestExportFromNonexistentFileFails(t *testing.T) {
	out := keyringfile.Acquire(filepath.Join(t.TempDir(), "missing.wizard"))
	out.SetID(buffer.FromBytes([]byte("anything")))
	require.Error(t, keyringfile.Export(out))
}

func TestImportWithoutIDFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.wizard")
	rec := keyringfile.Acquire(path)
	rec.SetNonce(buffer.FromBytes(make([]byte, 16)))
	rec.SetKey(buffer.FromBytes([]byte("k")))
	require.Error(t, keyringfile.Import(rec))
}
