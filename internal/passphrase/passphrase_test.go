package passphrase_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/passphrase"
)

func TestCallerSuppliedWins(t *testing.T) {
	s := passphrase.New()
	s.SetFile(writeTempFile(t, "from-file\n"))
	s.SetPassphrase([]byte("from-caller"))

	got, err := s.Get()
	require.NoError(t, err)
	require.Equal(t, []byte("from-caller"), got.Bytes())
}

func TestFileSourceTrimsTrailingNewline(t *testing.T) {
	s := passphrase.New()
	s.SetFile(writeTempFile(t, "from-file\n"))

	got, err := s.Get()
	require.NoError(t, err)
	require.Equal(t, []byte("from-file"), got.Bytes())
}

func TestFileSourcePreservesContentWithoutNewline(t *testing.T) {
	s := passphrase.New()
	s.SetFile(writeTempFile(t, "no-trailing-newline"))

	got, err := s.Get()
	require.NoError(t, err)
	require.Equal(t, []byte("no-trailing-newline"), got.Bytes())
}

func TestMissingFileFails(t *testing.T) {
	s := passphrase.New()
	s.SetFile(filepath.Join(t.TempDir(), "does-not-exist"))
	_, err := s.Get()
	require.Error(t, err)
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "passphrase")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}
