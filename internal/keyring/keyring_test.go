package keyring_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hashengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/keyring"
)

// TestRoundTripFakeIDFakeKey pins §8 scenario 6: id = SHA-256("FakeID"),
// key = ASCII "FakeKey" padded to 32 zero bytes.
func TestRoundTripFakeIDFakeKey(t *testing.T) {
	k, err := keyring.Acquire()
	require.NoError(t, err)
	defer k.Destroy()

	id, err := hashengine.Sum(hashengine.SHA256, []byte("FakeID"))
	require.NoError(t, err)

	keyBytes := make([]byte, 32)
	copy(keyBytes, []byte("FakeKey"))
	key := buffer.FromBytes(keyBytes)

	require.NoError(t, k.Set(id, key))
	got, err := k.Get(id)
	require.NoError(t, err)
	require.True(t, got.Equal(key))
}

func TestGetMissingIDFails(t *testing.T) {
	k, err := keyring.Acquire()
	require.NoError(t, err)
	defer k.Destroy()

	id, err := hashengine.Sum(hashengine.SHA256, []byte("no such id"))
	require.NoError(t, err)
	_, err = k.Get(id)
	require.Error(t, err)
}

func TestGenerateSessionKeyIsRetrievable(t *testing.T) {
	k, err := keyring.Acquire()
	require.NoError(t, err)
	defer k.Destroy()

	id, err := k.GenerateSessionKey(32)
	require.NoError(t, err)
	require.Equal(t, 32, id.Len())

	got, err := k.Get(id)
	require.NoError(t, err)
	require.Equal(t, 32, got.Len())
}

func TestSetOverwritesExistingEntry(t *testing.T) {
	k, err := keyring.Acquire()
	require.NoError(t, err)
	defer k.Destroy()

	id, err := hashengine.Sum(hashengine.SHA256, []byte("overwrite me"))
	require.NoError(t, err)

	require.NoError(t, k.Set(id, buffer.FromBytes([]byte("first"))))
	require.NoError(t, k.Set(id, buffer.FromBytes([]byte("second"))))

	got, err := k.Get(id)
	require.NoError(t, err)
	require.Equal(t, []byte("second"), got.Bytes())
}

func TestSameKeyUnderTwoIDsUnwrapsForEach(t *testing.T) {
	k, err := keyring.Acquire()
	require.NoError(t, err)
	defer k.Destroy()

	idA, err := hashengine.Sum(hashengine.SHA256, []byte("a"))
	require.NoError(t, err)
	idB, err := hashengine.Sum(hashengine.SHA256, []byte("b"))
	require.NoError(t, err)

	same := []byte("same sixteen byt")
	require.NoError(t, k.Set(idA, buffer.FromBytes(same)))
	require.NoError(t, k.Set(idB, buffer.FromBytes(same)))

	gotA, err := k.Get(idA)
	require.NoError(t, err)
	gotB, err := k.Get(idB)
	require.NoError(t, err)
	require.Equal(t, same, gotA.Bytes())
	require.Equal(t, same, gotB.Bytes())
}

func TestAcquireHoldsOnlySessionEntry(t *testing.T) {
	k, err := keyring.Acquire()
	require.NoError(t, err)
	require.Equal(t, 1, k.Len()) // the session key's own entry
	k.Destroy()
}

func TestSessionIDHoldsSessionKeyInTheClear(t *testing.T) {
	k, err := keyring.Acquire()
	require.NoError(t, err)
	defer k.Destroy()

	id := k.SessionID()
	require.Equal(t, 32, id.Len())
	_, err = k.Get(id)
	require.NoError(t, err)
}

func TestSettingSessionIDIsRefused(t *testing.T) {
	k, err := keyring.Acquire()
	require.NoError(t, err)
	defer k.Destroy()

	err = k.Set(k.SessionID(), buffer.FromBytes([]byte("attempt to clobber")))
	require.Error(t, err)
}
