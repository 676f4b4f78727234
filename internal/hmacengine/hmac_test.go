package hmacengine_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hashengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hmacengine"
)

func TestHMACSHA256RFC2104Vector(t *testing.T) {
	key := bytes.Repeat([]byte{0x0b}, 20)
	msg := []byte("Hi There")

	d, err := hmacengine.Construct(hashengine.SHA256, key, msg)
	require.NoError(t, err)
	require.Equal(t,
		"b0344c61d8db3853 5ca8afceaf0bf12b 881dc200c9833da7 26e9376c2e32cff7",
		insertSpaces(d.ToHex()),
	)
}

func insertSpaces(hexStr string) string {
	var b bytes.Buffer
	for i, c := range hexStr {
		if i > 0 && i%16 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func TestStreamingMatchesOneShot(t *testing.T) {
	key := []byte("a reasonably long shared secret key")
	msg := []byte("some message split across several Update calls for testing purposes")

	oneShot, err := hmacengine.Construct(hashengine.SHA256, key, msg)
	require.NoError(t, err)

	c, err := hmacengine.Acquire(hashengine.SHA256)
	require.NoError(t, err)
	require.NoError(t, c.Initialise(key))
	for i := 0; i < len(msg); i += 9 {
		end := i + 9
		if end > len(msg) {
			end = len(msg)
		}
		require.NoError(t, c.Update(msg[i:end]))
	}
	streamed, err := c.Finalise()
	require.NoError(t, err)

	require.True(t, oneShot.Equal(streamed))
}

func TestResetAllowsNewMessageWithSameKey(t *testing.T) {
	key := []byte("reset-key")
	c, err := hmacengine.Acquire(hashengine.SHA256)
	require.NoError(t, err)
	require.NoError(t, c.Initialise(key))
	require.NoError(t, c.Update([]byte("first message")))
	first, err := c.Finalise()
	require.NoError(t, err)

	require.NoError(t, c.Reset(key))
	require.NoError(t, c.Update([]byte("first message")))
	second, err := c.Finalise()
	require.NoError(t, err)

	require.True(t, first.Equal(second))
}

func TestLongKeyIsHashedDown(t *testing.T) {
	// A key longer than the SHA-256 block size (64 bytes) must be hashed
	// down to the digest size before use, per RFC 2104 / §4.3.
	longKey := bytes.Repeat([]byte{0x5a}, 200)
	d1, err := hmacengine.Construct(hashengine.SHA256, longKey, []byte("msg"))
	require.NoError(t, err)

	hashedKey, err := hashengine.Sum(hashengine.SHA256, longKey)
	require.NoError(t, err)
	d2, err := hmacengine.Construct(hashengine.SHA256, hashedKey.Bytes(), []byte("msg"))
	require.NoError(t, err)

	require.True(t, d1.Equal(d2))
}

func TestCRC64AndNoneRejectedAsMACHash(t *testing.T) {
	_, err := hmacengine.Acquire(hashengine.CRC64)
	require.Error(t, err)
	_, err = hmacengine.Acquire(hashengine.None)
	require.Error(t, err)
}
