package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
)

func TestFromHexRoundTrip(t *testing.T) {
	b, err := buffer.FromHex("de ad be ef")
	require.NoError(t, err)
	require.Equal(t, "deadbeef", b.ToHex())
}

func TestFromHexInvalid(t *testing.T) {
	_, err := buffer.FromHex("zz")
	require.Error(t, err)
}

func TestSetLengthTruncateAndExtend(t *testing.T) {
	b := buffer.FromBytes([]byte("hello world"))
	b.SetLength(5)
	require.Equal(t, "hello", string(b.Bytes()))

	b.SetLength(8)
	require.Equal(t, 8, b.Len())
	require.Equal(t, []byte("hello\x00\x00\x00"), b.Bytes())
}

func TestCompareAndEqual(t *testing.T) {
	a := buffer.FromBytes([]byte("abcdef"))
	b := buffer.FromBytes([]byte("abcdef"))
	c := buffer.FromBytes([]byte("abcdeg"))
	short := buffer.FromBytes([]byte("abc"))

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.Equal(t, 0, a.Compare(b))
	require.Equal(t, -1, a.Compare(c))
	require.Equal(t, 1, a.Compare(short))
}

func TestCRCIsStableAndSensitive(t *testing.T) {
	a := buffer.FromString("The quick brown fox")
	b := buffer.FromString("The quick brown fox")
	c := buffer.FromString("The quick brown foX")

	require.Equal(t, a.CRC(), b.CRC())
	require.NotEqual(t, a.CRC(), c.CRC())
}

func TestResetZeroesContent(t *testing.T) {
	b := buffer.FromBytes([]byte{1, 2, 3, 4})
	b.Reset()
	for _, v := range b.Bytes() {
		require.Zero(t, v)
	}
	require.Equal(t, 4, b.Len())
}

func TestCloneIsDeep(t *testing.T) {
	a := buffer.FromBytes([]byte("original"))
	b := a.Clone()
	b.Bytes()[0] = 'X'
	require.Equal(t, "original", string(a.Bytes()))
}
