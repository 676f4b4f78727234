package random_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hashengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/random"
)

func TestSecretKeyDeterminism(t *testing.T) {
	random.SetSecretKey(424242)
	defer random.ClearSecretKey()

	s1, err := random.Acquire(hashengine.SHA256)
	require.NoError(t, err)
	k1, err := s1.GetKey(32)
	require.NoError(t, err)

	s2, err := random.Acquire(hashengine.SHA256)
	require.NoError(t, err)
	k2, err := s2.GetKey(32)
	require.NoError(t, err)

	require.True(t, k1.Equal(k2), "same secret key and call sequence must yield identical output")
}

func TestDifferentSecretKeysDiverge(t *testing.T) {
	random.SetSecretKey(1)
	s1, err := random.Acquire(hashengine.SHA256)
	require.NoError(t, err)
	k1, err := s1.GetKey(32)
	require.NoError(t, err)

	random.SetSecretKey(2)
	s2, err := random.Acquire(hashengine.SHA256)
	require.NoError(t, err)
	k2, err := s2.GetKey(32)
	require.NoError(t, err)
	random.ClearSecretKey()

	require.False(t, k1.Equal(k2))
}

func TestSuccessiveOutputsDiffer(t *testing.T) {
	random.SetSecretKey(7)
	defer random.ClearSecretKey()

	s, err := random.Acquire(hashengine.SHA256)
	require.NoError(t, err)
	a, err := s.GetKey(16)
	require.NoError(t, err)
	b, err := s.GetKey(16)
	require.NoError(t, err)
	require.False(t, a.Equal(b), "consecutive draws from the same source must not repeat")
}

func TestGetValueRange(t *testing.T) {
	random.SetSecretKey(99)
	defer random.ClearSecretKey()

	s, err := random.Acquire(hashengine.SHA256)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		v, err := s.GetValue()
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestSetKeyFillsExactLength(t *testing.T) {
	random.SetSecretKey(5)
	defer random.ClearSecretKey()

	s, err := random.Acquire(hashengine.SHA256)
	require.NoError(t, err)
	out := make([]byte, 24)
	require.NoError(t, s.SetKey(24, out))

	require.Error(t, s.SetKey(24, make([]byte, 10)))
}

func TestReseedChangesOutputInNondeterministicMode(t *testing.T) {
	random.ClearSecretKey()
	s, err := random.Acquire(hashengine.SHA256)
	require.NoError(t, err)
	before, err := s.GetKey(16)
	require.NoError(t, err)
	require.NoError(t, s.Reseed())
	after, err := s.GetKey(16)
	require.NoError(t, err)
	require.False(t, before.Equal(after))
}

func TestSelfTestRatioIsPlausible(t *testing.T) {
	random.SetSecretKey(123456)
	defer random.ClearSecretKey()

	s, err := random.Acquire(hashengine.SHA256)
	require.NoError(t, err)
	report, err := s.SelfTest(4096)
	require.NoError(t, err)
	require.InDelta(t, 0.5, report.OnesRatio, 0.05)
}
