package keyderive

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

var cheap = Params{N: 1 << 10, R: 8, P: 1}

// TestRFC7914Vector checks the second scrypt test vector of RFC 7914.
func TestRFC7914Vector(t *testing.T) {
	t.Parallel()

	key, err := Derive([]byte("password"), []byte("NaCl"), 512,
		Params{N: 1024, R: 8, P: 16})
	require.NoError(t, err)
	require.Equal(t,
		"fdbabe1c9d3472007856e7190d01e9fe7c6ad7cbc8237830e77376634b373162"+
			"2eaf30d92e22a3886ff109279d9830dac727afb94a83ee6d8360cbdfa2cc0640",
		hex.EncodeToString(key))
}

func TestDeriveWidths(t *testing.T) {
	t.Parallel()

	for _, bits := range []int{80, 128, 192, 256} {
		key, err := Derive([]byte("pass"), []byte("salt"), bits, cheap)
		require.NoError(t, err)
		require.Len(t, key, bits/8)
	}

	for _, bits := range []int{0, -8, 81} {
		_, err := Derive([]byte("pass"), nil, bits, cheap)
		require.ErrorIs(t, err, ErrInvalidWidth)
	}

	// N must be a power of two.
	_, err := Derive([]byte("pass"), nil, 128, Params{N: 1000, R: 8, P: 1})
	require.Error(t, err)
}

func TestDeriveSeparatesSalts(t *testing.T) {
	t.Parallel()

	a, err := Derive([]byte("pass"), []byte("one"), 128, cheap)
	require.NoError(t, err)
	b, err := Derive([]byte("pass"), []byte("two"), 128, cheap)
	require.NoError(t, err)
	again, err := Derive([]byte("pass"), []byte("one"), 128, cheap)
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.Equal(t, a, again)
}
