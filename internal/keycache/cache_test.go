package keycache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"cipherlab/internal/crypto"
)

func engine(t *testing.T, id crypto.ID) crypto.Engine {
	t.Helper()

	e, err := crypto.Lookup(id)
	require.NoError(t, err)
	return e
}

func TestSameKeySameBlock(t *testing.T) {
	t.Parallel()

	c := New(8)
	e := engine(t, crypto.AES128)
	key := make([]byte, 16)

	a, err := c.Block(e, key)
	require.NoError(t, err)
	b, err := c.Block(e, key)
	require.NoError(t, err)
	require.Same(t, a, b)

	st := c.Stats()
	require.Equal(t, uint64(1), st.Hits)
	require.Equal(t, uint64(1), st.Misses)
	require.Equal(t, 1, st.Entries)
}

func TestKeyChangeNeverReusesSchedule(t *testing.T) {
	t.Parallel()

	c := New(8)
	e := engine(t, crypto.LEA)

	k1 := make([]byte, 16)
	k2 := make([]byte, 16)
	k2[15] = 1

	a, err := c.Block(e, k1)
	require.NoError(t, err)
	b, err := c.Block(e, k2)
	require.NoError(t, err)

	require.NotSame(t, a, b)
	require.NotEqual(t, a.Schedule(), b.Schedule())

	fresh, err := e.NewCipher(k2)
	require.NoError(t, err)
	require.Equal(t, fresh.Schedule(), b.Schedule())
}

func TestEngineNameSeparatesReducedRounds(t *testing.T) {
	t.Parallel()

	c := New(8)
	key := make([]byte, 16)

	full, err := c.Block(engine(t, crypto.AES128), key)
	require.NoError(t, err)

	r4, err := crypto.NewAESEngine(4)
	require.NoError(t, err)
	reduced, err := c.Block(r4, key)
	require.NoError(t, err)

	require.NotSame(t, full, reduced)
	require.Equal(t, 2, c.Len())
}

func TestInvalidateAndPurge(t *testing.T) {
	t.Parallel()

	c := New(8)
	e := engine(t, crypto.Piccolo)
	key := make([]byte, 10)

	a, err := c.Block(e, key)
	require.NoError(t, err)

	c.Invalidate(e, key)
	require.Equal(t, 0, c.Len())

	b, err := c.Block(e, key)
	require.NoError(t, err)
	require.NotSame(t, a, b)
	require.Equal(t, a.Schedule(), b.Schedule())

	_, err = c.Block(e, make([]byte, 16))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	c.Purge()
	require.Equal(t, 0, c.Len())
	require.Equal(t, uint64(3), c.Stats().Misses)
}

func TestEviction(t *testing.T) {
	t.Parallel()

	c := New(2)
	e := engine(t, crypto.PRESENT80)

	for i := 0; i < 3; i++ {
		key := make([]byte, 10)
		key[0] = byte(i)
		_, err := c.Block(e, key)
		require.NoError(t, err)
	}
	require.Equal(t, 2, c.Len())
}

func TestInvalidKeyNotCached(t *testing.T) {
	t.Parallel()

	c := New(0)
	_, err := c.Block(engine(t, crypto.AES128), make([]byte, 5))
	require.ErrorIs(t, err, crypto.ErrInvalidKeyWidth)
	require.Equal(t, 0, c.Len())
}

func TestConcurrentMissesAgree(t *testing.T) {
	t.Parallel()

	c := New(16)
	e := engine(t, crypto.LEA)
	key := make([]byte, 32)

	const n = 16
	blocks := make([]crypto.Block, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			b, err := c.Block(e, key)
			require.NoError(t, err)
			blocks[i] = b
		}()
	}
	wg.Wait()

	for _, b := range blocks[1:] {
		require.Same(t, blocks[0], b)
	}
	require.Equal(t, uint64(1), c.Stats().Misses)
}
