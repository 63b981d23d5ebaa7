package crypto

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func mustHex(t testing.TB, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// knownAnswer is a published or independently computed test vector.
type knownAnswer struct {
	name       string
	id         ID
	key        string
	plaintext  string
	ciphertext string
}

var knownAnswers = []knownAnswer{
	{
		name:       "aes fips-197 appendix b",
		id:         AES128,
		key:        "2b7e151628aed2a6abf7158809cf4f3c",
		plaintext:  "3243f6a8885a308d313198a2e0370734",
		ciphertext: "3925841d02dc09fbdc118597196a0b32",
	},
	{
		name:       "present zero key zero block",
		id:         PRESENT80,
		key:        "00000000000000000000",
		plaintext:  "0000000000000000",
		ciphertext: "5579c1387b228445",
	},
	{
		name:       "present ones key zero block",
		id:         PRESENT80,
		key:        "ffffffffffffffffffff",
		plaintext:  "0000000000000000",
		ciphertext: "e72c46c0f5945049",
	},
	{
		name:       "present zero key ones block",
		id:         PRESENT80,
		key:        "00000000000000000000",
		plaintext:  "ffffffffffffffff",
		ciphertext: "a112ffc72f68417b",
	},
	{
		name:       "present ones key ones block",
		id:         PRESENT80,
		key:        "ffffffffffffffffffff",
		plaintext:  "ffffffffffffffff",
		ciphertext: "3333dcd3213210d2",
	},
	{
		name:       "lea 128",
		id:         LEA,
		key:        "0f1e2d3c4b5a69788796a5b4c3d2e1f0",
		plaintext:  "101112131415161718191a1b1c1d1e1f",
		ciphertext: "aba3d37ecdcb95e4c924be72cbfc48ab",
	},
	{
		name:       "lea 192",
		id:         LEA,
		key:        "0f1e2d3c4b5a69788796a5b4c3d2e1f0f0e1d2c3b4a59687",
		plaintext:  "202122232425262728292a2b2c2d2e2f",
		ciphertext: "076916cebbb8f96849cbfc3ce49c2eba",
	},
	{
		name: "lea 256",
		id:   LEA,
		key: "0f1e2d3c4b5a69788796a5b4c3d2e1f0" +
			"f0e1d2c3b4a5968778695a4b3c2d1e0f",
		plaintext:  "303132333435363738393a3b3c3d3e3f",
		ciphertext: "43373516528546d824bed14e4dc65e3f",
	},
	{
		name:       "piccolo 80",
		id:         Piccolo,
		key:        "00112233445566778899",
		plaintext:  "0123456789abcdef",
		ciphertext: "8d2bff9935f84056",
	},
	{
		name:       "piccolo 80 short integer key",
		id:         Piccolo,
		key:        "00000123456789abcdef",
		plaintext:  "0123456789abcdef",
		ciphertext: "9d4110f102c264de",
	},
	{
		name:       "piccolo 128",
		id:         Piccolo,
		key:        "00112233445566778899aabbccddeeff",
		plaintext:  "0123456789abcdef",
		ciphertext: "5ec42cea657b89ff",
	},
}

func TestKnownAnswers(t *testing.T) {
	t.Parallel()

	for _, tc := range knownAnswers {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e, err := Lookup(tc.id)
			require.NoError(t, err)

			key := mustHex(t, tc.key)
			pt := mustHex(t, tc.plaintext)
			want := mustHex(t, tc.ciphertext)

			ct, err := Encrypt(e, pt, key)
			require.NoError(t, err)
			require.Equal(t, want, ct)

			back, err := Decrypt(e, ct, key)
			require.NoError(t, err)
			require.Equal(t, pt, back)
		})
	}
}

// TestRoundTrip checks decrypt(encrypt(p, k), k) == p for every engine and
// key size.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, id := range []ID{AES128, PRESENT80, LEA, Piccolo} {
		e, err := Lookup(id)
		require.NoError(t, err)
		p := e.Params()

		for _, bits := range p.KeyBits() {
			t.Run(fmt.Sprintf("%s-%d", p.Name, bits), func(t *testing.T) {
				rapid.Check(t, func(t *rapid.T) {
					key := rapid.SliceOfN(rapid.Byte(), bits/8, bits/8).
						Draw(t, "key")
					pt := rapid.SliceOfN(rapid.Byte(), p.BlockSize(),
						p.BlockSize()).Draw(t, "plaintext")

					ct, err := Encrypt(e, pt, key)
					require.NoError(t, err)
					require.Len(t, ct, p.BlockSize())

					back, err := Decrypt(e, ct, key)
					require.NoError(t, err)
					require.Equal(t, pt, back)
				})
			})
		}
	}
}

func TestEncryptDeterministic(t *testing.T) {
	t.Parallel()

	for _, id := range []ID{AES128, PRESENT80, LEA, Piccolo} {
		e, err := Lookup(id)
		require.NoError(t, err)
		p := e.Params()

		key := make([]byte, p.Variants[0].KeyBits/8)
		pt := make([]byte, p.BlockSize())

		a, err := Encrypt(e, pt, key)
		require.NoError(t, err)
		b, err := Encrypt(e, pt, key)
		require.NoError(t, err)

		require.Equal(t, a, b, p.Name)
		require.NotEqual(t, pt, a, p.Name)
	}
}

func TestWidthErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      ID
		block   int
		key     int
		wantErr error
	}{
		{"aes short block", AES128, 15, 16, ErrInvalidBlockWidth},
		{"aes long block", AES128, 17, 16, ErrInvalidBlockWidth},
		{"aes short key", AES128, 16, 15, ErrInvalidKeyWidth},
		{"aes 256 key", AES128, 16, 32, ErrInvalidKeyWidth},
		{"present 128 key", PRESENT80, 8, 16, ErrInvalidKeyWidth},
		{"present block", PRESENT80, 16, 10, ErrInvalidBlockWidth},
		{"lea 160 key", LEA, 16, 20, ErrInvalidKeyWidth},
		{"lea block", LEA, 8, 16, ErrInvalidBlockWidth},
		{"piccolo 96 key", Piccolo, 8, 12, ErrInvalidKeyWidth},
		{"piccolo empty block", Piccolo, 0, 10, ErrInvalidBlockWidth},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e, err := Lookup(tc.id)
			require.NoError(t, err)

			block := make([]byte, tc.block)
			key := make([]byte, tc.key)

			_, err = Encrypt(e, block, key)
			require.ErrorIs(t, err, tc.wantErr)

			_, err = Decrypt(e, block, key)
			require.ErrorIs(t, err, tc.wantErr)

			if tc.wantErr == ErrInvalidKeyWidth {
				_, err = KeySchedule(e, key)
				require.ErrorIs(t, err, ErrInvalidKeyWidth)
			}
		})
	}
}

func TestKeyedBlockPanicsOnShortBuffers(t *testing.T) {
	t.Parallel()

	for _, id := range []ID{AES128, PRESENT80, LEA, Piccolo} {
		e, err := Lookup(id)
		require.NoError(t, err)

		b, err := e.NewCipher(make([]byte, e.Params().Variants[0].KeyBits/8))
		require.NoError(t, err)

		full := make([]byte, b.BlockSize())
		short := make([]byte, b.BlockSize()-1)

		require.Panics(t, func() { b.Encrypt(full, short) })
		require.Panics(t, func() { b.Encrypt(short, full) })
		require.Panics(t, func() { b.Decrypt(full, short) })
		require.Panics(t, func() { b.Trace(short) })

		_, err = EncryptBlock(b, short)
		require.ErrorIs(t, err, ErrInvalidBlockWidth)
		_, err = DecryptBlock(b, short)
		require.ErrorIs(t, err, ErrInvalidBlockWidth)
	}
}

func TestSchedules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id        ID
		keyBytes  int
		cipher    string
		rounds    int
		keys      int
		keyLen    int
		whitening int
	}{
		{AES128, 16, "AES-128", 10, 11, 16, 0},
		{PRESENT80, 10, "PRESENT-80", 31, 32, 8, 0},
		{LEA, 16, "LEA-128", 24, 24, 24, 0},
		{LEA, 24, "LEA-192", 28, 28, 24, 0},
		{LEA, 32, "LEA-256", 32, 32, 24, 0},
		{Piccolo, 10, "Piccolo-80", 25, 25, 4, 4},
		{Piccolo, 16, "Piccolo-128", 31, 31, 4, 4},
	}

	for _, tc := range tests {
		e, err := Lookup(tc.id)
		require.NoError(t, err)

		key := make([]byte, tc.keyBytes)
		for i := range key {
			key[i] = byte(i * 7)
		}

		s, err := KeySchedule(e, key)
		require.NoError(t, err)
		require.Equal(t, tc.cipher, s.Cipher)
		require.Equal(t, tc.rounds, s.Rounds)
		require.Len(t, s.RoundKeys, tc.keys)
		require.Len(t, s.Whitening, tc.whitening)
		for _, k := range s.RoundKeys {
			require.Len(t, k, tc.keyLen)
		}

		again, err := KeySchedule(e, key)
		require.NoError(t, err)
		require.Equal(t, s, again)

		v, ok := e.Params().Variant(tc.keyBytes * 8)
		require.True(t, ok)
		require.Equal(t, tc.rounds, v.Rounds)
	}
}

func TestScheduleIsCopy(t *testing.T) {
	t.Parallel()

	b, err := New(AES128, make([]byte, 16))
	require.NoError(t, err)

	s := b.Schedule()
	s.RoundKeys[3][0] ^= 0xff

	require.NotEqual(t, s.RoundKeys[3], b.Schedule().RoundKeys[3])
}

func TestTraceEndsInCiphertext(t *testing.T) {
	t.Parallel()

	for _, tc := range knownAnswers {
		e, err := Lookup(tc.id)
		require.NoError(t, err)

		key := mustHex(t, tc.key)
		pt := mustHex(t, tc.plaintext)

		states, err := Trace(e, pt, key)
		require.NoError(t, err)

		s, err := KeySchedule(e, key)
		require.NoError(t, err)

		require.Len(t, states, s.Rounds+1, tc.name)
		for i, st := range states {
			require.Equal(t, i, st.Round)
			require.Len(t, st.State, e.Params().BlockSize())
		}
		require.Equal(t, mustHex(t, tc.ciphertext),
			states[len(states)-1].State, tc.name)
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()

	tests := map[string]ID{
		"aes":         AES128,
		"AES-128":     AES128,
		"present":     PRESENT80,
		"PRESENT_80":  PRESENT80,
		"lea":         LEA,
		"LEA-256":     LEA,
		"lea192":      LEA,
		"Piccolo":     Piccolo,
		"piccolo-128": Piccolo,
	}
	for name, want := range tests {
		id, err := ParseID(name)
		require.NoError(t, err, name)
		require.Equal(t, want, id, name)

		back, err := ParseID(id.String())
		require.NoError(t, err)
		require.Equal(t, id, back)
	}

	_, err := ParseID("des")
	require.ErrorIs(t, err, ErrUnknownCipher)

	_, err = Lookup(ID(42))
	require.ErrorIs(t, err, ErrUnknownCipher)
	require.Equal(t, "cipher(42)", ID(42).String())
}
