package crypto

import (
	"fmt"

	"cipherlab/internal/gf"
)

// AESRounds is the round count of full AES-128.
const AESRounds = 10

const aesBlockSize = 16

// AESState is the 4x4 AES state in column-major order: byte s[r+4c] sits in
// row r, column c.
type AESState [16]byte

// SubBytes applies the S-box to every byte.
func (s *AESState) SubBytes() {
	for i := range s {
		s[i] = aesSBox[s[i]]
	}
}

// InvSubBytes applies the inverse S-box to every byte.
func (s *AESState) InvSubBytes() {
	for i := range s {
		s[i] = aesInvSBox[s[i]]
	}
}

// ShiftRows rotates row r left by r positions.
func (s *AESState) ShiftRows() {
	old := *s
	for r := 1; r < 4; r++ {
		for c := 0; c < 4; c++ {
			s[r+4*c] = old[r+4*((c+r)%4)]
		}
	}
}

// InvShiftRows rotates row r right by r positions.
func (s *AESState) InvShiftRows() {
	old := *s
	for r := 1; r < 4; r++ {
		for c := 0; c < 4; c++ {
			s[r+4*((c+r)%4)] = old[r+4*c]
		}
	}
}

// MixColumns multiplies each column by the circulant matrix (2 3 1 1).
func (s *AESState) MixColumns() {
	for c := 0; c < 16; c += 4 {
		a0, a1, a2, a3 := s[c], s[c+1], s[c+2], s[c+3]
		s[c] = gf.MulBy2(a0) ^ gf.MulBy3(a1) ^ a2 ^ a3
		s[c+1] = a0 ^ gf.MulBy2(a1) ^ gf.MulBy3(a2) ^ a3
		s[c+2] = a0 ^ a1 ^ gf.MulBy2(a2) ^ gf.MulBy3(a3)
		s[c+3] = gf.MulBy3(a0) ^ a1 ^ a2 ^ gf.MulBy2(a3)
	}
}

// InvMixColumns multiplies each column by the circulant matrix (14 11 13 9).
func (s *AESState) InvMixColumns() {
	for c := 0; c < 16; c += 4 {
		a0, a1, a2, a3 := s[c], s[c+1], s[c+2], s[c+3]
		s[c] = gf.MulBy14(a0) ^ gf.MulBy11(a1) ^ gf.MulBy13(a2) ^ gf.MulBy9(a3)
		s[c+1] = gf.MulBy9(a0) ^ gf.MulBy14(a1) ^ gf.MulBy11(a2) ^ gf.MulBy13(a3)
		s[c+2] = gf.MulBy13(a0) ^ gf.MulBy9(a1) ^ gf.MulBy14(a2) ^ gf.MulBy11(a3)
		s[c+3] = gf.MulBy11(a0) ^ gf.MulBy13(a1) ^ gf.MulBy9(a2) ^ gf.MulBy14(a3)
	}
}

// AddRoundKey XORs a round key into the state.
func (s *AESState) AddRoundKey(rk *[16]byte) {
	for i := range s {
		s[i] ^= rk[i]
	}
}

// FirstRoundByte is the first-round S-box output SBox[p^k], the intermediate
// value targeted by power-analysis models.
func FirstRoundByte(p, k byte) byte {
	return aesSBox[p^k]
}

// aesRcon returns the round constant used to derive round key r (1-based).
func aesRcon(r int) byte {
	rc := byte(1)
	for i := 1; i < r; i++ {
		rc = gf.XTime(rc)
	}
	return rc
}

// nextRoundKey derives round key r from round key r-1.
func nextRoundKey(prev *[16]byte, rcon byte) [16]byte {
	var n [16]byte
	n[0] = prev[0] ^ aesSBox[prev[13]] ^ rcon
	n[1] = prev[1] ^ aesSBox[prev[14]]
	n[2] = prev[2] ^ aesSBox[prev[15]]
	n[3] = prev[3] ^ aesSBox[prev[12]]
	for i := 4; i < 16; i++ {
		n[i] = prev[i] ^ n[i-4]
	}
	return n
}

// AESKeySchedule expands key into rounds+1 round keys.
func AESKeySchedule(key [16]byte, rounds int) [][16]byte {
	rk := make([][16]byte, rounds+1)
	rk[0] = key

	rcon := byte(1)
	for r := 1; r <= rounds; r++ {
		rk[r] = nextRoundKey(&rk[r-1], rcon)
		rcon = gf.XTime(rcon)
	}
	return rk
}

// PreviousRoundKey inverts one step of the key schedule: given round key
// `round` (1..10) it returns round key round-1.
func PreviousRoundKey(rk [16]byte, round int) ([16]byte, error) {
	if round < 1 || round > AESRounds {
		return [16]byte{}, fmt.Errorf("%w: round key %d", ErrInvalidRoundCount,
			round)
	}

	var p [16]byte
	for i := 15; i >= 4; i-- {
		p[i] = rk[i] ^ rk[i-4]
	}
	p[0] = rk[0] ^ aesSBox[p[13]] ^ aesRcon(round)
	p[1] = rk[1] ^ aesSBox[p[14]]
	p[2] = rk[2] ^ aesSBox[p[15]]
	p[3] = rk[3] ^ aesSBox[p[12]]
	return p, nil
}

// MasterKeyFromRoundKey walks the key schedule back from round key `round`
// to the cipher key.
func MasterKeyFromRoundKey(rk [16]byte, round int) ([16]byte, error) {
	if round < 0 || round > AESRounds {
		return [16]byte{}, fmt.Errorf("%w: round key %d", ErrInvalidRoundCount,
			round)
	}

	k := rk
	for r := round; r > 0; r-- {
		var err error
		if k, err = PreviousRoundKey(k, r); err != nil {
			return [16]byte{}, err
		}
	}
	return k, nil
}

// aesEngine is AES-128 with a fixed round count.
type aesEngine struct {
	rounds int
}

// NewAESEngine returns an AES-128 engine reduced to the given number of
// rounds. The final round never applies MixColumns.
func NewAESEngine(rounds int) (Engine, error) {
	if rounds < 1 || rounds > AESRounds {
		return nil, fmt.Errorf("%w: %d, want 1..%d", ErrInvalidRoundCount,
			rounds, AESRounds)
	}
	return aesEngine{rounds: rounds}, nil
}

func aesName(rounds int) string {
	if rounds == AESRounds {
		return "AES-128"
	}
	return fmt.Sprintf("AES-128-r%d", rounds)
}

func (e aesEngine) Params() Params {
	return Params{
		Name:      aesName(e.rounds),
		BlockBits: 128,
		Variants:  []Variant{{KeyBits: 128, Rounds: e.rounds}},
	}
}

func (e aesEngine) NewCipher(key []byte) (Block, error) {
	c, err := NewAES(key, e.rounds)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AESCipher is an AES-128 instance with an expanded key.
type AESCipher struct {
	rounds int
	rk     [][16]byte
}

// NewAES expands a 16-byte key for the given number of rounds.
func NewAES(key []byte, rounds int) (*AESCipher, error) {
	if rounds < 1 || rounds > AESRounds {
		return nil, fmt.Errorf("%w: %d, want 1..%d", ErrInvalidRoundCount,
			rounds, AESRounds)
	}
	if _, err := checkKey(aesEngine{rounds}.Params(), key); err != nil {
		return nil, err
	}

	c := &AESCipher{
		rounds: rounds,
		rk:     AESKeySchedule([16]byte(key), rounds),
	}
	logSchedule(c)
	return c, nil
}

func (c *AESCipher) BlockSize() int { return aesBlockSize }

// Rounds returns the round count.
func (c *AESCipher) Rounds() int { return c.rounds }

// RoundKeys returns a copy of the rounds+1 round keys.
func (c *AESCipher) RoundKeys() [][16]byte {
	out := make([][16]byte, len(c.rk))
	copy(out, c.rk)
	return out
}

func (c *AESCipher) Schedule() Schedule {
	keys := make([][]byte, len(c.rk))
	for i := range c.rk {
		k := c.rk[i]
		keys[i] = k[:]
	}
	return Schedule{
		Cipher:    aesName(c.rounds),
		Rounds:    c.rounds,
		RoundKeys: keys,
	}
}

func (c *AESCipher) encrypt(dst, src []byte, observe func(int, *AESState)) {
	var s AESState
	copy(s[:], src)

	s.AddRoundKey(&c.rk[0])
	if observe != nil {
		observe(0, &s)
	}

	for r := 1; r <= c.rounds; r++ {
		s.SubBytes()
		s.ShiftRows()
		if r != c.rounds {
			s.MixColumns()
		}
		s.AddRoundKey(&c.rk[r])
		if observe != nil {
			observe(r, &s)
		}
	}
	copy(dst, s[:])
}

func (c *AESCipher) Encrypt(dst, src []byte) {
	checkFull("crypto/aes", aesBlockSize, dst, src)
	c.encrypt(dst, src, nil)
}

func (c *AESCipher) Decrypt(dst, src []byte) {
	checkFull("crypto/aes", aesBlockSize, dst, src)

	var s AESState
	copy(s[:], src)

	s.AddRoundKey(&c.rk[c.rounds])
	for r := c.rounds - 1; r >= 0; r-- {
		s.InvShiftRows()
		s.InvSubBytes()
		s.AddRoundKey(&c.rk[r])
		if r != 0 {
			s.InvMixColumns()
		}
	}
	copy(dst, s[:])
}

func (c *AESCipher) Trace(src []byte) []RoundState {
	checkFull("crypto/aes", aesBlockSize, src, src)

	states := make([]RoundState, 0, c.rounds+1)
	out := make([]byte, aesBlockSize)
	c.encrypt(out, src, func(r int, s *AESState) {
		st := *s
		states = append(states, RoundState{Round: r, State: st[:]})
	})
	return states
}
