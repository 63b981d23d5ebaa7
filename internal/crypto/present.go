package crypto

import (
	"encoding/binary"

	"cipherlab/internal/bitops"
)

const (
	presentBlockSize = 8
	presentKeySize   = 10
	presentRounds    = 31
)

var presentParams = Params{
	Name:      "PRESENT-80",
	BlockBits: 64,
	Variants:  []Variant{{KeyBits: 80, Rounds: presentRounds}},
}

type presentEngine struct{}

func (presentEngine) Params() Params { return presentParams }

func (presentEngine) NewCipher(key []byte) (Block, error) {
	c, err := NewPRESENT(key)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// PRESENTCipher is PRESENT-80 with its 32 round keys.
type PRESENTCipher struct {
	rk [presentRounds + 1]uint64
}

// NewPRESENT runs the 80-bit key schedule. The key is read big-endian, so
// key[0] holds register bits 79..72.
func NewPRESENT(key []byte) (*PRESENTCipher, error) {
	if _, err := checkKey(presentParams, key); err != nil {
		return nil, err
	}

	hi := binary.BigEndian.Uint64(key[0:8])
	lo := binary.BigEndian.Uint16(key[8:10])

	c := &PRESENTCipher{}
	for r := 1; r <= presentRounds+1; r++ {
		c.rk[r-1] = hi
		if r > presentRounds {
			break
		}
		hi, lo = presentUpdateKey(hi, lo, uint64(r))
	}
	logSchedule(c)
	return c, nil
}

// presentUpdateKey advances the 80-bit register (hi holds bits 79..16, lo
// bits 15..0): rotate left by 61, substitute the top nibble and XOR the
// round counter into bits 19..15.
func presentUpdateKey(hi uint64, lo uint16, counter uint64) (uint64, uint16) {
	nhi := hi<<61 | uint64(lo)<<45 | hi>>19
	nlo := uint16(hi >> 3)

	nhi = uint64(presentSBox[nhi>>60])<<60 | nhi&(1<<60-1)

	nhi ^= counter >> 1
	nlo ^= uint16(counter&1) << 15
	return nhi, nlo
}

func presentSBoxLayer(s uint64, box *[16]byte) uint64 {
	var out uint64
	for i := 0; i < 64; i += 4 {
		out |= uint64(box[(s>>i)&0xf]) << i
	}
	return out
}

func presentPermute(s uint64, perm *[64]uint8) uint64 {
	var out uint64
	for i := 0; i < 64; i++ {
		out |= (s >> i & 1) << perm[i]
	}
	return out
}

func (c *PRESENTCipher) encrypt(s uint64, observe func(int, uint64)) uint64 {
	s ^= c.rk[0]
	if observe != nil {
		observe(0, s)
	}
	for r := 1; r <= presentRounds; r++ {
		s = presentSBoxLayer(s, &presentSBox)
		s = presentPermute(s, &presentPBox)
		s ^= c.rk[r]
		if observe != nil {
			observe(r, s)
		}
	}
	return s
}

func (c *PRESENTCipher) decrypt(s uint64) uint64 {
	for r := presentRounds; r >= 1; r-- {
		s ^= c.rk[r]
		s = presentPermute(s, &presentInvPBox)
		s = presentSBoxLayer(s, &presentInvSBox)
	}
	return s ^ c.rk[0]
}

func (c *PRESENTCipher) BlockSize() int { return presentBlockSize }

func (c *PRESENTCipher) Encrypt(dst, src []byte) {
	checkFull("crypto/present", presentBlockSize, dst, src)
	s := c.encrypt(binary.BigEndian.Uint64(src), nil)
	binary.BigEndian.PutUint64(dst, s)
}

func (c *PRESENTCipher) Decrypt(dst, src []byte) {
	checkFull("crypto/present", presentBlockSize, dst, src)
	s := c.decrypt(binary.BigEndian.Uint64(src))
	binary.BigEndian.PutUint64(dst, s)
}

// RoundKeys returns the 32 64-bit round keys.
func (c *PRESENTCipher) RoundKeys() []uint64 {
	out := make([]uint64, len(c.rk))
	copy(out, c.rk[:])
	return out
}

func (c *PRESENTCipher) Schedule() Schedule {
	keys := make([][]byte, len(c.rk))
	for i, k := range c.rk {
		keys[i] = binary.BigEndian.AppendUint64(nil, k)
	}
	return Schedule{
		Cipher:    presentParams.Name,
		Rounds:    presentRounds,
		RoundKeys: keys,
	}
}

func (c *PRESENTCipher) Trace(src []byte) []RoundState {
	checkFull("crypto/present", presentBlockSize, src, src)

	states := make([]RoundState, 0, presentRounds+1)
	c.encrypt(binary.BigEndian.Uint64(src), func(r int, s uint64) {
		states = append(states, RoundState{
			Round: r,
			State: binary.BigEndian.AppendUint64(nil, s),
		})
	})
	return states
}

// EncryptBits encrypts a 64-element plaintext bit vector under an
// 80-element key bit vector. Both are most-significant bit first.
func EncryptBits(plaintext, key []uint8) ([]uint8, error) {
	return presentBits(plaintext, key, false)
}

// DecryptBits is the inverse of EncryptBits.
func DecryptBits(ciphertext, key []uint8) ([]uint8, error) {
	return presentBits(ciphertext, key, true)
}

func presentBits(block, key []uint8, decrypt bool) ([]uint8, error) {
	if len(block) != presentParams.BlockBits {
		return nil, blockWidthError(presentParams.Name, len(block),
			presentParams.BlockBits)
	}
	if len(key) != presentKeySize*8 {
		return nil, keyWidthError(presentParams.Name, len(key),
			presentParams.KeyBits())
	}

	s, err := bitops.Uint64FromBits(block)
	if err != nil {
		return nil, err
	}
	k, err := bitops.BytesFromBits(key)
	if err != nil {
		return nil, err
	}

	c, err := NewPRESENT(k)
	if err != nil {
		return nil, err
	}
	if decrypt {
		s = c.decrypt(s)
	} else {
		s = c.encrypt(s, nil)
	}
	return bitops.BitsFromUint64(s, 64), nil
}
