package crypto

import (
	"encoding/binary"
	"fmt"

	"cipherlab/internal/gf"
)

const piccoloBlockSize = 8

var piccoloParams = Params{
	Name:      "Piccolo",
	BlockBits: 64,
	Variants: []Variant{
		{KeyBits: 80, Rounds: 25},
		{KeyBits: 128, Rounds: 31},
	},
}

type piccoloEngine struct{}

func (piccoloEngine) Params() Params { return piccoloParams }

func (piccoloEngine) NewCipher(key []byte) (Block, error) {
	c, err := NewPiccolo(key)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// PiccoloCipher is Piccolo-80 or Piccolo-128. rk holds two 16-bit words per
// round; wk the four whitening words.
type PiccoloCipher struct {
	keyBits int
	wk      [4]uint16
	rk      []uint16
}

// NewPiccolo runs the key schedule on a 10 or 16-byte key. Key words are
// read big-endian, k0 first.
func NewPiccolo(key []byte) (*PiccoloCipher, error) {
	v, err := checkKey(piccoloParams, key)
	if err != nil {
		return nil, err
	}

	k := make([]uint16, len(key)/2)
	for i := range k {
		k[i] = binary.BigEndian.Uint16(key[2*i:])
	}

	c := &PiccoloCipher{keyBits: v.KeyBits}
	if v.KeyBits == 80 {
		c.wk, c.rk = piccoloSchedule80(k, v.Rounds)
	} else {
		c.wk, c.rk = piccoloSchedule128(k, v.Rounds)
	}
	logSchedule(c)
	return c, nil
}

// piccoloWhitening combines the high byte of a with the low byte of b.
func piccoloWhitening(a, b uint16) uint16 {
	return a&0xff00 | b&0x00ff
}

// piccoloCon returns the 32-bit constant of round i for the given base.
func piccoloCon(i int, base uint32) uint32 {
	c := uint32(i + 1)
	return (c<<27 ^ c<<17 ^ c<<10 ^ c) ^ base
}

func piccoloSchedule80(k []uint16, rounds int) ([4]uint16, []uint16) {
	wk := [4]uint16{
		piccoloWhitening(k[0], k[1]),
		piccoloWhitening(k[1], k[0]),
		piccoloWhitening(k[4], k[3]),
		piccoloWhitening(k[3], k[4]),
	}

	rk := make([]uint16, 0, 2*rounds)
	for i := 0; i < rounds; i++ {
		con := piccoloCon(i, piccolo80Con)

		var a, b uint16
		switch i % 5 {
		case 0, 2:
			a, b = k[2], k[3]
		case 1, 4:
			a, b = k[0], k[1]
		case 3:
			a, b = k[4], k[4]
		}
		rk = append(rk, uint16(con>>16)^a, uint16(con)^b)
	}
	return wk, rk
}

func piccoloSchedule128(key []uint16, rounds int) ([4]uint16, []uint16) {
	var k [8]uint16
	copy(k[:], key)

	wk := [4]uint16{
		piccoloWhitening(k[0], k[1]),
		piccoloWhitening(k[1], k[0]),
		piccoloWhitening(k[4], k[7]),
		piccoloWhitening(k[7], k[4]),
	}

	rk := make([]uint16, 0, 2*rounds)
	for i := 0; i < rounds; i++ {
		if (2*i+2)%8 == 0 {
			k = [8]uint16{k[2], k[1], k[6], k[7], k[0], k[3], k[4], k[5]}
		}

		con := piccoloCon(i, piccolo128Con)
		rk = append(rk,
			k[(2*i+2)%8]^uint16(con>>16),
			k[(2*i+3)%8]^uint16(con),
		)
	}
	return wk, rk
}

// piccoloF is the F-function: S-box layer, diffusion matrix over GF(2^4),
// S-box layer. Nibble 0 is the most significant.
func piccoloF(x uint16) uint16 {
	var n [4]byte
	for i := range n {
		n[i] = piccoloSBox[x>>(12-4*i)&0xf]
	}

	var out uint16
	for i, row := range piccoloMatrix {
		var y byte
		for j, m := range row {
			y ^= gf.Mul4(n[j], m)
		}
		out |= uint16(piccoloSBox[y]) << (12 - 4*i)
	}
	return out
}

// piccoloRP is the round permutation on the eight state bytes:
// (x0..x7) -> (x2, x7, x4, x1, x6, x3, x0, x5).
func piccoloRP(x [4]uint16) [4]uint16 {
	var b [8]byte
	for i, w := range x {
		b[2*i] = byte(w >> 8)
		b[2*i+1] = byte(w)
	}
	join := func(hi, lo byte) uint16 { return uint16(hi)<<8 | uint16(lo) }
	return [4]uint16{
		join(b[2], b[7]),
		join(b[4], b[1]),
		join(b[6], b[3]),
		join(b[0], b[5]),
	}
}

// piccoloG is the generalized Feistel network shared by encryption and
// decryption.
func piccoloG(x [4]uint16, wk [4]uint16, rk []uint16,
	observe func(int, [4]uint16)) [4]uint16 {

	x[0] ^= wk[0]
	x[2] ^= wk[1]
	if observe != nil {
		observe(0, x)
	}

	rounds := len(rk) / 2
	for r := 0; r < rounds; r++ {
		x[1] ^= piccoloF(x[0]) ^ rk[2*r]
		x[3] ^= piccoloF(x[2]) ^ rk[2*r+1]

		if r == rounds-1 {
			x[0] ^= wk[2]
			x[2] ^= wk[3]
		} else {
			x = piccoloRP(x)
		}
		if observe != nil {
			observe(r+1, x)
		}
	}
	return x
}

// decryptKeys returns the whitening and round keys that make piccoloG
// compute the inverse permutation.
func (c *PiccoloCipher) decryptKeys() ([4]uint16, []uint16) {
	wk := [4]uint16{c.wk[2], c.wk[3], c.wk[0], c.wk[1]}

	n := len(c.rk)
	rk := make([]uint16, 0, n)
	for i := 0; i < n/2; i++ {
		a, b := c.rk[n-2*i-2], c.rk[n-2*i-1]
		if i%2 == 1 {
			a, b = b, a
		}
		rk = append(rk, a, b)
	}
	return wk, rk
}

func (c *PiccoloCipher) name() string {
	return fmt.Sprintf("Piccolo-%d", c.keyBits)
}

// Rounds returns 25 or 31 depending on the key size.
func (c *PiccoloCipher) Rounds() int { return len(c.rk) / 2 }

// EncryptWords encrypts one block given as four 16-bit words, X0 first.
func (c *PiccoloCipher) EncryptWords(x [4]uint16) [4]uint16 {
	return piccoloG(x, c.wk, c.rk, nil)
}

// DecryptWords inverts EncryptWords.
func (c *PiccoloCipher) DecryptWords(x [4]uint16) [4]uint16 {
	wk, rk := c.decryptKeys()
	return piccoloG(x, wk, rk, nil)
}

func piccoloLoad(b []byte) [4]uint16 {
	var x [4]uint16
	for i := range x {
		x[i] = binary.BigEndian.Uint16(b[2*i:])
	}
	return x
}

func piccoloStore(b []byte, x [4]uint16) {
	for i, w := range x {
		binary.BigEndian.PutUint16(b[2*i:], w)
	}
}

func (c *PiccoloCipher) BlockSize() int { return piccoloBlockSize }

func (c *PiccoloCipher) Encrypt(dst, src []byte) {
	checkFull("crypto/piccolo", piccoloBlockSize, dst, src)
	piccoloStore(dst, c.EncryptWords(piccoloLoad(src)))
}

func (c *PiccoloCipher) Decrypt(dst, src []byte) {
	checkFull("crypto/piccolo", piccoloBlockSize, dst, src)
	piccoloStore(dst, c.DecryptWords(piccoloLoad(src)))
}

// WhiteningKeys returns wk0..wk3.
func (c *PiccoloCipher) WhiteningKeys() [4]uint16 { return c.wk }

// RoundKeys returns a copy of the 2*rounds round-key words.
func (c *PiccoloCipher) RoundKeys() []uint16 {
	out := make([]uint16, len(c.rk))
	copy(out, c.rk)
	return out
}

func (c *PiccoloCipher) Schedule() Schedule {
	keys := make([][]byte, 0, len(c.rk)/2)
	for i := 0; i < len(c.rk); i += 2 {
		b := binary.BigEndian.AppendUint16(nil, c.rk[i])
		keys = append(keys, binary.BigEndian.AppendUint16(b, c.rk[i+1]))
	}

	white := make([][]byte, len(c.wk))
	for i, w := range c.wk {
		white[i] = binary.BigEndian.AppendUint16(nil, w)
	}

	return Schedule{
		Cipher:    c.name(),
		Rounds:    c.Rounds(),
		RoundKeys: keys,
		Whitening: white,
	}
}

func (c *PiccoloCipher) Trace(src []byte) []RoundState {
	checkFull("crypto/piccolo", piccoloBlockSize, src, src)

	states := make([]RoundState, 0, c.Rounds()+1)
	piccoloG(piccoloLoad(src), c.wk, c.rk, func(r int, x [4]uint16) {
		b := make([]byte, piccoloBlockSize)
		piccoloStore(b, x)
		states = append(states, RoundState{Round: r, State: b})
	})
	return states
}
