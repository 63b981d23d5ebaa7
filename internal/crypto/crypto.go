// Package crypto implements the block-cipher engines (AES-128, PRESENT-80,
// LEA and Piccolo) together with their key schedules. Every engine is a pure
// function of (block, key): a keyed Block holds only its derived schedule and
// may be shared between goroutines.
package crypto

import (
	"crypto/cipher"
	"fmt"
	"strings"
)

// ID selects a cipher engine.
type ID uint8

const (
	// AES128 is the full 10-round AES with a 128-bit key.
	AES128 ID = iota

	// PRESENT80 is PRESENT with an 80-bit key.
	PRESENT80

	// LEA accepts 128, 192 and 256-bit keys.
	LEA

	// Piccolo accepts 80 and 128-bit keys.
	Piccolo
)

// String returns the canonical lower-case name of the cipher.
func (id ID) String() string {
	switch id {
	case AES128:
		return "aes128"
	case PRESENT80:
		return "present80"
	case LEA:
		return "lea"
	case Piccolo:
		return "piccolo"
	default:
		return fmt.Sprintf("cipher(%d)", uint8(id))
	}
}

// ParseID maps a cipher name to its ID. Names are case-insensitive and may
// carry a key-size suffix, e.g. "LEA-256" or "piccolo80".
func ParseID(name string) (ID, error) {
	n := strings.ToLower(name)
	n = strings.NewReplacer("-", "", "_", "").Replace(n)

	switch n {
	case "aes", "aes128":
		return AES128, nil
	case "present", "present80":
		return PRESENT80, nil
	case "lea", "lea128", "lea192", "lea256":
		return LEA, nil
	case "piccolo", "piccolo80", "piccolo128":
		return Piccolo, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCipher, name)
}

// Variant is one supported key size of a cipher and its round count.
type Variant struct {
	KeyBits int
	Rounds  int
}

// Params describes the fixed dimensions of a cipher.
type Params struct {
	Name      string
	BlockBits int
	Variants  []Variant
}

// BlockSize returns the block size in bytes.
func (p Params) BlockSize() int { return p.BlockBits / 8 }

// KeyBits lists the supported key sizes in bits.
func (p Params) KeyBits() []int {
	out := make([]int, len(p.Variants))
	for i, v := range p.Variants {
		out[i] = v.KeyBits
	}
	return out
}

// Variant returns the variant for a key of keyBits bits.
func (p Params) Variant(keyBits int) (Variant, bool) {
	for _, v := range p.Variants {
		if v.KeyBits == keyBits {
			return v, true
		}
	}
	return Variant{}, false
}

// Schedule is the full ordered output of a key schedule. Keys are
// serialized big-endian in the cipher's natural word size: 16-byte AES round
// keys, 8-byte PRESENT keys, six 32-bit LEA words per round and two 16-bit
// Piccolo words per round.
type Schedule struct {
	Cipher    string
	Rounds    int
	RoundKeys [][]byte

	// Whitening holds keys applied once outside the round structure
	// (Piccolo wk0..wk3). Empty for the other ciphers.
	Whitening [][]byte
}

// RoundState is the cipher state after one round of an encryption. Round 0
// is the state after the initial key addition or whitening.
type RoundState struct {
	Round int
	State []byte
}

// Block is a cipher keyed with one key. Encrypt and Decrypt follow the
// crypto/cipher contract and panic on short buffers; use the package-level
// functions for validated access.
type Block interface {
	cipher.Block

	// Schedule returns a copy of the derived round keys.
	Schedule() Schedule

	// Trace encrypts src and returns the state after every round.
	Trace(src []byte) []RoundState
}

// Engine is one cipher family. NewCipher runs the key schedule.
type Engine interface {
	Params() Params
	NewCipher(key []byte) (Block, error)
}

// Lookup returns the engine for id.
func Lookup(id ID) (Engine, error) {
	switch id {
	case AES128:
		return aesEngine{rounds: AESRounds}, nil
	case PRESENT80:
		return presentEngine{}, nil
	case LEA:
		return leaEngine{}, nil
	case Piccolo:
		return piccoloEngine{}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownCipher, id)
	}
}

// New keys the cipher selected by id.
func New(id ID, key []byte) (Block, error) {
	e, err := Lookup(id)
	if err != nil {
		return nil, err
	}
	return e.NewCipher(key)
}

// checkKey validates a key length against the cipher's variants.
func checkKey(p Params, key []byte) (Variant, error) {
	v, ok := p.Variant(len(key) * 8)
	if !ok {
		return Variant{}, keyWidthError(p.Name, len(key)*8, p.KeyBits())
	}
	return v, nil
}

func checkBlock(name string, blockSize int, b []byte) error {
	if len(b) != blockSize {
		return blockWidthError(name, len(b)*8, blockSize*8)
	}
	return nil
}

// Encrypt encrypts a single block under key.
func Encrypt(e Engine, plaintext, key []byte) ([]byte, error) {
	p := e.Params()
	if err := checkBlock(p.Name, p.BlockSize(), plaintext); err != nil {
		return nil, err
	}

	b, err := e.NewCipher(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(plaintext))
	b.Encrypt(out, plaintext)
	return out, nil
}

// Decrypt decrypts a single block under key.
func Decrypt(e Engine, ciphertext, key []byte) ([]byte, error) {
	p := e.Params()
	if err := checkBlock(p.Name, p.BlockSize(), ciphertext); err != nil {
		return nil, err
	}

	b, err := e.NewCipher(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(ciphertext))
	b.Decrypt(out, ciphertext)
	return out, nil
}

// KeySchedule derives the full round-key sequence for key.
func KeySchedule(e Engine, key []byte) (Schedule, error) {
	b, err := e.NewCipher(key)
	if err != nil {
		return Schedule{}, err
	}
	return b.Schedule(), nil
}

// Trace encrypts plaintext and returns every intermediate round state.
func Trace(e Engine, plaintext, key []byte) ([]RoundState, error) {
	p := e.Params()
	if err := checkBlock(p.Name, p.BlockSize(), plaintext); err != nil {
		return nil, err
	}

	b, err := e.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return b.Trace(plaintext), nil
}

// EncryptBlock encrypts with an already keyed block, validating the width.
func EncryptBlock(b Block, plaintext []byte) ([]byte, error) {
	if len(plaintext) != b.BlockSize() {
		return nil, blockWidthError(b.Schedule().Cipher,
			len(plaintext)*8, b.BlockSize()*8)
	}
	out := make([]byte, len(plaintext))
	b.Encrypt(out, plaintext)
	return out, nil
}

// DecryptBlock decrypts with an already keyed block, validating the width.
func DecryptBlock(b Block, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) != b.BlockSize() {
		return nil, blockWidthError(b.Schedule().Cipher,
			len(ciphertext)*8, b.BlockSize()*8)
	}
	out := make([]byte, len(ciphertext))
	b.Decrypt(out, ciphertext)
	return out, nil
}

// checkFull panics when dst or src is shorter than one block, matching the
// crypto/cipher.Block contract.
func checkFull(name string, blockSize int, dst, src []byte) {
	if len(src) < blockSize {
		panic(name + ": input not full block")
	}
	if len(dst) < blockSize {
		panic(name + ": output not full block")
	}
}
