package vectors

import "cipherlab/internal/crypto"

// Vector is one known-answer test case. Ciphertext is nil when the suite
// only checks the round trip.
type Vector struct {
	Suite      string
	Cipher     crypto.ID
	Rounds     int // AES round count, 0 for the cipher's default
	Name       string
	Key        []byte
	Plaintext  []byte
	Ciphertext []byte
}

// Engine returns the engine that runs v.
func (v Vector) Engine() (crypto.Engine, error) {
	if v.Cipher == crypto.AES128 && v.Rounds != 0 {
		return crypto.NewAESEngine(v.Rounds)
	}
	return crypto.Lookup(v.Cipher)
}
