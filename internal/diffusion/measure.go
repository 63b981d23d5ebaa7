// Package diffusion measures how single-bit input changes spread through a
// cipher. The keyed block is used as a black-box oracle.
package diffusion

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"cipherlab/internal/crypto"
)

// ErrNoSamples is returned by Measure for a non-positive sample count.
var ErrNoSamples = errors.New("diffusion: need at least one sample")

// Matrix holds flip probabilities: entry (i, j) is the fraction of samples in
// which flipping input bit i flipped output bit j. Bits are numbered most
// significant first.
type Matrix struct {
	In      int
	Out     int
	Samples int
	P       []float64 // row-major, In rows of Out entries
}

// At returns the flip probability of output bit j for input bit i.
func (m *Matrix) At(i, j int) float64 {
	return m.P[i*m.Out+j]
}

// Stats summarizes a matrix.
type Stats struct {
	// Mean is the average flip probability over all cells.
	Mean float64

	// MaxDeviation is the largest |p - 0.5| over all cells.
	MaxDeviation float64

	// Weight is the mean number of output bits flipped by one input flip.
	Weight float64
}

// Stats returns the summary statistics of m.
func (m *Matrix) Stats() Stats {
	var s Stats
	if len(m.P) == 0 {
		return s
	}

	var sum float64
	for _, p := range m.P {
		sum += p
		s.MaxDeviation = math.Max(s.MaxDeviation, math.Abs(p-0.5))
	}
	s.Mean = sum / float64(len(m.P))
	s.Weight = s.Mean * float64(m.Out)
	return s
}

func hasBit(b []byte, i int) bool {
	return b[i/8]&(0x80>>(i%8)) != 0
}

// Measure flips each plaintext bit of samples random plaintexts and counts
// which ciphertext bits change. The same seed gives the same matrix.
func Measure(b crypto.Block, samples int, seed uint64) (*Matrix, error) {
	if samples <= 0 {
		return nil, ErrNoSamples
	}

	n := b.BlockSize()
	bitsN := n * 8
	counts := make([]int, bitsN*bitsN)

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	pt := make([]byte, n)
	ct := make([]byte, n)
	flipped := make([]byte, n)
	out := make([]byte, n)

	for s := 0; s < samples; s++ {
		for i := range pt {
			pt[i] = byte(rng.Uint32())
		}
		b.Encrypt(ct, pt)

		for i := 0; i < bitsN; i++ {
			copy(flipped, pt)
			flipped[i/8] ^= 0x80 >> (i % 8)
			b.Encrypt(out, flipped)

			for k := range out {
				out[k] ^= ct[k]
			}
			row := counts[i*bitsN:]
			for j := 0; j < bitsN; j++ {
				if hasBit(out, j) {
					row[j]++
				}
			}
		}
	}

	m := &Matrix{
		In:      bitsN,
		Out:     bitsN,
		Samples: samples,
		P:       make([]float64, len(counts)),
	}
	for i, c := range counts {
		m.P[i] = float64(c) / float64(samples)
	}

	st := m.Stats()
	log.Debugf("Measured %dx%d matrix over %d samples: mean=%.4f "+
		"maxdev=%.4f", m.In, m.Out, samples, st.Mean, st.MaxDeviation)

	return m, nil
}

// MeasureCipher keys the engine and measures it.
func MeasureCipher(e crypto.Engine, key []byte, samples int,
	seed uint64) (*Matrix, error) {

	b, err := e.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("diffusion: %w", err)
	}
	return Measure(b, samples, seed)
}
