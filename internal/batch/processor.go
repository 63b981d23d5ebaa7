package batch

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cipherlab/internal/crypto"
	"cipherlab/internal/keycache"
	"cipherlab/internal/vectors"
)

// DefaultProgressInterval is how often progress is logged.
const DefaultProgressInterval = 2 * time.Second

// Config holds all shared resources for a batch run.
type Config struct {
	Workers          int
	Cache            *keycache.Cache
	ProgressInterval time.Duration
}

// Result holds the outcome of checking one vector.
type Result struct {
	Suite      string `json:"suite"`
	Name       string `json:"name"`
	Cipher     string `json:"cipher"`
	Ciphertext string `json:"ciphertext,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// Run checks all vectors using a worker pool. Results are in input order.
// When ctx is canceled no further vectors are dispatched; those left over
// carry the context error and Run returns it.
func Run(ctx context.Context, cfg Config, vecs []vectors.Vector) ([]Result, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Cache == nil {
		cfg.Cache = keycache.New(keycache.DefaultCapacity)
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = DefaultProgressInterval
	}

	total := len(vecs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					log.Infof("[%d/%d] %.1f vectors/sec", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	vecChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range vecChan {
				results[idx] = processVector(cfg, vecs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	sent := 0
	for sent < total && ctx.Err() == nil {
		select {
		case vecChan <- sent:
			sent++
		case <-ctx.Done():
		}
	}
	close(vecChan)

	wg.Wait()
	close(done)

	if sent < total {
		err := ctx.Err()
		for i := sent; i < total; i++ {
			results[i] = newResult(vecs[i])
			results[i].Error = err.Error()
		}
		log.Warnf("Batch canceled after %d of %d vectors", sent, total)
		return results, err
	}

	log.Debugf("Checked %d vectors in %v", total, time.Since(start))
	return results, nil
}

func newResult(v vectors.Vector) Result {
	return Result{
		Suite:  v.Suite,
		Name:   v.Name,
		Cipher: v.Cipher.String(),
	}
}

func processVector(cfg Config, v vectors.Vector) Result {
	res := newResult(v)

	e, err := v.Engine()
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Cipher = e.Params().Name

	block, err := cfg.Cache.Block(e, v.Key)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	ct, err := crypto.EncryptBlock(block, v.Plaintext)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Ciphertext = hex.EncodeToString(ct)

	if v.Ciphertext != nil && !bytes.Equal(ct, v.Ciphertext) {
		res.Error = fmt.Sprintf("ciphertext mismatch: got %x, want %x",
			ct, v.Ciphertext)
		return res
	}

	pt, err := crypto.DecryptBlock(block, ct)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if !bytes.Equal(pt, v.Plaintext) {
		res.Error = fmt.Sprintf("round trip mismatch: got %x, want %x",
			pt, v.Plaintext)
		return res
	}

	res.Success = true
	return res
}
