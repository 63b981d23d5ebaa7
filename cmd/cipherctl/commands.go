package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"cipherlab/internal/batch"
	"cipherlab/internal/crypto"
	"cipherlab/internal/diffusion"
	"cipherlab/internal/keycache"
	"cipherlab/internal/keyderive"
	"cipherlab/internal/vectors"
)

const defaultSalt = "cipherlab"

var errMissingArg = errors.New("missing block argument")

func printJSON(resp interface{}) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "\t"); err != nil {
		return err
	}
	out.WriteString("\n")
	_, err = out.WriteTo(os.Stdout)
	return err
}

// cipherFlags select the engine and key for single-block commands.
var cipherFlags = []cli.Flag{
	cli.StringFlag{
		Name: "cipher, c",
		Usage: "aes128, present80, lea or piccolo; a key-size " +
			"suffix such as lea-256 is accepted.",
	},
	cli.StringFlag{
		Name:  "key, k",
		Usage: "The key as hex.",
	},
	cli.StringFlag{
		Name:  "passphrase",
		Usage: "Derive the key from a passphrase with scrypt.",
	},
	cli.StringFlag{
		Name:  "salt",
		Value: defaultSalt,
		Usage: "The scrypt salt used with --passphrase.",
	},
	cli.IntFlag{
		Name: "keybits",
		Usage: "Key size derived from --passphrase (default the " +
			"--cipher suffix or the smallest supported size).",
	},
}

// engineFor resolves a cipher name. AES honors the configured round count.
func engineFor(name string, aesRounds int) (crypto.Engine, error) {
	id, err := crypto.ParseID(name)
	if err != nil {
		return nil, err
	}
	if id == crypto.AES128 {
		return crypto.NewAESEngine(aesRounds)
	}
	if aesRounds != crypto.AESRounds {
		ctlLog.Warnf("Ignoring --rounds %d: %v always runs its full "+
			"round count", aesRounds, id)
	}
	return crypto.Lookup(id)
}

// keyBitsFromName returns the numeric suffix of a name like "lea-256", or 0.
func keyBitsFromName(name string) int {
	end := len(name)
	start := end
	for start > 0 && name[start-1] >= '0' && name[start-1] <= '9' {
		start--
	}
	n, err := strconv.Atoi(name[start:end])
	if err != nil {
		return 0
	}
	return n
}

// keyFor decodes --key or derives one from --passphrase.
func keyFor(ctx *cli.Context, e crypto.Engine) ([]byte, error) {
	if pass := ctx.String("passphrase"); pass != "" {
		p := e.Params()

		bits := ctx.Int("keybits")
		if ctx.IsSet("keybits") {
			if _, ok := p.Variant(bits); !ok {
				return nil, fmt.Errorf("%s: %w: got %d bits, "+
					"supported %v", p.Name,
					crypto.ErrInvalidKeyWidth, bits, p.KeyBits())
			}
		} else {
			bits = keyBitsFromName(ctx.String("cipher"))
			if _, ok := p.Variant(bits); !ok {
				bits = p.Variants[0].KeyBits
			}
		}

		ctlLog.Debugf("Deriving %d-bit %s key from passphrase", bits,
			p.Name)
		return keyderive.FromPassphrase([]byte(pass),
			[]byte(ctx.String("salt")), bits)
	}

	k := ctx.String("key")
	if k == "" {
		return nil, errors.New("either --key or --passphrase is required")
	}
	return vectors.DecodeHex(k)
}

// keyedBlock resolves the engine and key of a single-block command.
func keyedBlock(ctx *cli.Context) (crypto.Block, error) {
	name := ctx.String("cipher")
	if name == "" {
		return nil, errors.New("--cipher is required")
	}

	e, err := engineFor(name, cfg.AESRounds)
	if err != nil {
		return nil, err
	}
	key, err := keyFor(ctx, e)
	if err != nil {
		return nil, err
	}
	return e.NewCipher(key)
}

func blockArg(ctx *cli.Context) ([]byte, error) {
	if ctx.NArg() != 1 {
		return nil, errMissingArg
	}
	return vectors.DecodeHex(ctx.Args().First())
}

var encryptCommand = cli.Command{
	Name:      "encrypt",
	Usage:     "Encrypt one block.",
	ArgsUsage: "plaintext-hex",
	Flags:     cipherFlags,
	Action:    encrypt,
}

func encrypt(ctx *cli.Context) error {
	return cryptBlock(ctx, crypto.EncryptBlock)
}

var decryptCommand = cli.Command{
	Name:      "decrypt",
	Usage:     "Decrypt one block.",
	ArgsUsage: "ciphertext-hex",
	Flags:     cipherFlags,
	Action:    decrypt,
}

func decrypt(ctx *cli.Context) error {
	return cryptBlock(ctx, crypto.DecryptBlock)
}

func cryptBlock(ctx *cli.Context,
	op func(crypto.Block, []byte) ([]byte, error)) error {

	in, err := blockArg(ctx)
	if err != nil {
		return err
	}
	b, err := keyedBlock(ctx)
	if err != nil {
		return err
	}

	out, err := op(b, in)
	if err != nil {
		return err
	}
	fmt.Println(hex.EncodeToString(out))
	return nil
}

type scheduleResp struct {
	Cipher    string   `json:"cipher"`
	Rounds    int      `json:"rounds"`
	RoundKeys []string `json:"round_keys"`
	Whitening []string `json:"whitening,omitempty"`
}

func hexAll(bs [][]byte) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = hex.EncodeToString(b)
	}
	return out
}

var scheduleCommand = cli.Command{
	Name:   "schedule",
	Usage:  "Print the full key schedule.",
	Flags:  cipherFlags,
	Action: schedule,
}

func schedule(ctx *cli.Context) error {
	b, err := keyedBlock(ctx)
	if err != nil {
		return err
	}

	s := b.Schedule()
	return printJSON(scheduleResp{
		Cipher:    s.Cipher,
		Rounds:    s.Rounds,
		RoundKeys: hexAll(s.RoundKeys),
		Whitening: hexAll(s.Whitening),
	})
}

type roundResp struct {
	Round int    `json:"round"`
	State string `json:"state"`
}

var traceCommand = cli.Command{
	Name:      "trace",
	Usage:     "Print the state after every round of one encryption.",
	ArgsUsage: "plaintext-hex",
	Flags:     cipherFlags,
	Action:    trace,
}

func trace(ctx *cli.Context) error {
	in, err := blockArg(ctx)
	if err != nil {
		return err
	}
	b, err := keyedBlock(ctx)
	if err != nil {
		return err
	}
	if len(in) != b.BlockSize() {
		// Goes through the validated path for the error value.
		_, err := crypto.EncryptBlock(b, in)
		return err
	}

	states := b.Trace(in)
	resp := make([]roundResp, len(states))
	for i, st := range states {
		resp[i] = roundResp{
			Round: st.Round,
			State: hex.EncodeToString(st.State),
		}
	}
	return printJSON(resp)
}

var verifyCommand = cli.Command{
	Name: "verify",
	Usage: "Check known-answer vectors from a suite file, or the " +
		"built-in vectors.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:      "vectors",
			Usage:     "A JSON or XML suite file.",
			TakesFile: true,
		},
		cli.StringFlag{
			Name:      "report",
			Usage:     "Write a JSON report to this path.",
			TakesFile: true,
		},
	},
	Action: verify,
}

func verify(ctx *cli.Context) error {
	path := ctx.String("vectors")
	if path == "" {
		path = cfg.VectorsFile
	}

	vecs := vectors.Builtin()
	if path != "" {
		var err error
		if vecs, err = vectors.Parse(path); err != nil {
			return err
		}
	}
	ctlLog.Infof("Verifying %d vectors with %d workers", len(vecs),
		cfg.Workers)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cache := keycache.New(cfg.CacheSize)
	results, err := batch.Run(runCtx, batch.Config{
		Workers: cfg.Workers,
		Cache:   cache,
	}, vecs)

	st := cache.Stats()
	ctlLog.Debugf("Schedule cache: %d hits, %d misses", st.Hits,
		st.Misses)

	report := ctx.String("report")
	if report == "" {
		report = cfg.ReportFile
	}
	if report != "" {
		if werr := batch.WriteReport(report, results); werr != nil {
			return werr
		}
	}
	if err != nil {
		return err
	}

	for _, r := range results {
		if !r.Success {
			fmt.Printf("FAIL %s/%s (%s): %s\n", r.Suite, r.Name,
				r.Cipher, r.Error)
		}
	}

	sum := batch.Summarize(results)
	fmt.Printf("%d vectors: %d passed, %d failed\n", sum.Total, sum.Passed,
		sum.Failed)
	if sum.Failed > 0 {
		return fmt.Errorf("%d vectors failed", sum.Failed)
	}
	return nil
}

type avalancheResp struct {
	Cipher       string  `json:"cipher"`
	Samples      int     `json:"samples"`
	Mean         float64 `json:"mean"`
	MaxDeviation float64 `json:"max_deviation"`
	Weight       float64 `json:"weight"`
	Image        string  `json:"image,omitempty"`
}

var avalancheCommand = cli.Command{
	Name:  "avalanche",
	Usage: "Measure single-bit diffusion and optionally render it.",
	Flags: append([]cli.Flag{
		cli.StringFlag{
			Name:      "out, o",
			Usage:     "Write the flip matrix as a .webp or .tga image.",
			TakesFile: true,
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Pixels per matrix cell.",
		},
		cli.Uint64Flag{
			Name:  "seed",
			Value: 1,
			Usage: "Seed for the random plaintexts.",
		},
	}, cipherFlags...),
	Action: avalanche,
}

func avalanche(ctx *cli.Context) error {
	b, err := keyedBlock(ctx)
	if err != nil {
		return err
	}

	m, err := diffusion.Measure(b, cfg.Samples, ctx.Uint64("seed"))
	if err != nil {
		return err
	}

	st := m.Stats()
	resp := avalancheResp{
		Cipher:       b.Schedule().Cipher,
		Samples:      m.Samples,
		Mean:         st.Mean,
		MaxDeviation: st.MaxDeviation,
		Weight:       st.Weight,
	}

	if out := ctx.String("out"); out != "" {
		if err := writeImage(out, m, ctx.Int("scale")); err != nil {
			return err
		}
		resp.Image = out
	}
	return printJSON(resp)
}

func writeImage(path string, m *diffusion.Matrix, scale int) error {
	format, err := diffusion.FormatFromPath(path)
	if err != nil {
		return err
	}
	if scale <= 0 {
		scale = cfg.ImageScale
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := diffusion.Encode(f, diffusion.Render(m, scale), format); err != nil {
		return err
	}
	ctlLog.Infof("Wrote %s (%s)", path, strings.ToUpper(string(format)))
	return f.Close()
}
