// Command cipherctl runs the block-cipher engines from the command line:
// single-block encryption, key schedules, round traces, known-answer
// verification and diffusion analysis.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/urfave/cli"

	"cipherlab/internal/config"
)

// cfg is the resolved configuration, set before any command runs.
var cfg config.Config

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[cipherctl] %v\n", err)
	os.Exit(1)
}

// loadConfig reads the optional config file, applies the global flags and
// starts logging.
func loadConfig(ctx *cli.Context) error {
	var flags config.Flags

	cfg = config.Config{}
	if path := ctx.GlobalString("config"); path != "" {
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = c
		flags.ConfigDir = filepath.Dir(path)
	}

	flags.DebugLevel = ctx.GlobalString("debuglevel")
	flags.LogFile = ctx.GlobalString("logfile")
	flags.Workers = ctx.GlobalInt("workers")
	flags.Samples = ctx.GlobalInt("samples")
	if ctx.GlobalIsSet("rounds") {
		flags.AESRounds = fn.Some(ctx.GlobalInt("rounds"))
	}

	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.LogFile != "" {
		err := initLogRotator(cfg.LogFile, cfg.MaxLogFileSize,
			cfg.MaxLogFiles)
		if err != nil {
			return err
		}
	}
	if err := parseAndSetDebugLevels(cfg.LogLevel); err != nil {
		return err
	}

	ctlLog.Debugf("Config: workers=%d cache=%d aes_rounds=%d samples=%d",
		cfg.Workers, cfg.CacheSize, cfg.AESRounds, cfg.Samples)
	return nil
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "cipherctl"
	app.Usage = "encrypt, trace and analyze AES, PRESENT, LEA and Piccolo"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:      "config",
			Usage:     "Path to a JSON config file.",
			TakesFile: true,
		},
		cli.StringFlag{
			Name: "debuglevel",
			Usage: "Logging level for all subsystems {trace, debug, " +
				"info, warn, error, critical, off}, optionally " +
				"followed by SUBSYS=level pairs.",
		},
		cli.StringFlag{
			Name:      "logfile",
			Usage:     "Also write logs to this rotating file.",
			TakesFile: true,
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "Worker goroutines for verify (default NumCPU).",
		},
		cli.IntFlag{
			Name:  "rounds",
			Usage: "Reduce AES to this many rounds (1-10).",
		},
		cli.IntFlag{
			Name:  "samples",
			Usage: "Random plaintexts per avalanche measurement.",
		},
	}
	app.Before = loadConfig
	app.After = func(*cli.Context) error {
		closeLogRotator()
		return nil
	}
	app.Commands = []cli.Command{
		encryptCommand,
		decryptCommand,
		scheduleCommand,
		traceCommand,
		verifyCommand,
		avalancheCommand,
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatal(err)
	}
}
