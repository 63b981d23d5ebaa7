package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	DefaultLogLevel       = "info"
	DefaultMaxLogFileSize = 10
	DefaultMaxLogFiles    = 3
	DefaultCacheSize      = 256
	DefaultAESRounds      = 10
	DefaultSamples        = 256
	DefaultImageScale     = 4
)

// Config holds the tool settings.
type Config struct {
	// Logging
	LogLevel       string `json:"log_level"`
	LogFile        string `json:"log_file"`
	MaxLogFileSize int    `json:"max_log_file_size"` // MB
	MaxLogFiles    int    `json:"max_log_files"`

	// Engine and batch settings
	Workers   int `json:"workers"`
	CacheSize int `json:"cache_size"`
	AESRounds int `json:"aes_rounds"`

	// Diffusion analysis
	Samples    int `json:"samples"`
	ImageScale int `json:"image_scale"`

	// Paths
	VectorsFile string `json:"vectors_file"`
	ReportFile  string `json:"report_file"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.DebugLevel != "" {
		c.LogLevel = flags.DebugLevel
	}
	if flags.LogFile != "" {
		c.LogFile = flags.LogFile
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Samples > 0 {
		c.Samples = flags.Samples
	}
	flags.AESRounds.WhenSome(func(r int) {
		c.AESRounds = r
	})

	// Relative paths are taken from the config file's directory
	if flags.ConfigDir != "" {
		for _, p := range []*string{&c.VectorsFile, &c.ReportFile} {
			if *p != "" && !filepath.IsAbs(*p) {
				*p = filepath.Join(flags.ConfigDir, *p)
			}
		}
	}

	// Defaults
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.MaxLogFileSize <= 0 {
		c.MaxLogFileSize = DefaultMaxLogFileSize
	}
	if c.MaxLogFiles <= 0 {
		c.MaxLogFiles = DefaultMaxLogFiles
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.AESRounds == 0 {
		c.AESRounds = DefaultAESRounds
	}
	if c.Samples <= 0 {
		c.Samples = DefaultSamples
	}
	if c.ImageScale <= 0 {
		c.ImageScale = DefaultImageScale
	}
}

// Validate reports settings that no default can repair.
func (c *Config) Validate() error {
	if c.AESRounds < 1 || c.AESRounds > DefaultAESRounds {
		return fmt.Errorf("config: aes_rounds %d out of range 1..%d",
			c.AESRounds, DefaultAESRounds)
	}
	return nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	DebugLevel string
	LogFile    string
	Workers    int
	Samples    int
	AESRounds  fn.Option[int]

	// ConfigDir is the directory of the loaded config file, if any.
	ConfigDir string
}
