// Package config holds the command-line and environment configuration.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ali-sdg/cosmos-walker/internal/archive"
	"github.com/ali-sdg/cosmos-walker/internal/guide"
	"github.com/ali-sdg/cosmos-walker/internal/surface"
)

// Mode selects what the binary does.
type Mode string

const (
	ModeTUI      Mode = "tui"
	ModeServe    Mode = "serve"
	ModeExport   Mode = "export"
	ModeDescribe Mode = "describe"
)

const (
	minSegments = 8
	maxSegments = 400
	minFPS      = 5
	maxFPS      = 60

	minTimeout = time.Second
	maxTimeout = 2 * time.Minute
)

// Config represents the command-line parameters for the application.
type Config struct {
	Mode     Mode
	Seed     uint64 // 0 picks a random seed
	Planet   string // start on this body's surface, or describe/export it
	Extent   float64
	Segments int
	FPS      int

	Addr string
	Out  string // export destination; "-" is stdout

	LogLevel string
	LogFile  string

	GeminiAPIKey   string
	GeminiModel    string
	GeminiURL      string
	NASAURL        string
	Language       string
	RequestTimeout time.Duration
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	mesh := surface.DefaultConfig()
	return &Config{
		Mode:           ModeTUI,
		Extent:         mesh.Extent,
		Segments:       mesh.Segments,
		FPS:            30,
		Addr:           "127.0.0.1:8080",
		Out:            "-",
		LogLevel:       "info",
		GeminiModel:    guide.DefaultModel,
		GeminiURL:      guide.DefaultBaseURL,
		NASAURL:        archive.DefaultSearchURL,
		Language:       guide.DefaultLanguage,
		RequestTimeout: 20 * time.Second,
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.Func("mode", "run mode: tui, serve, export, describe (default "+string(c.Mode)+")", func(s string) error {
		m := Mode(strings.ToLower(strings.TrimSpace(s)))
		switch m {
		case ModeTUI, ModeServe, ModeExport, ModeDescribe:
			c.Mode = m
			return nil
		}
		return fmt.Errorf("unknown mode %q", s)
	})
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "terrain seed (0 = random)")
	fs.StringVar(&c.Planet, "planet", c.Planet, "body id to land on, export or describe")
	fs.Float64Var(&c.Extent, "extent", c.Extent, "surface side length in world units")
	fs.IntVar(&c.Segments, "segments", c.Segments, "surface grid cells per side")
	fs.IntVar(&c.FPS, "fps", c.FPS, "frames per second for animation")
	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address for serve mode")
	fs.StringVar(&c.Out, "out", c.Out, "export destination file (- for stdout)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "log file (TUI mode discards logs when empty)")
	fs.StringVar(&c.GeminiModel, "gemini-model", c.GeminiModel, "text generation model")
	fs.StringVar(&c.GeminiURL, "gemini-url", c.GeminiURL, "text generation API root")
	fs.StringVar(&c.NASAURL, "nasa-url", c.NASAURL, "image library search endpoint")
	fs.StringVar(&c.Language, "language", c.Language, "language for descriptions and answers")
	fs.DurationVar(&c.RequestTimeout, "request-timeout", c.RequestTimeout, "timeout for outbound requests")
}

// ApplyEnv reads environment overrides through lookup (os.LookupEnv in
// production). Flags given explicitly should be applied after this.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("GEMINI_API_KEY"); ok && v != "" {
		c.GeminiAPIKey = v
	} else if v, ok := lookup("API_KEY"); ok && v != "" {
		c.GeminiAPIKey = v
	}
	if v, ok := lookup("COSMOS_WALKER_SEED"); ok && v != "" {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("COSMOS_WALKER_SEED: %w", err)
		}
		c.Seed = seed
	}
	return nil
}

// Validate clamps numeric settings to workable ranges and rejects settings
// that cannot be repaired.
func (c *Config) Validate() error {
	if c.Segments < minSegments {
		c.Segments = minSegments
	} else if c.Segments > maxSegments {
		c.Segments = maxSegments
	}
	if c.FPS < minFPS {
		c.FPS = minFPS
	} else if c.FPS > maxFPS {
		c.FPS = maxFPS
	}
	if c.RequestTimeout < minTimeout {
		c.RequestTimeout = minTimeout
	} else if c.RequestTimeout > maxTimeout {
		c.RequestTimeout = maxTimeout
	}
	if c.Extent <= 0 {
		return errors.New("extent must be positive")
	}
	if (c.Mode == ModeExport || c.Mode == ModeDescribe) && strings.TrimSpace(c.Planet) == "" {
		return fmt.Errorf("%s mode needs -planet", c.Mode)
	}
	return nil
}

// Mesh returns the surface grid configuration.
func (c *Config) Mesh() surface.Config {
	return surface.Config{Extent: c.Extent, Segments: c.Segments}
}

// FrameInterval returns the animation tick period.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}
