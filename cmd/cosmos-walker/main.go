// Command cosmos-walker explores a procedurally generated star system from the
// terminal, or serves and exports its surfaces.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/ali-sdg/cosmos-walker/internal/archive"
	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/config"
	"github.com/ali-sdg/cosmos-walker/internal/guide"
	"github.com/ali-sdg/cosmos-walker/internal/logging"
	"github.com/ali-sdg/cosmos-walker/internal/noise"
	"github.com/ali-sdg/cosmos-walker/internal/orbit"
	"github.com/ali-sdg/cosmos-walker/internal/scatter"
	"github.com/ali-sdg/cosmos-walker/internal/server"
	"github.com/ali-sdg/cosmos-walker/internal/state"
	"github.com/ali-sdg/cosmos-walker/internal/surface"
	"github.com/ali-sdg/cosmos-walker/internal/terrain"
	"github.com/ali-sdg/cosmos-walker/internal/ui"
	"github.com/ali-sdg/cosmos-walker/internal/version"
)

func main() {
	cfg := config.Default()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	fs := flag.NewFlagSet("cosmos-walker", flag.ExitOnError)
	showVersion := fs.Bool("version", false, "print version and exit")
	cfg.Bind(fs)
	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Println("cosmos-walker", version.Version)
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(cfg, logger)
	if err := app.run(ctx); err != nil {
		logger.Error("%v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes to stderr, except in TUI mode where the screen belongs to
// the UI: logs go to -log-file or are discarded.
func newLogger(cfg *config.Config) (*logging.Logger, func(), error) {
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	if cfg.Mode != config.ModeTUI {
		return logger, func() {}, nil
	}
	if cfg.LogFile == "" {
		logger.SetOutput(io.Discard)
		return logger, func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, func() { f.Close() }, nil
}

type app struct {
	cfg     *config.Config
	log     *logging.Logger
	terrain *terrain.Context
	guide   *guide.Service
	images  archive.Finder
}

func newApp(cfg *config.Config, logger *logging.Logger) *app {
	field := noise.NewRandom()
	if cfg.Seed != 0 {
		field = noise.NewSeeded(cfg.Seed)
	}
	logger.Info("%s, terrain seed %d", version.UserAgent(), field.Seed())

	// Without a key the guide falls back to catalog text.
	var gen guide.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gen = guide.NewGeminiClient(
			guide.WithAPIKey(cfg.GeminiAPIKey),
			guide.WithModel(cfg.GeminiModel),
			guide.WithBaseURL(cfg.GeminiURL),
			guide.WithTimeout(cfg.RequestTimeout),
		)
	} else {
		logger.Warn("no Gemini API key set; descriptions use catalog text")
	}

	return &app{
		cfg:     cfg,
		log:     logger,
		terrain: terrain.NewContext(field),
		guide:   guide.NewService(gen, cfg.Language, logger),
		images: archive.NewNASAClient(
			archive.WithURL(cfg.NASAURL),
			archive.WithTimeout(cfg.RequestTimeout),
			archive.WithLogger(logger),
		),
	}
}

func (a *app) run(ctx context.Context) error {
	switch a.cfg.Mode {
	case config.ModeServe:
		return a.serve(ctx)
	case config.ModeExport:
		return a.export()
	case config.ModeDescribe:
		return a.describe(ctx)
	default:
		return a.tui(ctx)
	}
}

// scatterer draws rocks from a stream tied to the terrain seed, so a fixed
// -seed reproduces the whole surface.
func (a *app) scatterer() *scatter.Scatterer {
	seed := a.terrain.Field().Seed()
	return scatter.New(a.terrain, rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (a *app) tui(ctx context.Context) error {
	seed := a.terrain.Field().Seed()
	model := ui.New(ui.Deps{
		State:     state.NewManager(state.DefaultConfig()),
		Guide:     a.guide,
		Images:    a.images,
		Scene:     orbit.NewScene(catalog.All(), rand.NewPCG(seed, 1)),
		Terrain:   a.terrain,
		Scatterer: a.scatterer(),
		Mesh:      a.cfg.Mesh(),
		Frame:     a.cfg.FrameInterval(),
		Timeout:   a.cfg.RequestTimeout,
		Logger:    a.log,
	})
	if a.cfg.Planet != "" {
		var err error
		if model, err = model.Land(strings.ToLower(a.cfg.Planet)); err != nil {
			return err
		}
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

func (a *app) serve(ctx context.Context) error {
	srv := server.New(server.Config{
		Terrain: a.terrain,
		Mesh:    a.cfg.Mesh(),
		Frame:   a.cfg.FrameInterval(),
		Guide:   a.guide,
		Images:  a.images,
		Timeout: a.cfg.RequestTimeout,
		Logger:  a.log,
	})
	return srv.ListenAndServe(ctx, a.cfg.Addr)
}

func (a *app) body() (catalog.Body, error) {
	id := strings.ToLower(a.cfg.Planet)
	b, ok := catalog.ByID(id)
	if !ok {
		return b, fmt.Errorf("unknown body %q", a.cfg.Planet)
	}
	return b, nil
}

func (a *app) export() error {
	b, err := a.body()
	if err != nil {
		return err
	}
	if !b.Kind.Landable() {
		return fmt.Errorf("%s has no surface to export", b.DisplayName)
	}

	mesh := surface.New(a.terrain, a.cfg.Mesh())
	mesh.Build(b)
	rocks := a.scatterer().ScatterAll(b, scatter.DefaultLayers())
	export := surface.Export(mesh, rocks)

	if a.cfg.Out == "-" {
		if err := export.WriteJSON(os.Stdout); err != nil {
			return fmt.Errorf("write JSON to stdout: %w", err)
		}
	} else {
		f, err := os.Create(a.cfg.Out)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		if err := export.WriteJSON(f); err != nil {
			return fmt.Errorf("write JSON to file: %w", err)
		}
		a.log.Info("wrote %s", a.cfg.Out)
	}

	if term.IsTerminal(int(os.Stderr.Fd())) {
		surface.WriteSummary(os.Stderr, mesh, rocks)
	}
	return nil
}

func (a *app) describe(ctx context.Context) error {
	b, err := a.body()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()

	fmt.Printf("%s (%s)\n", b.DisplayName, b.Kind)
	fmt.Println(strings.Repeat("─", 40))
	fmt.Println(a.guide.Describe(ctx, b))
	if img := a.images.FindImage(ctx, b.Name); img != nil {
		fmt.Println()
		fmt.Printf("%-7s %s\n", "Image", img.Title)
		if img.Date != "" {
			fmt.Printf("%-7s %s\n", "Date", img.Date)
		}
		fmt.Printf("%-7s %s\n", "URL", img.URL)
	}
	return nil
}
