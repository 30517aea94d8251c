// Package main provides the appliance entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/kidbox/internal/app/playback"
	"github.com/osa030/kidbox/internal/infra/audio"
	"github.com/osa030/kidbox/internal/infra/board"
	"github.com/osa030/kidbox/internal/infra/config"
	"github.com/osa030/kidbox/internal/infra/logger"
)

var (
	app        = kingpin.New("kidbox", "Button-driven audio player for children")
	configPath = app.Flag("config", "Path to config file (compiled-in defaults when empty)").Envar("KIDBOX_CONFIG").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
	boardFlag  = app.Flag("board", "Override the board driver (rpio, memory)").Enum("rpio", "memory")

	// list-buttons command
	listButtonsCmd = app.Command("list-buttons", "Print the button map and exit")

	// list-media command
	listMediaCmd = app.Command("list-media", "Scan the media root, report layout problems and exit")
)

func init() {
	// start command (default)
	app.Command("start", "Start the player (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *boardFlag != "" {
		cfg.Board.Driver = *boardFlag
	}

	// Handle list-buttons command
	if command == listButtonsCmd.FullCommand() {
		printButtons(os.Stdout, cfg)
		return
	}

	// Handle list-media command
	if command == listMediaCmd.FullCommand() {
		collections, warnings, err := checkMedia(os.DirFS(cfg.Audio.MediaRoot), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to scan media: %v\n", err)
			os.Exit(1)
		}
		printMedia(os.Stdout, collections, warnings)
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	logCloser, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logCloser.Close()

	if *configPath != "" {
		zlog.Info().Msgf("Loaded config from %s", *configPath)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Player error: %+v", err)
		logCloser.Close()
		os.Exit(1)
	}
}

// run executes the player. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open board
	b, err := board.Open(cfg.Board, buttonPins(cfg))
	if err != nil {
		return errors.Wrap(err, "failed to open board")
	}
	defer func() {
		if err := b.Close(); err != nil {
			zlog.Warn().Err(err).Msg("Failed to close board")
		}
	}()

	// Create audio engine
	engine, err := audio.NewEngine(audio.Config{
		MediaRoot:  cfg.Audio.MediaRoot,
		SampleRate: cfg.Audio.SampleRate,
		ChunkBytes: cfg.Audio.ChunkBytes,
	})
	if err != nil {
		return errors.Wrap(err, "failed to start audio engine")
	}

	// Check media layout (problems are reported, not fatal)
	_, warnings, err := checkMedia(os.DirFS(cfg.Audio.MediaRoot), cfg)
	if err != nil {
		zlog.Warn().Err(err).Msg("Failed to scan media")
	}
	for _, w := range warnings {
		zlog.Warn().Msgf("Media layout: %s", w)
	}

	ctrl := newController(cfg, b, engine)
	defer ctrl.Close()

	go logEvents(ctrl.Events())

	if err := ctrl.Run(ctx); err != nil {
		return errors.Wrap(err, "playback loop failed")
	}

	zlog.Info().Msg("Player stopped")
	return nil
}

// logEvents writes playback events to the log until the channel is closed.
func logEvents(events <-chan playback.Event) {
	for e := range events {
		switch e.Type {
		case playback.EventTrackFailed:
			zlog.Warn().Err(e.Err).Msgf("event: %s item=%s", e.Type, e.Request)
		case playback.EventVolumeChanged:
			zlog.Debug().Msgf("event: %s volume=%d", e.Type, e.Volume)
		default:
			zlog.Info().Msgf("event: %s item=%s", e.Type, e.Request)
		}
	}
}
