// Command snek plays Snake in the terminal. Steer with the keyboard, the
// on-screen D-pad or joystick (mouse), or a phone via -remote.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snekpad/game"
	"github.com/brensch/snekpad/logging"
	"github.com/brensch/snekpad/remote"
	"github.com/brensch/snekpad/replay"
	"github.com/brensch/snekpad/session"
	"github.com/brensch/snekpad/tui"
)

type options struct {
	cols, rows, wall int
	tick             time.Duration
	controls         string
	autoRestart      bool
	remoteAddr       string
	recordDir        string
	logPath          string
	logFormat        string
	logLevel         string
	seed             int64
}

func main() {
	def := game.DefaultConfig()
	var o options
	flag.IntVar(&o.cols, "cols", getEnvIntOrDefault("SNEK_COLS", def.Cols), "Board width in cells, walls included")
	flag.IntVar(&o.rows, "rows", getEnvIntOrDefault("SNEK_ROWS", def.Rows), "Board height in cells, walls included")
	flag.IntVar(&o.wall, "wall", getEnvIntOrDefault("SNEK_WALL", def.Wall), "Wall thickness in cells")
	flag.DurationVar(&o.tick, "tick", getEnvDurationOrDefault("SNEK_TICK", def.Tick), "Time between moves")
	flag.StringVar(&o.controls, "controls", getEnvOrDefault("SNEK_CONTROLS", "joystick"), "On-screen controls: joystick or dpad")
	flag.BoolVar(&o.autoRestart, "auto-restart", getEnvBoolOrDefault("SNEK_AUTO_RESTART", false), "Start a new game as soon as one ends")
	flag.StringVar(&o.remoteAddr, "remote", getEnvOrDefault("SNEK_REMOTE", ""), "Serve the phone pad on this address, e.g. :8080")
	flag.StringVar(&o.recordDir, "record-dir", getEnvOrDefault("SNEK_RECORD_DIR", ""), "Write session frames as .parquet files to this directory")
	flag.StringVar(&o.logPath, "log-path", getEnvOrDefault("SNEK_LOG_PATH", "snek.log"), "Log file")
	flag.StringVar(&o.logFormat, "log-format", getEnvOrDefault("SNEK_LOG_FORMAT", logging.FormatText), "Log format: text, json or pretty")
	flag.StringVar(&o.logLevel, "log-level", getEnvOrDefault("SNEK_LOG_LEVEL", "info"), "Log level: debug, info, warn or error")
	flag.Int64Var(&o.seed, "seed", getEnvInt64OrDefault("SNEK_SEED", 0), "Food placement seed, 0 picks one from the clock")
	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("snek: %v", err)
	}
}

func (o options) gameConfig() game.Config {
	cfg := game.DefaultConfig()
	cfg.Cols, cfg.Rows, cfg.Wall, cfg.Tick = o.cols, o.rows, o.wall, o.tick
	return cfg
}

func run(o options) error {
	controls, ok := tui.ParseControls(o.controls)
	if !ok {
		return fmt.Errorf("unknown controls %q", o.controls)
	}
	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	logFile, err := logging.OpenFile(o.logPath)
	if err != nil {
		return err
	}
	defer logFile.Close()
	handler, err := logging.NewHandler(logFile, o.logFormat, level)
	if err != nil {
		return err
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	seed := o.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg := o.gameConfig()
	logger.Info("starting snek",
		"cols", cfg.Cols,
		"rows", cfg.Rows,
		"wall", cfg.Wall,
		"tick", cfg.Tick,
		"controls", controls.String(),
		"seed", seed,
	)

	sessionOpts := []session.Option{
		session.WithRand(rand.New(rand.NewSource(seed))),
		session.WithLogger(logger.With("component", "session")),
		session.WithAutoRestart(o.autoRestart),
	}

	var writer *replay.Writer
	if o.recordDir != "" {
		writer, err = replay.NewWriter(o.recordDir, replay.WithWriterLogger(logger.With("component", "replay")))
		if err != nil {
			return err
		}
		sessionOpts = append(sessionOpts, session.WithRecorder(writer))
	}

	ctrl, err := session.New(cfg, sessionOpts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = ctrl.Run(ctx)
	}()

	remoteDone := make(chan error, 1)
	if o.remoteAddr != "" {
		srv := remote.NewServer(ctrl, remote.WithLogger(logger.With("component", "remote")))
		go func() { remoteDone <- srv.ListenAndServe(ctx, o.remoteAddr) }()
	} else {
		remoteDone <- nil
	}

	updates, cancel := ctrl.Subscribe()
	model := tui.New(ctrl, updates, ctrl.Snapshot(), controls)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, uiErr := p.Run()

	stop()
	cancel()
	<-runDone
	remoteErr := <-remoteDone

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("replay flush failed", "error", err)
		}
		logger.Info("replay closed", "dir", o.recordDir, "frames_written", writer.Written(), "frames_dropped", writer.Dropped())
	}

	final := ctrl.Snapshot()
	fmt.Printf("Final score: %d\n", final.Score)

	if uiErr != nil && ctx.Err() == nil {
		return fmt.Errorf("ui: %w", uiErr)
	}
	return remoteErr
}
