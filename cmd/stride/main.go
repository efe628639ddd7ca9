package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/console"
	"github.com/Versifine/stride/internal/logger"
	"github.com/Versifine/stride/internal/physics"
	"github.com/Versifine/stride/internal/session"
	"github.com/Versifine/stride/internal/telemetry"
	"github.com/gdamore/tcell/v2"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "stride:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	watchable := err == nil
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return err
	}

	logFile, err := logger.Open(cfg.Logging.File, logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return err
	}
	defer logFile.Close()
	if !watchable {
		slog.Warn("Config file not found, using defaults", "path", configPath)
	}

	level, err := loadLevel(cfg)
	if err != nil {
		return err
	}
	world, err := level.Build()
	if err != nil {
		return fmt.Errorf("build level %q: %w", level.Name, err)
	}
	slog.Info("Level loaded", "name", level.Name, "colliders", len(world.Colliders()))

	a, err := newApp(configPath, cfg, level, world)
	if err != nil {
		return err
	}
	defer a.close()

	if cfg.Audio.Enabled {
		if err := a.audio.Init(); err != nil {
			slog.Warn("Audio unavailable, footsteps are recorded only", "error", err)
		}
	}

	if cfg.Session.Enabled {
		store, err := session.Open(cfg.Session.AppName)
		if err != nil {
			slog.Warn("Session storage unavailable", "error", err)
		} else {
			a.restoreSession(store, levelKey(cfg, level))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchable {
		w, err := config.Watch(configPath, a.queueReload)
		if err != nil {
			slog.Warn("Config watch disabled", "error", err)
		} else {
			defer w.Close()
		}
	}

	if cfg.Metrics.Addr != "" {
		go a.telemetry.Run(ctx)
		go func() {
			if err := telemetry.Serve(ctx, cfg.Metrics.Addr, a.telemetry.Router()); err != nil {
				slog.Error("Telemetry server stopped", "error", err)
			}
		}()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	c, err := console.New(screen, world, a, cfg.Frame.Rate)
	if err != nil {
		return err
	}
	return c.Run(ctx)
}

func loadLevel(cfg *config.Config) (*physics.Level, error) {
	if cfg.World.Level == "" {
		return physics.DefaultLevel(), nil
	}
	level, err := physics.LoadLevelFile(cfg.World.Level)
	if err != nil {
		return nil, err
	}
	if cfg.World.CellSize > 0 {
		level.CellSize = cfg.World.CellSize
	}
	return level, nil
}

// levelKey names the level a session belongs to.
func levelKey(cfg *config.Config, level *physics.Level) string {
	if cfg.World.Level != "" {
		return cfg.World.Level
	}
	return level.Name
}
