package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"turbocraft/internal/config"
	"turbocraft/internal/game"
	"turbocraft/internal/input"
	"turbocraft/internal/metrics"
	"turbocraft/internal/netchat"
	"turbocraft/internal/persistence"
	"turbocraft/internal/registry"
	"turbocraft/internal/render"

	"github.com/xlab/closer"
)

func main() {
	cfg := config.Default()

	configPath := flag.String("config", "", "path to a YAML config file (default $"+config.EnvConfigPath+")")
	flag.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "chunk edge length in blocks")
	flag.IntVar(&cfg.RenderDistance, "render-distance", cfg.RenderDistance, "chunks kept generated around the player")
	flag.IntVar(&cfg.EvictDistance, "evict-distance", cfg.EvictDistance, "hide chunks beyond this many chunks (0 = never)")
	flag.StringVar(&cfg.GameMode, "mode", cfg.GameMode, "starting game mode: creative or survival")
	flag.StringVar(&cfg.DestroyPolicy, "destroy-policy", cfg.DestroyPolicy, "creative-only or always")
	flag.StringVar(&cfg.SaveDir, "save-dir", cfg.SaveDir, "directory holding the save files")
	flag.BoolVar(&cfg.CompressSaves, "compress", cfg.CompressSaves, "zstd-compress save files")
	flag.StringVar(&cfg.PlayerName, "name", cfg.PlayerName, "player name announced to the chat server")
	flag.StringVar(&cfg.ServerAddress, "server", cfg.ServerAddress, "chat server address")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	fromFile, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	config.Merge(cfg, fromFile, explicit)
	if err := cfg.Normalize(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	registry.InitRegistry()

	m := metrics.New()
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = m.Serve(cfg.MetricsAddr, log)
	}

	storage, err := persistence.New(cfg.SaveDir, persistence.Options{
		WorldFile:     cfg.WorldFile,
		InventoryFile: cfg.InventoryFile,
		Compress:      cfg.CompressSaves,
	}, log)
	if err != nil {
		log.Error("open save directory", "error", err)
		os.Exit(1)
	}

	engine := render.NewHeadless(log, cfg.GroundY-64)
	chat := netchat.NewClient(cfg.ServerAddress, cfg.PlayerName, cfg.DialTimeout, log)
	session, err := game.NewSession(game.Options{
		Config:  cfg,
		Engine:  engine,
		Storage: storage,
		Chat:    chat,
		Metrics: m,
		Log:     log,
	})
	if err != nil {
		log.Error("create session", "error", err)
		os.Exit(1)
	}

	im := input.NewInputManager()
	if err := im.Rebind(cfg.KeyBindings); err != nil {
		log.Warn("key bindings", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	closer.Bind(func() {
		cancel()
		<-done
		if err := session.SaveAll(); err != nil {
			log.Error("save on shutdown", "error", err)
		}
		chat.Close()
		storage.Close()
		metrics.Shutdown(metricsSrv, 2*time.Second)
		log.Info("bye")
	})

	l := newLoop(cfg, session, engine, im, os.Stdout, log)
	go func() {
		if err := l.run(ctx, os.Stdin); err != nil {
			log.Error("update loop", "error", err)
		}
		close(done)
		closer.Close()
	}()
	closer.Hold()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
