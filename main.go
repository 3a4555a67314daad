// Command chat-celebrator watches a Twitch channel for celebration
// triggers and reacts with terminal particle effects, a fanfare, and
// optional text-to-speech. It:
//   - Loads configuration and initializes structured logging.
//   - Joins Twitch chat and matches keywords against per-keyword,
//     per-user, and global cooldowns.
//   - Polls the Helix API for viewer counts and fires milestone
//     celebrations.
//   - Renders celebrations on a tcell overlay and fans them out to
//     websocket subscribers.
//   - Exposes an HTTP server with /healthz, /status, /metrics,
//     /celebrate, and /ws.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // G108: pprof endpoints enabled only when ENABLE_PPROF=1
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"

	"github.com/onnwee/chat-celebrator/audio"
	"github.com/onnwee/chat-celebrator/celebrate"
	"github.com/onnwee/chat-celebrator/chat"
	"github.com/onnwee/chat-celebrator/config"
	"github.com/onnwee/chat-celebrator/effects"
	"github.com/onnwee/chat-celebrator/history"
	"github.com/onnwee/chat-celebrator/overlay"
	"github.com/onnwee/chat-celebrator/server"
	"github.com/onnwee/chat-celebrator/telemetry"
	"github.com/onnwee/chat-celebrator/twitchapi"
	"github.com/onnwee/chat-celebrator/viewer"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", map[bool]string{true: "json", false: "text"}[format == "json"]))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdownTracing, err := telemetry.InitTracing("chat-celebrator", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdownTracing()

	// Best-effort: fetch a Twitch app access token (client-credentials) if client id/secret provided.
	// This token is used for Helix viewer polling. It is NOT used for IRC chat.
	tokenSource := &twitchapi.TokenSource{ClientID: cfg.TwitchClientID, ClientSecret: cfg.TwitchClientSecret}
	if cfg.TwitchClientID != "" && cfg.TwitchClientSecret != "" {
		tctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		if tok, err := tokenSource.Get(tctx); err != nil {
			slog.Warn("twitch app token fetch failed", slog.Any("err", err))
		} else if len(tok) > 6 {
			masked := "***" + tok[len(tok)-6:]
			slog.Info("twitch app token acquired", slog.String("tail", masked))
		}
		cancel()
	}

	// History store (optional; DB_DSN empty disables it)
	var store *history.Store
	if cfg.DBDsn != "" {
		store, err = history.Open(cfg.DBDsn)
		if err != nil {
			slog.Error("failed to open db", slog.Any("err", err))
			os.Exit(1)
		}
		defer func() {
			if err := store.Close(); err != nil {
				slog.Error("failed to close database", slog.Any("err", err))
			}
		}()
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := store.Migrate(migrateCtx); err != nil {
			cancel()
			slog.Error("failed to migrate db", slog.Any("err", err))
			os.Exit(1)
		}
		cancel()
		slog.Info("celebration history enabled", slog.String("component", "history"))
	} else {
		slog.Info("DB_DSN not set, celebration history disabled")
	}

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Audio: fanfare player plus optional TTS worker. Audio failures
	// degrade to silence, never abort startup.
	player := audio.NewPlayer()
	if cfg.SoundEnabled {
		if err := player.Initialize(); err != nil {
			slog.Warn("audio init failed, running silent", slog.Any("err", err))
		} else if cfg.SoundFile != "" {
			if err := player.LoadSound(cfg.SoundFile); err != nil {
				slog.Warn("celebration sound load failed, using generated fanfare", slog.String("path", cfg.SoundFile), slog.Any("err", err))
			}
		}
	}
	var speech *audio.Worker
	if cfg.TTSEnabled {
		speech = audio.NewWorker(player, cfg.TTSEndpoint, cfg.TTSLanguage, cfg.CacheDir, 0)
		go speech.Run(ctx)
	}
	announcer := &audio.Announcer{Player: player, Speech: speech, SoundEnabled: cfg.SoundEnabled}

	// Websocket hub for overlay pages and other subscribers
	hub := server.NewHub()

	// Engine: owns all trigger state
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engOpts := celebrate.Options{
		Keywords: celebrate.NewKeywordTracker(
			cfg.Keywords, cfg.Variants,
			cfg.KeywordCooldown, cfg.UserCooldown, cfg.GlobalCooldown, rng),
		Milestones:  celebrate.NewMilestoneTracker(cfg.Milestones),
		Announcer:   announcer,
		Broadcaster: hub,
	}
	if store != nil {
		engOpts.Store = store
	}
	eng := celebrate.NewEngine(engOpts)
	go eng.Run(ctx)

	// Twitch chat listener
	if err := cfg.ValidateChatReady(); err == nil {
		go chat.Listen(ctx, cfg, eng)
	} else {
		slog.Info("chat listener disabled", slog.Any("reason", err))
	}

	// Viewer count poller (needs Helix credentials and a channel)
	if cfg.TwitchClientID != "" && cfg.TwitchClientSecret != "" && cfg.TwitchChannel != "" {
		helix := &twitchapi.Client{AppTokenSource: tokenSource, ClientID: cfg.TwitchClientID}
		go viewer.Poll(ctx, helix, eng, cfg.TwitchChannel, cfg.ViewerPollInterval)
	} else {
		slog.Info("viewer polling disabled (missing helix creds or channel)")
	}

	// Overlay render loop. A failed screen init falls back to headless so
	// websocket subscribers still get celebrations.
	var screen tcell.Screen
	if cfg.OverlayEnabled {
		screen, err = overlay.NewScreen()
		if err != nil {
			slog.Warn("overlay screen init failed, running headless", slog.Any("err", err))
			screen = nil
		}
	}
	loop := overlay.NewLoop(overlay.Options{
		Screen:            screen,
		Manager:           effects.NewManager(cfg.Palette, rng),
		Celebrations:      eng.Celebrations(),
		FPS:               cfg.OverlayFPS,
		AnimationDuration: cfg.AnimationDuration,
		Stop:              stop,
	})
	go loop.Run(ctx)

	// Enable pprof profiling endpoints in debug mode (ENABLE_PPROF=1)
	if os.Getenv("ENABLE_PPROF") == "1" {
		pprofAddr := os.Getenv("PPROF_ADDR")
		if pprofAddr == "" {
			pprofAddr = "localhost:6060"
		}
		go func() {
			slog.Info("pprof profiling enabled", slog.String("addr", pprofAddr))
			srv := &http.Server{
				Addr:              pprofAddr,
				Handler:           nil, // default mux exposes /debug/pprof
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("pprof server error", slog.Any("err", err))
			}
		}()
	}

	// HTTP server (health/status/metrics/celebrate/ws)
	srvOpts := server.Options{
		Addr:       cfg.HTTPAddr,
		AdminToken: cfg.AdminToken,
		Engine:     eng,
		Hub:        hub,
		Channel:    cfg.TwitchChannel,
	}
	if store != nil {
		srvOpts.Store = store
	}
	go func() {
		if err := server.Start(ctx, srvOpts); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}
