// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// For required credentials (e.g., Twitch chat), use ValidateChatReady.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/onnwee/chat-celebrator/effects"
)

type Config struct {
	// Twitch
	TwitchChannel      string
	TwitchBotUsername  string
	TwitchOAuthToken   string
	TwitchClientID     string
	TwitchClientSecret string
	BotOwner           string

	// Triggers
	Keywords        []string
	Variants        map[string][]string
	Milestones      []int
	KeywordCooldown time.Duration
	UserCooldown    time.Duration
	GlobalCooldown  time.Duration

	// Viewer polling
	ViewerPollInterval time.Duration

	// Overlay
	OverlayEnabled    bool
	OverlayFPS        int
	AnimationDuration time.Duration
	Palette           []effects.Color

	// Audio
	SoundEnabled bool
	SoundFile    string
	TTSEnabled   bool
	TTSLanguage  string
	TTSEndpoint  string
	CacheDir     string

	// HTTP
	HTTPAddr   string
	AdminToken string

	// Database (empty disables the history store)
	DBDsn string
}

// defaultVariants maps each built-in keyword to the reactions the bot
// rotates through when that keyword fires.
var defaultVariants = map[string][]string{
	"poggers": {"pogchamp", "pog", "pogU", "poggers", "pogchampion"},
	"lets go": {"lets go", "less go", "leggo", "lfg", "lez go"},
	"gg":      {"gg", "good game", "well played", "wp", "ggwp"},
	"wp":      {"wp", "well played", "good game", "gg", "ggwp"},
	"lol":     {"lol", "lmao", "lmfao", "lul", "haha"},
	"lulw":    {"lulw", "lul", "kekw", "lmao", "lol"},
}

// Load reads environment variables and applies defaults. It doesn't fail if Twitch creds are
// missing; use ValidateChatReady() when you require the chat binding. Malformed values
// (bad durations, non-integer milestones) are errors.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.TwitchChannel = os.Getenv("TWITCH_CHANNEL")
	cfg.TwitchBotUsername = os.Getenv("TWITCH_BOT_USERNAME")
	cfg.TwitchOAuthToken = strings.TrimPrefix(os.Getenv("TWITCH_OAUTH_TOKEN"), "oauth:")
	cfg.TwitchClientID = os.Getenv("TWITCH_CLIENT_ID")
	cfg.TwitchClientSecret = os.Getenv("TWITCH_CLIENT_SECRET")
	cfg.BotOwner = strings.ToLower(os.Getenv("BOT_OWNER"))

	cfg.Keywords = csvStrings(os.Getenv("CHAT_KEYWORDS"), []string{"poggers", "lets go", "gg", "wp", "lol", "lulw"})
	cfg.Variants = defaultVariants

	var err error
	if cfg.Milestones, err = csvInts(os.Getenv("VIEWER_MILESTONES"), []int{1, 5, 10, 25, 50, 100}); err != nil {
		return nil, fmt.Errorf("invalid VIEWER_MILESTONES: %w", err)
	}

	if cfg.KeywordCooldown, err = envDuration("KEYWORD_COOLDOWN", 300*time.Second); err != nil {
		return nil, err
	}
	if cfg.UserCooldown, err = envDuration("USER_COOLDOWN", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.GlobalCooldown, err = envDuration("GLOBAL_COOLDOWN", time.Second); err != nil {
		return nil, err
	}
	if cfg.ViewerPollInterval, err = envDuration("VIEWER_POLL_INTERVAL", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.AnimationDuration, err = envDuration("ANIMATION_DURATION", 8*time.Second); err != nil {
		return nil, err
	}

	cfg.OverlayEnabled = envBool("OVERLAY_ENABLED", true)
	if cfg.OverlayFPS, err = envInt("OVERLAY_FPS", 60); err != nil {
		return nil, err
	}
	if cfg.OverlayFPS <= 0 {
		return nil, fmt.Errorf("invalid OVERLAY_FPS: must be positive")
	}

	if cfg.Palette, err = parsePalette(os.Getenv("OVERLAY_PALETTE")); err != nil {
		return nil, fmt.Errorf("invalid OVERLAY_PALETTE: %w", err)
	}

	cfg.SoundEnabled = envBool("SOUND_ENABLED", true)
	cfg.SoundFile = os.Getenv("SOUND_FILE")
	cfg.TTSEnabled = envBool("TTS_ENABLED", true)
	cfg.TTSLanguage = os.Getenv("TTS_LANGUAGE")
	if cfg.TTSLanguage == "" {
		cfg.TTSLanguage = "en"
	}
	cfg.TTSEndpoint = os.Getenv("TTS_ENDPOINT")
	cfg.CacheDir = os.Getenv("CACHE_DIR")
	if cfg.CacheDir == "" {
		cfg.CacheDir = "cache/tts"
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	cfg.AdminToken = os.Getenv("ADMIN_TOKEN")

	cfg.DBDsn = os.Getenv("DB_DSN")

	return cfg, nil
}

// ValidateChatReady checks required fields when the chat binding is enabled.
func (c *Config) ValidateChatReady() error {
	if c.TwitchChannel == "" || c.TwitchBotUsername == "" || c.TwitchOAuthToken == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CHANNEL, TWITCH_BOT_USERNAME, TWITCH_OAUTH_TOKEN")
	}
	return nil
}

func csvStrings(v string, def []string) []string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.ToLower(strings.TrimSpace(part)); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func csvInts(v string, def []int) ([]int, error) {
	if strings.TrimSpace(v) == "" {
		return def, nil
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		s := strings.TrimSpace(part)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", s)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return def, nil
	}
	return out, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	// Accept both Go durations ("90s", "2m") and bare seconds ("90").
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, def bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

// parsePalette parses a csv of #rrggbb colors. Empty input keeps the
// built-in palette.
func parsePalette(v string) ([]effects.Color, error) {
	if strings.TrimSpace(v) == "" {
		return effects.DefaultPalette, nil
	}
	var out []effects.Color
	for _, part := range strings.Split(v, ",") {
		s := strings.TrimPrefix(strings.TrimSpace(part), "#")
		if len(s) != 6 {
			return nil, fmt.Errorf("%q is not an #rrggbb color", part)
		}
		n, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%q is not an #rrggbb color", part)
		}
		out = append(out, effects.Color{
			R: uint8(n >> 16),
			G: uint8(n >> 8),
			B: uint8(n),
			A: 255,
		})
	}
	return out, nil
}
