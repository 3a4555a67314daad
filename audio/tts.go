package audio

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/onnwee/chat-celebrator/telemetry"
)

// mp3Player plays one mp3 file to completion. *Player satisfies it.
type mp3Player interface {
	PlayMP3Sync(path string) error
}

// Worker synthesizes and speaks celebration messages. A single goroutine
// consumes the bounded queue so announcements never overlap on the device.
type Worker struct {
	queue    chan string
	endpoint string
	language string
	cacheDir string
	client   *http.Client
	player   mp3Player
}

// NewWorker builds a speech worker. endpoint is the TTS HTTP service;
// synthesized clips are cached under cacheDir keyed by md5(text_language).
func NewWorker(player mp3Player, endpoint, language, cacheDir string, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Worker{
		queue:    make(chan string, queueSize),
		endpoint: endpoint,
		language: language,
		cacheDir: cacheDir,
		client:   &http.Client{},
		player:   player,
	}
}

// Announce enqueues text for speech. Returns false when the queue is full
// and the announcement was dropped.
func (w *Worker) Announce(text string) bool {
	select {
	case w.queue <- text:
		return true
	default:
		if telemetry.SpeechDropped != nil {
			telemetry.SpeechDropped.Inc()
		}
		slog.Warn("speech queue full; dropping announcement", slog.String("text", text))
		return false
	}
}

// Run consumes the queue serially until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	slog.Info("speech worker started", slog.String("language", w.language))
	for {
		select {
		case <-ctx.Done():
			slog.Info("speech worker stopped")
			return
		case text := <-w.queue:
			w.speak(ctx, text)
		}
	}
}

func (w *Worker) speak(ctx context.Context, text string) {
	path, err := w.synthesize(ctx, text)
	if err != nil {
		if telemetry.SpeechFailed != nil {
			telemetry.SpeechFailed.Inc()
		}
		slog.Warn("speech synthesis failed", slog.Any("err", err), slog.String("text", text))
		return
	}
	if err := w.player.PlayMP3Sync(path); err != nil {
		if telemetry.SpeechFailed != nil {
			telemetry.SpeechFailed.Inc()
		}
		slog.Warn("speech playback failed", slog.Any("err", err))
		return
	}
	if telemetry.SpeechPlayed != nil {
		telemetry.SpeechPlayed.Inc()
	}
}

// synthesize returns the path of the cached clip for text, fetching it from
// the TTS endpoint on a cache miss.
func (w *Worker) synthesize(ctx context.Context, text string) (string, error) {
	path := filepath.Join(w.cacheDir, w.cacheKey(text)+".mp3")
	if _, err := os.Stat(path); err == nil {
		slog.Debug("speech cache hit", slog.String("path", path))
		return path, nil
	}
	if w.endpoint == "" {
		return "", fmt.Errorf("no TTS endpoint configured")
	}
	if err := os.MkdirAll(w.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	var fetchErr error
	telemetry.TimeFunc(telemetry.SpeechSynthesisDuration, func() {
		fetchErr = w.fetch(ctx, text, path)
	})
	if fetchErr != nil {
		return "", fetchErr
	}
	return path, nil
}

func (w *Worker) fetch(ctx context.Context, text, path string) error {
	u, err := url.Parse(w.endpoint)
	if err != nil {
		return fmt.Errorf("bad TTS endpoint: %w", err)
	}
	q := u.Query()
	q.Set("text", text)
	q.Set("lang", w.language)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts request failed: %s", resp.Status)
	}

	// Write to a temp file first so a failed download never poisons the cache.
	tmp, err := os.CreateTemp(w.cacheDir, "tts-*.part")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (w *Worker) cacheKey(text string) string {
	sum := md5.Sum([]byte(text + "_" + w.language))
	return hex.EncodeToString(sum[:])
}
