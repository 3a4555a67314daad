// Package viewer polls the Twitch Helix API for the channel's live viewer
// count and feeds samples to the celebration engine.
package viewer

import (
	"context"
	"log/slog"
	"time"

	"github.com/onnwee/chat-celebrator/telemetry"
	"github.com/onnwee/chat-celebrator/twitchapi"
)

// StreamAPI is the Helix surface the poller needs.
type StreamAPI interface {
	GetStream(ctx context.Context, login string) (*twitchapi.Stream, error)
}

// Sampler receives viewer-count samples.
type Sampler interface {
	ViewerCount(n int) bool
}

// Poll samples the channel's viewer count every interval until ctx is
// cancelled. The first poll runs immediately. An offline channel produces
// no sample; transient errors are logged and retried next tick.
func Poll(ctx context.Context, api StreamAPI, eng Sampler, channel string, interval time.Duration) {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	slog.Info("viewer poller started",
		slog.String("channel", channel),
		slog.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		pollOnce(ctx, api, eng, channel)
		select {
		case <-ctx.Done():
			slog.Info("viewer poller stopped")
			return
		case <-ticker.C:
		}
	}
}

func pollOnce(ctx context.Context, api StreamAPI, eng Sampler, channel string) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	stream, err := api.GetStream(cctx, channel)
	if err != nil {
		if telemetry.ViewerPollsFailed != nil {
			telemetry.ViewerPollsFailed.Inc()
		}
		slog.Warn("viewer poll failed", slog.Any("err", err), slog.String("channel", channel))
		return
	}
	if stream == nil {
		slog.Debug("channel offline; no viewer sample", slog.String("channel", channel))
		return
	}
	telemetry.SetViewerCount(stream.ViewerCount)
	if !eng.ViewerCount(stream.ViewerCount) {
		slog.Warn("viewer sample dropped", slog.Int("viewers", stream.ViewerCount))
	}
}
