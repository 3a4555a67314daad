package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/onnwee/chat-celebrator/celebrate"
	"github.com/onnwee/chat-celebrator/config"
)

// Celebrator is the engine surface the chat binding drives.
type Celebrator interface {
	Chat(msg celebrate.ChatMessage) bool
	Celebrate(message string) bool
	AddKeyword(kw string) bool
	Keywords() []string
}

// speaker sends a chat line to a channel. *twitch.Client satisfies it.
type speaker interface {
	Say(channel, text string)
}

// Listen connects to Twitch IRC and feeds chat into the engine until ctx is
// cancelled. Missing credentials disable the binding with a log line; connect
// errors are logged and the rest of the service keeps running.
func Listen(ctx context.Context, cfg *config.Config, eng Celebrator) {
	if err := cfg.ValidateChatReady(); err != nil {
		slog.Info("twitch creds not set; chat binding disabled", slog.Any("err", err))
		return
	}
	client := twitch.NewClient(cfg.TwitchBotUsername, "oauth:"+cfg.TwitchOAuthToken)
	channel := cfg.TwitchChannel
	botName := strings.ToLower(cfg.TwitchBotUsername)

	client.OnConnect(func() {
		slog.Info("twitch chat connected", slog.String("channel", channel))
		client.Say(channel, "Milestone Celebrator is now active! 🎉")
	})

	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		if strings.ToLower(msg.User.Name) == botName {
			return
		}
		if strings.HasPrefix(msg.Message, "!") && handleCommand(client, cfg, eng, channel, msg) {
			return
		}
		user := msg.User.DisplayName
		if user == "" {
			user = msg.User.Name
		}
		if !eng.Chat(celebrate.ChatMessage{User: user, Text: msg.Message, Timestamp: time.Now().UTC()}) {
			slog.Warn("chat event dropped", slog.String("user", user))
		}
	})

	// Handle context cancellation by closing the client
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		client.Disconnect()
		close(done)
	}()

	client.Join(channel)
	if err := client.Connect(); err != nil && ctx.Err() == nil {
		slog.Error("twitch chat connect error", slog.Any("err", err))
	}
	<-done
}

// handleCommand dispatches a !command line. Returns false when the line is
// not a recognized command and should flow through keyword matching.
func handleCommand(say speaker, cfg *config.Config, eng Celebrator, channel string, msg twitch.PrivateMessage) bool {
	fields := strings.Fields(msg.Message)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToLower(fields[0]) {
	case "!celebrate":
		if !isPrivileged(cfg, msg) {
			return true
		}
		text := strings.TrimSpace(strings.TrimPrefix(msg.Message, fields[0]))
		if text == "" {
			text = "Manual celebration! 🎉"
		}
		if !eng.Celebrate(text) {
			slog.Warn("manual celebration dropped", slog.String("user", msg.User.Name))
		}
	case "!addkeyword":
		if !isPrivileged(cfg, msg) {
			return true
		}
		if len(fields) < 2 {
			say.Say(channel, "Usage: !addkeyword <keyword>")
			return true
		}
		kw := strings.Join(fields[1:], " ")
		if eng.AddKeyword(kw) {
			say.Say(channel, "Now watching for: "+strings.ToLower(kw))
		} else {
			say.Say(channel, "Already watching for: "+strings.ToLower(kw))
		}
	case "!listkeywords":
		say.Say(channel, "Watching for: "+strings.Join(eng.Keywords(), ", "))
	default:
		return false
	}
	return true
}

// isPrivileged reports whether the sender may run mutating commands:
// broadcaster or moderator badge, or the configured owner.
func isPrivileged(cfg *config.Config, msg twitch.PrivateMessage) bool {
	if msg.User.Badges["broadcaster"] > 0 || msg.User.Badges["moderator"] > 0 {
		return true
	}
	return cfg.BotOwner != "" && strings.ToLower(msg.User.Name) == cfg.BotOwner
}
