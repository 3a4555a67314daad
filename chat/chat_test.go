package chat

import (
	"strings"
	"testing"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/onnwee/chat-celebrator/celebrate"
	"github.com/onnwee/chat-celebrator/config"
)

type fakeCelebrator struct {
	chats        []celebrate.ChatMessage
	celebrations []string
	added        []string
	keywords     []string
}

func (f *fakeCelebrator) Chat(msg celebrate.ChatMessage) bool {
	f.chats = append(f.chats, msg)
	return true
}
func (f *fakeCelebrator) Celebrate(message string) bool {
	f.celebrations = append(f.celebrations, message)
	return true
}
func (f *fakeCelebrator) AddKeyword(kw string) bool {
	kw = strings.ToLower(kw)
	for _, k := range f.keywords {
		if k == kw {
			return false
		}
	}
	f.added = append(f.added, kw)
	f.keywords = append(f.keywords, kw)
	return true
}
func (f *fakeCelebrator) Keywords() []string { return f.keywords }

type fakeSpeaker struct{ said []string }

func (f *fakeSpeaker) Say(channel, text string) { f.said = append(f.said, text) }

func privMsg(user, text string, badges map[string]int) twitch.PrivateMessage {
	return twitch.PrivateMessage{
		User:    twitch.User{Name: user, DisplayName: user, Badges: badges},
		Message: text,
	}
}

func modBadges() map[string]int { return map[string]int{"moderator": 1} }

func TestCelebrateCommandRequiresPrivilege(t *testing.T) {
	cfg := &config.Config{}
	eng := &fakeCelebrator{}
	say := &fakeSpeaker{}

	handled := handleCommand(say, cfg, eng, "chan", privMsg("viewer", "!celebrate", nil))
	if !handled {
		t.Error("unprivileged !celebrate not swallowed")
	}
	if len(eng.celebrations) != 0 {
		t.Error("unprivileged user triggered a celebration")
	}

	handleCommand(say, cfg, eng, "chan", privMsg("mod", "!celebrate", modBadges()))
	if len(eng.celebrations) != 1 || eng.celebrations[0] != "Manual celebration! 🎉" {
		t.Errorf("celebrations = %v", eng.celebrations)
	}
}

func TestCelebrateCommandCustomMessage(t *testing.T) {
	eng := &fakeCelebrator{}
	handleCommand(&fakeSpeaker{}, &config.Config{}, eng, "chan",
		privMsg("streamer", "!celebrate we hit a sub goal!", map[string]int{"broadcaster": 1}))
	if len(eng.celebrations) != 1 || eng.celebrations[0] != "we hit a sub goal!" {
		t.Errorf("celebrations = %v", eng.celebrations)
	}
}

func TestBotOwnerIsPrivileged(t *testing.T) {
	cfg := &config.Config{BotOwner: "onnwee"}
	eng := &fakeCelebrator{}
	handleCommand(&fakeSpeaker{}, cfg, eng, "chan", privMsg("Onnwee", "!celebrate", nil))
	if len(eng.celebrations) != 1 {
		t.Error("owner without badges could not trigger a celebration")
	}
}

func TestAddKeywordCommand(t *testing.T) {
	cfg := &config.Config{}
	eng := &fakeCelebrator{keywords: []string{"gg"}}
	say := &fakeSpeaker{}

	handleCommand(say, cfg, eng, "chan", privMsg("mod", "!addkeyword Pog Champ", modBadges()))
	if len(eng.added) != 1 || eng.added[0] != "pog champ" {
		t.Errorf("added = %v", eng.added)
	}
	if len(say.said) != 1 || !strings.Contains(say.said[0], "pog champ") {
		t.Errorf("said = %v", say.said)
	}

	// Re-adding reports instead of duplicating.
	handleCommand(say, cfg, eng, "chan", privMsg("mod", "!addkeyword gg", modBadges()))
	if len(eng.added) != 1 {
		t.Errorf("duplicate keyword added: %v", eng.added)
	}
	if len(say.said) != 2 || !strings.Contains(say.said[1], "Already watching") {
		t.Errorf("said = %v", say.said)
	}

	// Missing argument prints usage.
	handleCommand(say, cfg, eng, "chan", privMsg("mod", "!addkeyword", modBadges()))
	if len(say.said) != 3 || !strings.Contains(say.said[2], "Usage") {
		t.Errorf("said = %v", say.said)
	}
}

func TestListKeywordsIsPublic(t *testing.T) {
	eng := &fakeCelebrator{keywords: []string{"gg", "poggers"}}
	say := &fakeSpeaker{}
	handleCommand(say, &config.Config{}, eng, "chan", privMsg("viewer", "!listkeywords", nil))
	if len(say.said) != 1 || say.said[0] != "Watching for: gg, poggers" {
		t.Errorf("said = %v", say.said)
	}
}

func TestUnknownCommandFlowsThrough(t *testing.T) {
	if handleCommand(&fakeSpeaker{}, &config.Config{}, &fakeCelebrator{}, "chan", privMsg("viewer", "!gg", nil)) {
		t.Error("unknown command was swallowed; it should reach keyword matching")
	}
}
