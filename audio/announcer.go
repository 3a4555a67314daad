package audio

// Announcer adapts the player and the speech worker to the engine's audio
// surface. Either collaborator may be absent.
type Announcer struct {
	Player       *Player
	Speech       *Worker // nil disables TTS
	SoundEnabled bool
}

// PlayCelebration plays the fanfare when sound is enabled.
func (a *Announcer) PlayCelebration() {
	if a.SoundEnabled && a.Player != nil {
		a.Player.PlayFanfare()
	}
}

// Announce enqueues text for speech when TTS is enabled.
func (a *Announcer) Announce(text string) bool {
	if a.Speech == nil {
		return false
	}
	return a.Speech.Announce(text)
}
