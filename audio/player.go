// Package audio plays celebration sounds and text-to-speech announcements.
// All failures degrade to silence; audio never takes the process down.
package audio

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)

	// resampleQuality trades CPU for interpolation quality when a decoded
	// file's rate differs from the device rate.
	resampleQuality = 4
)

// Player owns the speaker and a mixer that celebration sounds and speech
// are added to.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	fanfare     *beep.Buffer // decoded sound file; nil means use the synth
	initialized bool
}

// NewPlayer creates an uninitialized player.
func NewPlayer() *Player {
	return &Player{mixer: &beep.Mixer{}}
}

// Initialize sets up the audio device. Safe to call more than once.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Enabled reports whether the audio device came up.
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// LoadSound decodes an mp3 file into memory to replace the synthesized
// fanfare.
func (p *Player) LoadSound(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open sound file: %w", err)
	}
	streamer, format, err := mp3.Decode(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("decode sound file: %w", err)
	}
	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Close(); err != nil {
		return fmt.Errorf("close sound file: %w", err)
	}

	p.mu.Lock()
	p.fanfare = buf
	p.mu.Unlock()
	return nil
}

// PlayFanfare plays the celebration sound: the loaded file when one is
// configured, otherwise the synthesized arpeggio.
func (p *Player) PlayFanfare() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	if p.fanfare != nil {
		s := p.fanfare.Streamer(0, p.fanfare.Len())
		if rate := p.fanfare.Format().SampleRate; rate != sampleRate {
			p.mixer.Add(beep.Resample(resampleQuality, rate, sampleRate, s))
			return
		}
		p.mixer.Add(s)
		return
	}
	p.mixer.Add(beep.Take(sampleRate.N(fanfareDuration), NewFanfareGenerator(sampleRate)))
}

// PlayMP3Sync decodes an mp3 file and blocks until it finishes playing.
// Used by the speech worker so announcements never overlap.
func (p *Player) PlayMP3Sync(path string) error {
	p.mu.Lock()
	if !p.initialized {
		p.mu.Unlock()
		return fmt.Errorf("audio not initialized")
	}
	p.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open speech file: %w", err)
	}
	streamer, format, err := mp3.Decode(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("decode speech file: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	var s beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, sampleRate, streamer)
	}

	done := make(chan struct{})
	p.mu.Lock()
	p.mixer.Add(beep.Seq(s, beep.Callback(func() { close(done) })))
	p.mu.Unlock()
	<-done
	return nil
}
