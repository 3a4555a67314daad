package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// fanfareDuration covers the four arpeggio notes plus release.
const fanfareDuration = time.Millisecond * 900

// fanfareNotes is a rising C-major arpeggio (C5 E5 G5 C6).
var fanfareNotes = []float64{523.25, 659.25, 783.99, 1046.50}

// FanfareGenerator synthesizes the default celebration sound: a bright
// rising arpeggio with a percussive envelope per note.
type FanfareGenerator struct {
	sr      beep.SampleRate
	pos     int
	noteLen int
}

// NewFanfareGenerator creates a fanfare generator at the given rate.
func NewFanfareGenerator(sr beep.SampleRate) *FanfareGenerator {
	return &FanfareGenerator{
		sr:      sr,
		noteLen: sr.N(time.Millisecond * 200),
	}
}

func (g *FanfareGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		note := g.pos / g.noteLen
		if note >= len(fanfareNotes) {
			note = len(fanfareNotes) - 1
		}
		freq := fanfareNotes[note]

		t := float64(g.pos) / float64(g.sr)
		notePos := float64(g.pos%g.noteLen) / float64(g.noteLen)

		// Quick attack, exponential decay per note.
		envelope := math.Min(notePos/0.05, 1.0) * math.Exp(-notePos*3)

		sample := 0.0
		sample += 0.25 * math.Sin(2*math.Pi*freq*t)
		sample += 0.10 * math.Sin(2*math.Pi*freq*2*t)
		sample *= envelope

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *FanfareGenerator) Err() error {
	return nil
}
