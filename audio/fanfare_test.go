package audio

import (
	"math"
	"testing"
)

func TestFanfareBoundedAmplitude(t *testing.T) {
	g := NewFanfareGenerator(sampleRate)
	total := sampleRate.N(fanfareDuration)

	buf := make([][2]float64, 512)
	streamed := 0
	for streamed < total {
		n, ok := g.Stream(buf)
		if !ok {
			t.Fatal("generator stopped early")
		}
		for i := 0; i < n; i++ {
			for ch := 0; ch < 2; ch++ {
				v := buf[i][ch]
				if math.IsNaN(v) || math.Abs(v) > 1.0 {
					t.Fatalf("sample %d ch %d out of range: %v", streamed+i, ch, v)
				}
			}
			if buf[i][0] != buf[i][1] {
				t.Fatalf("sample %d not mono-duplicated", streamed+i)
			}
		}
		streamed += n
	}
	if err := g.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
}

func TestFanfareStartsQuiet(t *testing.T) {
	g := NewFanfareGenerator(sampleRate)
	buf := make([][2]float64, 1)
	g.Stream(buf)
	if math.Abs(buf[0][0]) > 0.01 {
		t.Errorf("first sample = %v, want near-zero attack", buf[0][0])
	}
}

func TestPlayFanfareUninitializedIsNoop(t *testing.T) {
	p := NewPlayer()
	// Must not panic or touch the device.
	p.PlayFanfare()
	if err := p.PlayMP3Sync("nonexistent.mp3"); err == nil {
		t.Error("PlayMP3Sync on an uninitialized player succeeded")
	}
}
