package effects

import "time"

// TextEffect is a title line that fades out over a fixed duration.
// Alpha is derived state, recomputed by the Manager each tick as
// 255 * remaining-fraction; the effect is removed once age > Duration.
type TextEffect struct {
	Text      string
	X, Y      float64
	Color     Color
	CreatedAt time.Time
	Duration  time.Duration
	Alpha     uint8
}

// expired reports whether the effect has outlived its duration at now.
func (t *TextEffect) expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) > t.Duration
}

// refresh recomputes the fade alpha from the remaining lifetime.
func (t *TextEffect) refresh(now time.Time) {
	if t.Duration <= 0 {
		t.Alpha = 0
		return
	}
	remaining := 1 - float64(now.Sub(t.CreatedAt))/float64(t.Duration)
	if remaining < 0 {
		remaining = 0
	}
	if remaining > 1 {
		remaining = 1
	}
	t.Alpha = uint8(255 * remaining)
}

// Draw renders the line at its current alpha.
func (t *TextEffect) Draw(c Canvas) {
	col := t.Color
	col.A = t.Alpha
	c.Text(t.Text, t.X, t.Y, col)
}
