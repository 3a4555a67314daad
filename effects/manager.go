package effects

import (
	"math"
	"math/rand"
	"time"
)

// Manager owns every active particle, glyph particle, and text effect.
// It is not safe for concurrent use; the render loop is the single owner
// and calls Update once per frame followed by Draw.
type Manager struct {
	palette   []Color
	rng       *rand.Rand
	now       func() time.Time
	particles []Particle
	glyphs    []GlyphParticle
	texts     []TextEffect
}

// NewManager returns a Manager drawing random colors from palette using
// rng. A nil rng gets a time-seeded source; an empty palette falls back
// to DefaultPalette.
func NewManager(palette []Color, rng *rand.Rand) *Manager {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{
		palette: palette,
		rng:     rng,
		now:     time.Now,
	}
}

// SetClock overrides the manager's clock. Used by tests.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// pick returns col, or a random palette color when col is the zero value.
func (m *Manager) pick(col Color) Color {
	if col == (Color{}) {
		return m.palette[m.rng.Intn(len(m.palette))]
	}
	return col
}

// CreateExplosion spawns count particles bursting out of (x, y) in random
// directions with speed in [2,8) and initial life 1. A zero col selects a
// random palette color shared by the whole burst.
func (m *Manager) CreateExplosion(x, y float64, col Color, count int, size float64) {
	col = m.pick(col)
	for i := 0; i < count; i++ {
		angle := m.rng.Float64() * 2 * math.Pi
		speed := 2 + m.rng.Float64()*6
		m.particles = append(m.particles, Particle{
			X:       x,
			Y:       y,
			VX:      math.Cos(angle) * speed,
			VY:      math.Sin(angle) * speed,
			Color:   col,
			Size:    size * (0.5 + m.rng.Float64()),
			Life:    1.0,
			Decay:   0.01 + m.rng.Float64()*0.04,
			Gravity: 0.05 + m.rng.Float64()*0.15,
		})
	}
}

// CreateGlyphExplosion spawns count glyph particles (e.g. an emoji burst)
// at (x, y), each with its own random color, spin, and scale.
func (m *Manager) CreateGlyphExplosion(x, y float64, glyph string, count int) {
	for i := 0; i < count; i++ {
		angle := m.rng.Float64() * 2 * math.Pi
		speed := 1 + m.rng.Float64()*4
		m.glyphs = append(m.glyphs, GlyphParticle{
			X:             x,
			Y:             y,
			VX:            math.Cos(angle) * speed,
			VY:            math.Sin(angle) * speed,
			Glyph:         glyph,
			Color:         m.pick(Color{}),
			Life:          1.0,
			Decay:         0.005 + m.rng.Float64()*0.015,
			Gravity:       0.05 + m.rng.Float64()*0.15,
			RotationSpeed: -0.1 + m.rng.Float64()*0.2,
			Scale:         0.5 + m.rng.Float64(),
		})
	}
}

// CreateTextEffect adds a fading title line centered on (x, y) that lives
// for duration. A zero col selects a random palette color.
func (m *Manager) CreateTextEffect(text string, x, y float64, col Color, duration time.Duration) {
	m.texts = append(m.texts, TextEffect{
		Text:      text,
		X:         x,
		Y:         y,
		Color:     m.pick(col),
		CreatedAt: m.now(),
		Duration:  duration,
		Alpha:     255,
	})
}

// Update advances all effects by one tick, dropping anything whose life
// has run out and recomputing derived state (text alpha) for survivors.
func (m *Manager) Update() {
	alive := m.particles[:0]
	for i := range m.particles {
		if m.particles[i].Update() {
			alive = append(alive, m.particles[i])
		}
	}
	m.particles = alive

	liveGlyphs := m.glyphs[:0]
	for i := range m.glyphs {
		if m.glyphs[i].Update() {
			liveGlyphs = append(liveGlyphs, m.glyphs[i])
		}
	}
	m.glyphs = liveGlyphs

	now := m.now()
	liveTexts := m.texts[:0]
	for i := range m.texts {
		if m.texts[i].expired(now) {
			continue
		}
		m.texts[i].refresh(now)
		liveTexts = append(liveTexts, m.texts[i])
	}
	m.texts = liveTexts
}

// Draw renders the current state onto c in fixed order: particles, then
// glyph particles, then text effects, so later layers draw on top.
func (m *Manager) Draw(c Canvas) {
	for i := range m.particles {
		m.particles[i].Draw(c)
	}
	for i := range m.glyphs {
		m.glyphs[i].Draw(c)
	}
	for i := range m.texts {
		m.texts[i].Draw(c)
	}
}

// Clear removes every active effect.
func (m *Manager) Clear() {
	m.particles = m.particles[:0]
	m.glyphs = m.glyphs[:0]
	m.texts = m.texts[:0]
}

// Counts reports how many particles, glyph particles, and text effects
// are currently alive. Used for the active-effects gauge.
func (m *Manager) Counts() (particles, glyphs, texts int) {
	return len(m.particles), len(m.glyphs), len(m.texts)
}
