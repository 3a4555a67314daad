// Package effects implements the particle and text animation model behind
// celebration visuals: short-lived gravity-affected particles, spinning
// glyph (emoji) particles, and fading title lines, all owned and advanced
// by a Manager that is ticked once per frame.
package effects

// Color is an RGBA color. The zero value is treated as "unset" by the
// Manager's create methods and replaced with a random palette color.
type Color struct {
	R, G, B, A uint8
}

// DefaultPalette matches the celebration colors used by the overlay when
// no palette is configured.
var DefaultPalette = []Color{
	{255, 50, 50, 255},  // red
	{50, 255, 50, 255},  // green
	{50, 50, 255, 255},  // blue
	{255, 255, 50, 255}, // yellow
	{255, 50, 255, 255}, // magenta
	{50, 255, 255, 255}, // cyan
}

// Canvas is the render target for a frame. Implementations must tolerate
// out-of-range coordinates and unknown glyphs (clip or substitute, never
// panic) so a bad draw degrades instead of killing the tick loop.
type Canvas interface {
	// Dot renders a point particle. col.A already carries the life fade.
	Dot(x, y, size float64, col Color)
	// Glyph renders a glyph particle. Rotation is radians; hosts without
	// rotation support may ignore it.
	Glyph(x, y float64, glyph string, col Color, rotation, scale float64)
	// Text renders a title line centered on x.
	Text(text string, x, y float64, col Color)
}

// Particle is a single decaying point with simple physics. Life starts at
// 1 and decreases by Decay each tick; the particle is dead once life <= 0.
type Particle struct {
	X, Y    float64
	VX, VY  float64
	Color   Color
	Size    float64
	Life    float64
	Decay   float64
	Gravity float64
}

// Update advances position and life by one tick and reports whether the
// particle is still alive.
func (p *Particle) Update() bool {
	p.X += p.VX
	p.Y += p.VY
	p.VY += p.Gravity
	p.Life -= p.Decay
	return p.Life > 0
}

// Draw renders the particle shrunk and faded by its remaining life.
func (p *Particle) Draw(c Canvas) {
	col := p.Color
	col.A = lifeAlpha(p.Life)
	c.Dot(p.X, p.Y, p.Size*p.Life, col)
}

// GlyphParticle is the emoji/text variant of Particle: same physics and
// lifecycle plus rotation and scale recomputed each tick.
type GlyphParticle struct {
	X, Y          float64
	VX, VY        float64
	Glyph         string
	Color         Color
	Life          float64
	Decay         float64
	Gravity       float64
	Rotation      float64
	RotationSpeed float64
	Scale         float64
}

// Update advances position, rotation, and life by one tick and reports
// whether the glyph is still alive.
func (g *GlyphParticle) Update() bool {
	g.X += g.VX
	g.Y += g.VY
	g.VY += g.Gravity
	g.Life -= g.Decay
	g.Rotation += g.RotationSpeed
	return g.Life > 0
}

// Draw renders the glyph with its current rotation and scale, faded by life.
func (g *GlyphParticle) Draw(c Canvas) {
	col := g.Color
	col.A = lifeAlpha(g.Life)
	c.Glyph(g.X, g.Y, g.Glyph, col, g.Rotation, g.Scale)
}

// lifeAlpha maps a life fraction to an alpha byte, clamped to [0,255].
func lifeAlpha(life float64) uint8 {
	if life <= 0 {
		return 0
	}
	if life >= 1 {
		return 255
	}
	return uint8(255 * life)
}
