// Package overlay renders celebration effects on a terminal screen at a
// fixed frame rate.
package overlay

import (
	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/onnwee/chat-celebrator/effects"
)

// backdrop is the near-black the overlay fades dying particles toward.
var backdrop = colorful.Color{R: 0.05, G: 0.05, B: 0.08}

// tcellCanvas draws effects onto a tcell screen. Out-of-bounds draws are
// clipped; unknown glyphs fall through to tcell's own substitution, so a
// draw call never panics.
type tcellCanvas struct {
	screen tcell.Screen
}

// fade blends col toward the backdrop as its alpha drops, approximating
// transparency on a terminal that has none.
func fade(col effects.Color) tcell.Color {
	fg := colorful.Color{
		R: float64(col.R) / 255,
		G: float64(col.G) / 255,
		B: float64(col.B) / 255,
	}
	blended := fg.BlendRgb(backdrop, 1-float64(col.A)/255).Clamped()
	r, g, b := blended.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (c *tcellCanvas) Dot(x, y, size float64, col effects.Color) {
	px, py := int(x), int(y)
	w, h := c.screen.Size()
	if px < 0 || py < 0 || px >= w || py >= h {
		return
	}
	r := '·'
	switch {
	case size >= 4:
		r = '●'
	case size >= 2:
		r = '•'
	}
	c.screen.SetContent(px, py, r, nil, tcell.StyleDefault.Foreground(fade(col)))
}

func (c *tcellCanvas) Glyph(x, y float64, glyph string, col effects.Color, rotation, scale float64) {
	px, py := int(x), int(y)
	w, h := c.screen.Size()
	if px < 0 || py < 0 || px >= w || py >= h {
		return
	}
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	// Rotation and sub-cell scale have no terminal representation; they
	// degrade to dimming once the particle is mostly faded.
	style := tcell.StyleDefault.Foreground(fade(col))
	if col.A < 128 || scale < 0.75 {
		style = style.Dim(true)
	}
	c.screen.SetContent(px, py, runes[0], runes[1:], style)
}

func (c *tcellCanvas) Text(text string, x, y float64, col effects.Color) {
	runes := []rune(text)
	w, h := c.screen.Size()
	py := int(y)
	if py < 0 || py >= h || len(runes) == 0 {
		return
	}
	// (x, y) is the center of the rendered text.
	start := int(x) - len(runes)/2
	style := tcell.StyleDefault.Foreground(fade(col)).Bold(true)
	for i, r := range runes {
		px := start + i
		if px < 0 || px >= w {
			continue
		}
		c.screen.SetContent(px, py, r, nil, style)
	}
}

// nopCanvas keeps the effect pipeline running in headless mode.
type nopCanvas struct{}

func (nopCanvas) Dot(x, y, size float64, col effects.Color)                             {}
func (nopCanvas) Glyph(x, y float64, glyph string, col effects.Color, rot, scl float64) {}
func (nopCanvas) Text(text string, x, y float64, col effects.Color)                     {}
