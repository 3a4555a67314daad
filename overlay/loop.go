package overlay

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/onnwee/chat-celebrator/celebrate"
	"github.com/onnwee/chat-celebrator/effects"
	"github.com/onnwee/chat-celebrator/telemetry"
)

// celebrationEmojis is the glyph set bursts are drawn from.
var celebrationEmojis = []string{"🎉", "🎊", "✨", "🌟", "💫", "🎈", "🎆", "🎇"}

const (
	explosionCount    = 5
	particlesPerBurst = 30
	glyphBurstCount   = 3
	glyphsPerBurst    = 5
	particleBaseSize  = 3.0

	// headless dimensions keep effect positions sane without a screen
	headlessWidth  = 120
	headlessHeight = 40
)

// Options wires a Loop.
type Options struct {
	Screen            tcell.Screen // nil runs headless against a discard canvas
	Window            Window
	Manager           *effects.Manager
	Celebrations      <-chan celebrate.Celebration
	FPS               int
	AnimationDuration time.Duration
	Rand              *rand.Rand
	Stop              func() // requests process shutdown (ESC / Ctrl+C)
}

// Loop owns the effect manager and renders pending celebrations at a fixed
// frame rate. It is the only goroutine that touches the manager or the
// screen.
type Loop struct {
	screen       tcell.Screen
	window       Window
	manager      *effects.Manager
	celebrations <-chan celebrate.Celebration
	fps          int
	animation    time.Duration
	rng          *rand.Rand
	stop         func()
}

// NewLoop builds a render loop from opts.
func NewLoop(opts Options) *Loop {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.AnimationDuration <= 0 {
		opts.AnimationDuration = 8 * time.Second
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Window == nil {
		opts.Window = NewTerminalWindow()
	}
	if opts.Stop == nil {
		opts.Stop = func() {}
	}
	return &Loop{
		screen:       opts.Screen,
		window:       opts.Window,
		manager:      opts.Manager,
		celebrations: opts.Celebrations,
		fps:          opts.FPS,
		animation:    opts.AnimationDuration,
		rng:          opts.Rand,
		stop:         opts.Stop,
	}
}

// NewScreen initializes a tcell screen for the overlay. Callers treat
// failure as "run headless".
func NewScreen() (tcell.Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	s.Clear()
	return s, nil
}

// Run renders until ctx is cancelled. With a screen it also watches for
// ESC/Ctrl+C and calls the stop function.
func (l *Loop) Run(ctx context.Context) {
	var keys chan tcell.Event
	if l.screen != nil {
		defer l.screen.Fini()
		keys = make(chan tcell.Event, 16)
		quit := make(chan struct{})
		defer close(quit)
		go l.screen.ChannelEvents(keys, quit)
	}
	canvas := l.canvas()

	slog.Info("overlay started",
		slog.Int("fps", l.fps),
		slog.Bool("headless", l.screen == nil))
	ticker := time.NewTicker(time.Second / time.Duration(l.fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("overlay stopped")
			return
		case ev := <-keys:
			if key, ok := ev.(*tcell.EventKey); ok {
				if key.Key() == tcell.KeyEscape || key.Key() == tcell.KeyCtrlC {
					slog.Info("overlay key exit requested")
					l.stop()
				}
			}
		case <-ticker.C:
			telemetry.TimeFunc(telemetry.FrameDuration, func() {
				l.frame(canvas)
			})
		}
	}
}

func (l *Loop) canvas() effects.Canvas {
	if l.screen == nil {
		return nopCanvas{}
	}
	return &tcellCanvas{screen: l.screen}
}

// frame is one tick: drain pending celebrations, advance, draw.
func (l *Loop) frame(canvas effects.Canvas) {
	l.drain()
	l.manager.Update()

	np, ng, _ := l.manager.Counts()
	telemetry.SetActiveParticles(np + ng)

	if l.screen != nil {
		l.screen.Clear()
	}
	l.manager.Draw(canvas)
	if l.screen != nil {
		l.screen.Show()
	}
}

func (l *Loop) drain() {
	for {
		select {
		case c := <-l.celebrations:
			l.show(c)
		default:
			return
		}
	}
}

// show composes the visual for one celebration: clear what is playing,
// center the title, then scatter particle explosions and emoji bursts.
func (l *Loop) show(c celebrate.Celebration) {
	w, h := l.size()
	fw, fh := float64(w), float64(h)

	l.manager.Clear()
	l.manager.CreateTextEffect(c.Message, fw/2, fh/2, effects.Color{}, l.animation*8/10)

	for i := 0; i < explosionCount; i++ {
		l.manager.CreateExplosion(
			l.rng.Float64()*fw, l.rng.Float64()*fh,
			effects.Color{}, particlesPerBurst, particleBaseSize)
	}
	for i := 0; i < glyphBurstCount; i++ {
		glyph := celebrationEmojis[l.rng.Intn(len(celebrationEmojis))]
		l.manager.CreateGlyphExplosion(
			l.rng.Float64()*fw, l.rng.Float64()*fh,
			glyph, glyphsPerBurst)
	}
}

func (l *Loop) size() (int, int) {
	if l.screen == nil {
		return headlessWidth, headlessHeight
	}
	return l.screen.Size()
}
