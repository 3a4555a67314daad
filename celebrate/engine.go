package celebrate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/onnwee/chat-celebrator/telemetry"
)

// Announcer is the audio collaborator: a celebration sound plus optional
// speech. Implementations must degrade to silence on failure rather than
// block or error the engine.
type Announcer interface {
	PlayCelebration()
	Announce(text string) bool
}

// Broadcaster pushes a celebration to connected overlay subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, c Celebration)
}

// Store records celebrations for later inspection.
type Store interface {
	Insert(ctx context.Context, c Celebration) error
}

// event is one inbound item for the engine goroutine. Exactly one field
// is set.
type event struct {
	chat    *ChatMessage
	viewers *int
	manual  *string
}

// Options wires an Engine. Announcer, Broadcaster, and Store may be nil;
// the corresponding fan-out is skipped.
type Options struct {
	Keywords    *KeywordTracker
	Milestones  *MilestoneTracker
	Announcer   Announcer
	Broadcaster Broadcaster
	Store       Store
	Now         func() time.Time
	QueueSize   int
}

// Engine owns all trigger state. Events arrive over a channel and are
// handled by the single Run goroutine; handoffs to the overlay, audio,
// and broadcaster are non-blocking so a stalled consumer drops items
// instead of stalling triggers.
type Engine struct {
	mu         sync.Mutex
	keywords   *KeywordTracker
	milestones *MilestoneTracker

	announcer   Announcer
	broadcaster Broadcaster
	store       Store
	now         func() time.Time

	events  chan event
	visuals chan Celebration
}

// NewEngine builds an Engine from opts. Keywords and Milestones are
// required; everything else is optional.
func NewEngine(opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	size := opts.QueueSize
	if size <= 0 {
		size = 64
	}
	return &Engine{
		keywords:    opts.Keywords,
		milestones:  opts.Milestones,
		announcer:   opts.Announcer,
		broadcaster: opts.Broadcaster,
		store:       opts.Store,
		now:         opts.Now,
		events:      make(chan event, size),
		visuals:     make(chan Celebration, size),
	}
}

// Chat enqueues an inbound chat message. Returns false when the engine
// queue is full and the message was dropped.
func (e *Engine) Chat(msg ChatMessage) bool {
	return e.enqueue(event{chat: &msg})
}

// ViewerCount enqueues a viewer-count sample.
func (e *Engine) ViewerCount(n int) bool {
	return e.enqueue(event{viewers: &n})
}

// Celebrate enqueues a manual celebration request.
func (e *Engine) Celebrate(message string) bool {
	return e.enqueue(event{manual: &message})
}

func (e *Engine) enqueue(ev event) bool {
	select {
	case e.events <- ev:
		return true
	default:
		slog.Warn("engine queue full; dropping event", slog.String("component", "engine"))
		return false
	}
}

// Celebrations is the visual feed consumed by the overlay loop.
func (e *Engine) Celebrations() <-chan Celebration { return e.visuals }

// AddKeyword registers a new trigger keyword at runtime.
func (e *Engine) AddKeyword(kw string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.keywords.AddKeyword(kw)
}

// Keywords returns the tracked keywords in enumeration order.
func (e *Engine) Keywords() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.keywords.Keywords()
}

// Snapshot is a point-in-time status view for the HTTP surface.
type Snapshot struct {
	Keywords             []string `json:"keywords"`
	CelebratedMilestones []int    `json:"celebrated_milestones"`
	LastViewerCount      int      `json:"last_viewer_count"`
	PendingVisuals       int      `json:"pending_visuals"`
}

// Snapshot returns the current trigger state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Keywords:             e.keywords.Keywords(),
		CelebratedMilestones: e.milestones.Celebrated(),
		LastViewerCount:      e.milestones.LastCount(),
		PendingVisuals:       len(e.visuals),
	}
}

// Run consumes events until ctx is cancelled. It is the only goroutine
// that mutates tracker state.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("celebration engine started", slog.String("component", "engine"))
	for {
		select {
		case <-ctx.Done():
			slog.Info("celebration engine stopped", slog.String("component", "engine"))
			return
		case ev := <-e.events:
			e.handle(ctx, ev)
		}
	}
}

func (e *Engine) handle(ctx context.Context, ev event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case ev.chat != nil:
		e.handleChat(ctx, *ev.chat)
	case ev.viewers != nil:
		e.handleViewers(ctx, *ev.viewers)
	case ev.manual != nil:
		e.emit(ctx, *ev.manual, EventManual)
	}
}

func (e *Engine) handleChat(ctx context.Context, msg ChatMessage) {
	telemetry.CountChatMessage()
	trig, ok := e.keywords.Observe(msg, e.now())
	if !ok {
		if e.keywords.Matches(msg.Text) {
			telemetry.CountSuppressedTrigger()
		}
		return
	}
	slog.Info("keyword triggered",
		slog.String("keyword", trig.Keyword),
		slog.String("user", trig.User),
		slog.String("component", "engine"))
	e.emit(ctx, fmt.Sprintf("%s said %s!", trig.User, trig.Variant), EventKeyword)
}

func (e *Engine) handleViewers(ctx context.Context, count int) {
	fired := e.milestones.Observe(count)
	for _, th := range fired {
		slog.Info("viewer milestone reached",
			slog.Int("milestone", th),
			slog.Int("viewers", count),
			slog.String("component", "engine"))
		e.emit(ctx, fmt.Sprintf("🎉 %d viewers! 🎉", count), EventViewerMilestone)
	}
}

// emit fans a celebration out to every configured consumer.
func (e *Engine) emit(ctx context.Context, message string, typ EventType) {
	c := Celebration{
		ID:        uuid.New().String(),
		Message:   message,
		EventType: typ,
		At:        e.now().UTC(),
	}

	sctx, span := telemetry.StartSpan(ctx, "engine", "celebrate")
	defer span.End()

	telemetry.CountCelebration(string(typ))
	slog.Info("celebrating",
		slog.String("id", c.ID),
		slog.String("message", c.Message),
		slog.String("event_type", string(typ)),
		slog.String("component", "engine"))

	select {
	case e.visuals <- c:
	default:
		telemetry.CountDroppedCelebration()
		slog.Warn("visual queue full; dropping celebration", slog.String("id", c.ID))
	}

	if e.announcer != nil {
		e.announcer.PlayCelebration()
		e.announcer.Announce(c.Message)
	}
	if e.broadcaster != nil {
		e.broadcaster.Broadcast(sctx, c)
	}
	if e.store != nil {
		if err := e.store.Insert(sctx, c); err != nil {
			telemetry.RecordError(span, err)
			slog.Warn("failed to record celebration", slog.Any("err", err), slog.String("id", c.ID))
		}
	}
}
