package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wichananm65/gift-concierge/internal/quiz"
)

// Snapshot is what a caller sees of the engine after an operation.
type Snapshot struct {
	Session       *Session `json:"session"`
	ActiveTrackID string   `json:"activeTrackId,omitempty"`
	Turn          uint64   `json:"turn"`
}

type Option func(*Engine)

// WithThinkDelay pauses SelectTrack before revealing the chosen track.
func WithThinkDelay(d time.Duration) Option {
	return func(e *Engine) { e.thinkDelay = d }
}

// Engine owns one visitor's conversation. Every dispatched operation takes the next turn;
// a response is applied only while its turn is still the latest, so a slow reply never
// overwrites the result of a later interaction. Network calls run outside the lock.
type Engine struct {
	proto      Protocol
	log        *slog.Logger
	thinkDelay time.Duration

	mu      sync.Mutex
	answers *quiz.Answers
	session *Session
	active  string
	turn    uint64

	pending sync.WaitGroup
}

func NewEngine(proto Protocol, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{proto: proto, log: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init opens a new session and replaces any previous one.
func (e *Engine) Init(ctx context.Context, answers quiz.Answers) (Snapshot, error) {
	e.mu.Lock()
	e.turn++
	turn := e.turn
	e.answers = &answers
	e.mu.Unlock()

	s, err := e.proto.Init(ctx, answers)
	if err != nil {
		return Snapshot{}, fmt.Errorf("dialogue init: %w", err)
	}
	return e.apply(turn, s, true)
}

// Restart opens a fresh session from the answers of the last Init.
func (e *Engine) Restart(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	answers := e.answers
	e.mu.Unlock()
	if answers == nil {
		return Snapshot{}, ErrNoSession
	}
	return e.Init(ctx, *answers)
}

// Interact sends action and merges the reply. select_track also moves the active track
// at dispatch so the choice is visible while the call is in flight.
func (e *Engine) Interact(ctx context.Context, action Action, value any) (Snapshot, error) {
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return Snapshot{}, ErrNoSession
	}
	id := e.session.ID
	e.turn++
	turn := e.turn
	if action == SelectTrack {
		if topic, ok := value.(string); ok {
			if _, found := FindTrack(*e.session, topic); found {
				e.active = topic
			}
		}
	}
	e.mu.Unlock()

	s, err := e.proto.Interact(ctx, id, action, value)
	if err != nil {
		return Snapshot{}, fmt.Errorf("dialogue %s: %w", action, err)
	}
	return e.apply(turn, s, false)
}

// SuggestTopics asks for alternative directions, the way out of a dead end without a
// restart.
func (e *Engine) SuggestTopics(ctx context.Context) (Snapshot, error) {
	return e.Interact(ctx, SuggestTopics, nil)
}

// SelectTrack makes topicID the active track without a round trip. It still takes a
// turn, so replies to earlier interactions are discarded.
func (e *Engine) SelectTrack(ctx context.Context, topicID string) (Snapshot, error) {
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return Snapshot{}, ErrNoSession
	}
	if _, ok := FindTrack(*e.session, topicID); !ok {
		e.mu.Unlock()
		return Snapshot{}, ErrUnknownTrack
	}
	e.turn++
	turn := e.turn
	e.mu.Unlock()

	if e.thinkDelay > 0 {
		t := time.NewTimer(e.thinkDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return Snapshot{}, ctx.Err()
		case <-t.C:
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if turn != e.turn {
		return e.snapshotLocked(), ErrSuperseded
	}
	if _, ok := FindTrack(*e.session, topicID); !ok {
		return e.snapshotLocked(), ErrUnknownTrack
	}
	next := *e.session
	if next.State == DeepDive {
		next.State = ShowingHypotheses
		next.DeepDiveProducts = nil
	}
	e.session = &next
	e.active = topicID
	return e.snapshotLocked(), nil
}

// React records a like or dislike. A dislike drops the hypothesis from the local copy
// before returning; the signal itself is sent in the background and failures are only
// logged.
func (e *Engine) React(ctx context.Context, hypothesisID string, kind Reaction) (Snapshot, error) {
	if !kind.Valid() {
		return Snapshot{}, fmt.Errorf("unknown reaction %q", kind)
	}
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return Snapshot{}, ErrNoSession
	}
	if kind == Dislike {
		next := RemoveHypothesis(*e.session, hypothesisID)
		e.session = &next
		e.active = ResolveActiveTrack(next.Tracks, e.active)
	}
	id := e.session.ID
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		if err := e.proto.React(context.WithoutCancel(ctx), id, hypothesisID, kind); err != nil {
			e.log.Warn("dialogue reaction not delivered",
				slog.String("hypothesis", hypothesisID),
				slog.String("reaction", string(kind)),
				slog.Any("error", err))
		}
	}()
	return snap, nil
}

// Products loads the gifts behind a hypothesis and enters the deep dive.
func (e *Engine) Products(ctx context.Context, hypothesisID string) (Snapshot, error) {
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return Snapshot{}, ErrNoSession
	}
	id := e.session.ID
	e.turn++
	turn := e.turn
	e.mu.Unlock()

	products, err := e.proto.Products(ctx, id, hypothesisID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("dialogue products: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if turn != e.turn {
		e.discarded(turn)
		return e.snapshotLocked(), ErrSuperseded
	}
	next := *e.session
	next.State = DeepDive
	next.DeepDiveProducts = products
	e.session = &next
	return e.snapshotLocked(), nil
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Flush waits for reactions still being sent.
func (e *Engine) Flush() {
	e.pending.Wait()
}

func (e *Engine) apply(turn uint64, incoming Session, fresh bool) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if turn != e.turn {
		e.discarded(turn)
		return e.snapshotLocked(), ErrSuperseded
	}
	next := incoming
	if !fresh && e.session != nil {
		next = Merge(*e.session, incoming)
	}
	if fresh {
		e.active = ""
	}
	e.session = &next
	e.active = ResolveActiveTrack(next.Tracks, e.active)
	return e.snapshotLocked(), nil
}

func (e *Engine) discarded(turn uint64) {
	e.log.Debug("dialogue response superseded",
		slog.Uint64("turn", turn),
		slog.Uint64("current", e.turn))
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{ActiveTrackID: e.active, Turn: e.turn}
	if e.session != nil {
		s := *e.session
		snap.Session = &s
	}
	return snap
}
