package model

import "sync"

// EventKind identifies a notification published by the engine.
type EventKind int

const (
	// EventGridChanged follows any command that mutates cells. Computing a
	// generation publishes EventGenerationAdvanced instead, so renderers that
	// must follow the simulation subscribe to both.
	EventGridChanged EventKind = iota + 1
	// EventGenerationAdvanced follows each computed generation.
	EventGenerationAdvanced
	// EventBoundaryChanged follows a successful topology change.
	EventBoundaryChanged
	// EventResized follows a resize.
	EventResized
	// EventWarning carries a recoverable input error.
	EventWarning
	// EventSimulationError carries a failure raised while advancing a generation.
	EventSimulationError
	// EventStateChanged follows a transition between running and paused.
	EventStateChanged
)

func (k EventKind) String() string {
	switch k {
	case EventGridChanged:
		return "grid_changed"
	case EventGenerationAdvanced:
		return "generation_advanced"
	case EventBoundaryChanged:
		return "boundary_changed"
	case EventResized:
		return "grid_resized"
	case EventWarning:
		return "warning"
	case EventSimulationError:
		return "simulation_error"
	case EventStateChanged:
		return "state_changed"
	default:
		return "unknown"
	}
}

// Event is the payload delivered to subscribers. Only the fields relevant to
// Kind are populated.
type Event struct {
	Kind       EventKind
	Generation int
	AliveCells int
	Rows       int
	Cols       int
	Topology   Topology
	Running    bool
	Err        error
}

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id   int
	kind EventKind // zero matches every kind
	fn   Handler
}

// Bus is a synchronous publish/subscribe channel. Handlers run on the
// publishing goroutine in subscription order. A nil *Bus drops every event.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for events of the given kind and returns a function
// that removes the subscription.
func (b *Bus) Subscribe(kind EventKind, fn Handler) (unsubscribe func()) {
	return b.add(kind, fn)
}

// SubscribeAll registers fn for every event kind.
func (b *Bus) SubscribeAll(fn Handler) (unsubscribe func()) {
	return b.add(0, fn)
}

func (b *Bus) add(kind EventKind, fn Handler) func() {
	if b == nil || fn == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, kind: kind, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers ev to every matching subscriber.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}

	// Copy so handlers may subscribe or unsubscribe while being called
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if s.kind == 0 || s.kind == ev.Kind {
			s.fn(ev)
		}
	}
}
