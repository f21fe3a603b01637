package layout

// EventType identifies a layout notification.
type EventType uint8

const (
	// EventStep follows every simulated step.
	EventStep EventType = iota + 1
	// EventStable fires when the layout becomes stable.
	EventStable
	// EventUnstable fires when a stable layout starts moving again.
	EventUnstable
	// EventDisposed fires once, from Dispose.
	EventDisposed
)

func (t EventType) String() string {
	switch t {
	case EventStep:
		return "step"
	case EventStable:
		return "stable"
	case EventUnstable:
		return "unstable"
	case EventDisposed:
		return "disposed"
	}
	return "unknown"
}

// Event is delivered to subscribers. Move is the movement of the step that
// caused it, or 0 for events not tied to a step.
type Event struct {
	Type EventType
	Move float64
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers fn for layout events and returns a function that
// removes the subscription.
func (l *Layout) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := l.nextSub
	l.nextSub++
	l.subscribers = append(l.subscribers, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range l.subscribers {
			if s.id == id {
				l.subscribers = append(l.subscribers[:i:i], l.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (l *Layout) fire(e Event) {
	for _, s := range l.subscribers {
		s.fn(e)
	}
}
