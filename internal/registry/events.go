package registry

// EventKind names the change that produced an [Event].
type EventKind int

const (
	Added EventKind = iota
	Removed
	Replaced
	Reset
	Sorted
	Filtered
	Refreshed
)

func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Replaced:
		return "replaced"
	case Reset:
		return "reset"
	case Sorted:
		return "sorted"
	case Filtered:
		return "filtered"
	case Refreshed:
		return "refreshed"
	default:
		return "unknown"
	}
}

// Event is published after a successful change.
type Event struct {
	Kind EventKind
}

// Listener receives registry events.
type Listener func(Event)

type subscriber struct {
	fn Listener
}

// Subscribe registers fn to receive every event, in subscription order.
// The returned function cancels the subscription; calling it more than once is harmless.
func (r *Registry) Subscribe(fn Listener) (cancel func()) {
	s := &subscriber{fn: fn}
	r.subscribers = append(r.subscribers, s)
	return func() {
		for i, sub := range r.subscribers {
			if sub == s {
				r.subscribers = append(r.subscribers[:i:i], r.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (r *Registry) publish(e Event) {
	for _, s := range r.subscribers {
		s.fn(e)
	}
}
