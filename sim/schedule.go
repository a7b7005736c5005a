package sim

// Event is a main-context action scheduled at a CPU cycle.
type Event struct {
	At      uint64
	Handler func(*Event) uint8
	Next    *Event
}

// Handler results.
const (
	EventDone       = 0
	EventReschedule = 1 // Handler moved At forward; run it again then
)

// schedule is a list of events sorted by At.
type schedule struct {
	list *Event
}

// insert adds e in sorted order, after any event due at the same cycle.
func (s *schedule) insert(e *Event) {
	if s.list == nil || e.At < s.list.At {
		e.Next = s.list
		s.list = e
		return
	}

	current := s.list
	for current.Next != nil && current.Next.At <= e.At {
		current = current.Next
	}

	e.Next = current.Next
	current.Next = e
}

// next returns the cycle of the earliest event.
func (s *schedule) next() (uint64, bool) {
	if s.list == nil {
		return 0, false
	}
	return s.list.At, true
}

// dispatch runs every event due at or before now.
func (s *schedule) dispatch(now uint64) {
	for s.list != nil && s.list.At <= now {
		e := s.list
		s.list = e.Next
		e.Next = nil

		if e.Handler(e) == EventReschedule {
			if e.At <= now {
				e.At = now + 1
			}
			s.insert(e)
		}
	}
}
