package scheduler

import "container/heap"

// Handler processes one event kind. Handlers never block and may freely
// call Schedule on s (always at a fire time >= s.Now()); returning hands
// control back to the scheduler's main loop (§5 "Suspension points: none").
type Handler func(s *Scheduler, ev *Event)

// Stats summarizes how a Run terminated.
type Stats struct {
	EndTime    float64
	Dispatched int
	Remaining  int
}

// Scheduler is the single logical clock driving a simulation: an ordered
// priority queue of events and a table of per-kind handlers (§4.1).
type Scheduler struct {
	now        float64
	seq        int64
	queue      eventQueue
	handlers   map[string]Handler
	maxTime    float64 // <=0 means unbounded
	maxEvents  int     // <=0 means unbounded
	dispatched int
}

// New returns a Scheduler that stops at maxTime (simulated time) or after
// maxEvents dispatched events, whichever comes first. A non-positive value
// disables that particular cap.
func New(maxTime float64, maxEvents int) *Scheduler {
	return &Scheduler{
		handlers: make(map[string]Handler),
		maxTime:  maxTime,
		maxEvents: maxEvents,
	}
}

// Now returns the current simulated time.
func (s *Scheduler) Now() float64 {
	return s.now
}

// Dispatched returns the number of events handled so far.
func (s *Scheduler) Dispatched() int {
	return s.dispatched
}

// RegisterHandler installs h for events of the given kind. Registering
// twice for the same kind replaces the previous handler.
func (s *Scheduler) RegisterHandler(kind string, h Handler) {
	s.handlers[kind] = h
}

// Schedule enqueues a new event. fireTime is clamped up to Now() if it
// would otherwise be in the past — handlers may only schedule into the
// future or the present instant, never before it. Returns the event so
// the caller can later call Ignore() to cancel it.
func (s *Scheduler) Schedule(kind string, fireTime float64, payload any) *Event {
	if fireTime < s.now {
		fireTime = s.now
	}
	s.seq++
	ev := &Event{FireTime: fireTime, Seq: s.seq, Kind: kind, Payload: payload}
	heap.Push(&s.queue, ev)
	return ev
}

// QueueLen returns the number of events still pending (including ignored
// ones not yet popped).
func (s *Scheduler) QueueLen() int {
	return len(s.queue)
}

// Run drains the queue, dispatching each non-ignored event to its
// registered handler, until one of the three termination conditions of
// §4.1 holds: the clock would reach or pass maxTime, the queue empties, or
// maxEvents dispatches have happened.
func (s *Scheduler) Run() Stats {
	for len(s.queue) > 0 {
		if s.maxEvents > 0 && s.dispatched >= s.maxEvents {
			break
		}
		next := s.queue[0]
		if s.maxTime > 0 && next.FireTime >= s.maxTime {
			break
		}
		ev := heap.Pop(&s.queue).(*Event)
		if ev.Ignored {
			continue
		}
		s.now = ev.FireTime
		s.dispatched++
		if h, ok := s.handlers[ev.Kind]; ok {
			h(s, ev)
		}
	}
	return Stats{EndTime: s.now, Dispatched: s.dispatched, Remaining: len(s.queue)}
}
