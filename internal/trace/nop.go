package trace

import "sync"

type nopTracer struct{}

func (nopTracer) Emit(*Event) {}
func (nopTracer) Flush() error { return nil }
func (nopTracer) Close() error { return nil }
func (nopTracer) Level() Level { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop discards everything; FromContext returns it when no tracer is set.
var Nop Tracer = nopTracer{}

// Recorder keeps emitted events in memory, filtered like StreamTracer.
// Tests use it to assert on spans without parsing formatted output.
type Recorder struct {
	mu     sync.Mutex
	level  Level
	events []Event
}

// NewRecorder creates a Recorder emitting at level.
func NewRecorder(level Level) *Recorder {
	return &Recorder{level: level}
}

func (r *Recorder) Emit(ev *Event) {
	if ev == nil || !accepts(r.level, ev) {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, *ev)
	r.mu.Unlock()
}

func (r *Recorder) Flush() error { return nil }
func (r *Recorder) Close() error { return nil }
func (r *Recorder) Level() Level { return r.level }
func (r *Recorder) Enabled() bool { return r.level > LevelOff }

// Events returns a copy of the recorded events in emission order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns "kind:name" for every recorded event.
func (r *Recorder) Names() []string {
	evs := r.Events()
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.Kind.String() + ":" + ev.Name
	}
	return out
}
