package photos

import (
	"fmt"
	"time"
)

// TraceCapacity is the number of diagnostic entries a resolver retains.
const TraceCapacity = 5

type TraceEntry struct {
	At         time.Time
	Generation uint64
	Message    string
}

func (e TraceEntry) String() string {
	return e.At.Format("15:04:05") + ": " + e.Message
}

// Trace is a rolling buffer of the most recent diagnostic entries.
// It is informational only and never consulted for control flow.
type Trace struct {
	entries []TraceEntry
}

func (t *Trace) add(at time.Time, gen uint64, format string, args ...any) {
	t.entries = append(t.entries, TraceEntry{At: at, Generation: gen, Message: fmt.Sprintf(format, args...)})
	if n := len(t.entries); n > TraceCapacity {
		t.entries = append(t.entries[:0:0], t.entries[n-TraceCapacity:]...)
	}
}

func (t *Trace) reset() { t.entries = nil }

// Entries returns a copy, oldest first.
func (t *Trace) Entries() []TraceEntry {
	out := make([]TraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
