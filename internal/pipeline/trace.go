package pipeline

// Trace is the ordered record of agents that executed during one run.
// Entries are only ever appended; duplicates are kept.
type Trace struct {
	entries []string
}

// NewTrace returns a trace seeded with the given entries.
func NewTrace(entries ...string) *Trace {
	t := &Trace{entries: make([]string, 0, len(entries)+4)}
	t.entries = append(t.entries, entries...)
	return t
}

// Append records an agent at the end of the trace.
func (t *Trace) Append(agent string) {
	t.entries = append(t.entries, agent)
}

// Entries returns a copy of the recorded agents in execution order.
func (t *Trace) Entries() []string {
	out := make([]string, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of recorded agents.
func (t *Trace) Len() int {
	return len(t.entries)
}
