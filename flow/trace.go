package flow

// TraceSink receives human-readable stage entry/exit events keyed by session
// and stage name. Appends are fire-and-forget: implementations must never
// block the run or surface failures to it, and each appended line must be a
// single atomic write so concurrent sessions do not interleave.
type TraceSink interface {
	Append(sessionID, stage, message string)
}

// noopSink discards all trace events. Used when no sink is configured.
type noopSink struct{}

var _ TraceSink = (*noopSink)(nil)

func (n *noopSink) Append(_, _, _ string) {}
