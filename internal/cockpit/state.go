package cockpit

// SyncState tracks how far the local model is from the backend. Transitions:
// every successful round-trip lands in Synced; a failed write moves to
// PendingWrite (the model already shows the optimistic result); losing the
// backend entirely moves to LocalOnly until a poll succeeds again.
type SyncState int

const (
	// Synced means the last backend round-trip succeeded.
	Synced SyncState = iota
	// PendingWrite means at least one optimistic write has not reached the
	// backend yet.
	PendingWrite
	// LocalOnly means the backend is unreachable and the model is served
	// from local state alone.
	LocalOnly
)

func (s SyncState) String() string {
	switch s {
	case Synced:
		return "synced"
	case PendingWrite:
		return "pending-write"
	case LocalOnly:
		return "local-only"
	default:
		return "unknown"
	}
}
