package bridge

// Command is the tagged variant of everything the controller can ask a
// switch to do, mirroring internal/router.Command (spec.md §2's "separate
// command channel per actor"). Exactly one field is non-nil.
type Command struct {
	Snapshot *SnapshotCmd
}

// SnapshotCmd asks the switch to report its current STP state.
type SnapshotCmd struct {
	Result chan<- Snapshot
}

func (s *Switch) handleCommand(cmd Command) {
	switch {
	case cmd.Snapshot != nil:
		cmd.Snapshot.Result <- s.snapshot()
	}
}
