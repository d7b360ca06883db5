package router

import "context"

// Command is the tagged variant of everything the controller can ask a
// router to do, delivered over a dedicated command channel per spec.md §2:
// "The Controller communicates with actors through a separate command
// channel per actor." Exactly one field is non-nil.
type Command struct {
	Originate *OriginateCmd
	Ping      *PingCmd
	Snapshot  *SnapshotCmd
}

// OriginateCmd instructs the router to originate its own AS prefix into
// BGP, spec.md §4.4 "Origination".
type OriginateCmd struct {
	Done chan<- struct{}
}

// PingCmd instructs the router to send an ICMP echo to Target (a loopback
// IP). If Target does not parse or has no route, the router answers
// PingUnreachable immediately, before handling its next message. Otherwise
// Result receives one PingSuccess when the echo reply arrives, and nothing
// at all if no reply ever arrives.
type PingCmd struct {
	Target string
	Result chan<- PingResult
}

// SnapshotCmd asks the router to report its current RIB/BGP state.
type SnapshotCmd struct {
	Result chan<- Snapshot
}

func (r *Router) handleCommand(ctx context.Context, cmd Command) {
	switch {
	case cmd.Originate != nil:
		r.originate(ctx)
		close(cmd.Originate.Done)
	case cmd.Ping != nil:
		r.handlePing(ctx, cmd.Ping)
	case cmd.Snapshot != nil:
		cmd.Snapshot.Result <- r.snapshot()
	}
}
