package router

import (
	"context"
	"net/netip"

	"go.uber.org/zap"

	bgppkg "github.com/routesim/netsim/internal/bgp"
	"github.com/routesim/netsim/internal/metrics"
	"github.com/routesim/netsim/internal/rib"
	"github.com/routesim/netsim/internal/topology"
	"github.com/routesim/netsim/internal/transport"
)

// deliverLocal handles a datagram addressed to this router's own loopback,
// spec.md §4.3: "deliver to the local protocol handler (ICMP echo for ping,
// TCP-like BGP for BGP messages)".
func (r *Router) deliverLocal(ctx context.Context, f transport.IPFrame) {
	switch p := f.Payload.(type) {
	case transport.ICMPEcho:
		r.handleICMP(ctx, f.Src, p)
	case transport.BGPPayload:
		r.handleBGPPayload(ctx, f.Src, p)
	}
}

func (r *Router) handleBGPPayload(ctx context.Context, src string, p transport.BGPPayload) {
	remoteSpec, ok := r.dir.ByLoopback(src)
	if !ok {
		return
	}
	sess, ok := r.sessions[remoteSpec.Name]
	if !ok {
		return
	}
	msg, err := bgppkg.Decode(p.Data)
	if err != nil {
		r.sink.Warn(topology.CategoryBGP, "malformed bgp message", zap.String("from", src), zap.Error(err))
		return
	}
	switch m := msg.(type) {
	case bgppkg.OpenMessage:
		r.handleOpen(ctx, remoteSpec.Name, sess, m)
	case bgppkg.UpdateMessage:
		r.handleUpdate(ctx, remoteSpec.Name, sess, m)
	case bgppkg.NotificationMessage:
		r.sink.Warn(topology.CategoryBGP, "notification received", zap.String("from", src), zap.String("reason", m.Reason))
	}
}

func (r *Router) sendOpen(ctx context.Context, remote string, sess *sessionState) {
	msg := bgppkg.OpenMessage{ASNumber: uint16(r.spec.AS), BGPID: r.bgpID}
	data, err := bgppkg.Encode(msg)
	if err != nil {
		return
	}
	r.sink.Event(topology.CategoryBGP, "open sent", zap.String("to", remote))
	r.sendIP(ctx, sess.remoteLoopback.String(), transport.BGPPayload{Data: data})
}

func (r *Router) handleOpen(ctx context.Context, remote string, sess *sessionState, m bgppkg.OpenMessage) {
	firstEstablish := sess.State != bgppkg.StateEstablished
	sess.RemoteID = m.BGPID
	if sess.State == bgppkg.StateIdle {
		sess.State = bgppkg.StateOpenSent
		r.sendOpen(ctx, remote, sess)
	}
	sess.State = bgppkg.StateEstablished
	if firstEstablish {
		r.sink.Event(topology.CategoryBGP, "session established", zap.String("remote", remote))
		metrics.SessionsEstablishedTotal.WithLabelValues(r.spec.Name, remote).Inc()
		r.advertiseAll(ctx, remote, sess)
	}
}

func (r *Router) handleUpdate(ctx context.Context, remote string, sess *sessionState, m bgppkg.UpdateMessage) {
	if m.Withdraw {
		r.bgpTable.Store(m.Prefix, remote, nil)
		r.sink.Event(topology.CategoryBGP, "withdraw received", zap.String("from", remote), zap.String("prefix", m.Prefix))
		r.reevaluate(ctx, m.Prefix)
		return
	}

	if containsAS(m.ASPath, r.spec.AS) {
		r.sink.Warn(topology.CategoryBGP, "as-path loop detected, dropping update",
			zap.String("from", remote), zap.String("prefix", m.Prefix), zap.Ints("as_path", m.ASPath))
		return
	}

	route := &bgppkg.Route{
		Prefix:      m.Prefix,
		ASPath:      append([]int(nil), m.ASPath...),
		NextHop:     m.NextHop,
		NextHopID:   r.dir.IDByLoopback(m.NextHop),
		LocalPref:   bgppkg.LocalPref(sess.LocalRel),
		FromSession: remote,
		FromRel:     sess.LocalRel,
		SenderID:    int(sess.RemoteID),
	}
	r.bgpTable.Store(m.Prefix, remote, route)
	r.sink.Event(topology.CategoryBGP, "update received", zap.String("from", remote), zap.String("prefix", m.Prefix))
	r.reevaluate(ctx, m.Prefix)
}

func containsAS(path []int, as int) bool {
	for _, a := range path {
		if a == as {
			return true
		}
	}
	return false
}

// originate creates this router's own AS prefix route and installs it,
// spec.md §4.4 "Origination".
func (r *Router) originate(ctx context.Context) {
	route := &bgppkg.Route{
		Prefix:     r.connectedPrefix.String(),
		ASPath:     []int{r.spec.AS},
		NextHop:    r.loopback.String(),
		NextHopID:  r.spec.ID,
		LocalPref:  255,
		Originated: true,
		SenderID:   int(r.bgpID),
	}
	r.bgpTable.Store(route.Prefix, "__self__", route)
	r.sink.Event(topology.CategoryBGP, "originated prefix", zap.String("prefix", route.Prefix))
	r.reevaluate(ctx, route.Prefix)
}

// reevaluate recomputes the best candidate for prefix across every session
// and, on change, updates the RIB and re-advertises per policy, spec.md
// §4.4 steps 4-5.
func (r *Router) reevaluate(ctx context.Context, prefix string) {
	candidates := r.bgpTable.Candidates(prefix)
	newBest := bgppkg.Best(candidates)
	oldBest, hadOld := r.bgpTable.Best(prefix)

	if newBest == nil {
		if !hadOld {
			return
		}
		r.bgpTable.SetBest(prefix, nil)
		r.rib.Withdraw(r.parsePrefixOrConnected(prefix), rib.SourceBGP)
		r.readvertise(ctx, prefix, nil)
		return
	}
	if hadOld && sameRoute(oldBest, newBest) {
		return
	}
	r.bgpTable.SetBest(prefix, newBest)
	r.installRIB(prefix, newBest)
	r.readvertise(ctx, prefix, newBest)
}

func sameRoute(a, b *bgppkg.Route) bool {
	if a.NextHop != b.NextHop || a.LocalPref != b.LocalPref || len(a.ASPath) != len(b.ASPath) {
		return false
	}
	for i := range a.ASPath {
		if a.ASPath[i] != b.ASPath[i] {
			return false
		}
	}
	return true
}

func (r *Router) installRIB(prefix string, best *bgppkg.Route) {
	p := r.parsePrefixOrConnected(prefix)
	// The previous best's bgp route is replaced, not compared against.
	r.rib.Withdraw(p, rib.SourceBGP)
	nh, err := netip.ParseAddr(best.NextHop)
	if err != nil {
		return
	}
	resolved, ok := r.rib.Lookup(nh)
	if !ok || resolved.Source == rib.SourceBGP {
		r.sink.Warn(topology.CategoryBGP, "bgp next-hop not resolvable, route not installed",
			zap.String("prefix", prefix), zap.String("next_hop", best.NextHop))
		return
	}
	installed := r.rib.Install(&rib.Route{
		Prefix:  p,
		NextHop: nh,
		Port:    resolved.Port,
		Source:  rib.SourceBGP,
		Metric:  len(best.ASPath),
	})
	if installed {
		metrics.RoutesInstalledTotal.WithLabelValues(r.spec.Name, prefix).Inc()
	}
}

// readvertise re-evaluates export eligibility for prefix/best on every
// configured session, spec.md §4.4's export table, sending an Update or a
// withdraw as the session's previously-advertised state requires.
func (r *Router) readvertise(ctx context.Context, prefix string, best *bgppkg.Route) {
	for remote, sess := range r.sessions {
		r.exportToSession(ctx, remote, sess, prefix, best)
	}
}

func (r *Router) advertiseAll(ctx context.Context, remote string, sess *sessionState) {
	r.bgpTable.AllBest(func(prefix string, best *bgppkg.Route) bool {
		r.exportToSession(ctx, remote, sess, prefix, best)
		return true
	})
}

func (r *Router) exportToSession(ctx context.Context, remote string, sess *sessionState, prefix string, best *bgppkg.Route) {
	shouldExport := best != nil && bgppkg.ShouldExportRoute(best, sess.LocalRel)
	if !shouldExport {
		if sess.Advertised[prefix] {
			delete(sess.Advertised, prefix)
			r.sendUpdate(ctx, remote, sess, bgppkg.UpdateMessage{Withdraw: true, Prefix: prefix})
		}
		return
	}

	// Next-hop-self: a router always advertises itself as next-hop for a
	// route it re-exports, whether the session is eBGP or iBGP. The export
	// table guarantees an iBGP-learned route is never re-exported over
	// another iBGP session, so every route reaching this point was learned
	// from outside the local AS (or originated here).
	asPath := best.ASPath
	nextHop := r.loopback.String()
	if sess.LocalRel != topology.LocalRelIBGP && !best.Originated {
		// A route this router originated already carries AS_PATH=[local AS]
		// (spec.md §4.4 "Origination"), which IS its first-hop eBGP
		// representation; only routes learned from elsewhere get the local
		// AS prepended again as they cross an eBGP boundary.
		asPath = append([]int{r.spec.AS}, best.ASPath...)
	}
	sess.Advertised[prefix] = true
	r.sendUpdate(ctx, remote, sess, bgppkg.UpdateMessage{
		Prefix:    prefix,
		ASPath:    asPath,
		NextHop:   nextHop,
		LocalPref: best.LocalPref,
	})
}

func (r *Router) sendUpdate(ctx context.Context, remote string, sess *sessionState, msg bgppkg.UpdateMessage) {
	if sess.State != bgppkg.StateEstablished {
		return
	}
	data, err := bgppkg.Encode(msg)
	if err != nil {
		return
	}
	if msg.Withdraw {
		r.sink.Event(topology.CategoryBGP, "withdraw sent", zap.String("to", remote), zap.String("prefix", msg.Prefix))
	} else {
		r.sink.Event(topology.CategoryBGP, "update sent", zap.String("to", remote), zap.String("prefix", msg.Prefix))
	}
	r.sendIP(ctx, sess.remoteLoopback.String(), transport.BGPPayload{Data: data})
}

// parsePrefixOrConnected parses prefix, falling back to this router's own
// connected prefix on error — prefixes only ever originate from
// originate() or a peer's Update, both already validated CIDR strings, so
// the fallback path is unreachable in practice.
func (r *Router) parsePrefixOrConnected(prefix string) netip.Prefix {
	p, err := netip.ParsePrefix(prefix)
	if err != nil {
		return r.connectedPrefix
	}
	return p
}
