package transport

import (
	"context"
	"testing"
	"time"
)

func TestLink_FIFOPerDirection(t *testing.T) {
	var c Counter
	a, b := NewLink(&c)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := a.Send(ctx, ARPFrame{Request: true, SenderIP: "10.0.1.1", TargetIP: "10.0.1.2"}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	for i := 0; i < 5; i++ {
		f, err := b.Recv(ctx)
		if err != nil {
			t.Fatalf("recv %d: %v", i, err)
		}
		arp, ok := f.(ARPFrame)
		if !ok {
			t.Fatalf("recv %d: wrong type %T", i, f)
		}
		if arp.SenderIP != "10.0.1.1" {
			t.Fatalf("recv %d: unexpected payload %+v", i, arp)
		}
	}

	if !c.Zero() {
		t.Fatalf("expected counter zero after drain, got %d", c.Load())
	}
}

func TestLink_CounterTracksInFlight(t *testing.T) {
	var c Counter
	a, b := NewLink(&c)
	ctx := context.Background()

	if !c.Zero() {
		t.Fatal("expected zero counter initially")
	}
	if err := a.Send(ctx, BPDUFrame{RootID: 1}); err != nil {
		t.Fatal(err)
	}
	if c.Zero() {
		t.Fatal("expected nonzero counter with message in flight")
	}
	if _, err := b.Recv(ctx); err != nil {
		t.Fatal(err)
	}
	if !c.Zero() {
		t.Fatal("expected zero counter after receive")
	}
}

func TestLink_SendRespectsContextCancel(t *testing.T) {
	var c Counter
	a, _ := NewLink(&c)
	for i := 0; i < DefaultBufferSize; i++ {
		if err := a.Send(context.Background(), BPDUFrame{}); err != nil {
			t.Fatal(err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.Send(ctx, BPDUFrame{}); err == nil {
		t.Fatal("expected send to block and then fail on context deadline once buffer is full")
	}
}

func TestBPDUFrame_Less(t *testing.T) {
	better := BPDUFrame{RootID: 1, RootPathCost: 5, SenderID: 2, SenderPortID: 1}
	worse := BPDUFrame{RootID: 1, RootPathCost: 6, SenderID: 1, SenderPortID: 1}
	if !better.Less(worse) {
		t.Fatal("expected lower root-path-cost to win regardless of sender id")
	}
	if worse.Less(better) {
		t.Fatal("Less should not be symmetric here")
	}
}
