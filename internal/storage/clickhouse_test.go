package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// newIdleStream builds a stream with no connection. flush is a no-op for an
// empty batch, so as long as no events are written the loop never touches conn.
func newIdleStream(buffer int) *ClickHouseStream {
	return &ClickHouseStream{
		logger:  zap.NewNop(),
		events:  make(chan StreamEvent, buffer),
		done:    make(chan struct{}),
		flushed: make(chan struct{}),
	}
}

func TestWrite_ConcurrentDropsAreCounted(t *testing.T) {
	// Unbuffered channel with no reader: every Write drops.
	s := newIdleStream(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Write(StreamEvent{UserID: "u1"})
		}()
	}
	wg.Wait()

	if got := s.dropped.Load(); got != 8 {
		t.Errorf("dropped = %d, want 8", got)
	}
}

func TestClose_WaitsForFlushLoop(t *testing.T) {
	s := newIdleStream(16)
	go s.flushLoop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// flushLoop must have returned before Close did.
	select {
	case <-s.flushed:
	default:
		t.Error("Close returned before flushLoop finished")
	}
}

func TestClose_ContextBoundsTheWait(t *testing.T) {
	// flushLoop never started, so flushed never closes.
	s := newIdleStream(16)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.Close(ctx); err == nil {
		t.Error("expected context error when the drain does not finish")
	}
}
