package client

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestOperationGuardRejectsConcurrent(t *testing.T) {
	g := NewOperationGuard()

	if err := g.Begin("ask ai"); err != nil {
		t.Fatalf("first Begin failed: %v", err)
	}

	err := g.Begin("ask ai")
	var inProgress *ErrOperationInProgress
	if !errors.As(err, &inProgress) {
		t.Fatalf("expected ErrOperationInProgress, got %v", err)
	}
	if inProgress.Operation != "ask ai" {
		t.Errorf("expected operation name in error, got %q", inProgress.Operation)
	}

	// Different operations are independent.
	if err := g.Begin("improve code"); err != nil {
		t.Errorf("unrelated operation rejected: %v", err)
	}

	g.End("ask ai")
	if err := g.Begin("ask ai"); err != nil {
		t.Errorf("Begin after End failed: %v", err)
	}
}

func TestOperationGuardDo(t *testing.T) {
	g := NewOperationGuard()

	var running, rejected int32
	var wg sync.WaitGroup
	block := make(chan struct{})

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := g.Do("ask ai", func() error {
				atomic.AddInt32(&running, 1)
				<-block
				return nil
			})
			var inProgress *ErrOperationInProgress
			if errors.As(err, &inProgress) {
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}

	// Let goroutines race for the slot, then release the winner.
	for atomic.LoadInt32(&rejected)+atomic.LoadInt32(&running) < 10 {
	}
	close(block)
	wg.Wait()

	if got := atomic.LoadInt32(&running); got != 1 {
		t.Errorf("expected exactly 1 operation to run, got %d", got)
	}
	if got := atomic.LoadInt32(&rejected); got != 9 {
		t.Errorf("expected 9 rejections, got %d", got)
	}
}
