package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"docflow/internal/apperr"
)

func TestDispatcherRunsJobs(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{MaxWorkers: 2, QueueSize: 4}, zerolog.Nop())
	defer d.Stop()

	var ran int32
	for i := 0; i < 5; i++ {
		if err := d.Submit(context.Background(), "count", func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if got := atomic.LoadInt32(&ran); got != 5 {
		t.Fatalf("expected 5 jobs to run, got %d", got)
	}

	wantErr := errors.New("boom")
	if err := d.Submit(context.Background(), "fail", func(ctx context.Context) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected job error, got %v", err)
	}
}

func TestDispatcherBusyWhenQueueFull(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{MaxWorkers: 1, QueueSize: 1}, zerolog.Nop())
	defer d.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	go d.Submit(context.Background(), "block", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	// fills the single queue slot
	queued := make(chan error, 1)
	go func() {
		queued <- d.Submit(context.Background(), "queued", func(ctx context.Context) error { return nil })
	}()
	deadline := time.After(2 * time.Second)
	for len(d.JobQueue) == 0 {
		select {
		case <-deadline:
			t.Fatal("queued job never reached the queue")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	err := d.Submit(context.Background(), "overflow", func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrDispatcherBusy) || !errors.Is(err, apperr.ErrBusy) {
		t.Fatalf("expected busy error, got %v", err)
	}

	close(release)
	if err := <-queued; err != nil {
		t.Fatalf("queued job: %v", err)
	}
}

func TestDispatcherContextCancel(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{MaxWorkers: 1, QueueSize: 2}, zerolog.Nop())
	defer d.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	go d.Submit(context.Background(), "block", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	var ran int32
	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Submit(ctx, "cancelled", func(ctx context.Context) error {
			atomic.StoreInt32(&ran, 1)
			return nil
		})
	}()
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	close(release)

	// the cancelled job is skipped once a worker picks it up
	if err := d.Submit(context.Background(), "after", func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("submit after cancel: %v", err)
	}
	if atomic.LoadInt32(&ran) != 0 {
		t.Fatal("cancelled job should not run")
	}
}

func TestDispatcherRecoversPanics(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{MaxWorkers: 1, QueueSize: 1}, zerolog.Nop())
	defer d.Stop()

	err := d.Submit(context.Background(), "panic", func(ctx context.Context) error { panic("bad pdf") })
	if err == nil {
		t.Fatal("expected error from panicking job")
	}
	if err := d.Submit(context.Background(), "ok", func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("worker should survive a panic: %v", err)
	}
}

func TestDispatcherStop(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{MaxWorkers: 1, QueueSize: 1}, zerolog.Nop())
	d.Stop()
	d.Stop()
	err := d.Submit(context.Background(), "late", func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrDispatcherStopped) {
		t.Fatalf("expected stopped error, got %v", err)
	}
}
