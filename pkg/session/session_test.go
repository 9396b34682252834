package session

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/topoview/pkg/diagram"
	"github.com/matzehuels/topoview/pkg/errors"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore(ttl time.Duration) (*MemoryStore, *clock) {
	c := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(ttl)
	s.now = c.now
	return s, c
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(time.Minute)

	sess := New(diagram.New(diagram.Options{}))
	if err := s.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, sess.ID)
	if err != nil || got != sess {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if err := s.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, sess.ID); err != ErrNotFound {
		t.Errorf("Get after delete = %v", err)
	}
	if err := s.Delete(ctx, sess.ID); err != ErrNotFound {
		t.Errorf("second Delete = %v", err)
	}
}

func TestMemoryStoreInvalidID(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	if _, err := s.Get(context.Background(), "../etc"); !errors.Is(err, errors.ErrCodeInvalidID) {
		t.Errorf("Get invalid id = %v", err)
	}
	if err := s.Set(context.Background(), &Session{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Set without id = %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore(time.Minute)

	a := New(nil)
	b := New(nil)
	_ = s.Set(ctx, a)
	_ = s.Set(ctx, b)

	// Touching a slides its deadline; b stays idle.
	c.t = c.t.Add(50 * time.Second)
	if _, err := s.Get(ctx, a.ID); err != nil {
		t.Fatalf("Get a: %v", err)
	}
	c.t = c.t.Add(30 * time.Second)

	if _, err := s.Get(ctx, a.ID); err != nil {
		t.Errorf("touched session should live, got %v", err)
	}
	n, err := s.Cleanup(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Cleanup = %d, %v; want 1", n, err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}

	c.t = c.t.Add(2 * time.Minute)
	if _, err := s.Get(ctx, a.ID); err != ErrExpired {
		t.Errorf("Get expired = %v", err)
	}
	if !errors.Is(ErrExpired, errors.ErrCodeSessionNotFound) {
		t.Error("expired sessions should read as not found")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := NewMemoryStore(time.Millisecond)
	_ = s.Set(context.Background(), New(nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for s.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("expired session was never cleaned up")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}
