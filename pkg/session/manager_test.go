package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/airband-io/airband/pkg/adapters/memory"
	"github.com/airband-io/airband/pkg/domain"
	"github.com/airband-io/airband/pkg/ports"
)

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id == "" || seen[id] {
			t.Fatalf("duplicate or empty id: %q", id)
		}
		seen[id] = true
	}
}

func TestUpdateLoadsAppliesSaves(t *testing.T) {
	store := memory.NewStore()
	m := NewManager(store)
	ctx := context.Background()

	if err := store.Save(ctx, domain.NewSession("s1", "g1")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	updated, err := m.Update(ctx, "s1", func(_ context.Context, s *domain.Session) (*domain.Session, error) {
		next := s.Clone()
		next.CurrentNodeID = "clearance"
		return next, nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.CurrentNodeID != "clearance" {
		t.Errorf("updated node = %q", updated.CurrentNodeID)
	}

	loaded, err := m.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.CurrentNodeID != "clearance" {
		t.Errorf("persisted node = %q", loaded.CurrentNodeID)
	}
}

func TestUpdateErrorSkipsSave(t *testing.T) {
	store := memory.NewStore()
	m := NewManager(store)
	ctx := context.Background()

	if err := store.Save(ctx, domain.NewSession("s1", "g1")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	boom := errors.New("transition rejected")
	_, err := m.Update(ctx, "s1", func(_ context.Context, s *domain.Session) (*domain.Session, error) {
		next := s.Clone()
		next.CurrentNodeID = "should-not-persist"
		return next, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update = %v, want wrapped fn error", err)
	}

	loaded, err := m.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.CurrentNodeID != "" {
		t.Errorf("failed update leaked: node = %q", loaded.CurrentNodeID)
	}
}

func TestUpdateMissingSession(t *testing.T) {
	m := NewManager(memory.NewStore())
	_, err := m.Update(context.Background(), "ghost", func(_ context.Context, s *domain.Session) (*domain.Session, error) {
		return s, nil
	})
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("Update = %v, want ErrSessionNotFound", err)
	}
}

func TestWithLockSerializesPerSession(t *testing.T) {
	m := NewManager(memory.NewStore())
	ctx := context.Background()

	const workers = 8
	const rounds = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				_ = m.WithLock(ctx, "s1", func(context.Context) error {
					counter++ // safe only if WithLock serializes
					return nil
				})
			}
		}()
	}
	wg.Wait()

	if counter != workers*rounds {
		t.Errorf("counter = %d, want %d", counter, workers*rounds)
	}
}

// recordingLocker records acquire/release pairs.
type recordingLocker struct {
	mu       sync.Mutex
	acquired int
	released int
	failNext bool
}

func (l *recordingLocker) Lock(_ context.Context, _ string, _ time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failNext {
		return nil, errors.New("lock held elsewhere")
	}
	l.acquired++
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released++
		return nil
	}, nil
}

func TestDistributedLockerWrapsCriticalSection(t *testing.T) {
	locker := &recordingLocker{}
	m := NewManager(memory.NewStore(), WithLocker(locker), WithLockTTL(time.Second))
	ctx := context.Background()

	err := m.WithLock(ctx, "s1", func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("WithLock: %v", err)
	}
	if locker.acquired != 1 || locker.released != 1 {
		t.Errorf("locker acquired=%d released=%d, want 1/1", locker.acquired, locker.released)
	}

	locker.failNext = true
	err = m.WithLock(ctx, "s1", func(context.Context) error {
		t.Error("critical section ran without the distributed lock")
		return nil
	})
	if err == nil {
		t.Fatal("expected lock acquisition failure")
	}
}
