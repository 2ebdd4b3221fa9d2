package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/rl1809/pos-register/internal/core/domain"
)

// Mock JournalRepository
type mockJournal struct {
	recorded []int64
	failOn   map[int64]bool
	mu       sync.Mutex
}

func (m *mockJournal) RecordOrder(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		return errors.New("expected a deadline")
	}
	if m.failOn[order.ID] {
		return errors.New("journal unavailable")
	}
	m.recorded = append(m.recorded, order.ID)
	return nil
}

func TestJournalWorker_DrainsQueue(t *testing.T) {
	journal := &mockJournal{failOn: map[int64]bool{2: true}}
	queue := make(chan domain.Order, 5)
	for id := int64(1); id <= 4; id++ {
		queue <- domain.Order{ID: id, SessionID: "s"}
	}
	close(queue)

	done := make(chan struct{})
	go func() {
		JournalWorker(1, queue, journal, time.Second, zaptest.NewLogger(t))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after queue was closed")
	}

	want := []int64{1, 3, 4}
	if len(journal.recorded) != len(want) {
		t.Fatalf("expected %v recorded, got %v", want, journal.recorded)
	}
	for i := range want {
		if journal.recorded[i] != want[i] {
			t.Errorf("expected %v recorded, got %v", want, journal.recorded)
		}
	}
}

func TestJournalWorker_WithRegister(t *testing.T) {
	reg := newTestRegister(t, 10)
	journal := &mockJournal{}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			JournalWorker(id, reg.svc.GetJournalQueue(), journal, time.Second, nil)
		}(i)
	}

	for i := 0; i < 5; i++ {
		reg.mustAdd(t, 1)
		if _, err := reg.svc.CommitOrder(context.Background(), CommitRequest{}); err != nil {
			t.Fatalf("commit failed: %v", err)
		}
	}

	reg.svc.Close()
	wg.Wait()

	if len(journal.recorded) != 5 {
		t.Errorf("expected 5 journaled orders, got %d", len(journal.recorded))
	}
}
