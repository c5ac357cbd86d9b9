package service

import (
	"io"
	"sync"
	"testing"
	"time"

	"pocket-mini-server/internal/domain"
	"pocket-mini-server/internal/session"

	"github.com/sirupsen/logrus"
)

type mockNotifier struct {
	events []domain.Event
}

func (m *mockNotifier) Notify(sessionID string, event domain.Event) {
	m.events = append(m.events, event)
}

func (m *mockNotifier) kinds() []domain.EventKind {
	kinds := make([]domain.EventKind, len(m.events))
	for i, e := range m.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func discardLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func newTestActionService() (*ActionService, *mockNotifier) {
	notifier := &mockNotifier{}
	service := NewActionService(notifier, discardLogger())
	clock := time.Unix(1760000000, 0)
	service.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return service, notifier
}

func TestActionService_Counter(t *testing.T) {
	service, notifier := newTestActionService()
	store := session.NewStore("s1")

	ops := []struct {
		reset bool
		want  int
	}{
		{false, 1},
		{false, 2},
		{true, 0},
		{true, 0},
		{false, 1},
		{false, 2},
		{false, 3},
	}

	for i, op := range ops {
		var state domain.State
		if op.reset {
			state = service.ResetCounter(store)
		} else {
			state = service.Increment(store)
		}
		if state.Count != op.want {
			t.Fatalf("step %d: expected count %d, got %d", i, op.want, state.Count)
		}
		if state.Count < 0 {
			t.Fatalf("step %d: count went negative", i)
		}
	}

	if len(notifier.events) != len(ops) {
		t.Errorf("expected %d render events, got %d", len(ops), len(notifier.events))
	}
}

func TestActionService_AddNote(t *testing.T) {
	service, _ := newTestActionService()
	store := session.NewStore("s1")

	for _, blank := range []string{"", "   ", "\t\n"} {
		state := service.AddNote(store, blank)
		if len(state.Notes) != 0 {
			t.Fatalf("expected blank note %q to be ignored, got %v", blank, state.Notes)
		}
	}

	service.AddNote(store, "older")
	state := service.AddNote(store, "  hi  ")

	if len(state.Notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(state.Notes))
	}
	if state.Notes[0].Text != "hi" {
		t.Errorf("expected newest note %q first, got %q", "hi", state.Notes[0].Text)
	}
	if state.Notes[1].Text != "older" {
		t.Errorf("expected %q second, got %q", "older", state.Notes[1].Text)
	}
	if state.Notes[0].ID <= state.Notes[1].ID {
		t.Errorf("expected newer note to have larger id: %v <= %v", state.Notes[0].ID, state.Notes[1].ID)
	}
}

func TestActionService_DeleteNote(t *testing.T) {
	service, notifier := newTestActionService()
	store := session.NewStore("s1")

	service.AddNote(store, "a")
	service.AddNote(store, "b")
	state := service.AddNote(store, "c")
	target := state.Notes[1]

	notifier.events = nil
	state = service.DeleteNote(store, target.ID)

	if len(state.Notes) != 2 {
		t.Fatalf("expected 2 notes after delete, got %d", len(state.Notes))
	}
	for _, n := range state.Notes {
		if n.ID == target.ID {
			t.Errorf("note %v still present", target.ID)
		}
	}
	if state.Notes[0].Text != "c" || state.Notes[1].Text != "a" {
		t.Errorf("unexpected remaining notes: %v", state.Notes)
	}

	kinds := notifier.kinds()
	if len(kinds) != 2 || kinds[0] != domain.EventRefresh || kinds[1] != domain.EventRender {
		t.Errorf("expected [refresh render], got %v", kinds)
	}
	if len(notifier.events[0].State.Notes) != 2 {
		t.Errorf("refresh event should carry the post-delete state")
	}
}

func TestActionService_DeleteMissingNote(t *testing.T) {
	service, notifier := newTestActionService()
	store := session.NewStore("s1")
	before := service.AddNote(store, "keep")

	notifier.events = nil
	after := service.DeleteNote(store, 12345.678)

	if len(after.Notes) != 1 || after.Notes[0] != before.Notes[0] {
		t.Errorf("expected notes unchanged, got %v", after.Notes)
	}
	if kinds := notifier.kinds(); len(kinds) != 2 || kinds[0] != domain.EventRefresh {
		t.Errorf("expected refresh even for a missing id, got %v", kinds)
	}
}

func TestActionService_Game(t *testing.T) {
	service, _ := newTestActionService()
	store := session.NewStore("s1")
	store.SetScore(9)

	state := service.NextRound(store)
	if state.Round != 2 || state.Score != 9 {
		t.Errorf("expected round 2 score 9, got round %d score %d", state.Round, state.Score)
	}

	state = service.NextRound(store)
	if state.Round != 3 {
		t.Errorf("expected round 3, got %d", state.Round)
	}

	state = service.ResetGame(store)
	if state.Round != 1 || state.Score != 0 {
		t.Errorf("expected round 1 score 0, got round %d score %d", state.Round, state.Score)
	}

	state = service.ResetGame(store)
	if state.Round != 1 || state.Score != 0 {
		t.Errorf("reset should be stable, got round %d score %d", state.Round, state.Score)
	}
}

func TestActionService_SaveUploadToNotes(t *testing.T) {
	service, _ := newTestActionService()
	store := session.NewStore("s1")
	service.AddNote(store, "first")

	state := service.SaveUploadToNotes(store, "scores.csv")

	if len(state.Notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(state.Notes))
	}
	if state.Notes[0].Text != "Uploaded from scores.csv" {
		t.Errorf("unexpected note text %q", state.Notes[0].Text)
	}
}

func TestActionService_NilNotifier(t *testing.T) {
	service := NewActionService(nil, discardLogger())
	store := session.NewStore("s1")

	state := service.Increment(store)
	state = service.DeleteNote(store, 1)

	if state.Count != 1 {
		t.Errorf("expected count 1, got %d", state.Count)
	}
}

type orderedNotifier struct {
	mu     sync.Mutex
	counts []int
	kinds  []domain.EventKind
}

func (n *orderedNotifier) Notify(sessionID string, event domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counts = append(n.counts, event.State.Count)
	n.kinds = append(n.kinds, event.Kind)
}

func TestActionService_ConcurrentIncrementsRenderInOrder(t *testing.T) {
	notifier := &orderedNotifier{}
	service := NewActionService(notifier, discardLogger())
	store := session.NewStore("s1")

	const workers = 50
	const perWorker = 40

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				service.Increment(store)
			}
		}()
	}
	wg.Wait()

	if len(notifier.counts) != workers*perWorker {
		t.Fatalf("expected %d renders, got %d", workers*perWorker, len(notifier.counts))
	}
	for i, count := range notifier.counts {
		if count != i+1 {
			t.Fatalf("render %d carried count %d, want %d", i, count, i+1)
		}
	}
}

func TestActionService_DeleteEventsAreNotInterleaved(t *testing.T) {
	notifier := &orderedNotifier{}
	service := NewActionService(notifier, discardLogger())
	store := session.NewStore("s1")

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			service.DeleteNote(store, 1)
		}()
		go func() {
			defer wg.Done()
			service.Increment(store)
		}()
	}
	wg.Wait()

	for i, kind := range notifier.kinds {
		if kind != domain.EventRefresh {
			continue
		}
		if i+1 >= len(notifier.kinds) || notifier.kinds[i+1] != domain.EventRender {
			t.Fatalf("refresh at %d not followed directly by its render", i)
		}
		if notifier.counts[i] != notifier.counts[i+1] {
			t.Fatalf("refresh and render at %d carry different states", i)
		}
	}
}
