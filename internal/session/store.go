package session

import (
	"math"
	"sync"
	"time"

	"pocket-mini-server/internal/domain"
)

const (
	DefaultCount = 0
	DefaultRound = 1
	DefaultScore = 0

	// noteIDStep is the smallest gap between two note ids.
	noteIDStep = 1e-6
)

// State is the mutable view handed to Store.Apply. It is only valid inside the
// callback.
type State struct {
	Count int
	Round int
	Score int
	Notes []domain.Note

	lastNoteID float64
}

// PrependNote inserts a note at the front and returns it. The id is derived
// from at and is bumped forward when it would not be strictly greater than
// the previous id issued by this session.
func (st *State) PrependNote(text string, at time.Time) domain.Note {
	id := float64(at.UnixMicro()) / 1e6
	if id <= st.lastNoteID {
		id = math.Round((st.lastNoteID+noteIDStep)*1e6) / 1e6
	}
	st.lastNoteID = id

	note := domain.Note{ID: id, Text: text}
	notes := make([]domain.Note, 0, len(st.Notes)+1)
	notes = append(notes, note)
	st.Notes = append(notes, st.Notes...)
	return note
}

// RemoveNote drops every note whose id equals id and reports whether any
// were removed.
func (st *State) RemoveNote(id float64) bool {
	kept := make([]domain.Note, 0, len(st.Notes))
	for _, n := range st.Notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	removed := len(kept) != len(st.Notes)
	st.Notes = kept
	return removed
}

// Store holds one session's values. All access is serialized so a session
// finishes one action before starting the next.
type Store struct {
	id string

	mu       sync.Mutex
	state    State
	lastSeen time.Time
}

func NewStore(id string) *Store {
	s := &Store{id: id, lastSeen: time.Now()}
	s.Init()
	return s
}

func (s *Store) ID() string {
	return s.id
}

// Init fills in defaults for values that were never set. Calling it again
// leaves existing values alone.
func (s *Store) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Round is always >= 1 once set, so zero means absent.
	if s.state.Round < 1 {
		s.state.Round = DefaultRound
	}
	if s.state.Notes == nil {
		s.state.Notes = []domain.Note{}
	}
}

// Apply runs fn with exclusive access to the session values and returns the
// resulting snapshot. Each after callback receives that snapshot before the
// lock is released, so observers see actions of one session in order.
func (s *Store) Apply(fn func(st *State), after ...func(domain.State)) domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	snapshot := s.snapshotLocked()
	for _, f := range after {
		f(snapshot)
	}
	return snapshot
}

func (s *Store) Snapshot() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Count
}

func (s *Store) SetCount(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Count = v
}

func (s *Store) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Round
}

func (s *Store) SetRound(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Round = v
}

func (s *Store) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Score
}

// SetScore is the only way to change the score besides a game reset.
func (s *Store) SetScore(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Score = v
}

func (s *Store) Notes() []domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyNotes(s.state.Notes)
}

func (s *Store) SetNotes(notes []domain.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Notes = copyNotes(notes)
	for _, n := range notes {
		if n.ID > s.state.lastNoteID {
			s.state.lastNoteID = n.ID
		}
	}
}

func (s *Store) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Store) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

func (s *Store) snapshotLocked() domain.State {
	return domain.State{
		SessionID: s.id,
		Count:     s.state.Count,
		Round:     s.state.Round,
		Score:     s.state.Score,
		Notes:     copyNotes(s.state.Notes),
	}
}

func copyNotes(notes []domain.Note) []domain.Note {
	out := make([]domain.Note, len(notes))
	copy(out, notes)
	return out
}
