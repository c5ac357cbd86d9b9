package service

import (
	"strings"
	"time"

	"pocket-mini-server/internal/domain"
	"pocket-mini-server/internal/session"

	"github.com/sirupsen/logrus"
)

const uploadNotePrefix = "Uploaded from "

// Notifier is told about every state change. Render follows each action;
// refresh is sent in addition when a change must be shown right away.
type Notifier interface {
	Notify(sessionID string, event domain.Event)
}

// ActionService applies user actions to a session store.
type ActionService struct {
	notifier Notifier
	now      func() time.Time
	log      *logrus.Entry
}

func NewActionService(notifier Notifier, logger *logrus.Entry) *ActionService {
	return &ActionService{
		notifier: notifier,
		now:      time.Now,
		log:      logger,
	}
}

func (s *ActionService) Increment(store *session.Store) domain.State {
	return s.apply(store, func(st *session.State) {
		st.Count++
	}, domain.EventRender)
}

func (s *ActionService) ResetCounter(store *session.Store) domain.State {
	return s.apply(store, func(st *session.State) {
		st.Count = 0
	}, domain.EventRender)
}

// AddNote prepends the trimmed text. Blank text leaves the notes untouched.
func (s *ActionService) AddNote(store *session.Store, text string) domain.State {
	text = strings.TrimSpace(text)

	return s.apply(store, func(st *session.State) {
		if text == "" {
			return
		}
		note := st.PrependNote(text, s.now())
		s.log.WithFields(logrus.Fields{
			"session_id": store.ID(),
			"note_id":    note.ID,
		}).Debug("note added")
	}, domain.EventRender)
}

// DeleteNote removes the note with the given id, if any, and forces an
// immediate refresh before the regular render.
func (s *ActionService) DeleteNote(store *session.Store, id float64) domain.State {
	return s.apply(store, func(st *session.State) {
		removed := st.RemoveNote(id)
		s.log.WithFields(logrus.Fields{
			"session_id": store.ID(),
			"note_id":    id,
			"removed":    removed,
		}).Debug("note delete")
	}, domain.EventRefresh, domain.EventRender)
}

func (s *ActionService) NextRound(store *session.Store) domain.State {
	return s.apply(store, func(st *session.State) {
		st.Round++
	}, domain.EventRender)
}

func (s *ActionService) ResetGame(store *session.Store) domain.State {
	return s.apply(store, func(st *session.State) {
		st.Score = 0
		st.Round = session.DefaultRound
	}, domain.EventRender)
}

// SaveUploadToNotes records that fileName was uploaded.
func (s *ActionService) SaveUploadToNotes(store *session.Store, fileName string) domain.State {
	return s.apply(store, func(st *session.State) {
		st.PrependNote(uploadNotePrefix+fileName, s.now())
	}, domain.EventRender)
}

// apply mutates the store and emits events in order while the session is
// still locked.
func (s *ActionService) apply(store *session.Store, fn func(st *session.State), events ...domain.EventKind) domain.State {
	return store.Apply(fn, func(state domain.State) {
		for _, kind := range events {
			s.notify(state, kind)
		}
	})
}

func (s *ActionService) notify(state domain.State, kind domain.EventKind) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(state.SessionID, domain.Event{Kind: kind, State: state})
}
