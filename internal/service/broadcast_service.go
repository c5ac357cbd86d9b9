package service

import (
	"pocket-mini-server/internal/domain"
	"pocket-mini-server/internal/websocket"

	"github.com/sirupsen/logrus"
)

type Broadcaster interface {
	BroadcastToSession(sessionID string, message *websocket.Message) error
}

// BroadcastService forwards state events to the websocket subscribers of a
// session.
type BroadcastService struct {
	broadcaster Broadcaster
	log         *logrus.Entry
}

func NewBroadcastService(broadcaster Broadcaster, logger *logrus.Entry) *BroadcastService {
	return &BroadcastService{
		broadcaster: broadcaster,
		log:         logger,
	}
}

func (s *BroadcastService) Notify(sessionID string, event domain.Event) {
	msgType := websocket.TypeStateUpdate
	if event.Kind == domain.EventRefresh {
		msgType = websocket.TypeRefresh
	}

	msg, err := websocket.NewMessage(msgType, &websocket.StatePayload{State: event.State})
	if err != nil {
		s.log.WithError(err).Error("failed to build state message")
		return
	}

	if err := s.broadcaster.BroadcastToSession(sessionID, msg); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("failed to broadcast state")
	}
}
