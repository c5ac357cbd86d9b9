package service

import (
	"errors"
	"testing"

	"pocket-mini-server/internal/domain"
	"pocket-mini-server/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBroadcaster struct {
	sessions []string
	messages []*websocket.Message
	err      error
}

func (m *mockBroadcaster) BroadcastToSession(sessionID string, message *websocket.Message) error {
	m.sessions = append(m.sessions, sessionID)
	m.messages = append(m.messages, message)
	return m.err
}

func TestBroadcastService_Notify(t *testing.T) {
	b := &mockBroadcaster{}
	svc := NewBroadcastService(b, discardLogger())

	state := domain.State{SessionID: "s1", Count: 2, Round: 1, Notes: []domain.Note{}}
	svc.Notify("s1", domain.Event{Kind: domain.EventRefresh, State: state})
	svc.Notify("s1", domain.Event{Kind: domain.EventRender, State: state})

	require.Len(t, b.messages, 2)
	assert.Equal(t, []string{"s1", "s1"}, b.sessions)
	assert.Equal(t, websocket.TypeRefresh, b.messages[0].Type)
	assert.Equal(t, websocket.TypeStateUpdate, b.messages[1].Type)

	var payload websocket.StatePayload
	require.NoError(t, b.messages[1].UnmarshalPayload(&payload))
	assert.Equal(t, state, payload.State)
}

func TestBroadcastService_ErrorsAreSwallowed(t *testing.T) {
	b := &mockBroadcaster{err: errors.New("down")}
	svc := NewBroadcastService(b, discardLogger())

	assert.NotPanics(t, func() {
		svc.Notify("s1", domain.Event{Kind: domain.EventRender})
	})
	assert.Len(t, b.messages, 1)
}
