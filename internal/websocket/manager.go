package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type ClientMessage struct {
	Client  *Client
	Message []byte
}

type registration struct {
	client   *Client
	accepted chan bool
}

type Manager struct {
	clients      map[string]*Client
	sessionIndex map[string]map[string]bool
	clientsMutex sync.RWMutex

	registerCh   chan registration
	unregisterCh chan *Client
	inbound      chan *ClientMessage
	done         chan struct{}

	maxConnPerSession int
	maxMessageSize    int64
	writeWait         time.Duration
	pongWait          time.Duration
	pingPeriod        time.Duration
	messageHandler    MessageHandler
	log               *logrus.Entry
}

type MessageHandler interface {
	HandleWebSocketMessage(client *Client, msg *Message) error
}

// DefaultMaxConnPerSession applies when Options.MaxConnPerSession is not
// positive.
const DefaultMaxConnPerSession = 5

type Options struct {
	MaxConnPerSession int
	MaxMessageSize    int64
	WriteWait         time.Duration
	PongWait          time.Duration
	PingPeriod        time.Duration
}

func NewManager(opts Options, logger *logrus.Entry) *Manager {
	if opts.MaxConnPerSession <= 0 {
		opts.MaxConnPerSession = DefaultMaxConnPerSession
	}

	return &Manager{
		clients:           make(map[string]*Client),
		sessionIndex:      make(map[string]map[string]bool),
		registerCh:        make(chan registration),
		unregisterCh:      make(chan *Client),
		inbound:           make(chan *ClientMessage),
		done:              make(chan struct{}),
		maxConnPerSession: opts.MaxConnPerSession,
		maxMessageSize:    opts.MaxMessageSize,
		writeWait:         opts.WriteWait,
		pongWait:          opts.PongWait,
		pingPeriod:        opts.PingPeriod,
		log:               logger,
	}
}

func (m *Manager) SetMessageHandler(handler MessageHandler) {
	m.messageHandler = handler
}

// Run processes registrations and inbound messages until ctx is cancelled.
// On exit every client's Send channel is closed.
func (m *Manager) Run(ctx context.Context) {
	defer m.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case reg := <-m.registerCh:
			reg.accepted <- m.registerClient(reg.client)

		case client := <-m.unregisterCh:
			m.unregisterClient(client)

		case clientMsg := <-m.inbound:
			m.processMessage(clientMsg)
		}
	}
}

func (m *Manager) shutdown() {
	close(m.done)

	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	for id, client := range m.clients {
		close(client.Send)
		delete(m.clients, id)
	}
	m.sessionIndex = make(map[string]map[string]bool)
}

// Register adds client to its session's subscribers. It returns false when
// the session is at its connection limit or the loop has stopped; in the
// first case client.Send is closed.
func (m *Manager) Register(client *Client) bool {
	reg := registration{client: client, accepted: make(chan bool, 1)}
	select {
	case m.registerCh <- reg:
		return <-reg.accepted
	case <-m.done:
		return false
	}
}

func (m *Manager) Unregister(client *Client) {
	select {
	case m.unregisterCh <- client:
	case <-m.done:
	}
}

func (m *Manager) handle(msg *ClientMessage) {
	select {
	case m.inbound <- msg:
	case <-m.done:
	}
}

func (m *Manager) registerClient(client *Client) bool {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if m.sessionIndex[client.SessionID] == nil {
		m.sessionIndex[client.SessionID] = make(map[string]bool)
	}

	if len(m.sessionIndex[client.SessionID]) >= m.maxConnPerSession {
		m.log.WithField("session_id", client.SessionID).Warn("max connections reached for session")
		if len(m.sessionIndex[client.SessionID]) == 0 {
			delete(m.sessionIndex, client.SessionID)
		}
		close(client.Send)
		return false
	}

	m.clients[client.ID] = client
	m.sessionIndex[client.SessionID][client.ID] = true

	m.log.WithFields(logrus.Fields{
		"client_id":  client.ID,
		"session_id": client.SessionID,
	}).Info("client registered")
	return true
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		delete(m.sessionIndex[client.SessionID], client.ID)

		if len(m.sessionIndex[client.SessionID]) == 0 {
			delete(m.sessionIndex, client.SessionID)
		}

		close(client.Send)
		m.log.WithField("client_id", client.ID).Info("client unregistered")
	}
}

func (m *Manager) processMessage(clientMsg *ClientMessage) {
	var msg Message
	if err := json.Unmarshal(clientMsg.Message, &msg); err != nil {
		m.log.WithError(err).Warn("error unmarshaling message")
		return
	}

	if m.messageHandler != nil {
		if err := m.messageHandler.HandleWebSocketMessage(clientMsg.Client, &msg); err != nil {
			m.log.WithError(err).WithField("type", msg.Type).Warn("error handling message")
		}
	}
}

// BroadcastToSession queues message for every client subscribed to the
// session. Clients whose buffers are full are disconnected.
func (m *Manager) BroadcastToSession(sessionID string, message *Message) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	var slow []*Client

	m.clientsMutex.RLock()
	for clientID := range m.sessionIndex[sessionID] {
		client := m.clients[clientID]
		select {
		case client.Send <- messageBytes:
		default:
			slow = append(slow, client)
		}
	}
	m.clientsMutex.RUnlock()

	for _, client := range slow {
		m.log.WithField("client_id", client.ID).Warn("client send buffer full, closing connection")
		m.unregisterClient(client)
	}

	return nil
}

func (m *Manager) SendToClient(clientID string, message *Message) error {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	client, exists := m.clients[clientID]
	if !exists {
		return nil
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case client.Send <- messageBytes:
	default:
		m.log.WithField("client_id", clientID).Warn("client send buffer full")
	}

	return nil
}

func (m *Manager) SessionConnections(sessionID string) int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	return len(m.sessionIndex[sessionID])
}
