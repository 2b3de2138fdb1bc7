// Package chathub fans chat messages out to the live websocket
// connections of a session. The hub is a single goroutine owning the
// client registry; everything reaches it through channels. With Redis
// configured, instances additionally bridge through pub/sub so a
// session's participants may sit on different processes.
package chathub

import (
	"log"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"tipsy/backend/internal/models"
	"tipsy/backend/internal/store"
)

// ChatStore is the slice of the report store the hub needs: appending
// an inbound message (which also logs and re-publishes it).
type ChatStore interface {
	SendChatMessage(sessionID, text string, sender store.Identity) (models.ChatMessage, error)
}

// Inbound is a raw message read off a client connection, before the
// store has accepted it.
type Inbound struct {
	SessionID string
	Text      string
	Sender    store.Identity
}

// ManagerService is the hub. Clients is only touched from Run's
// goroutine (and from tests driving the hub synchronously).
type ManagerService struct {
	Clients map[Client]bool

	RegisterCh   chan Client
	UnregisterCh chan Client
	IncomingCh   chan Inbound
	BroadcastCh  chan models.ChatMessage

	Store ChatStore

	sanitizer *bluemonday.Policy
}

// NewManagerService creates an idle hub bound to the chat store.
func NewManagerService(s ChatStore) *ManagerService {
	return &ManagerService{
		Clients:      make(map[Client]bool),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		IncomingCh:   make(chan Inbound),
		BroadcastCh:  make(chan models.ChatMessage, 64),
		Store:        s,
		sanitizer:    bluemonday.StrictPolicy(),
	}
}

// PublishMessage implements store.Publisher for single-instance
// deployments: the store's accepted messages come straight back to the
// hub for delivery.
func (m *ManagerService) PublishMessage(sessionID string, msg models.ChatMessage) error {
	m.BroadcastCh <- msg
	return nil
}

// Run is the hub's event loop. It owns the registry for its lifetime.
func (m *ManagerService) Run() {
	for {
		select {
		case client := <-m.RegisterCh:
			m.Clients[client] = true

		case client := <-m.UnregisterCh:
			if _, ok := m.Clients[client]; ok {
				delete(m.Clients, client)
				client.Close()
			}

		case in := <-m.IncomingCh:
			m.HandleInbound(in)

		case msg := <-m.BroadcastCh:
			m.Broadcast(msg)
		}
	}
}

// HandleInbound pushes a raw client message through the store, which
// appends it, logs it to the ledger and publishes it back for
// delivery. Markup is stripped here, before anything is stored.
func (m *ManagerService) HandleInbound(in Inbound) {
	text := strings.TrimSpace(m.sanitizer.Sanitize(in.Text))
	if text == "" {
		return
	}
	if _, err := m.Store.SendChatMessage(in.SessionID, text, in.Sender); err != nil {
		log.Printf("ERROR: Dropping chat message for session %s: %v", in.SessionID, err)
	}
}

// Broadcast delivers a message to every client in its session. Slow
// clients are dropped rather than allowed to stall the hub.
func (m *ManagerService) Broadcast(msg models.ChatMessage) {
	for client := range m.Clients {
		if client.GetSessionID() != msg.SessionID {
			continue
		}
		select {
		case client.GetSendChannel() <- msg:
		default:
			delete(m.Clients, client)
			client.Close()
		}
	}
}
