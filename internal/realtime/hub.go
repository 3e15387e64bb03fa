package realtime

import (
	"context"

	"github.com/rs/zerolog"
)

// Client is one websocket connection subscribed to a profile's events.
type Client struct {
	ID        string
	ProfileID uint
	Conn      *WebSocketConn
	Send      chan []byte
}

// Hub tracks live connections. Membership changes go through Run so that
// Send channels are only ever closed by the hub.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}
	log        zerolog.Logger
}

type delivery struct {
	profileID uint
	payload   []byte
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "hub").Logger(),
	}
}

// RegisterClient returns false once the hub has stopped.
func (h *Hub) RegisterClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToProfile queues a payload for every connection of the profile.
func (h *Hub) SendToProfile(profileID uint, payload []byte) {
	select {
	case h.deliver <- delivery{profileID: profileID, payload: payload}:
	default:
		h.log.Warn().Uint("profile_id", profileID).Msg("hub backlog full, dropping event")
	}
}

// Run owns the client set until ctx is cancelled, then closes every Send channel.
func (h *Hub) Run(ctx context.Context) error {
	defer func() {
		close(h.done)
		for id, client := range h.clients {
			close(client.Send)
			delete(h.clients, id)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-h.register:
			h.clients[client.ID] = client
			h.log.Debug().Str("client_id", client.ID).Uint("profile_id", client.ProfileID).Msg("client registered")

		case client := <-h.unregister:
			if old, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(old.Send)
				h.log.Debug().Str("client_id", client.ID).Msg("client unregistered")
			}

		case d := <-h.deliver:
			for id, client := range h.clients {
				if client.ProfileID != d.profileID {
					continue
				}
				select {
				case client.Send <- d.payload:
				default:
					// slow reader
					close(client.Send)
					delete(h.clients, id)
				}
			}
		}
	}
}
