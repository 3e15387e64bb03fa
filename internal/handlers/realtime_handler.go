package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Windi-Fikriyansyah/billing_api/internal/middleware"
	"github.com/Windi-Fikriyansyah/billing_api/internal/models"
	"github.com/Windi-Fikriyansyah/billing_api/internal/realtime"
)

type RealtimeHandler struct {
	Hub      *realtime.Hub
	Profiles middleware.ProfileFinder
	log      zerolog.Logger
}

func NewRealtimeHandler(hub *realtime.Hub, profiles middleware.ProfileFinder, log zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{Hub: hub, Profiles: profiles, log: log.With().Str("handler", "realtime").Logger()}
}

// Upgrade authenticates the websocket handshake via ?profile_id=.
func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	p, err := middleware.LookupProfile(c.UserContext(), h.Profiles, c.Query(middleware.ProfileHeader))
	if err != nil {
		return err
	}
	c.Locals("wsProfile", p)
	return c.Next()
}

// Serve pushes billing events for the connected profile until the peer goes away.
func (h *RealtimeHandler) Serve(c *websocket.Conn) {
	p, ok := c.Locals("wsProfile").(*models.Profile)
	if !ok {
		_ = c.Close()
		return
	}

	conn := realtime.NewWebSocketConn(c)
	client := &realtime.Client{
		ID:        uuid.New().String(),
		ProfileID: p.ID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
	}
	log := h.log.With().Str("client_id", client.ID).Uint("profile_id", p.ID).Logger()

	if !h.Hub.RegisterClient(client) {
		_ = c.Close()
		return
	}
	log.Debug().Msg("websocket connected")
	defer func() {
		h.Hub.UnregisterClient(client)
		log.Debug().Msg("websocket disconnected")
	}()

	go func() {
		for msg := range client.Send {
			if err := conn.WriteText(msg); err != nil {
				log.Debug().Err(err).Msg("websocket write")
				return
			}
		}
	}()

	// Inbound frames are only read to notice the close.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
