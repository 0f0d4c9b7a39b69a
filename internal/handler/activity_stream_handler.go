package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumina-api/internal/service"
)

// ActivityStreamHandler upgrades admin clients to a websocket fed by the
// live activity stream.
type ActivityStreamHandler struct {
	stream *service.ActivityStream
	logger zerolog.Logger
}

// NewActivityStreamHandler constructs the handler.
func NewActivityStreamHandler(stream *service.ActivityStream, logger zerolog.Logger) *ActivityStreamHandler {
	return &ActivityStreamHandler{
		stream: stream,
		logger: logger.With().Str("component", "activity_stream_handler").Logger(),
	}
}

// Register binds the websocket route under the provided router group.
func (h *ActivityStreamHandler) Register(router fiber.Router) {
	router.Use("/stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/stream", websocket.New(h.handleConnection))
}

func (h *ActivityStreamHandler) handleConnection(conn *websocket.Conn) {
	events, cancel := h.stream.Subscribe()
	defer cancel()
	defer conn.Close()

	h.logger.Info().Msg("activity stream client connected")

	// Drain reads so close frames from the client are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			h.logger.Info().Msg("activity stream client disconnected")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error().Err(err).Msg("failed to encode activity event")
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.logger.Info().Msg("activity stream client disconnected")
				return
			}
		}
	}
}
