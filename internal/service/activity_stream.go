package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumina-api/internal/dto"
)

const activityStreamBuffer = 16

type activityStreamEnvelope struct {
	Source string               `json:"source"`
	Event  dto.ActivityResponse `json:"event"`
	SentAt time.Time            `json:"sent_at"`
}

// ActivityStream fans persisted activity entries out to connected admin
// clients. Local subscribers receive events in process; when a NATS
// connection is configured, events also cross node boundaries. Publishing is
// best effort: a slow subscriber is skipped, never blocked on.
type ActivityStream struct {
	nats    *nats.Conn
	subject string
	logger  zerolog.Logger
	nodeID  string

	mu          sync.RWMutex
	subscribers map[chan dto.ActivityResponse]struct{}
}

// NewActivityStream constructs the stream. The NATS connection is optional.
func NewActivityStream(natsConn *nats.Conn, subject string, logger zerolog.Logger) *ActivityStream {
	return &ActivityStream{
		nats:        natsConn,
		subject:     subject,
		logger:      logger.With().Str("component", "activity_stream").Logger(),
		nodeID:      uuid.NewString(),
		subscribers: make(map[chan dto.ActivityResponse]struct{}),
	}
}

// Start begins consuming cross-node events when NATS is configured.
func (s *ActivityStream) Start(ctx context.Context) {
	if s.nats == nil || s.subject == "" {
		return
	}

	subscription, err := s.nats.Subscribe(s.subject, func(msg *nats.Msg) {
		var envelope activityStreamEnvelope
		if err := json.Unmarshal(msg.Data, &envelope); err != nil {
			s.logger.Warn().Err(err).Msg("failed to decode activity stream envelope")
			return
		}
		if envelope.Source == s.nodeID {
			return
		}
		s.broadcast(envelope.Event)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("subject", s.subject).Msg("failed to subscribe to activity stream")
		return
	}

	go func() {
		<-ctx.Done()
		if err := subscription.Unsubscribe(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to unsubscribe from activity stream")
		}
	}()
}

// Publish delivers the event to local subscribers and, when configured, to
// the NATS subject for other nodes.
func (s *ActivityStream) Publish(event dto.ActivityResponse) {
	s.broadcast(event)

	if s.nats == nil || s.subject == "" {
		return
	}

	envelope := activityStreamEnvelope{Source: s.nodeID, Event: event, SentAt: time.Now()}
	payload, err := json.Marshal(envelope)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode activity stream envelope")
		return
	}
	if err := s.nats.Publish(s.subject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", s.subject).Msg("failed to publish activity event")
	}
}

// Subscribe registers a listener. The returned cancel function must be called
// when the consumer goes away.
func (s *ActivityStream) Subscribe() (<-chan dto.ActivityResponse, func()) {
	channel := make(chan dto.ActivityResponse, activityStreamBuffer)

	s.mu.Lock()
	s.subscribers[channel] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[channel]; ok {
			delete(s.subscribers, channel)
			close(channel)
		}
		s.mu.Unlock()
	}

	return channel, cancel
}

func (s *ActivityStream) broadcast(event dto.ActivityResponse) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for channel := range s.subscribers {
		select {
		case channel <- event:
		default:
			// subscriber buffer full; drop rather than block the record path
		}
	}
}
