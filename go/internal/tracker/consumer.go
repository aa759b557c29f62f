package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mcdev12/turntimer/go/internal/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// ErrMalformedEvent marks messages that can never be decoded
var ErrMalformedEvent = errors.New("malformed event")

// DomainEventHandler receives decoded host events
type DomainEventHandler interface {
	HandleDomainEvent(ctx context.Context, eventType events.EventType, encounterID string, payload []byte) error
}

// JetStreamConsumerConfig holds configuration for the JetStream consumer
type JetStreamConsumerConfig struct {
	URL           string
	StreamName    string
	ConsumerName  string
	SubjectFilter string        // e.g., "encounter.events.>"
	MaxDeliver    int           // Max delivery attempts
	AckWait       time.Duration // How long to wait for ack
	MaxAckPending int           // Max messages pending ack
	MaxReconnects int
	ReconnectWait time.Duration
	BufferSize    int
}

// DefaultJetStreamConsumerConfig returns default JetStream consumer configuration
func DefaultJetStreamConsumerConfig() JetStreamConsumerConfig {
	return JetStreamConsumerConfig{
		URL:           nats.DefaultURL,
		StreamName:    "ENCOUNTER_EVENTS",
		ConsumerName:  "turn-tracker",
		SubjectFilter: "encounter.events.>",
		MaxDeliver:    5,
		AckWait:       30 * time.Second,
		MaxAckPending: 100,
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
		BufferSize:    100,
	}
}

// EventConsumer feeds host events from JetStream into a DomainEventHandler
type EventConsumer struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	consumer jetstream.Consumer
	handler  DomainEventHandler
	config   JetStreamConsumerConfig
}

// NewEventConsumer connects to NATS and ensures the stream and consumer exist
func NewEventConsumer(handler DomainEventHandler, config JetStreamConsumerConfig) (*EventConsumer, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	ec := &EventConsumer{
		nc:      nc,
		js:      js,
		handler: handler,
		config:  config,
	}

	if err := ec.ensureConsumer(context.Background()); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure consumer: %w", err)
	}

	return ec, nil
}

// ensureConsumer creates or gets the stream and the durable consumer
func (ec *EventConsumer) ensureConsumer(ctx context.Context) error {
	stream, err := ec.js.Stream(ctx, ec.config.StreamName)
	if err != nil {
		stream, err = ec.js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     ec.config.StreamName,
			Subjects: []string{ec.config.SubjectFilter},
		})
		if err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().Str("stream", ec.config.StreamName).Msg("created JetStream stream")
	}

	consumerConfig := jetstream.ConsumerConfig{
		Name:          ec.config.ConsumerName,
		Durable:       ec.config.ConsumerName,
		Description:   "Turn tracker host event consumer",
		FilterSubject: ec.config.SubjectFilter,
		// Only new events: replaying history would re-run transitions against "now"
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    ec.config.MaxDeliver,
		AckWait:       ec.config.AckWait,
		MaxAckPending: ec.config.MaxAckPending,
		ReplayPolicy:  jetstream.ReplayInstantPolicy,
	}

	consumer, err := stream.Consumer(ctx, ec.config.ConsumerName)
	if err != nil {
		consumer, err = stream.CreateConsumer(ctx, consumerConfig)
		if err != nil {
			return fmt.Errorf("create consumer: %w", err)
		}
		log.Info().Str("consumer", ec.config.ConsumerName).Msg("created JetStream consumer for tracker")
	} else {
		log.Info().Str("consumer", ec.config.ConsumerName).Msg("using existing JetStream consumer for tracker")
	}

	ec.consumer = consumer
	return nil
}

// Start begins consuming events until ctx is cancelled
func (ec *EventConsumer) Start(ctx context.Context) error {
	log.Info().Msg("starting tracker NATS event consumer")

	messageCh := make(chan jetstream.Msg, ec.config.BufferSize)

	consumeCtx, err := ec.consumer.Consume(func(msg jetstream.Msg) {
		select {
		case messageCh <- msg:
		case <-ctx.Done():
			msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("tracker event consumer shutting down")
			return nil
		case msg := <-messageCh:
			if err := ec.processMessage(ctx, msg); err != nil {
				log.Error().
					Err(err).
					Str("subject", msg.Subject()).
					Msg("failed to process message")
				if errors.Is(err, ErrMalformedEvent) {
					if termErr := msg.Term(); termErr != nil {
						log.Error().Err(termErr).Msg("failed to TERM message")
					}
				} else if nakErr := msg.Nak(); nakErr != nil {
					log.Error().Err(nakErr).Msg("failed to NAK message")
				}
			} else {
				if ackErr := msg.Ack(); ackErr != nil {
					log.Error().Err(ackErr).Msg("failed to ACK message")
				}
			}
		}
	}
}

// processMessage decodes a single JetStream message and hands it to the handler
func (ec *EventConsumer) processMessage(ctx context.Context, msg jetstream.Msg) error {
	envelope, err := decodeEnvelope(msg.Data())
	if err != nil {
		return err
	}

	log.Debug().
		Str("event_id", envelope.EventID).
		Str("encounter_id", envelope.EncounterID).
		Str("event_type", string(envelope.EventType)).
		Str("subject", msg.Subject()).
		Msg("processing tracker event")

	if err := ec.handler.HandleDomainEvent(ctx, envelope.EventType, envelope.EncounterID, envelope.Payload); err != nil {
		return fmt.Errorf("handle domain event: %w", err)
	}
	return nil
}

func decodeEnvelope(data []byte) (*events.Envelope, error) {
	var envelope events.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: unmarshal event envelope: %v", ErrMalformedEvent, err)
	}
	if envelope.EventType == "" {
		return nil, fmt.Errorf("%w: envelope %q has no event type", ErrMalformedEvent, envelope.EventID)
	}
	return &envelope, nil
}

// IsConnected reports whether the NATS connection is up
func (ec *EventConsumer) IsConnected() bool {
	return ec.nc != nil && ec.nc.IsConnected()
}

// Close gracefully shuts down the event consumer
func (ec *EventConsumer) Close() error {
	log.Info().Msg("stopping tracker event consumer")
	if ec.nc != nil {
		ec.nc.Close()
	}
	return nil
}
