package broker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
)

// reconnectDelay is the fixed backoff for broker connection attempts.
const reconnectDelay = 5 * time.Second

// Publisher publishes position events to the durable channel. Messages are
// persisted by JetStream so they survive a broker restart; the ingestion
// path treats publication as fire-and-forget.
type Publisher struct {
	publisher message.Publisher
}

// NewPublisher connects to NATS and provisions the durable stream. The
// connection is allowed to start in a reconnecting state so the API server
// comes up even when the broker is briefly down.
func NewPublisher(url string) (*Publisher, error) {
	logger := newLogrusAdapter()

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(reconnectDelay),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("Broker disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("Broker reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	cfg := wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
		},
	}

	pub, err := wmNats.NewPublisher(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create position publisher: %w", err)
	}
	return &Publisher{publisher: pub}, nil
}

// Publish sends one position event to the channel.
func (p *Publisher) Publish(event PositionMessage) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode position message: %w", err)
	}
	return p.publisher.Publish(Topic, message.NewMessage(watermill.NewUUID(), payload))
}

// Close shuts the underlying connection down.
func (p *Publisher) Close() error {
	return p.publisher.Close()
}
