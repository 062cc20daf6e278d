package broker

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const (
	// DurableName identifies the analytics worker's consumer so its place
	// in the stream survives restarts.
	DurableName = "analytics_worker"

	// maxConnectAttempts bounds first-startup connection retries. After a
	// successful connect, the nats client reconnects indefinitely on the
	// same fixed delay.
	maxConnectAttempts = 10
)

// NewSubscriber creates the durable, ordered consumer for position events.
// MaxAckPending(1) gives strictly sequential one-message-at-a-time
// consumption; the delta computation depends on per-bus event order, so a
// single active consumer instance is a deployment constraint.
func NewSubscriber(url string) (message.Subscriber, error) {
	logger := newLogrusAdapter()

	natsOpts := []natsgo.Option{
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

	subOpts := []natsgo.SubOpt{
		natsgo.MaxAckPending(1),
		natsgo.AckWait(30 * time.Second),
		natsgo.DeliverAll(),
	}

	cfg := wmNats.SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:         false,
			AutoProvision:    true,
			AckAsync:         false,
			SubscribeOptions: subOpts,
			DurablePrefix:    DurableName,
		},
	}

	sub, err := wmNats.NewSubscriber(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create position subscriber: %w", err)
	}
	return sub, nil
}

// Connect dials the broker with a bounded number of fixed-delay attempts.
// The worker has no caller to report to, so startup waits for the broker
// rather than crash-looping faster than it can come up.
func Connect(url string) (message.Subscriber, error) {
	var lastErr error
	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		sub, err := NewSubscriber(url)
		if err == nil {
			return sub, nil
		}
		lastErr = err
		logrus.WithError(err).WithFields(logrus.Fields{
			"attempt":   attempt,
			"remaining": maxConnectAttempts - attempt,
		}).Warn("Broker connection failed, retrying")
		time.Sleep(reconnectDelay)
	}
	return nil, fmt.Errorf("connect to broker after %d attempts: %w", maxConnectAttempts, lastErr)
}
