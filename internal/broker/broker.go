package broker

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	rstream "github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Broker is the pub/sub relay behind per-session chat channels. Publishing
// is shared; each consumer connection gets its own subscriber so events fan
// out to every subscriber of a channel.
type Broker interface {
	Publisher() message.Publisher
	// NewSubscriber returns a subscriber for one consumer connection and a
	// cleanup function releasing whatever that subscriber owns.
	NewSubscriber() (message.Subscriber, func(), error)
	Close() error
}

// RedisOptions configures the Redis Streams relay.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis builds the Redis Streams relay used outside development.
func NewRedis(opts RedisOptions) (Broker, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis relay requires an address")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	logger := NewWatermillLogger(log.Logger)

	pub, err := rstream.NewPublisher(rstream.PublisherConfig{
		Client:     client,
		Marshaller: rstream.DefaultMarshallerUnmarshaller{},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis publisher: %w", err)
	}

	return &redisBroker{client: client, pub: pub}, nil
}

type redisBroker struct {
	client *redis.Client
	pub    message.Publisher
}

func (b *redisBroker) Publisher() message.Publisher {
	return b.pub
}

// NewSubscriber creates a groupless subscriber so every connection sees the
// full event stream instead of competing for messages.
func (b *redisBroker) NewSubscriber() (message.Subscriber, func(), error) {
	sub, err := rstream.NewSubscriber(rstream.SubscriberConfig{
		Client:       b.client,
		Unmarshaller: rstream.DefaultMarshallerUnmarshaller{},
	}, NewWatermillLogger(log.Logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create redis subscriber: %w", err)
	}

	cleanup := func() {
		if err := sub.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis subscriber")
		}
	}
	return sub, cleanup, nil
}

func (b *redisBroker) Close() error {
	if err := b.pub.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close redis publisher")
	}
	return b.client.Close()
}

// NewInMemory builds the in-process relay used in development, mock mode
// and tests.
func NewInMemory() Broker {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, NewWatermillLogger(log.Logger))
	return &memoryBroker{pubsub: pubsub}
}

type memoryBroker struct {
	pubsub *gochannel.GoChannel
}

func (b *memoryBroker) Publisher() message.Publisher {
	return b.pubsub
}

// NewSubscriber hands out the shared gochannel; its Subscribe calls already
// fan out per caller, and the broker owns the close.
func (b *memoryBroker) NewSubscriber() (message.Subscriber, func(), error) {
	return b.pubsub, func() {}, nil
}

func (b *memoryBroker) Close() error {
	return b.pubsub.Close()
}
