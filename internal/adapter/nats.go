package adapter

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsConn is the part of a NATS connection the ingestion worker owns
//
//go:generate mockgen -source=nats.go -destination=../mocks/nats.go -package=mocks -mock_names=NatsConn=MockNatsConn,JetStream=MockJetStream,Consumer=MockNatsConsumer,ConsumeContext=MockConsumeContext,Message=MockJetStreamMessage,NatsJetStream=MockNatsJetStream
type NatsConn interface {
	Close()
}

// JetStream covers stream provisioning, change publishing and the durable event consumer
type JetStream interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
	CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) error
	CreateOrUpdateConsumer(ctx context.Context, stream string, cfg jetstream.ConsumerConfig) (Consumer, error)
}

// MessageHandler receives one inbound event message
type MessageHandler func(msg Message)

// Consumer is a durable pull consumer on the events stream
type Consumer interface {
	Consume(handler MessageHandler, opts ...jetstream.PullConsumeOpt) (ConsumeContext, error)
	Info(ctx context.Context) (*jetstream.ConsumerInfo, error)
}

// ConsumeContext stops message delivery to a MessageHandler
type ConsumeContext interface {
	Stop()
}

// Message is a delivered event; it is settled exactly once by Ack, Nak or Term
type Message interface {
	Data() []byte
	Subject() string
	Metadata() (*jetstream.MsgMetadata, error)
	Ack() error
	Nak() error
	Term() error
	// InProgress resets the server's ack wait timer
	InProgress() error
}

// DeliveryCount returns how many times msg has been delivered, or 0 when unknown
func DeliveryCount(msg Message) uint64 {
	metadata, err := msg.Metadata()
	if err != nil || metadata == nil {
		return 0
	}
	return metadata.NumDelivered
}

// NatsJetStream opens a connection and its JetStream context
type NatsJetStream interface {
	Connect(url string, options ...nats.Option) (NatsConn, JetStream, error)
}

type natsJetStream struct{}

// NewNatsJetStream returns the nats.go backed NatsJetStream
func NewNatsJetStream() NatsJetStream {
	return natsJetStream{}
}

func (natsJetStream) Connect(url string, options ...nats.Option) (NatsConn, JetStream, error) {
	nc, err := nats.Connect(url, options...)
	if err != nil {
		return nil, nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	return nc, jetStream{js: js}, nil
}

// jetStream narrows jetstream.JetStream so consumers come back as Consumer
type jetStream struct {
	js jetstream.JetStream
}

func (s jetStream) Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	return s.js.Publish(ctx, subject, data, opts...)
}

func (s jetStream) CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) error {
	_, err := s.js.CreateOrUpdateStream(ctx, cfg)
	return err
}

func (s jetStream) CreateOrUpdateConsumer(ctx context.Context, stream string, cfg jetstream.ConsumerConfig) (Consumer, error) {
	c, err := s.js.CreateOrUpdateConsumer(ctx, stream, cfg)
	if err != nil {
		return nil, err
	}
	return pullConsumer{c: c}, nil
}

type pullConsumer struct {
	c jetstream.Consumer
}

func (p pullConsumer) Consume(handler MessageHandler, opts ...jetstream.PullConsumeOpt) (ConsumeContext, error) {
	return p.c.Consume(func(msg jetstream.Msg) {
		handler(msg)
	}, opts...)
}

func (p pullConsumer) Info(ctx context.Context) (*jetstream.ConsumerInfo, error) {
	return p.c.Info(ctx)
}
