// Package consumer provides the Kafka consumption loop that feeds the
// read-model projector.
package consumer

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// fetchBackoff is how long the loop pauses after a transient fetch failure
// before asking the broker again.
const fetchBackoff = time.Second

// Reader is the slice of kafka.Reader the processor needs. Closing the
// underlying reader is the owner's job.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
}

// Handler consumes decoded envelopes. A returned error leaves the offset
// uncommitted so the message is redelivered.
type Handler interface {
	Handle(context.Context, Envelope) error
}

// Envelope is a consumed platform event: the Confluent-framed payload plus
// the routing headers the projector keys on. TenantID is always set; an
// event without one never reaches a Handler.
type Envelope struct {
	Topic         string
	Partition     int
	Offset        int64
	Timestamp     time.Time
	EventType     string
	TenantID      string
	SchemaSubject string
	SchemaID      int
	Payload       json.RawMessage
}

// Option configures optional behaviour for the Processor.
type Option func(*Processor)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// Processor drains one topic: fetch, decode, hand off, commit.
type Processor struct {
	reader  Reader
	handler Handler
	logger  *log.Logger
}

// NewProcessor constructs a Processor with the provided reader and handler.
func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{
		reader:  reader,
		handler: handler,
		logger:  log.New(log.Writer(), "[consumer] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run blocks until the context is cancelled, processing one message at a
// time. Undecodable messages are committed and skipped so a poison pill
// cannot stall the partition; handler failures leave the offset alone.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			p.logger.Printf("fetch error: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(fetchBackoff):
			}
			continue
		}

		p.process(ctx, msg)
	}
}

func (p *Processor) process(ctx context.Context, msg kafka.Message) {
	env, err := decodeEnvelope(msg)
	if err != nil {
		p.logger.Printf("decode error (topic=%s, partition=%d, offset=%d): %v", msg.Topic, msg.Partition, msg.Offset, err)
		recordDecodeError(msg.Topic)
		if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
			p.logger.Printf("commit error after decode failure: %v", commitErr)
		}
		return
	}

	if err := p.handler.Handle(ctx, env); err != nil {
		p.logger.Printf("handler error (event_type=%s, tenant=%s): %v", env.EventType, env.TenantID, err)
		recordHandlerError(env)
		return
	}

	if err := p.reader.CommitMessages(ctx, msg); err != nil {
		p.logger.Printf("commit error: %v", err)
		return
	}
	recordProcessed(env)
}

func decodeEnvelope(msg kafka.Message) (Envelope, error) {
	if len(msg.Value) < 5 {
		return Envelope{}, fmt.Errorf("invalid payload length: %d", len(msg.Value))
	}
	if msg.Value[0] != 0 {
		return Envelope{}, fmt.Errorf("unexpected magic byte: %#x", msg.Value[0])
	}

	eventType, ok := header(msg, "event_type")
	if !ok {
		return Envelope{}, errors.New("missing event_type header")
	}
	tenantID, ok := header(msg, "tenant_id")
	if !ok {
		// Every projected row is tenant-scoped; without a tenant the
		// event cannot be attributed and is dropped.
		return Envelope{}, errors.New("missing tenant_id header")
	}
	schemaSubject, _ := header(msg, "schema_subject")

	return Envelope{
		Topic:         msg.Topic,
		Partition:     msg.Partition,
		Offset:        msg.Offset,
		Timestamp:     msg.Time,
		EventType:     string(eventType),
		TenantID:      string(tenantID),
		SchemaSubject: string(schemaSubject),
		SchemaID:      int(binary.BigEndian.Uint32(msg.Value[1:5])),
		Payload:       json.RawMessage(append([]byte(nil), msg.Value[5:]...)),
	}, nil
}

func header(msg kafka.Message, key string) ([]byte, bool) {
	for _, h := range msg.Headers {
		if h.Key == key {
			return h.Value, true
		}
	}
	return nil, false
}
