package audit

import (
	"context"
	"log/slog"
	"time"

	id "vouch/pkg/domain"
)

// Store persists audit events append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, domainID id.DomainID, subject id.AccountID) ([]Event, error)
}

// Sink forwards events to an external system (Kafka). Best effort: sink
// failures are logged, never surfaced to the mutation path.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. The store is the durable
// record; the sink is optional fan-out.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger
}

type PublisherOption func(p *Publisher)

func WithSink(sink Sink) PublisherOption {
	return func(p *Publisher) {
		p.sink = sink
	}
}

func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.sink != nil {
		if err := p.sink.Publish(ctx, event); err != nil && p.logger != nil {
			p.logger.WarnContext(ctx, "audit sink publish failed",
				"action", string(event.Action),
				"error", err.Error(),
			)
		}
	}
	return nil
}

func (p *Publisher) List(ctx context.Context, domainID id.DomainID, subject id.AccountID) ([]Event, error) {
	return p.store.ListBySubject(ctx, domainID, subject)
}
