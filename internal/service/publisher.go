package service

import (
	"context"
	"errors"

	"github.com/iliyamo/menu-factory/internal/metrics"
	q "github.com/iliyamo/menu-factory/internal/queue"
)

// Publisher delivers menu change events.  events.Hub, AMQPPublisher and
// KafkaPublisher implement it.
type Publisher interface {
	Publish(ctx context.Context, ev q.MenuChangedEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.MenuChangedEvent) error { return nil }

// Named attaches a backend label used in metrics.
type Named struct {
	Name string
	Publisher
}

// MultiPublisher hands each event to every target and joins their errors.
type MultiPublisher []Named

func (m MultiPublisher) Publish(ctx context.Context, ev q.MenuChangedEvent) error {
	var errs []error
	for _, t := range m {
		if err := t.Publisher.Publish(ctx, ev); err != nil {
			metrics.EventsPublished.WithLabelValues(t.Name, "error").Inc()
			errs = append(errs, err)
			continue
		}
		metrics.EventsPublished.WithLabelValues(t.Name, "ok").Inc()
	}
	return errors.Join(errs...)
}
