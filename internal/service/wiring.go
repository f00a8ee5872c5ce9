package service

import (
	"log"

	"github.com/iliyamo/menu-factory/internal/config"
)

// PublisherFromConfig combines local (the in-process hub, may be nil) with
// the broker named by cfg.EventsBackend.  A broker that cannot be set up is
// logged and skipped.  The returned func releases broker resources.
func PublisherFromConfig(cfg config.Config, local Publisher) (Publisher, func()) {
	var targets MultiPublisher
	if local != nil {
		targets = append(targets, Named{Name: config.EventsLocal, Publisher: local})
	}
	closer := func() {}

	switch cfg.EventsBackend {
	case config.EventsAMQP:
		targets = append(targets, Named{Name: config.EventsAMQP, Publisher: NewAMQPPublisher(cfg.RabbitURL)})
	case config.EventsKafka:
		kp, err := NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Printf("events: kafka disabled: %v", err)
			break
		}
		targets = append(targets, Named{Name: config.EventsKafka, Publisher: kp})
		closer = func() { _ = kp.Close() }
	}

	if len(targets) == 0 {
		return NopPublisher{}, closer
	}
	return targets, closer
}
