package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/menu-factory/internal/config"
	"github.com/iliyamo/menu-factory/internal/events"
)

func TestPublisherFromConfig(t *testing.T) {
	pub, closer := PublisherFromConfig(config.Config{EventsBackend: config.EventsLocal}, nil)
	defer closer()
	assert.Equal(t, NopPublisher{}, pub)

	hub := events.NewHub(1)
	pub, closer = PublisherFromConfig(config.Config{EventsBackend: config.EventsAMQP, RabbitURL: "amqp://x"}, hub)
	defer closer()
	multi, ok := pub.(MultiPublisher)
	require.True(t, ok)
	require.Len(t, multi, 2)
	assert.Equal(t, "local", multi[0].Name)
	assert.Equal(t, "amqp", multi[1].Name)
	assert.Equal(t, "amqp://x", multi[1].Publisher.(*AMQPPublisher).URL)
}
