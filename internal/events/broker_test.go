// Path: internal/events/broker_test.go
package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_PublishReachesSubscriber(t *testing.T) {
	broker := NewBroker()
	ch := broker.Subscribe("report:ready")

	broker.Publish("report:ready", "payload")

	select {
	case event := <-ch:
		assert.Equal(t, "report:ready", event.Topic)
		assert.Equal(t, "payload", event.Data)
	default:
		t.Fatal("expected event on subscriber channel")
	}
}

func TestBroker_TopicsAreIsolated(t *testing.T) {
	broker := NewBroker()
	ch := broker.Subscribe("a")

	broker.Publish("b", "other")

	select {
	case <-ch:
		t.Fatal("subscriber received event for a different topic")
	default:
	}
}

func TestBroker_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	broker := NewBroker()
	ch := broker.Subscribe("t")

	// Fill the buffer, then publish again; the second publish must not block.
	broker.Publish("t", 1)
	broker.Publish("t", 2)

	event := <-ch
	require.Equal(t, 1, event.Data)
	select {
	case <-ch:
		t.Fatal("dropped event should not be delivered")
	default:
	}
}

func TestBroker_MultipleSubscribers(t *testing.T) {
	broker := NewBroker()
	first := broker.Subscribe("t")
	second := broker.Subscribe("t")

	broker.Publish("t", "fanout")

	assert.Equal(t, "fanout", (<-first).Data)
	assert.Equal(t, "fanout", (<-second).Data)
}
