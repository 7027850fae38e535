package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicOnly(t *testing.T) {
	hub := NewHub()
	feb := PeriodTopic("c1", 2, 2024)
	mar := PeriodTopic("c1", 3, 2024)
	assert.Equal(t, "c1:2024-02", feb)

	febCh, febDone := hub.Subscribe(feb)
	defer febDone()
	marCh, marDone := hub.Subscribe(mar)
	defer marDone()

	hub.Publish(feb, Event{Event: "stages", Data: "payload"})

	select {
	case ev := <-febCh:
		assert.Equal(t, feb, ev.Topic)
		assert.Equal(t, "stages", ev.Event)
	default:
		t.Fatal("expected an event on the february topic")
	}

	select {
	case <-marCh:
		t.Fatal("march subscriber must not receive february events")
	default:
	}
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	topic := PeriodTopic("c1", 2, 2024)

	ch, done := hub.Subscribe(topic)
	require.Equal(t, 1, hub.SubscriberCount(topic))

	done()
	assert.Zero(t, hub.SubscriberCount(topic))
	_, open := <-ch
	assert.False(t, open)

	// publishing without subscribers is a no-op
	hub.Publish(topic, Event{Event: "stages"})
}

func TestHub_FullChannelDoesNotBlock(t *testing.T) {
	hub := NewHub()
	topic := PeriodTopic("c1", 2, 2024)
	_, done := hub.Subscribe(topic)
	defer done()

	for i := 0; i < 50; i++ {
		hub.Publish(topic, Event{Event: "stages"})
	}
}
