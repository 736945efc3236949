package eventbus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type editApplied struct {
	Target string
}

type draftQueued struct {
	Target string
}

func TestPublishDeliversToMatchingSubscriber(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	var got []string
	bus.Subscribe(func(e editApplied) {
		got = append(got, e.Target)
	})

	bus.Publish(editApplied{Target: "course"})
	bus.Publish(draftQueued{Target: "lesson"})

	require.Equal(t, []string{"course"}, got)
}

func TestPublishMatchesInterfaceParameters(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	var got any
	bus.Subscribe(func(e any) {
		got = e
	})

	bus.Publish(draftQueued{Target: "lesson"})
	require.Equal(t, draftQueued{Target: "lesson"}, got)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	calls := 0
	handler := func(e editApplied) { calls++ }
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Publish(editApplied{})
	bus.Unsubscribe(handler)
	bus.Publish(editApplied{})

	require.Equal(t, 1, calls)
	require.Zero(t, bus.SubscribersCount())
}

func TestPublishRecoversFromHandlerPanic(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	bus.Subscribe(func(e editApplied) { panic("boom") })

	require.NotPanics(t, func() {
		bus.Publish(editApplied{})
	})
}

func TestSubscribeRejectsNonFunction(t *testing.T) {
	bus := NewEventPublisher(logrus.New())
	require.Panics(t, func() {
		bus.Subscribe("not a function")
	})
}

func TestClear(t *testing.T) {
	bus := NewEventPublisher(logrus.New())
	bus.Subscribe(func(e editApplied) {})
	bus.Subscribe(func(e draftQueued) {})
	bus.Clear()
	require.Zero(t, bus.SubscribersCount())
}
