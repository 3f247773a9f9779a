package event_test

import (
	"fmt"
	"testing"

	"github.com/PhucDaizz/parkledger/internal/event"
	"github.com/stretchr/testify/require"
)

func TestChannelSinkDropsOldestWhenFull(t *testing.T) {
	sink := event.NewChannelSink(2)

	for i := 0; i < 5; i++ {
		sink.Publish(event.Event{Message: fmt.Sprintf("m%d", i), Severity: event.SeverityInfo})
	}

	first := <-sink.Events()
	second := <-sink.Events()
	require.Equal(t, "m3", first.Message)
	require.Equal(t, "m4", second.Message)
}

func TestFanout(t *testing.T) {
	var got []string
	a := event.SinkFunc(func(e event.Event) { got = append(got, "a:"+e.Message) })
	b := event.SinkFunc(func(e event.Event) { got = append(got, "b:"+e.Message) })

	event.Warnf(event.Fanout{a, nil, b}, "hello")
	require.Equal(t, []string{"a:hello", "b:hello"}, got)
}

func TestHelpersTolerateNilSink(t *testing.T) {
	require.NotPanics(t, func() {
		event.Infof(nil, "x")
		event.Warnf(nil, "x")
		event.Errorf(nil, "x")
	})
}

func TestHelpersStampSeverityAndTime(t *testing.T) {
	var captured event.Event
	sink := event.SinkFunc(func(e event.Event) { captured = e })

	event.Errorf(sink, "boom")
	require.Equal(t, event.SeverityError, captured.Severity)
	require.Equal(t, "boom", captured.Message)
	require.False(t, captured.Time.IsZero())
}
