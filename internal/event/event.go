// Package event carries operator-facing notifications out of the domain
// services without coupling them to any particular UI.
package event

import (
	"log/slog"
	"time"
)

// Severity classifies a notification for display purposes.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Event is a single human-readable notification.
type Event struct {
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	Time     time.Time `json:"time"`
}

// Sink receives notifications. Implementations must be safe for concurrent
// use; Publish must never block the publisher indefinitely.
type Sink interface {
	Publish(e Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(e Event)

func (f SinkFunc) Publish(e Event) { f(e) }

// Infof publishes an info-level event to sink, ignoring a nil sink.
func Infof(sink Sink, message string) { publish(sink, message, SeverityInfo) }

// Warnf publishes a warn-level event to sink, ignoring a nil sink.
func Warnf(sink Sink, message string) { publish(sink, message, SeverityWarn) }

// Errorf publishes an error-level event to sink, ignoring a nil sink.
func Errorf(sink Sink, message string) { publish(sink, message, SeverityError) }

func publish(sink Sink, message string, severity Severity) {
	if sink == nil {
		return
	}
	sink.Publish(Event{Message: message, Severity: severity, Time: time.Now()})
}

// LogSink writes every event as an append-only structured log line.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink backed by logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(e Event) {
	if s.logger == nil {
		return
	}
	switch e.Severity {
	case SeverityError:
		s.logger.Error(e.Message)
	case SeverityWarn:
		s.logger.Warn(e.Message)
	default:
		s.logger.Info(e.Message)
	}
}

// ChannelSink buffers events for a consumer such as a status panel. When the
// buffer is full the oldest event is dropped so publishers never stall on a
// slow consumer.
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink creates a sink buffering up to size events.
func NewChannelSink(size int) *ChannelSink {
	if size <= 0 {
		size = 64
	}
	return &ChannelSink{ch: make(chan Event, size)}
}

func (s *ChannelSink) Publish(e Event) {
	for {
		select {
		case s.ch <- e:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan Event { return s.ch }

// Fanout duplicates every event to all sinks.
type Fanout []Sink

func (f Fanout) Publish(e Event) {
	for _, sink := range f {
		if sink != nil {
			sink.Publish(e)
		}
	}
}
