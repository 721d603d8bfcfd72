package enginesim

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrAlertSinkClosed is returned when a channel alert sink is written to after being closed.
	ErrAlertSinkClosed = errors.New("enginesim: alert sink closed")
	// ErrDisplaySinkClosed is returned when a channel display sink is written to after being closed.
	ErrDisplaySinkClosed = errors.New("enginesim: display sink closed")
	// ErrSinkFull is returned when a channel sink's buffer has no room. The
	// tick goroutine never waits on a slow reader.
	ErrSinkFull = errors.New("enginesim: sink buffer full")
)

// AlertFunc is invoked with every emitted alert.
type AlertFunc func(Alert) error

// DisplayFunc is invoked with every display snapshot.
type DisplayFunc func(Snapshot) error

// NewCallbackAlertSink adapts a function into an AlertSink so callers can
// plug arbitrary handlers without defining structs.
func NewCallbackAlertSink(name string, fn AlertFunc) AlertSink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink[Alert]{name: name, fn: fn}
}

// NewCallbackDisplaySink adapts a function into a DisplaySink.
func NewCallbackDisplaySink(name string, fn DisplayFunc) DisplaySink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink[Snapshot]{name: name, fn: fn}
}

// NewChannelAlertSink exposes alerts via a channel; it returns the sink, the
// read-only channel, and a close function the caller should invoke during
// shutdown.
func NewChannelAlertSink(name string, buffer int) (AlertSink, <-chan Alert, func()) {
	if name == "" {
		name = "channel"
	}
	s := newChannelSink[Alert](name, buffer, ErrAlertSinkClosed)
	return s, s.ch, s.close
}

// NewChannelDisplaySink exposes display snapshots via a channel. Snapshots
// that find the buffer full are dropped with ErrSinkFull.
func NewChannelDisplaySink(name string, buffer int) (DisplaySink, <-chan Snapshot, func()) {
	if name == "" {
		name = "channel"
	}
	s := newChannelSink[Snapshot](name, buffer, ErrDisplaySinkClosed)
	return s, s.ch, s.close
}

type callbackSink[T any] struct {
	name string
	fn   func(T) error
}

func (s *callbackSink[T]) WriteAlert(a T) error { return s.call(a) }
func (s *callbackSink[T]) Publish(v T) error    { return s.call(v) }
func (s *callbackSink[T]) Name() string         { return s.name }

func (s *callbackSink[T]) call(v T) error {
	if s.fn == nil {
		return fmt.Errorf("callback sink %q: nil handler", s.name)
	}
	return s.fn(v)
}

type channelSink[T any] struct {
	name      string
	ch        chan T
	closedErr error

	mu     sync.Mutex
	closed bool
}

func newChannelSink[T any](name string, buffer int, closedErr error) *channelSink[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &channelSink[T]{
		name:      name,
		ch:        make(chan T, buffer),
		closedErr: closedErr,
	}
}

func (s *channelSink[T]) WriteAlert(v T) error { return s.send(v) }
func (s *channelSink[T]) Publish(v T) error    { return s.send(v) }
func (s *channelSink[T]) Name() string         { return s.name }

func (s *channelSink[T]) send(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.closedErr
	}
	select {
	case s.ch <- v:
		return nil
	default:
		return ErrSinkFull
	}
}

func (s *channelSink[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
