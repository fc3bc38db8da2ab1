package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ConnState is the state of the connection between the service and its store.
type ConnState int32

const (
	Disconnected ConnState = iota
	Connected
	Connecting
	Disconnecting
)

func (s ConnState) String() string {
	switch s {
	case Connected:
		return "Connected"
	case Connecting:
		return "Connecting"
	case Disconnecting:
		return "Disconnecting"
	default:
		return "Disconnected"
	}
}

// monitor pings the store on a fixed interval and records whether the
// connection is usable. Requests read the recorded state instead of pinging
// the store themselves.
type monitor struct {
	backend  string
	ping     func(ctx context.Context) error
	interval time.Duration

	state     atomic.Int32
	connected bool // at least one successful ping; only touched by run

	stopOnce sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

func newMonitor(backend string, ping func(ctx context.Context) error, interval time.Duration) *monitor {
	m := &monitor{
		backend:  backend,
		ping:     ping,
		interval: interval,
		done:     make(chan struct{}),
	}
	m.state.Store(int32(Connecting))
	return m
}

func (m *monitor) State() ConnState {
	return ConnState(m.state.Load())
}

func (m *monitor) set(state ConnState) {
	m.state.Store(int32(state))
}

// start runs the first ping right away and then one per interval until stop.
func (m *monitor) start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.run(ctx)
}

func (m *monitor) run(ctx context.Context) {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		m.check(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// check pings the store once and logs state transitions.
func (m *monitor) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()
	err := m.ping(pingCtx)
	if ctx.Err() != nil {
		return
	}

	previous := m.State()
	if err != nil {
		m.set(Disconnected)
		if previous != Disconnected {
			slog.Warn("store disconnected", "backend", m.backend, "err", err)
		}
		return
	}

	m.set(Connected)
	switch {
	case !m.connected:
		slog.Info("store connected", "backend", m.backend)
	case previous != Connected:
		slog.Info("store reconnected", "backend", m.backend)
	}
	m.connected = true
}

// stop ends the pinging. The state passes through Disconnecting and ends at
// Disconnected once the ping loop has exited.
func (m *monitor) stop() {
	m.stopOnce.Do(func() {
		m.set(Disconnecting)
		if m.cancel != nil {
			m.cancel()
			<-m.done
		}
		m.set(Disconnected)
	})
}
