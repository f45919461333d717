package connectivity

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/splitpocket/splitpocket-sync/pkg/logger"
)

const defaultProbeInterval = 10 * time.Second

// Probe answers whether the remote side is reachable right now.
type Probe interface {
	Check(ctx context.Context) bool
}

// DialProbe checks reachability with a plain TCP dial.
type DialProbe struct {
	Address string
	Timeout time.Duration
}

func (p DialProbe) Check(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: p.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// MonitorParams configure the reachability monitor.
type MonitorParams struct {
	Logger   *logger.Logger
	Probe    Probe
	Interval time.Duration
	OnOnline func()
}

// Monitor watches reachability on its own goroutine and publishes state
// transitions. The OnOnline hook fires once per offline-to-online transition,
// in a fresh goroutine, so the probe loop never blocks on sync work.
type Monitor struct {
	logg     *logger.Logger
	probe    Probe
	interval time.Duration
	onOnline func()

	mu        sync.Mutex
	connected bool
	subs      []chan bool
}

func NewMonitor(params MonitorParams) (*Monitor, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Probe == nil {
		return nil, fmt.Errorf("probe required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	return &Monitor{
		logg:     params.Logger,
		probe:    params.Probe,
		interval: interval,
		onOnline: params.OnOnline,
	}, nil
}

// SetOnOnline registers the offline-to-online hook. Call before Run.
func (m *Monitor) SetOnOnline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = fn
}

// IsConnected reports the last observed reachability state.
func (m *Monitor) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Subscribe returns a channel receiving reachability transitions. Sends never
// block; a slow reader only misses intermediate flips.
func (m *Monitor) Subscribe() <-chan bool {
	ch := make(chan bool, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Run probes until the context is canceled.
func (m *Monitor) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	m.CheckNow(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logg.Info(ctx, "connectivity monitor context canceled")
			return ctx.Err()
		case <-ticker.C:
			m.CheckNow(ctx)
		}
	}
}

// CheckNow performs one probe cycle and applies any state transition.
func (m *Monitor) CheckNow(ctx context.Context) {
	m.observe(ctx, m.probe.Check(ctx))
}

func (m *Monitor) observe(ctx context.Context, connected bool) {
	m.mu.Lock()
	if m.connected == connected {
		m.mu.Unlock()
		return
	}
	m.connected = connected
	subs := make([]chan bool, len(m.subs))
	copy(subs, m.subs)
	onOnline := m.onOnline
	m.mu.Unlock()

	m.logg.Info(m.logg.WithField(ctx, "connected", connected), "connectivity changed")

	for _, sub := range subs {
		select {
		case sub <- connected:
		default:
		}
	}

	if connected && onOnline != nil {
		go onOnline()
	}
}
