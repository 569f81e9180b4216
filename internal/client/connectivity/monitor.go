// Package connectivity decides whether the receiver is reachable and feeds
// the result to the sync engine.
package connectivity

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Target receives connectivity changes. *services.SyncEngine implements it.
type Target interface {
	SetOnline(online bool)
}

// Monitor pings the receiver on an interval.
type Monitor struct {
	pinger   Pinger
	target   Target
	interval time.Duration
	timeout  time.Duration
	log      logging.Logger

	forcedOffline atomic.Bool
}

func NewMonitor(pinger Pinger, target Target, interval, timeout time.Duration, log logging.Logger) *Monitor {
	return &Monitor{
		pinger:   pinger,
		target:   target,
		interval: interval,
		timeout:  timeout,
		log:      log,
	}
}

// Run pings immediately and then on every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.Check(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// Check pings once, reports the result to the target and returns it.
// While forced offline it reports offline without probing.
func (m *Monitor) Check(ctx context.Context) bool {
	if m.forcedOffline.Load() {
		m.target.SetOnline(false)
		return false
	}

	pctx, cancel := context.WithTimeout(ctx, m.timeout)
	err := m.pinger.Ping(pctx)
	cancel()

	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		m.log.Debug(ctx, "receiver unreachable", "error", err)
	}

	online := err == nil
	m.target.SetOnline(online)
	return online
}

// ForceOffline overrides the ping result until it is called with false,
// after which the next Check decides again.
func (m *Monitor) ForceOffline(ctx context.Context, offline bool) {
	m.forcedOffline.Store(offline)
	m.Check(ctx)
}

func (m *Monitor) ForcedOffline() bool {
	return m.forcedOffline.Load()
}
