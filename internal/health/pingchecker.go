package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// PingChecker probes one component through its HealthPing and caches the
// result. Both the recording store and the metadata index are monitored
// this way.
type PingChecker struct {
	name         string
	target       HealthPinger
	log          zerolog.Logger
	probeTimeout time.Duration
	healthy      atomic.Int32
}

func NewPingChecker(name string, target HealthPinger, log zerolog.Logger, probeTimeout time.Duration) *PingChecker {
	return &PingChecker{name: name, target: target, log: log, probeTimeout: probeTimeout}
}

func (pc *PingChecker) Name() string    { return pc.name }
func (pc *PingChecker) IsHealthy() bool { return pc.healthy.Load() == 1 }

func (pc *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	probe := func() {
		checkCtx, cancel := context.WithTimeout(ctx, pc.probeTimeout)
		defer cancel()
		if err := pc.target.HealthPing(checkCtx); err != nil {
			if pc.healthy.Swap(0) == 1 {
				pc.log.Error().Err(err).Str("component", pc.name).Msg("component health: DOWN")
			}
			return
		}
		if pc.healthy.Swap(1) == 0 {
			pc.log.Info().Str("component", pc.name).Msg("component health: UP")
		}
	}

	probe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}

// PingFunc adapts a plain ping function to HealthPinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) HealthPing(ctx context.Context) error { return f(ctx) }
