package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeChecker struct {
	name    string
	healthy atomic.Int32
}

func (f *fakeChecker) Name() string                               { return f.name }
func (f *fakeChecker) IsHealthy() bool                            { return f.healthy.Load() == 1 }
func (f *fakeChecker) Start(ctx context.Context, _ time.Duration) { /* no-op */ }

func TestServiceHealthChecker_Transitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := zerolog.Nop()

	store := &fakeChecker{name: "recordingstore"}
	idx := &fakeChecker{name: "index"}
	store.healthy.Store(1)
	idx.healthy.Store(1)

	svc := NewServiceHealthChecker(logger, store, idx)
	go svc.Start(ctx, 10*time.Millisecond)

	// Initially healthy
	waitTrue(t, func() bool { return svc.IsHealthy() })

	// Flip one to unhealthy
	idx.healthy.Store(0)
	waitTrue(t, func() bool { return !svc.IsHealthy() })

	// Recover
	idx.healthy.Store(1)
	waitTrue(t, func() bool { return svc.IsHealthy() })
}

func TestPingChecker_FollowsProbe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fail atomic.Bool
	pc := NewPingChecker("index", PingFunc(func(ctx context.Context) error {
		if fail.Load() {
			return errors.New("down")
		}
		return nil
	}), zerolog.Nop(), 50*time.Millisecond)

	go pc.Start(ctx, 10*time.Millisecond)
	waitTrue(t, func() bool { return pc.IsHealthy() })

	fail.Store(true)
	waitTrue(t, func() bool { return !pc.IsHealthy() })

	fail.Store(false)
	waitTrue(t, func() bool { return pc.IsHealthy() })
}

func waitTrue(t *testing.T, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before timeout")
}
