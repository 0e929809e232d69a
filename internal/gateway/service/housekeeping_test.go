package service_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/oxleyhq/apigate/internal/gateway/service"
	"github.com/oxleyhq/apigate/pkg/ratex"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweepsStaleKeys(t *testing.T) {
	store := ratex.NewMemoryStore()
	limiter := ratex.New(store, 10, 50*time.Millisecond)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, key := range []string{"ip:10.0.0.1", "ip:10.0.0.2", "ip:10.0.0.3"} {
		require.True(t, limiter.Allow(key).Allowed)
	}
	require.Equal(t, 3, store.Len())

	hk := service.NewHousekeepingService(limiter, logger, 10*time.Millisecond)
	hk.Start()
	defer hk.Stop()

	require.Eventually(t, func() bool {
		return store.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestHousekeepingStopIsClean(t *testing.T) {
	limiter := ratex.New(ratex.NewMemoryStore(), 10, time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hk := service.NewHousekeepingService(limiter, logger, time.Hour)
	hk.Start()

	done := make(chan struct{})
	go func() {
		hk.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestHousekeepingDefaultInterval(t *testing.T) {
	limiter := ratex.New(ratex.NewMemoryStore(), 10, time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hk := service.NewHousekeepingService(limiter, logger, 0)
	require.Equal(t, time.Minute, hk.Interval)
}
