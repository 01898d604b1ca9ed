package observability

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownManager_RunsAllFuncs(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sm := NewShutdownManager(logger, nil, time.Second)

	var calls int32
	for _, name := range []string{"redis", "postgres", "otel"} {
		sm.RegisterShutdownFunc(name, func(context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}

	require.NoError(t, sm.Shutdown(context.Background()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestShutdownManager_CollectsErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sm := NewShutdownManager(logger, nil, time.Second)

	sm.RegisterShutdownFunc("bolt", func(context.Context) error { return errors.New("file locked") })
	sm.RegisterShutdownFunc("redis", func(context.Context) error { return nil })

	err := sm.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bolt: file locked")
}

func TestShutdownManager_Timeout(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sm := NewShutdownManager(logger, nil, 50*time.Millisecond)

	sm.RegisterShutdownFunc("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		return ctx.Err()
	})

	err := sm.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestShutdownManager_DrainsServer(t *testing.T) {
	logger, _ := test.NewNullLogger()
	srv := &http.Server{Addr: "127.0.0.1:0"}
	sm := NewShutdownManager(logger, srv, 0)
	assert.Equal(t, 30*time.Second, sm.shutdownTimeout)

	require.NoError(t, sm.Shutdown(context.Background()))
	assert.ErrorIs(t, srv.ListenAndServe(), http.ErrServerClosed)
}
