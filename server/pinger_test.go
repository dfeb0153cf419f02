package server_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hiCozyty/zmq-bridge/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPinger(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	count := int64(0)

	pinger := server.NewPinger(ctx, 5*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt64(&count, 1)

		return nil
	}, func(err error) {
		t.Errorf("unexpected ping error: %s", err)
	})

	for atomic.LoadInt64(&count) < 5 {
		require.NoError(t, ctx.Err())
		time.Sleep(1 * time.Millisecond)
	}

	cancel()

	<-pinger.Done()
}

func TestPinger_error(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	errPing := errors.New("no pong")
	errCh := make(chan error, 1)

	pinger := server.NewPinger(ctx, 5*time.Millisecond, func(ctx context.Context) error {
		return errPing
	}, func(err error) {
		errCh <- err
	})

	<-pinger.Done()

	select {
	case err := <-errCh:
		assert.Equal(t, errPing, err)
	default:
		t.Fatal("onError was not called")
	}
}
