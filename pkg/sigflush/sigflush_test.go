package sigflush

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ConfirmedSignalFlushesAndCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flushed := make(chan struct{})
	h := New(func() bool { return true }, nil, func() error {
		close(flushed)
		return nil
	})
	h.Watch(ctx, cancel)

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	select {
	case <-flushed:
	case <-time.After(2 * time.Second):
		t.Fatal("flusher did not run after confirmed signal")
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not canceled after flush")
	}
}

func TestHandler_DeclinedSignalKeepsRunning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	declined := make(chan struct{}, 1)
	h := New(func() bool {
		declined <- struct{}{}
		return false
	}, nil)
	h.Watch(ctx, cancel)

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	select {
	case <-declined:
	case <-time.After(2 * time.Second):
		t.Fatal("confirm callback was not invoked")
	}

	select {
	case <-ctx.Done():
		t.Fatal("context canceled despite declined interrupt")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHandler_FlushErrorsReported(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got error
	reported := make(chan struct{})
	h := New(nil, func(err error) {
		got = err
		close(reported)
	}, func() error {
		return errors.New("disk full")
	})
	h.Watch(ctx, cancel)

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	select {
	case <-reported:
	case <-time.After(2 * time.Second):
		t.Fatal("flush error was not reported")
	}
	assert.EqualError(t, got, "disk full")
}
