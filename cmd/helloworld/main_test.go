package main

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novavolt/internal/testutil/testlog"
	"github.com/tuannm99/novavolt/pkg/invocation"
	"github.com/tuannm99/novavolt/server/voltwire"
	"github.com/tuannm99/novavolt/voltclient"
)

func TestRun_AgainstServer(t *testing.T) {
	logger := testlog.New(t)
	srv := voltwire.NewServer(voltwire.ServerConfig{Logger: &logger})
	var (
		mu       sync.Mutex
		inserted []string
	)
	require.NoError(t, srv.Handle("Insert", nil,
		func(_ context.Context, req *invocation.Request) (*invocation.Response, error) {
			mu.Lock()
			inserted = append(inserted, req.Params[2].Str())
			mu.Unlock()
			return nil, nil
		}))
	require.NoError(t, srv.Handle("Select", nil,
		func(context.Context, *invocation.Request) (*invocation.Response, error) {
			return voltwire.Results(), nil
		}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(context.Background(), ln)
	}()
	defer func() {
		_ = srv.Close()
		<-done
	}()

	cfg := voltclient.Config{Addr: ln.Addr().String(), DialTimeout: time.Second, RWTimeout: 5 * time.Second, Logger: &logger}
	require.NoError(t, run(context.Background(), cfg, logger))
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"English", "French"}, inserted)
}

func TestRun_InsertFailure(t *testing.T) {
	logger := testlog.New(t)
	srv := voltwire.NewServer(voltwire.ServerConfig{Logger: &logger})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(context.Background(), ln)
	}()
	defer func() {
		_ = srv.Close()
		<-done
	}()

	cfg := voltclient.Config{Addr: ln.Addr().String(), DialTimeout: time.Second, RWTimeout: 5 * time.Second}
	err = run(context.Background(), cfg, logger)
	require.ErrorContains(t, err, "Procedure Insert was not found")
}
