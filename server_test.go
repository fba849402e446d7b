package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/inkwell-go/background"
	"github.com/user/inkwell-go/logging"
	"github.com/user/inkwell-go/notify"
)

func TestShutdownEndsOpenEventStreams(t *testing.T) {
	hub := notify.NewHub()
	srv := newServer("127.0.0.1:0", notify.NewStreamHandler(hub, logging.Nop(), notify.TopicBlogs))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/?topic=blogs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Eventually(t, func() bool { return hub.Subscribers(notify.TopicBlogs) == 1 }, 2*time.Second, 10*time.Millisecond)

	bodyDone := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		close(bodyDone)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start := time.Now()
	require.NoError(t, srv.Shutdown(ctx))
	assert.Less(t, time.Since(start), 3*time.Second)

	select {
	case <-bodyDone:
	case <-time.After(2 * time.Second):
		t.Fatal("event stream was not closed")
	}
	assert.Equal(t, 0, hub.Subscribers(notify.TopicBlogs))
}

func TestShutdownDrainsDispatcher(t *testing.T) {
	hub := notify.NewHub()
	_, events := hub.Subscribe(notify.TopicBlogs)

	dispatcher := background.NewDispatcher(hub, logging.Nop())
	dispatcher.Start()
	require.NoError(t, dispatcher.Notify(context.Background(), notify.Changed(notify.TopicBlogs, notify.Created, "p1")))

	srv := newServer("127.0.0.1:0", http.NotFoundHandler())
	require.NoError(t, shutdown(srv, dispatcher, logging.Nop()))

	select {
	case ev := <-events:
		assert.Equal(t, notify.TopicBlogs, ev.Topic)
	case <-time.After(2 * time.Second):
		t.Fatal("queued event was not delivered before stop")
	}
	assert.ErrorIs(t, dispatcher.Notify(context.Background(), notify.Changed(notify.TopicBlogs, notify.Deleted, "p1")), background.ErrStopped)
}
