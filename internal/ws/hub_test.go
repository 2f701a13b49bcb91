package ws

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/plugsunset/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func startTestServer(t *testing.T, hub *Hub, snapshot func() any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(Handler(hub, testLogger(), snapshot))
	t.Cleanup(server.Close)
	return server
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestNewHubSubscribes(t *testing.T) {
	bus := events.NewBus()
	hub := NewHub(testLogger(), bus)
	assert.Equal(t, 1, bus.Len())
	assert.Equal(t, 0, hub.ClientCount())

	hub.Close()
	assert.Equal(t, 0, bus.Len())
}

func TestHubClientCount(t *testing.T) {
	hub := NewHub(testLogger(), events.NewBus())
	defer hub.Close()
	server := startTestServer(t, hub, nil)

	conn1 := dialWS(t, server)
	waitForClients(t, hub, 1)
	dialWS(t, server)
	waitForClients(t, hub, 2)

	conn1.Close()
	waitForClients(t, hub, 1)
}

func TestHubBroadcastsEvents(t *testing.T) {
	bus := events.NewBus()
	hub := NewHub(testLogger(), bus)
	defer hub.Close()
	server := startTestServer(t, hub, nil)

	a := dialWS(t, server)
	b := dialWS(t, server)
	waitForClients(t, hub, 2)

	bus.Publish(events.NewEvent(events.PlugStateApplied, events.StateApplied{Host: "192.168.0.21", State: "ON"}))

	for _, conn := range []*websocket.Conn{a, b} {
		var got events.Event
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, events.PlugStateApplied, got.Type)

		var p events.StateApplied
		require.NoError(t, got.Decode(&p))
		assert.Equal(t, "ON", p.State)
		assert.Equal(t, "192.168.0.21", p.Host)
	}
}

func TestHandlerSendsSnapshotFirst(t *testing.T) {
	bus := events.NewBus()
	hub := NewHub(testLogger(), bus)
	defer hub.Close()
	server := startTestServer(t, hub, func() any {
		return map[string]string{"state": "OFF"}
	})

	conn := dialWS(t, server)
	waitForClients(t, hub, 1)
	bus.Publish(events.NewEvent(events.TransitionScheduled, events.Scheduled{State: "ON"}))

	var first, second events.Event
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, events.StatusSnapshot, first.Type)
	assert.JSONEq(t, `{"state":"OFF"}`, string(first.Data))
	assert.Equal(t, events.TransitionScheduled, second.Type)
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	hub := NewHub(testLogger(), events.NewBus())
	server := startTestServer(t, hub, nil)

	conn := dialWS(t, server)
	waitForClients(t, hub, 1)

	hub.Close()
	assert.Equal(t, 0, hub.ClientCount())

	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
}

func TestHandlerRejectsAfterClose(t *testing.T) {
	hub := NewHub(testLogger(), events.NewBus())
	hub.Close()
	server := startTestServer(t, hub, nil)

	conn := dialWS(t, server)
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestSlowClientIsDropped(t *testing.T) {
	bus := events.NewBus()
	hub := NewHub(testLogger(), bus)
	defer hub.Close()

	// a client with no pumps never drains its buffer
	c := &Client{hub: hub, send: make(chan []byte, 1)}
	require.True(t, hub.Register(c))

	bus.Publish(events.NewEvent(events.PlugResolved, events.Resolved{Host: "a"}))
	assert.Equal(t, 1, hub.ClientCount())

	bus.Publish(events.NewEvent(events.PlugResolved, events.Resolved{Host: "b"}))
	assert.Equal(t, 0, hub.ClientCount())

	_, ok := <-c.send
	assert.True(t, ok)
	_, ok = <-c.send
	assert.False(t, ok)

	hub.Unregister(c)
}
