package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/cartsim/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
	}
}

func testState() *engine.State {
	return &engine.State{
		Tick:  3,
		Alive: 2,
		Carts: []engine.Cart{
			engine.NewCart(0, engine.Position{X: 5, Y: 3}, engine.Right),
		},
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.done
	})
	return hub
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	require.NotNil(t, hub)
	assert.NotNil(t, hub.sessions)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.NotNil(t, hub.logger)
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "Test-Session")

	hub.registerClient(client)

	require.Contains(t, hub.sessions, "test-session")
	assert.True(t, hub.sessions["test-session"][client])
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	assert.NotContains(t, hub.sessions, "test-session")

	_, ok := <-client.send
	assert.False(t, ok, "send channel should be closed")

	// A second unregister is a no-op.
	assert.NotPanics(t, func() { hub.unregisterClient(client) })
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub(nil)
	client1 := newTestClient(hub, "multi")
	client2 := newTestClient(hub, "multi")

	hub.registerClient(client1)
	hub.registerClient(client2)
	assert.Len(t, hub.sessions["multi"], 2)

	hub.unregisterClient(client1)
	assert.Len(t, hub.sessions["multi"], 1)
	assert.True(t, hub.sessions["multi"][client2])
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "broadcast-test")
	other := newTestClient(hub, "other")
	hub.registerClient(client)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{SessionID: "BROADCAST-TEST", State: testState(), Event: EventStateUpdate})

	select {
	case data := <-client.send:
		var message Message
		require.NoError(t, json.Unmarshal(data, &message))
		assert.Equal(t, "BROADCAST-TEST", message.SessionID)
		assert.Equal(t, EventStateUpdate, message.Event)
		require.NotNil(t, message.State)
		assert.Equal(t, 3, message.State.Tick)
		assert.Equal(t, engine.Position{X: 5, Y: 3}, message.State.Carts[0].Position)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no message received within timeout")
	}

	assert.Empty(t, other.send, "other sessions must not receive the message")
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: EventTick})

	assert.NotContains(t, hub.sessions, "slow")
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub(nil)

	hub.BroadcastEvent("event-test", EventFinished, testState(), map[string]string{"survivor": "6,4"})

	select {
	case message := <-hub.broadcast:
		assert.Equal(t, "event-test", message.SessionID)
		assert.Equal(t, EventFinished, message.Event)
		assert.Equal(t, map[string]string{"survivor": "6,4"}, message.Data)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no broadcast message received within timeout")
	}
}

func dialSession(t *testing.T, hub *Hub, sessionID string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return hub.ClientCount(sessionID) == 1
	}, time.Second, 5*time.Millisecond)
	return conn
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := startHub(t)
	conn := dialSession(t, hub, "ws-test")

	conn.Close()

	assert.Eventually(t, func() bool {
		return hub.ClientCount("ws-test") == 0
	}, time.Second, 5*time.Millisecond)
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := startHub(t)
	conn := dialSession(t, hub, "msg-test")

	hub.BroadcastToSession("msg-test", testState())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var message Message
	require.NoError(t, json.Unmarshal(data, &message))
	assert.Equal(t, "msg-test", message.SessionID)
	assert.Equal(t, EventStateUpdate, message.Event)
	require.NotNil(t, message.State)
	assert.Equal(t, 2, message.State.Alive)
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	conn := dialSession(t, hub, "shutdown")
	cancel()
	<-hub.done

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount("shutdown"))
}
