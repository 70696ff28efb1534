package notifications

import (
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RunWaitsForWritePump(t *testing.T) {
	hub := NewHub("notification hub")
	registered := make(chan *Client, 1)
	writerStopped := make(chan bool, 1)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		client, err := hub.Register(7, conn)
		if err != nil {
			_ = conn.Close()
			return
		}
		registered <- client
		client.Run()

		select {
		case <-client.Done():
			writerStopped <- true
		default:
			writerStopped <- false
		}
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })

	conn, _, err := gws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)

	select {
	case <-registered:
	case <-time.After(5 * time.Second):
		t.Fatal("client was not registered")
	}

	hub.Broadcast(7, `{"type":"notification_created"}`)
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"notification_created"}`, string(msg))

	require.NoError(t, conn.WriteMessage(gws.CloseMessage,
		gws.FormatCloseMessage(gws.CloseNormalClosure, "bye")))
	_ = conn.Close()

	select {
	case stopped := <-writerStopped:
		assert.True(t, stopped, "handler returned while the write pump still held the connection")
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not return after the peer closed")
	}
	assert.False(t, hub.IsOnline(7))
}
