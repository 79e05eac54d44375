package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bappoz/Rustatui-Chat/internal/broadcast"
	"github.com/Bappoz/Rustatui-Chat/internal/registry"
	"github.com/Bappoz/Rustatui-Chat/internal/server"
	"github.com/Bappoz/Rustatui-Chat/pkg/logger"
)

func startGateway(t *testing.T) (*httptest.Server, *registry.Clients) {
	t.Helper()
	clients := registry.NewClients()
	chat := server.New("", 0, clients, registry.NewRooms(), broadcast.NewBus(32), logger.NewLogger("error", ""))

	ctx := logger.NewContext(context.Background(), logger.NewLogger("error", ""))
	ts := httptest.NewServer(SetupWebSocketRoutes(WSConfig{Chat: chat, RootCtx: ctx, BufferSize: 1024}))
	t.Cleanup(ts.Close)
	return ts, clients
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// awaitWS reads messages until one contains substr.
func awaitWS(t *testing.T, conn *websocket.Conn, substr string) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var seen []string
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("connection ended while waiting for %q; saw:\n%s", substr, strings.Join(seen, "\n"))
		}
		seen = append(seen, string(data))
		if strings.Contains(string(data), substr) {
			return string(data)
		}
	}
}

func sendWS(t *testing.T, conn *websocket.Conn, line string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(line)))
}

func registerWS(t *testing.T, ts *httptest.Server, name string) *websocket.Conn {
	t.Helper()
	conn := dialWS(t, ts)
	awaitWS(t, conn, "Name (press Enter")
	sendWS(t, conn, name)
	awaitWS(t, conn, "Welcome, "+name)
	return conn
}

func TestWebSocketRegistrationAndChat(t *testing.T) {
	ts, _ := startGateway(t)

	alice := registerWS(t, ts, "alice")
	bob := registerWS(t, ts, "bob")

	sendWS(t, alice, "hello over ws")

	line := awaitWS(t, bob, "hello over ws")
	assert.True(t, strings.HasPrefix(line, "CHAT|"), "expected a structured chat line, got %q", line)
	assert.Contains(t, line, "|alice|")
}

func TestWebSocketCommands(t *testing.T) {
	ts, _ := startGateway(t)

	alice := registerWS(t, ts, "alice")

	sendWS(t, alice, "/rooms")
	line := awaitWS(t, alice, "ROOM_LIST|")
	assert.Contains(t, line, "general:1:open")
}

func TestWebSocketDisconnectCleansUp(t *testing.T) {
	ts, clients := startGateway(t)

	conn := registerWS(t, ts, "alice")
	require.False(t, clients.IsNameAvailable("alice"))
	conn.Close()

	require.Eventually(t, func() bool {
		return clients.IsNameAvailable("alice")
	}, 2*time.Second, 10*time.Millisecond)

	registerWS(t, ts, "alice")
}
