package ws

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Bappoz/Rustatui-Chat/internal/server"
	"github.com/Bappoz/Rustatui-Chat/pkg/logger"
)

// HandleWebSocket upgrades the request and runs the same session
// protocol the TCP listener uses, over one-message-per-line framing.
func HandleWebSocket(chat *server.ChatServer, logg logger.Logger, bufferSize int) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  bufferSize,
		WriteBufferSize: bufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins for testing; restrict in production.
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logg.Errorf("upgrade error: %v", err)
			return
		}

		addr := conn.RemoteAddr().String()
		logg.Infof("new websocket connection from %s", addr)

		chat.StartSession(newLineStream(conn), addr)
		logg.Infof("websocket client disconnected: %s", addr)
	}
}
