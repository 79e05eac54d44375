package ws

import (
	"context"
	"net/http"

	"github.com/Bappoz/Rustatui-Chat/internal/server"
	"github.com/Bappoz/Rustatui-Chat/pkg/logger"
)

type WSConfig struct {
	Chat       *server.ChatServer
	RootCtx    context.Context
	BufferSize int // socket read/write buffer size in bytes
}

// SetupWebSocketRoutes builds the HTTP handler exposing the chat over
// websocket at /ws.
func SetupWebSocketRoutes(cfg WSConfig) http.Handler {
	mux := http.NewServeMux()
	log := logger.FromContext(cfg.RootCtx).WithModule("websocket")
	mux.HandleFunc("/ws", HandleWebSocket(cfg.Chat, log, cfg.BufferSize))
	return mux
}
