package ws

import (
	"strings"

	"github.com/gorilla/websocket"
)

// lineStream adapts a websocket connection to the line-oriented stream
// the session engine expects: one text message per protocol line in each
// direction.
type lineStream struct {
	ws      *websocket.Conn
	pending []byte
}

func newLineStream(conn *websocket.Conn) *lineStream {
	return &lineStream{ws: conn}
}

// Read hands out the next received message with a newline appended, so
// the session's buffered line reader sees it as one line.
func (s *lineStream) Read(p []byte) (int, error) {
	if len(s.pending) == 0 {
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			return 0, err
		}
		s.pending = append(data, '\n')
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Write sends each line of p as its own text message. A trailing partial
// line (the registration prompt) is flushed as a message of its own
// rather than held back.
func (s *lineStream) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		if line == "" {
			continue
		}
		if err := s.ws.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (s *lineStream) Close() error {
	return s.ws.Close()
}
