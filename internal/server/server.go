// Package server accepts client connections and spawns one session per
// connection.
package server

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/Bappoz/Rustatui-Chat/internal/broadcast"
	"github.com/Bappoz/Rustatui-Chat/internal/registry"
	"github.com/Bappoz/Rustatui-Chat/internal/session"
	"github.com/Bappoz/Rustatui-Chat/pkg/logger"
)

// ChatServer owns the TCP listener and the shared chat state handed to
// every session. Other transports (the websocket gateway) reuse
// StartSession so all connections share the same registries, bus, and
// anonymous id sequence.
type ChatServer struct {
	address     string
	maxSessions int // 0 means unlimited
	clients     *registry.Clients
	rooms       *registry.Rooms
	bus         *broadcast.Bus
	log         logger.Logger

	mu          sync.Mutex
	listener    net.Listener
	anonCounter uint64
	active      int64
}

func New(address string, maxSessions int, clients *registry.Clients, rooms *registry.Rooms, bus *broadcast.Bus, log logger.Logger) *ChatServer {
	return &ChatServer{
		address:     address,
		maxSessions: maxSessions,
		clients:     clients,
		rooms:       rooms,
		bus:         bus,
		log:         log.WithModule("server"),
	}
}

// ListenAndServe binds the configured address and accepts connections
// until Stop closes the listener.
func (s *ChatServer) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections from ln. It returns nil after Stop.
func (s *ChatServer) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.log.Infof("listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		addr := conn.RemoteAddr().String()
		s.log.Infof("new connection from %s", addr)

		go func() {
			s.StartSession(conn, addr)
			s.log.Infof("client disconnected: %s", addr)
		}()
	}
}

// Addr returns the bound listener address, or empty before Serve.
func (s *ChatServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop closes the listener. Established sessions keep running until
// their connections end.
func (s *ChatServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
}

// StartSession runs the session protocol over conn and blocks until the
// session ends. A panic in one session must not take down the rest of
// the server.
func (s *ChatServer) StartSession(conn io.ReadWriteCloser, addr string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("session %s panicked: %v", addr, r)
			conn.Close()
		}
	}()

	if n := atomic.AddInt64(&s.active, 1); s.maxSessions > 0 && n > int64(s.maxSessions) {
		atomic.AddInt64(&s.active, -1)
		s.log.Warnf("rejecting %s: session limit %d reached", addr, s.maxSessions)
		conn.Write([]byte("SYSTEM|Server is full. Try again later.\n"))
		conn.Close()
		return
	}
	defer atomic.AddInt64(&s.active, -1)

	id := atomic.AddUint64(&s.anonCounter, 1)
	sub := s.bus.Subscribe()
	sess := session.New(conn, addr, id, s.clients, s.rooms, s.bus, sub, s.log)
	sess.Run()
}
