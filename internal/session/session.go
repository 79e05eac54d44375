// Package session implements the per-connection actor: the registration
// sub-protocol followed by the message loop that races socket input
// against the broadcast subscription.
package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/Bappoz/Rustatui-Chat/internal/broadcast"
	"github.com/Bappoz/Rustatui-Chat/internal/command"
	"github.com/Bappoz/Rustatui-Chat/internal/domain"
	"github.com/Bappoz/Rustatui-Chat/internal/registry"
	"github.com/Bappoz/Rustatui-Chat/pkg/colors"
	"github.com/Bappoz/Rustatui-Chat/pkg/logger"
)

const (
	minNameLen = 2
	maxNameLen = 20
)

// Session drives one client connection from registration to cleanup. It
// is owned by a single goroutine for its whole lifetime.
type Session struct {
	conn     io.ReadWriteCloser
	addr     string
	anonID   uint64
	clients  *registry.Clients
	rooms    *registry.Rooms
	bus      *broadcast.Bus
	sub      *broadcast.Subscription
	executor *command.Executor
	log      logger.Logger

	reader *bufio.Reader
}

// New wires a session for a freshly accepted connection. The subscription
// must be created before any message the session should observe is
// published.
func New(
	conn io.ReadWriteCloser,
	addr string,
	anonID uint64,
	clients *registry.Clients,
	rooms *registry.Rooms,
	bus *broadcast.Bus,
	sub *broadcast.Subscription,
	log logger.Logger,
) *Session {
	return &Session{
		conn:     conn,
		addr:     addr,
		anonID:   anonID,
		clients:  clients,
		rooms:    rooms,
		bus:      bus,
		sub:      sub,
		executor: command.NewExecutor(clients, rooms),
		log:      log.WithFields(map[string]interface{}{"addr": addr}),
		reader:   bufio.NewReader(conn),
	}
}

// Run executes the session to completion: Registering, then Active, then
// cleanup. It returns when the connection fails, the client quits, or
// registration is abandoned.
func (s *Session) Run() {
	defer s.conn.Close()
	defer s.sub.Close()
	// register can fail after the name and room are taken (the client
	// disconnects before the welcome write lands), so cleanup must cover
	// the registration phase too. It is a no-op for an unregistered addr.
	defer s.cleanup()

	if err := s.register(); err != nil {
		s.log.Infof("registration ended: %v", err)
		return
	}

	if err := s.messageLoop(); err != nil {
		s.log.Infof("session ended: %v", err)
	}
}

// register runs the naming prompt loop until an acceptable name is
// registered, then joins the general room.
func (s *Session) register() error {
	if err := s.writeRaw("\n=== Welcome to Rustatui Chat ===\nType /help for commands\n\n"); err != nil {
		return err
	}

	for {
		if err := s.writeRaw(fmt.Sprintf("Name (press Enter for Anonymous#%d): ", s.anonID)); err != nil {
			return err
		}

		line, err := s.reader.ReadString('\n')
		if err != nil {
			return err
		}

		name := strings.TrimSpace(line)
		if name == "" {
			name = fmt.Sprintf("Anonymous#%d", s.anonID)
		}

		if n := utf8.RuneCountInString(name); n < minNameLen || n > maxNameLen {
			if err := s.writeRaw("Name must be between 2-20 characters. Try again.\n"); err != nil {
				return err
			}
			continue
		}

		if err := s.clients.Register(s.addr, name); err != nil {
			if errors.Is(err, registry.ErrNameTaken) {
				if err := s.writeRaw("The name is taken. Choose another name.\n"); err != nil {
					return err
				}
				continue
			}
			return err
		}

		if err := s.rooms.Join(registry.GeneralRoom, s.addr, ""); err != nil {
			return err
		}

		if err := s.writeRaw(fmt.Sprintf("✓ Welcome, %s!\n Joined room: %s\n\n", name, registry.GeneralRoom)); err != nil {
			return err
		}

		s.broadcastUserList(registry.GeneralRoom)
		s.log.Infof("registered as %q", name)
		return nil
	}
}

// messageLoop services whichever of the socket and the bus subscription
// is ready first. Both arms re-arm every iteration; select keeps the two
// sources fair.
func (s *Session) messageLoop() error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			line, err := s.reader.ReadString('\n')
			if err != nil {
				readErr <- err
				close(lines)
				return
			}
			select {
			case lines <- line:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				err := <-readErr
				if errors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("read: %w", err)
			}
			quit, err := s.handleInput(strings.TrimSpace(line))
			if err != nil {
				return err
			}
			if quit {
				return nil
			}

		case msg := <-s.sub.C():
			if lost := s.sub.Lost(); lost > 0 {
				if err := s.writeSystem(fmt.Sprintf("%d messages were lost (slow connection)", lost)); err != nil {
					return err
				}
			}
			if err := s.handleBusMessage(msg); err != nil {
				return err
			}
		}
	}
}

// handleInput turns one socket line into a command execution or a chat
// publish. Malformed input never ends the session.
func (s *Session) handleInput(line string) (quit bool, err error) {
	if line == "" {
		return false, nil
	}

	if cmd, ok := command.Parse(line); ok {
		return s.runCommand(cmd)
	}

	info, ok := s.clients.InfoOf(s.addr)
	if !ok {
		return false, fmt.Errorf("client %s missing from registry", s.addr)
	}
	room, ok := s.rooms.RoomOf(s.addr)
	if !ok {
		return false, s.writeSystem("✗ You are not in a room. Use /join or /create.")
	}

	s.bus.Publish(domain.NewChat(line, s.addr, info.Name, room, colors.ForIndex(info.ColorIndex)))
	return false, nil
}

func (s *Session) runCommand(cmd command.Command) (quit bool, err error) {
	roomBefore, _ := s.rooms.RoomOf(s.addr)

	out := s.executor.Execute(cmd, s.addr)

	if out.Err != nil {
		return false, s.writeSystem("✗ " + out.Err.Error())
	}
	if out.Info != "" {
		for _, line := range strings.Split(out.Info, "\n") {
			if err := s.writeSystem(line); err != nil {
				return false, err
			}
		}
	}
	if out.Reply != nil {
		if err := s.writeMessage(*out.Reply); err != nil {
			return false, err
		}
	}
	if out.Message != nil {
		s.bus.Publish(*out.Message)
	}

	s.announceMembershipChanges(cmd, roomBefore)

	return out.Quit, nil
}

// announceMembershipChanges publishes updated user lists after commands
// that moved the requester or renamed it.
func (s *Session) announceMembershipChanges(cmd command.Command, roomBefore string) {
	switch cmd.Kind {
	case command.KindJoin, command.KindCreate, command.KindDelete:
		roomAfter, inRoom := s.rooms.RoomOf(s.addr)
		if roomAfter == roomBefore {
			return
		}
		if roomBefore != "" {
			s.broadcastUserList(roomBefore)
		}
		if inRoom {
			s.broadcastUserList(roomAfter)
			s.bus.Publish(domain.NewRoomJoined(roomAfter, s.addr))
		}
	case command.KindNick:
		if roomBefore != "" {
			s.broadcastUserList(roomBefore)
		}
	}
}

// handleBusMessage filters a bus event for this session and writes the
// lines the client should see.
func (s *Session) handleBusMessage(msg domain.ChatMessage) error {
	switch msg.Type {
	case domain.MessageTypeChat:
		room, ok := s.rooms.RoomOf(s.addr)
		if !ok || msg.Room != room || msg.SenderAddr == s.addr {
			return nil
		}
		return s.writeMessage(msg)

	case domain.MessageTypeWhisper:
		if msg.Target != s.addr {
			return nil
		}
		return s.writeMessage(msg)

	case domain.MessageTypeSystem:
		return s.writeMessage(msg)

	case domain.MessageTypeUserList:
		room, ok := s.rooms.RoomOf(s.addr)
		if !ok || msg.Room != room {
			return nil
		}
		return s.writeMessage(msg)

	case domain.MessageTypeRoomList:
		return s.writeMessage(msg)

	case domain.MessageTypeRoomJoin:
		if msg.Target != s.addr {
			return nil
		}
		return s.writeMessage(msg)

	case domain.MessageTypeCommand:
		return nil

	default:
		return nil
	}
}

// cleanup leaves the current room, deregisters, and lets the vacated
// room see its updated member list.
func (s *Session) cleanup() {
	room, inRoom := s.rooms.RoomOf(s.addr)
	if inRoom {
		s.rooms.Leave(room, s.addr)
	}
	s.clients.Remove(s.addr)
	if inRoom {
		s.broadcastUserList(room)
	}
}

func (s *Session) broadcastUserList(room string) {
	var names []string
	for _, member := range s.rooms.MembersOf(room) {
		if name, ok := s.clients.NameOf(member); ok {
			names = append(names, name)
		}
	}
	s.bus.Publish(domain.NewUserList(names, room))
}

func (s *Session) writeMessage(msg domain.ChatMessage) error {
	line, ok := domain.FormatLine(msg)
	if !ok {
		return nil
	}
	return s.writeRaw(line + "\n")
}

func (s *Session) writeSystem(text string) error {
	return s.writeMessage(domain.NewSystem(text, ""))
}

func (s *Session) writeRaw(text string) error {
	if _, err := s.conn.Write([]byte(text)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
