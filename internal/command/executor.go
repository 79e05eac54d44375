package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Bappoz/Rustatui-Chat/internal/domain"
	"github.com/Bappoz/Rustatui-Chat/internal/registry"
	"github.com/Bappoz/Rustatui-Chat/pkg/colors"
)

// Outcome is the result of executing a command. At most one of Message,
// Reply, Info, and Err is set, except that Info may accompany Message.
//
//   - Message is published on the broadcast bus (whispers, notices).
//   - Reply is written only to the requester (list snapshots).
//   - Info is human-readable success text for the requester.
//   - Err is a user-visible failure; the session keeps running.
type Outcome struct {
	Message *domain.ChatMessage
	Reply   *domain.ChatMessage
	Info    string
	Err     error
	Quit    bool
}

func failure(err error) Outcome { return Outcome{Err: err} }

func info(text string) Outcome { return Outcome{Info: text} }

func failuref(format string, v ...interface{}) Outcome {
	return Outcome{Err: fmt.Errorf(format, v...)}
}

// Executor applies parsed commands against the registries. It holds no
// state of its own.
type Executor struct {
	clients *registry.Clients
	rooms   *registry.Rooms
}

func NewExecutor(clients *registry.Clients, rooms *registry.Rooms) *Executor {
	return &Executor{clients: clients, rooms: rooms}
}

// Execute runs cmd on behalf of the connection at addr.
func (e *Executor) Execute(cmd Command, addr string) Outcome {
	switch cmd.Kind {
	case KindNick:
		return e.changeNick(cmd, addr)
	case KindJoin:
		return e.joinRoom(cmd, addr)
	case KindCreate:
		return e.createRoom(cmd, addr)
	case KindDelete:
		return e.deleteRoom(cmd, addr)
	case KindInvite:
		return e.inviteUser(cmd, addr)
	case KindListUsers:
		return e.listUsers(addr)
	case KindListRooms:
		return e.listRooms()
	case KindWhisper:
		return e.whisper(cmd, addr)
	case KindQuit:
		return Outcome{Quit: true, Info: "Goodbye!"}
	case KindHelp:
		return info(HelpText)
	case KindInvalid:
		return failure(errors.New(cmd.Reason))
	default:
		return failuref("unhandled command kind %d", cmd.Kind)
	}
}

func (e *Executor) changeNick(cmd Command, addr string) Outcome {
	if err := e.clients.Rename(addr, cmd.Name); err != nil {
		if errors.Is(err, registry.ErrNameTaken) {
			return failure(errors.New("Name already taken"))
		}
		return failure(err)
	}
	return info("Your name is now: " + cmd.Name)
}

// joinRoom leaves the current room before attempting the join, so a
// failed join leaves the requester in no room rather than the old one.
func (e *Executor) joinRoom(cmd Command, addr string) Outcome {
	if current, ok := e.rooms.RoomOf(addr); ok {
		e.rooms.Leave(current, addr)
	}
	if err := e.rooms.Join(cmd.Room, addr, cmd.Password); err != nil {
		return failure(userRoomError(err, cmd.Room))
	}
	return info("Joined room: " + cmd.Room)
}

func (e *Executor) createRoom(cmd Command, addr string) Outcome {
	if err := e.rooms.Create(cmd.Room, cmd.Password, addr); err != nil {
		return failure(userRoomError(err, cmd.Room))
	}
	if current, ok := e.rooms.RoomOf(addr); ok {
		e.rooms.Leave(current, addr)
	}
	if err := e.rooms.Join(cmd.Room, addr, cmd.Password); err != nil {
		return failure(userRoomError(err, cmd.Room))
	}
	return info("Created and joined room: " + cmd.Room)
}

func (e *Executor) deleteRoom(cmd Command, addr string) Outcome {
	if err := e.rooms.Delete(cmd.Room, addr); err != nil {
		return failure(userRoomError(err, cmd.Room))
	}
	notice := domain.NewSystem(
		fmt.Sprintf("Room '%s' was closed by its owner. Use /join to pick another room.", cmd.Room),
		cmd.Room,
	)
	return Outcome{Message: &notice, Info: "Deleted room: " + cmd.Room}
}

func (e *Executor) inviteUser(cmd Command, addr string) Outcome {
	owner, password, ok := e.rooms.Info(cmd.Room)
	if !ok {
		return failuref("Room '%s' does not exist", cmd.Room)
	}
	if owner != addr {
		return failure(errors.New("Only the room owner can invite users"))
	}
	target, ok := e.clients.AddrOf(cmd.Name)
	if !ok {
		return failuref("User '%s' is not online", cmd.Name)
	}

	senderName, senderColor := e.senderIdentity(addr)
	content := fmt.Sprintf("%s invited you to room '%s'. Join with: /join %s", senderName, cmd.Room, cmd.Room)
	if password != "" {
		content += " " + password
	}
	msg := domain.NewWhisper(content, addr, senderName, senderColor, target)
	return Outcome{Message: &msg, Info: "Invite sent to " + cmd.Name}
}

func (e *Executor) listUsers(addr string) Outcome {
	room, ok := e.rooms.RoomOf(addr)
	if !ok {
		return failure(errors.New("You are not in a room"))
	}
	var names []string
	for _, member := range e.rooms.MembersOf(room) {
		if name, ok := e.clients.NameOf(member); ok {
			names = append(names, name)
		}
	}
	reply := domain.NewUserList(names, room)
	return Outcome{Reply: &reply, Info: fmt.Sprintf("Users in %s: %s", room, strings.Join(names, ", "))}
}

func (e *Executor) listRooms() Outcome {
	summaries := e.rooms.List()
	entries := make([]string, 0, len(summaries))
	lines := make([]string, 0, len(summaries)+1)
	lines = append(lines, "Available rooms:")
	for _, s := range summaries {
		access := "open"
		if s.Protected {
			access = "locked"
		}
		entries = append(entries, fmt.Sprintf("%s:%d:%s", s.Name, s.Members, access))
		lines = append(lines, fmt.Sprintf("  %s (%d users, %s)", s.Name, s.Members, access))
	}
	reply := domain.NewRoomList(entries)
	return Outcome{Reply: &reply, Info: strings.Join(lines, "\n")}
}

func (e *Executor) whisper(cmd Command, addr string) Outcome {
	target, ok := e.clients.AddrOf(cmd.Name)
	if !ok {
		return failuref("User '%s' is not online", cmd.Name)
	}
	senderName, senderColor := e.senderIdentity(addr)
	msg := domain.NewWhisper(cmd.Body, addr, senderName, senderColor, target)
	return Outcome{Message: &msg}
}

func (e *Executor) senderIdentity(addr string) (name, color string) {
	info, ok := e.clients.InfoOf(addr)
	if !ok {
		return "unknown", colors.SystemColor
	}
	return info.Name, colors.ForIndex(info.ColorIndex)
}

// userRoomError rewrites registry sentinels as the text shown to users.
func userRoomError(err error, room string) error {
	switch {
	case errors.Is(err, registry.ErrRoomNotFound):
		return fmt.Errorf("Room '%s' does not exist", room)
	case errors.Is(err, registry.ErrRoomExists):
		return fmt.Errorf("Room '%s' already exists", room)
	case errors.Is(err, registry.ErrBadPassword):
		return errors.New("Incorrect password!")
	case errors.Is(err, registry.ErrNotOwner):
		return errors.New("Only the owner can delete this room")
	case errors.Is(err, registry.ErrProtectedRoom):
		return errors.New("Cannot delete this room")
	default:
		return err
	}
}
