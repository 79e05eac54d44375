// Package command parses and executes the slash commands of the chat
// protocol.
package command

import "strings"

type Kind int

const (
	KindInvalid Kind = iota
	KindNick
	KindJoin
	KindCreate
	KindDelete
	KindInvite
	KindListUsers
	KindListRooms
	KindWhisper
	KindQuit
	KindHelp
)

// Command is one parsed slash command.
type Command struct {
	Kind     Kind
	Name     string // nick: new name; whisper/invite: target user
	Room     string
	Password string
	Body     string // whisper body
	Reason   string // KindInvalid: what was wrong
}

// HelpText is the command reference sent for /help.
const HelpText = `Available commands:
/nick <name>          - Change your nickname
/join <room> [pwd]    - Join a room
/create <room> [pwd]  - Create a room and join it
/delete <room>        - Delete a room you own
/invite <user> <room> - Invite a user to a room you own
/list                 - List users in current room
/rooms                - List all rooms
/whisper <user> <msg> - Send private message
/help                 - Show this help
/quit                 - Exit chat`

func invalid(reason string) Command {
	return Command{Kind: KindInvalid, Reason: reason}
}

// Parse interprets a line as a slash command. The second return is false
// when the line is not a command at all (no leading slash).
func Parse(line string) (Command, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return Command{}, false
	}

	parts := strings.Fields(line[1:])
	if len(parts) == 0 {
		return invalid("Empty command"), true
	}

	switch parts[0] {
	case "nick":
		if len(parts) < 2 {
			return invalid("Usage: /nick <new_name>"), true
		}
		return Command{Kind: KindNick, Name: parts[1]}, true

	case "join":
		if len(parts) < 2 {
			return invalid("Usage: /join <room> [password]"), true
		}
		cmd := Command{Kind: KindJoin, Room: parts[1]}
		if len(parts) > 2 {
			cmd.Password = parts[2]
		}
		return cmd, true

	case "create":
		if len(parts) < 2 {
			return invalid("Usage: /create <room> [password]"), true
		}
		cmd := Command{Kind: KindCreate, Room: parts[1]}
		if len(parts) > 2 {
			cmd.Password = parts[2]
		}
		return cmd, true

	case "delete":
		if len(parts) < 2 {
			return invalid("Usage: /delete <room>"), true
		}
		return Command{Kind: KindDelete, Room: parts[1]}, true

	case "invite":
		if len(parts) < 3 {
			return invalid("Usage: /invite <user> <room>"), true
		}
		return Command{Kind: KindInvite, Name: parts[1], Room: parts[2]}, true

	case "list":
		return Command{Kind: KindListUsers}, true

	case "rooms":
		return Command{Kind: KindListRooms}, true

	case "whisper", "w":
		if len(parts) < 3 {
			return invalid("Usage: /w <user> <message>"), true
		}
		return Command{Kind: KindWhisper, Name: parts[1], Body: strings.Join(parts[2:], " ")}, true

	case "quit", "exit":
		return Command{Kind: KindQuit}, true

	case "help", "?":
		return Command{Kind: KindHelp}, true

	default:
		return invalid("Unknown command: " + parts[0]), true
	}
}
