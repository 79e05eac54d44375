package domain

import (
	"fmt"
	"strings"
	"time"
)

// Structured wire lines written to non-interactive clients:
//
//	CHAT|2006-01-02 15:04:05|sender|#hex|content
//	WHISPER|2006-01-02 15:04:05|sender|#hex|content
//	SYSTEM|content
//	USER_LIST|alice,bob
//	ROOM_LIST|general:3:open,dev:1:locked
//	ROOM_JOIN|room
//
// Content is the last field, so it may itself contain pipes.

// FormatLine renders a message as its structured wire line. The second
// return is false for message types that have no wire form.
func FormatLine(msg ChatMessage) (string, bool) {
	switch msg.Type {
	case MessageTypeChat:
		return fmt.Sprintf("CHAT|%s|%s|%s|%s",
			msg.Timestamp.Format(TimeLayout), msg.SenderName, msg.Color, msg.Content), true
	case MessageTypeWhisper:
		return fmt.Sprintf("WHISPER|%s|%s|%s|%s",
			msg.Timestamp.Format(TimeLayout), msg.SenderName, msg.Color, msg.Content), true
	case MessageTypeSystem:
		return "SYSTEM|" + msg.Content, true
	case MessageTypeUserList:
		return "USER_LIST|" + msg.Content, true
	case MessageTypeRoomList:
		return "ROOM_LIST|" + msg.Content, true
	case MessageTypeRoomJoin:
		return "ROOM_JOIN|" + msg.Content, true
	default:
		return "", false
	}
}

// ParseLine is the client-side inverse of FormatLine.
func ParseLine(line string) (ChatMessage, error) {
	line = strings.TrimRight(line, "\r\n")
	switch {
	case strings.HasPrefix(line, "CHAT|"):
		return parseTimestamped(line, MessageTypeChat)
	case strings.HasPrefix(line, "WHISPER|"):
		return parseTimestamped(line, MessageTypeWhisper)
	case strings.HasPrefix(line, "SYSTEM|"):
		return NewSystem(strings.TrimPrefix(line, "SYSTEM|"), ""), nil
	case strings.HasPrefix(line, "USER_LIST|"):
		return NewUserList(splitComma(strings.TrimPrefix(line, "USER_LIST|")), ""), nil
	case strings.HasPrefix(line, "ROOM_LIST|"):
		return NewRoomList(splitComma(strings.TrimPrefix(line, "ROOM_LIST|"))), nil
	case strings.HasPrefix(line, "ROOM_JOIN|"):
		return NewRoomJoined(strings.TrimPrefix(line, "ROOM_JOIN|"), SystemAddr), nil
	default:
		return ChatMessage{}, fmt.Errorf("unrecognized wire line: %q", line)
	}
}

func parseTimestamped(line string, typ MessageType) (ChatMessage, error) {
	parts := strings.SplitN(line, "|", 5)
	if len(parts) != 5 {
		return ChatMessage{}, fmt.Errorf("malformed %s line: %q", parts[0], line)
	}
	ts, err := time.ParseInLocation(TimeLayout, parts[1], time.Local)
	if err != nil {
		return ChatMessage{}, fmt.Errorf("malformed timestamp in %s line: %w", parts[0], err)
	}
	return ChatMessage{
		Content:    parts[4],
		SenderAddr: SystemAddr,
		SenderName: parts[2],
		Type:       typ,
		Color:      parts[3],
		Timestamp:  ts,
	}, nil
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
