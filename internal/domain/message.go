package domain

import (
	"strings"
	"time"

	"github.com/Bappoz/Rustatui-Chat/pkg/colors"
)

type MessageType string

const (
	MessageTypeChat     MessageType = "chat_message"
	MessageTypeWhisper  MessageType = "whisper_message"
	MessageTypeSystem   MessageType = "system_message"
	MessageTypeCommand  MessageType = "command_message"
	MessageTypeUserList MessageType = "list_users"
	MessageTypeRoomList MessageType = "list_rooms"
	MessageTypeRoomJoin MessageType = "join_room"
)

// SystemAddr is the sender address used for messages not originated by a
// client connection.
const SystemAddr = "0.0.0.0:0"

// SystemName is the display name attached to server-originated messages.
const SystemName = "SYSTEM"

// TimeLayout is the timestamp layout used on the wire.
const TimeLayout = "2006-01-02 15:04:05"

// ChatMessage is the event carried on the broadcast bus. Values are never
// mutated after construction; subscribers each receive their own copy.
type ChatMessage struct {
	Content    string
	SenderAddr string
	SenderName string
	Room       string
	Type       MessageType
	Target     string // set for Whisper and RoomJoin, empty otherwise
	Color      string // hex, e.g. "#FF6B6B"
	Timestamp  time.Time
}

// NewChat builds a room chat message from a client.
func NewChat(content, senderAddr, senderName, room, color string) ChatMessage {
	return ChatMessage{
		Content:    content,
		SenderAddr: senderAddr,
		SenderName: senderName,
		Room:       room,
		Type:       MessageTypeChat,
		Color:      color,
		Timestamp:  time.Now(),
	}
}

// NewSystem builds a server notice addressed to a room.
func NewSystem(content, room string) ChatMessage {
	return ChatMessage{
		Content:    content,
		SenderAddr: SystemAddr,
		SenderName: SystemName,
		Room:       room,
		Type:       MessageTypeSystem,
		Color:      colors.SystemColor,
		Timestamp:  time.Now(),
	}
}

// NewWhisper builds a private message addressed to a single connection.
func NewWhisper(content, senderAddr, senderName, color, target string) ChatMessage {
	return ChatMessage{
		Content:    content,
		SenderAddr: senderAddr,
		SenderName: senderName,
		Room:       "private",
		Type:       MessageTypeWhisper,
		Target:     target,
		Color:      color,
		Timestamp:  time.Now(),
	}
}

// NewUserList builds a membership snapshot for a room.
func NewUserList(users []string, room string) ChatMessage {
	return ChatMessage{
		Content:    joinComma(users),
		SenderAddr: SystemAddr,
		SenderName: SystemName,
		Room:       room,
		Type:       MessageTypeUserList,
		Color:      colors.SystemColor,
		Timestamp:  time.Now(),
	}
}

// NewRoomList builds a snapshot of the rooms known to the server.
func NewRoomList(rooms []string) ChatMessage {
	return ChatMessage{
		Content:    joinComma(rooms),
		SenderAddr: SystemAddr,
		SenderName: SystemName,
		Room:       "system",
		Type:       MessageTypeRoomList,
		Color:      colors.SystemColor,
		Timestamp:  time.Now(),
	}
}

// NewRoomJoined notifies a single connection that it entered a room.
func NewRoomJoined(room, addr string) ChatMessage {
	return ChatMessage{
		Content:    room,
		SenderAddr: addr,
		SenderName: SystemName,
		Room:       room,
		Type:       MessageTypeRoomJoin,
		Target:     addr,
		Color:      colors.SystemColor,
		Timestamp:  time.Now(),
	}
}

func joinComma(items []string) string {
	return strings.Join(items, ",")
}
