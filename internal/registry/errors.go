package registry

import "errors"

var (
	ErrRoomExists    = errors.New("room already exists")
	ErrRoomNotFound  = errors.New("room does not exist")
	ErrBadPassword   = errors.New("incorrect password")
	ErrNotOwner      = errors.New("only the owner can delete this room")
	ErrProtectedRoom = errors.New("cannot delete this room")
	ErrNameTaken     = errors.New("name already taken")
)
