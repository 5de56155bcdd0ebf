package models

import "time"

// User is an in-memory session participant. It is created at first
// authenticated connection and destroyed on heartbeat failure, explicit
// disconnect with no room, or inactivity cleanup.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	RoomID         string    `json:"roomId"`
	IsAdmin        bool      `json:"isAdmin"`
	Created        time.Time `json:"created"`
	LastActiveTime time.Time `json:"lastActiveTime"`
	SocketID       string    `json:"-"`
}

// InRoom reports whether the user is currently affiliated with a room.
func (u *User) InRoom() bool {
	return u.RoomID != ""
}
