package model

import "time"

// RoomLock is an advisory lock scoping the conflict-check-then-persist
// sequence to a single room. It prevents two concurrent requests from both
// observing "no conflict" before either commits.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
