package model

// Room operational states, owned by the inventory service.
const (
	RoomStateActive      = "active"
	RoomStateMaintenance = "maintenance"
	RoomStateInactive    = "inactive"
)

// Room is owned by the room inventory service. The orchestrator reads it
// through the inventory proxy and mutates only the availability flag.
type Room struct {
	ID          int64   `json:"id"`
	Number      string  `json:"number"`
	Type        string  `json:"type"`
	NightlyRate float64 `json:"nightly_rate"`
	Available   bool    `json:"available"`
	Description string  `json:"description"`
	Capacity    int     `json:"capacity"`
	State       string  `json:"state"`
}

// UnknownRoom is the fallback record the inventory proxy returns when the
// room does not exist or the inventory is unreachable.
func UnknownRoom() Room {
	return Room{
		ID:     0,
		Number: "unknown",
		Type:   "unknown",
	}
}

func (r Room) IsUnknown() bool {
	return r.ID == 0
}
