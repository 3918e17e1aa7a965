package model

// Guest is owned by the guest directory service. The orchestrator only reads
// it through the directory proxy.
type Guest struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	NationalID string `json:"national_id"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// UnknownGuest is the fallback record the directory proxy returns when the
// guest does not exist or the directory is unreachable. Callers treat ID 0 as
// the single failure signal.
func UnknownGuest() Guest {
	return Guest{
		ID:        0,
		FirstName: "unknown",
		LastName:  "unknown",
		Email:     "unknown",
	}
}

func (g Guest) IsUnknown() bool {
	return g.ID == 0
}
