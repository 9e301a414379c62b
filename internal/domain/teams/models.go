package teams

import "time"

// Roster size bounds.
const (
	MinRosterSize = 1
	MaxRosterSize = 10
)

// Team is a named roster of players. Matches reference teams by id.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PlayerIDs []string  `json:"playerIds"`
	LogoURL   string    `json:"logoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Roster returns a copy of the ordered player ids.
func (t Team) Roster() []string {
	return append([]string(nil), t.PlayerIDs...)
}

// HasPlayer reports whether the player is on the roster.
func (t Team) HasPlayer(id string) bool {
	for _, p := range t.PlayerIDs {
		if p == id {
			return true
		}
	}
	return false
}
