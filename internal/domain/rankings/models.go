package rankings

import (
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
)

// WinBonus is added to a player's points for every match their side wins.
const WinBonus = 5

// Entry is one player's aggregate over finished matches.
type Entry struct {
	PlayerID string           `json:"playerId"`
	Name     string           `json:"name"`
	Category players.Category `json:"category"`
	PhotoURL string           `json:"photoUrl,omitempty"`
	Points   int              `json:"points"`
	Wins     int              `json:"wins"`
	Played   int              `json:"played"`
}

// Table is the payload returned by /rankings and written to dated snapshots.
type Table struct {
	Date        string    `json:"date"`
	GeneratedAt time.Time `json:"generatedAt"`
	Matches     int       `json:"matches"`
	Entries     []Entry   `json:"entries"`
}
