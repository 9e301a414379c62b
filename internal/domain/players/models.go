package players

import (
	"strings"
	"time"
)

// Category is the ranking bracket a player competes in.
type Category string

const (
	CategorySuperSenior Category = "Super Senior"
	CategorySenior      Category = "Senior"
	CategoryJunior      Category = "Junior"
)

// Valid reports whether the category is one of the known brackets.
func (c Category) Valid() bool {
	switch c {
	case CategorySuperSenior, CategorySenior, CategoryJunior:
		return true
	default:
		return false
	}
}

// Player is a registered competitor.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizedName trims surrounding whitespace used for uniqueness checks.
func NormalizedName(name string) string {
	return strings.TrimSpace(name)
}
