package matches

// Side is one of the two competing parties. The zero value means "no side".
type Side int

const (
	SideNone Side = 0
	Side1    Side = 1
	Side2    Side = 2
)

// Valid reports whether s is side 1 or side 2.
func (s Side) Valid() bool {
	return s == Side1 || s == Side2
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	switch s {
	case Side1:
		return Side2
	case Side2:
		return Side1
	default:
		return SideNone
	}
}

// Sides lists both sides in order.
var Sides = [2]Side{Side1, Side2}

// Points is a per-side counter used for game points, set tallies and cumulative scores.
type Points struct {
	Side1 int `json:"side1"`
	Side2 int `json:"side2"`
}

// Of returns the counter for side.
func (p Points) Of(side Side) int {
	switch side {
	case Side1:
		return p.Side1
	case Side2:
		return p.Side2
	default:
		return 0
	}
}

// Add returns a copy with n added to side.
func (p Points) Add(side Side, n int) Points {
	switch side {
	case Side1:
		p.Side1 += n
	case Side2:
		p.Side2 += n
	}
	return p
}

// Total is the sum of both sides.
func (p Points) Total() int {
	return p.Side1 + p.Side2
}

// Leader returns the side with the higher counter, or SideNone when tied.
func (p Points) Leader() Side {
	switch {
	case p.Side1 > p.Side2:
		return Side1
	case p.Side2 > p.Side1:
		return Side2
	default:
		return SideNone
	}
}

// EncounterStatus tracks a single set or leg. Encounters are appended when
// they are set up, so a stored encounter is either Live or Finished.
type EncounterStatus string

const (
	EncounterLive     EncounterStatus = "Live"
	EncounterFinished EncounterStatus = "Finished"
)

// Encounter is one set (Team-Set) or one leg (Team-Relay).
// For legs, Final holds the cumulative score when the leg closed.
type Encounter struct {
	Index        int             `json:"index"`
	Side1Players []string        `json:"side1Players"`
	Side2Players []string        `json:"side2Players"`
	Final        *Points         `json:"final,omitempty"`
	Winner       Side            `json:"winner,omitempty"`
	Status       EncounterStatus `json:"status"`
}

// Players returns the selection for side.
func (e Encounter) Players(side Side) []string {
	switch side {
	case Side1:
		return e.Side1Players
	case Side2:
		return e.Side2Players
	default:
		return nil
	}
}

// AllPlayers returns both selections.
func (e Encounter) AllPlayers() []string {
	out := make([]string, 0, len(e.Side1Players)+len(e.Side2Players))
	out = append(out, e.Side1Players...)
	return append(out, e.Side2Players...)
}

func (e Encounter) clone() Encounter {
	out := e
	out.Side1Players = cloneStrings(e.Side1Players)
	out.Side2Players = cloneStrings(e.Side2Players)
	if e.Final != nil {
		f := *e.Final
		out.Final = &f
	}
	return out
}

// GamesScore is the Individual/Dual score shape.
type GamesScore struct {
	CompletedGames []Points `json:"completedGames"`
	SetsWon        Points   `json:"setsWon"`
}

// TeamSetScore is the Team-Set score shape.
type TeamSetScore struct {
	Encounters    []Encounter `json:"encounters"`
	EncountersWon Points      `json:"encountersWon"`
}

// RelayScore is the Team-Relay score shape.
type RelayScore struct {
	Legs       []Encounter `json:"legs"`
	Cumulative Points      `json:"cumulative"`
	// LegStart is the cumulative score when the live leg began.
	LegStart Points `json:"legStart"`
}

// Score is the full scoring state of a match. Only the part for the match shape is set.
type Score struct {
	CurrentGame Points        `json:"currentGame"`
	Server      Side          `json:"server"`
	Games       *GamesScore   `json:"games,omitempty"`
	Sets        *TeamSetScore `json:"sets,omitempty"`
	Relay       *RelayScore   `json:"relay,omitempty"`
}

// NewScore returns the empty score for a shape.
func NewScore(shape Shape) Score {
	score := Score{Server: Side1}
	switch shape {
	case ShapeIndividual, ShapeDual:
		score.Games = &GamesScore{CompletedGames: []Points{}}
	case ShapeTeamSet:
		score.Sets = &TeamSetScore{Encounters: []Encounter{}}
	case ShapeTeamRelay:
		score.Relay = &RelayScore{Legs: []Encounter{}}
	}
	return score
}

// Encounters returns sets or legs, whichever the score carries.
func (s Score) Encounters() []Encounter {
	switch {
	case s.Sets != nil:
		return s.Sets.Encounters
	case s.Relay != nil:
		return s.Relay.Legs
	default:
		return nil
	}
}

// FinishedEncounters counts sets or legs with status Finished.
func (s Score) FinishedEncounters() int {
	n := 0
	for _, e := range s.Encounters() {
		if e.Status == EncounterFinished {
			n++
		}
	}
	return n
}

// LiveEncounter returns the index of the live set or leg, or -1.
func (s Score) LiveEncounter() int {
	for i, e := range s.Encounters() {
		if e.Status == EncounterLive {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the score.
func (s Score) Clone() Score {
	out := s
	if s.Games != nil {
		g := GamesScore{SetsWon: s.Games.SetsWon}
		if s.Games.CompletedGames != nil {
			g.CompletedGames = make([]Points, len(s.Games.CompletedGames))
			copy(g.CompletedGames, s.Games.CompletedGames)
		}
		out.Games = &g
	}
	if s.Sets != nil {
		sets := TeamSetScore{EncountersWon: s.Sets.EncountersWon}
		sets.Encounters = cloneEncounters(s.Sets.Encounters)
		out.Sets = &sets
	}
	if s.Relay != nil {
		relay := RelayScore{Cumulative: s.Relay.Cumulative, LegStart: s.Relay.LegStart}
		relay.Legs = cloneEncounters(s.Relay.Legs)
		out.Relay = &relay
	}
	return out
}

func cloneEncounters(in []Encounter) []Encounter {
	if in == nil {
		return nil
	}
	out := make([]Encounter, len(in))
	for i, e := range in {
		out[i] = e.clone()
	}
	return out
}
