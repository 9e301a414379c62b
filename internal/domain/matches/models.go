package matches

import (
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
)

// Kind is the top-level match type.
type Kind string

const (
	KindIndividual Kind = "Individual"
	KindDual       Kind = "Dual"
	KindTeam       Kind = "Team"
)

// SubType selects how a team match composes its encounters.
type SubType string

const (
	SubTypeSet   SubType = "Set"
	SubTypeRelay SubType = "Relay"
)

// EncounterFormat is how many players per side play one encounter.
type EncounterFormat string

const (
	FormatSingle EncounterFormat = "Single"
	FormatPair   EncounterFormat = "Pair"
)

// Arity returns the number of players each side selects, or 0 for an unknown format.
func (f EncounterFormat) Arity() int {
	switch f {
	case FormatSingle:
		return 1
	case FormatPair:
		return 2
	default:
		return 0
	}
}

// Status is the match lifecycle state.
type Status string

const (
	StatusUpcoming                Status = "Upcoming"
	StatusLive                    Status = "Live"
	StatusAwaitingEncounterSetup  Status = "AwaitingEncounterSetup"
	StatusAwaitingTiebreakerSetup Status = "AwaitingTiebreakerSetup"
	StatusFinished                Status = "Finished"
	StatusCancelled               Status = "Cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusLive, StatusAwaitingEncounterSetup, StatusAwaitingTiebreakerSetup, StatusFinished, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// AwaitingSetup reports whether the match is paused between team encounters.
func (s Status) AwaitingSetup() bool {
	return s == StatusAwaitingEncounterSetup || s == StatusAwaitingTiebreakerSetup
}

// Shape is the resolved variant of a match. Engine code switches on it exhaustively.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeIndividual
	ShapeDual
	ShapeTeamSet
	ShapeTeamRelay
)

func (s Shape) String() string {
	switch s {
	case ShapeIndividual:
		return "individual"
	case ShapeDual:
		return "dual"
	case ShapeTeamSet:
		return "team_set"
	case ShapeTeamRelay:
		return "team_relay"
	default:
		return "unknown"
	}
}

// BestOfRules configures Individual and Dual matches.
type BestOfRules struct {
	SetsToWin int `json:"setsToWin"`
}

// TeamSetRules configures a team match played as a sequence of single-game sets.
type TeamSetRules struct {
	EncounterFormat        EncounterFormat `json:"encounterFormat"`
	NumberOfEncounters     int             `json:"numberOfEncounters"`
	MaxEncountersPerPlayer int             `json:"maxEncountersPerPlayer"`
	// AllowPairRepeat permits a side to field the same pair in more than one set.
	AllowPairRepeat bool `json:"allowPairRepeat"`
	// TiebreakerIgnoresCap lets capped players play the deciding set.
	TiebreakerIgnoresCap bool `json:"tiebreakerIgnoresCap"`
}

// TeamRelayRules configures a team match played as legs of one running score.
type TeamRelayRules struct {
	EncounterFormat EncounterFormat `json:"encounterFormat"`
	NumberOfLegs    int             `json:"numberOfLegs"`
	PointsPerLeg    int             `json:"pointsPerLeg"`
}

// LegTarget is the cumulative score that closes leg number legNumber (1-based).
func (r TeamRelayRules) LegTarget(legNumber int) int {
	return r.PointsPerLeg * legNumber
}

// FinalTarget is the cumulative score that wins the match.
func (r TeamRelayRules) FinalTarget() int {
	return r.PointsPerLeg * r.NumberOfLegs
}

// Participants holds player references (Individual, Dual) or team references (Team).
type Participants struct {
	Side1 []string `json:"side1,omitempty"`
	Side2 []string `json:"side2,omitempty"`
	Team1 string   `json:"team1,omitempty"`
	Team2 string   `json:"team2,omitempty"`
}

// Players returns the player ids for side.
func (p Participants) Players(side Side) []string {
	switch side {
	case Side1:
		return p.Side1
	case Side2:
		return p.Side2
	default:
		return nil
	}
}

// Team returns the team id for side.
func (p Participants) Team(side Side) string {
	switch side {
	case Side1:
		return p.Team1
	case Side2:
		return p.Team2
	default:
		return ""
	}
}

// Winner identifies the resolved winner of a finished match.
type Winner struct {
	Side     Side   `json:"side"`
	PlayerID string `json:"playerId,omitempty"`
	TeamID   string `json:"teamId,omitempty"`
}

// Match is a single contest between two sides.
// Exactly one of BestOf, TeamSet and TeamRelay is set, matching Shape().
type Match struct {
	ID           string              `json:"id"`
	Kind         Kind                `json:"kind"`
	SubType      SubType             `json:"subType,omitempty"`
	Category     players.Category    `json:"category,omitempty"`
	Participants Participants        `json:"participants"`
	BestOf       *BestOfRules        `json:"bestOf,omitempty"`
	TeamSet      *TeamSetRules       `json:"teamSet,omitempty"`
	TeamRelay    *TeamRelayRules     `json:"teamRelay,omitempty"`
	Status       Status              `json:"status"`
	Score        Score               `json:"score"`
	History      []PointHistoryEntry `json:"history,omitempty"`
	Winner       *Winner             `json:"winner,omitempty"`
	StartTime    *time.Time          `json:"startTime,omitempty"`
	EndTime      *time.Time          `json:"endTime,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	Version      int64               `json:"version"`
}

// Shape resolves the match variant from Kind and SubType.
func (m Match) Shape() Shape {
	switch m.Kind {
	case KindIndividual:
		return ShapeIndividual
	case KindDual:
		return ShapeDual
	case KindTeam:
		switch m.SubType {
		case SubTypeSet:
			return ShapeTeamSet
		case SubTypeRelay:
			return ShapeTeamRelay
		}
	}
	return ShapeUnknown
}

// EncounterFormat returns the team encounter format, or "" for non-team matches.
func (m Match) EncounterFormat() EncounterFormat {
	switch m.Shape() {
	case ShapeTeamSet:
		return m.TeamSet.EncounterFormat
	case ShapeTeamRelay:
		return m.TeamRelay.EncounterFormat
	default:
		return ""
	}
}

// PlayerIDs lists directly referenced players (Individual and Dual only).
func (m Match) PlayerIDs() []string {
	ids := make([]string, 0, len(m.Participants.Side1)+len(m.Participants.Side2))
	ids = append(ids, m.Participants.Side1...)
	return append(ids, m.Participants.Side2...)
}

// TeamIDs lists referenced teams (Team matches only).
func (m Match) TeamIDs() []string {
	if m.Kind != KindTeam {
		return nil
	}
	return []string{m.Participants.Team1, m.Participants.Team2}
}

// References reports whether the match points at the given player or team id.
func (m Match) References(id string) bool {
	for _, pid := range m.PlayerIDs() {
		if pid == id {
			return true
		}
	}
	for _, tid := range m.TeamIDs() {
		if tid == id {
			return true
		}
	}
	for _, e := range m.Score.Encounters() {
		for _, pid := range e.AllPlayers() {
			if pid == id {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy that shares no mutable state with m.
func (m Match) Clone() Match {
	out := m
	out.Participants = Participants{
		Side1: cloneStrings(m.Participants.Side1),
		Side2: cloneStrings(m.Participants.Side2),
		Team1: m.Participants.Team1,
		Team2: m.Participants.Team2,
	}
	if m.BestOf != nil {
		r := *m.BestOf
		out.BestOf = &r
	}
	if m.TeamSet != nil {
		r := *m.TeamSet
		out.TeamSet = &r
	}
	if m.TeamRelay != nil {
		r := *m.TeamRelay
		out.TeamRelay = &r
	}
	out.Score = m.Score.Clone()
	if m.History != nil {
		out.History = make([]PointHistoryEntry, len(m.History))
		for i, h := range m.History {
			out.History[i] = PointHistoryEntry{
				ScoringSide: h.ScoringSide,
				Before:      h.Before.Clone(),
				Timestamp:   h.Timestamp,
			}
		}
	}
	if m.Winner != nil {
		w := *m.Winner
		out.Winner = &w
	}
	out.StartTime = cloneTime(m.StartTime)
	out.EndTime = cloneTime(m.EndTime)
	return out
}

// PointHistoryEntry records the score as it was before a point was applied.
type PointHistoryEntry struct {
	ScoringSide Side      `json:"scoringSide"`
	Before      Score     `json:"before"`
	Timestamp   time.Time `json:"timestamp"`
}

// Filter narrows a match listing. Zero values match everything.
type Filter struct {
	Status Status
	Kind   Kind
}

// Matches reports whether m satisfies the filter.
func (f Filter) Matches(m Match) bool {
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	if f.Kind != "" && m.Kind != f.Kind {
		return false
	}
	return true
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
