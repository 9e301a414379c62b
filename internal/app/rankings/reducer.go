package rankings

import (
	"sort"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
	domain "github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/rankings"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/teams"
)

// Reduce aggregates finished matches into ranking entries. Players or teams
// that no longer exist are skipped, as are matches without a winner.
func Reduce(list []matches.Match, playersByID map[string]players.Player, teamsByID map[string]teams.Team) ([]domain.Entry, int) {
	stats := make(map[string]*domain.Entry)
	counted := 0

	credit := func(playerID string, points int, won bool) {
		p, ok := playersByID[playerID]
		if !ok {
			return
		}
		e, ok := stats[playerID]
		if !ok {
			e = &domain.Entry{PlayerID: p.ID, Name: p.Name, Category: p.Category, PhotoURL: p.PhotoURL}
			stats[playerID] = e
		}
		e.Points += points
		e.Played++
		if won {
			e.Points += domain.WinBonus
			e.Wins++
		}
	}

	for _, m := range list {
		if m.Status != matches.StatusFinished || m.Winner == nil {
			continue
		}
		sides, ok := sidePlayers(m, teamsByID)
		if !ok {
			continue
		}
		points := sidePoints(m)
		counted++
		for _, side := range matches.Sides {
			for _, id := range sides.Of(side) {
				credit(id, points.Of(side), m.Winner.Side == side)
			}
		}
	}

	entries := make([]domain.Entry, 0, len(stats))
	for _, e := range stats {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.Points != b.Points:
			return a.Points > b.Points
		case a.Wins != b.Wins:
			return a.Wins > b.Wins
		case a.Name != b.Name:
			return a.Name < b.Name
		default:
			return a.PlayerID < b.PlayerID
		}
	})
	return entries, counted
}

type playerSides struct {
	side1, side2 []string
}

func (p playerSides) Of(side matches.Side) []string {
	if side == matches.Side2 {
		return p.side2
	}
	return p.side1
}

// sidePlayers resolves who gets credit per side. Team matches credit the
// whole current roster.
func sidePlayers(m matches.Match, teamsByID map[string]teams.Team) (playerSides, bool) {
	if m.Kind != matches.KindTeam {
		return playerSides{side1: m.Participants.Side1, side2: m.Participants.Side2}, true
	}
	t1, ok1 := teamsByID[m.Participants.Team1]
	t2, ok2 := teamsByID[m.Participants.Team2]
	if !ok1 || !ok2 {
		return playerSides{}, false
	}
	return playerSides{side1: t1.PlayerIDs, side2: t2.PlayerIDs}, true
}

// sidePoints totals the rally points each side scored over the match.
func sidePoints(m matches.Match) matches.Points {
	var total matches.Points
	switch m.Shape() {
	case matches.ShapeIndividual, matches.ShapeDual:
		if m.Score.Games == nil {
			return total
		}
		for _, g := range m.Score.Games.CompletedGames {
			total.Side1 += g.Side1
			total.Side2 += g.Side2
		}
	case matches.ShapeTeamSet:
		for _, e := range m.Score.Encounters() {
			if e.Status == matches.EncounterFinished && e.Final != nil {
				total.Side1 += e.Final.Side1
				total.Side2 += e.Final.Side2
			}
		}
	case matches.ShapeTeamRelay:
		if m.Score.Relay != nil {
			total = m.Score.Relay.Cumulative
		}
	}
	return total
}
