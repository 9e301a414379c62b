// Package storetest is a conformance suite every store backend must pass.
package storetest

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/teams"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/store"
)

// Factory returns an empty store. Cleanup is the factory's job.
type Factory func(t *testing.T) store.Store

var base = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

// Run executes the full suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("players", func(t *testing.T) { testPlayers(t, newStore(t)) })
	t.Run("teams", func(t *testing.T) { testTeams(t, newStore(t)) })
	t.Run("matches", func(t *testing.T) { testMatches(t, newStore(t)) })
	t.Run("versioning", func(t *testing.T) { testVersioning(t, newStore(t)) })
}

func player(id, name string) players.Player {
	return players.Player{ID: id, Name: name, Category: players.CategorySenior, CreatedAt: base, UpdatedAt: base}
}

func testPlayers(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, p := range []players.Player{player("p2", "Zed"), player("p1", "Ana")} {
		if err := s.CreatePlayer(ctx, p); err != nil {
			t.Fatalf("create player %s: %v", p.ID, err)
		}
	}
	if err := s.CreatePlayer(ctx, player("p3", "Ana")); apperrors.CodeOf(err) != apperrors.CodeAlreadyExists {
		t.Fatalf("expected ALREADY_EXISTS for duplicate name, got %v", err)
	}

	got, err := s.GetPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if got.Name != "Ana" || got.Category != players.CategorySenior || !got.CreatedAt.Equal(base) {
		t.Fatalf("unexpected player %+v", got)
	}

	list, err := s.ListPlayers(ctx)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Ana" || list[1].Name != "Zed" {
		t.Fatalf("expected players ordered by name, got %+v", list)
	}

	if err := s.DeletePlayer(ctx, "p1"); err != nil {
		t.Fatalf("delete player: %v", err)
	}
	if _, err := s.GetPlayer(ctx, "p1"); apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND after delete, got %v", err)
	}
	if err := s.DeletePlayer(ctx, "p1"); apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND deleting twice, got %v", err)
	}
}

func testTeams(t *testing.T, s store.Store) {
	ctx := context.Background()
	team := teams.Team{ID: "t1", Name: "Smashers", PlayerIDs: []string{"c", "a", "b"}, LogoURL: "http://logo", CreatedAt: base, UpdatedAt: base}
	if err := s.CreateTeam(ctx, team); err != nil {
		t.Fatalf("create team: %v", err)
	}
	if err := s.CreateTeam(ctx, teams.Team{ID: "t2", Name: "Smashers", PlayerIDs: []string{"x"}, CreatedAt: base, UpdatedAt: base}); apperrors.CodeOf(err) != apperrors.CodeAlreadyExists {
		t.Fatalf("expected ALREADY_EXISTS for duplicate team name, got %v", err)
	}

	got, err := s.GetTeam(ctx, "t1")
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if !reflect.DeepEqual(got.PlayerIDs, []string{"c", "a", "b"}) || got.LogoURL != "http://logo" {
		t.Fatalf("expected roster order preserved, got %+v", got)
	}
	got.PlayerIDs[0] = "mutated"
	again, _ := s.GetTeam(ctx, "t1")
	if again.PlayerIDs[0] != "c" {
		t.Fatalf("returned roster aliases stored state")
	}

	list, err := s.ListTeams(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one team, got %d (%v)", len(list), err)
	}
	if err := s.DeleteTeam(ctx, "t1"); err != nil {
		t.Fatalf("delete team: %v", err)
	}
	if _, err := s.GetTeam(ctx, "t1"); apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func relayMatch(id string, created time.Time) matches.Match {
	m := matches.Match{
		ID:           id,
		Kind:         matches.KindTeam,
		SubType:      matches.SubTypeRelay,
		Participants: matches.Participants{Team1: "t1", Team2: "t2"},
		TeamRelay:    &matches.TeamRelayRules{EncounterFormat: matches.FormatSingle, NumberOfLegs: 2, PointsPerLeg: 5},
		Status:       matches.StatusLive,
		Score:        matches.NewScore(matches.ShapeTeamRelay),
		CreatedAt:    created,
		UpdatedAt:    created,
		Version:      1,
	}
	m.Score.Relay.Legs = append(m.Score.Relay.Legs, matches.Encounter{
		Index:        0,
		Side1Players: []string{"a1"},
		Side2Players: []string{"b1"},
		Final:        &matches.Points{Side1: 5, Side2: 2},
		Winner:       matches.Side1,
		Status:       matches.EncounterFinished,
	})
	m.Score.Relay.Cumulative = matches.Points{Side1: 5, Side2: 2}
	return m
}

func individualMatch(id string, created time.Time, status matches.Status) matches.Match {
	return matches.Match{
		ID:           id,
		Kind:         matches.KindIndividual,
		Category:     players.CategoryJunior,
		Participants: matches.Participants{Side1: []string{"p1"}, Side2: []string{"p2"}},
		BestOf:       &matches.BestOfRules{SetsToWin: 2},
		Status:       status,
		Score:        matches.NewScore(matches.ShapeIndividual),
		CreatedAt:    created,
		UpdatedAt:    created,
		Version:      1,
	}
}

func testMatches(t *testing.T, s store.Store) {
	ctx := context.Background()
	relay := relayMatch("m-relay", base)
	relay.History = []matches.PointHistoryEntry{{ScoringSide: matches.Side1, Before: matches.NewScore(matches.ShapeTeamRelay), Timestamp: base}}
	older := individualMatch("m-old", base.Add(-time.Hour), matches.StatusUpcoming)
	newer := individualMatch("m-new", base.Add(time.Hour), matches.StatusFinished)

	for _, m := range []matches.Match{relay, older, newer} {
		if err := s.CreateMatch(ctx, m); err != nil {
			t.Fatalf("create match %s: %v", m.ID, err)
		}
	}
	if err := s.CreateMatch(ctx, relay); apperrors.CodeOf(err) != apperrors.CodeAlreadyExists {
		t.Fatalf("expected ALREADY_EXISTS for duplicate id, got %v", err)
	}

	got, err := s.GetMatch(ctx, "m-relay")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if !reflect.DeepEqual(got.Score, relay.Score) {
		t.Fatalf("score did not round-trip: %+v vs %+v", got.Score, relay.Score)
	}
	if got.Shape() != matches.ShapeTeamRelay || *got.TeamRelay != *relay.TeamRelay || got.Version != 1 {
		t.Fatalf("unexpected match %+v", got)
	}
	if len(got.History) != 1 || got.History[0].ScoringSide != matches.Side1 {
		t.Fatalf("history did not round-trip: %+v", got.History)
	}
	got.Score.Relay.Legs[0].Side1Players[0] = "mutated"
	again, _ := s.GetMatch(ctx, "m-relay")
	if again.Score.Relay.Legs[0].Side1Players[0] != "a1" {
		t.Fatalf("returned match aliases stored state")
	}

	all, err := s.ListMatches(ctx, matches.Filter{})
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	ids := make([]string, 0, len(all))
	for _, m := range all {
		ids = append(ids, m.ID)
	}
	if !reflect.DeepEqual(ids, []string{"m-new", "m-relay", "m-old"}) {
		t.Fatalf("expected newest first, got %v", ids)
	}

	finished, _ := s.ListMatches(ctx, matches.Filter{Status: matches.StatusFinished})
	if len(finished) != 1 || finished[0].ID != "m-new" {
		t.Fatalf("unexpected status filter result %+v", finished)
	}
	team, _ := s.ListMatches(ctx, matches.Filter{Kind: matches.KindTeam})
	if len(team) != 1 || team[0].ID != "m-relay" {
		t.Fatalf("unexpected kind filter result %+v", team)
	}

	if err := s.DeleteMatch(ctx, "m-old"); err != nil {
		t.Fatalf("delete match: %v", err)
	}
	if _, err := s.GetMatch(ctx, "m-old"); apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if err := s.DeleteMatch(ctx, "m-old"); apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND deleting twice, got %v", err)
	}
}

func testVersioning(t *testing.T, s store.Store) {
	ctx := context.Background()
	m := individualMatch("m-v", base, matches.StatusUpcoming)
	if err := s.CreateMatch(ctx, m); err != nil {
		t.Fatalf("create match: %v", err)
	}

	loaded, _ := s.GetMatch(ctx, "m-v")
	stale := loaded.Clone()

	loaded.Status = matches.StatusLive
	saved, err := s.SaveMatch(ctx, loaded)
	if err != nil {
		t.Fatalf("save match: %v", err)
	}
	if saved.Version != 2 || saved.Status != matches.StatusLive {
		t.Fatalf("expected version 2 live, got %d %s", saved.Version, saved.Status)
	}

	stale.Status = matches.StatusCancelled
	_, err = s.SaveMatch(ctx, stale)
	if apperrors.CodeOf(err) != apperrors.CodeVersionConflict {
		t.Fatalf("expected VERSION_CONFLICT, got %v", err)
	}
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict kind")
	}
	current, _ := s.GetMatch(ctx, "m-v")
	if current.Status != matches.StatusLive || current.Version != 2 {
		t.Fatalf("conflicting save changed the match: %s v%d", current.Status, current.Version)
	}

	missing := individualMatch("m-missing", base, matches.StatusLive)
	if _, err := s.SaveMatch(ctx, missing); apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND saving unknown match, got %v", err)
	}
}
