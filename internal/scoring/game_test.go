package scoring

import (
	"math/rand"
	"testing"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
)

func TestGameWinner(t *testing.T) {
	cases := []struct {
		points matches.Points
		want   matches.Side
	}{
		{matches.Points{Side1: 11, Side2: 0}, matches.Side1},
		{matches.Points{Side1: 11, Side2: 9}, matches.Side1},
		{matches.Points{Side1: 11, Side2: 10}, matches.SideNone},
		{matches.Points{Side1: 10, Side2: 8}, matches.SideNone},
		{matches.Points{Side1: 14, Side2: 16}, matches.Side2},
		{matches.Points{Side1: 15, Side2: 16}, matches.SideNone},
	}
	for _, tc := range cases {
		if got := GameWinner(tc.points); got != tc.want {
			t.Fatalf("%+v: expected %d, got %d", tc.points, tc.want, got)
		}
	}
}

func TestServeRotatesEveryTwoPoints(t *testing.T) {
	g := Game{Server: matches.Side1}
	want := []matches.Side{matches.Side1, matches.Side2, matches.Side2, matches.Side1, matches.Side1, matches.Side2}
	for i, w := range want {
		var err error
		g, _, err = ApplyPoint(g, matches.Side(i%2+1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if g.Server != w {
			t.Fatalf("after point %d expected server %d, got %d", i+1, w, g.Server)
		}
	}
}

func TestDeuceAlternatesEveryPoint(t *testing.T) {
	g := Game{Points: matches.Points{Side1: 10, Side2: 9}, Server: matches.Side2}
	g, _, _ = ApplyPoint(g, matches.Side2) // 10-10
	if g.Server != matches.Side1 {
		t.Fatalf("expected swap at 10-10, got server %d", g.Server)
	}
	sides := []matches.Side{matches.Side1, matches.Side2, matches.Side2, matches.Side1, matches.Side1, matches.Side2}
	for _, side := range sides {
		prev := g.Server
		var winner matches.Side
		g, winner, _ = ApplyPoint(g, side)
		if winner != matches.SideNone {
			t.Fatalf("unexpected game end at %+v", g.Points)
		}
		if g.Server == prev {
			t.Fatalf("expected server to alternate at %+v", g.Points)
		}
	}
}

func TestGameWonLoserServes(t *testing.T) {
	g := Game{Points: matches.Points{Side1: 10, Side2: 3}, Server: matches.Side1}
	next, winner, err := ApplyPoint(g, matches.Side1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if winner != matches.Side1 {
		t.Fatalf("expected side1 to win, got %d", winner)
	}
	if next.Server != matches.Side2 {
		t.Fatalf("expected loser to serve next, got %d", next.Server)
	}
}

func TestApplyPointRejections(t *testing.T) {
	g := Game{Points: matches.Points{Side1: 11, Side2: 2}, Server: matches.Side1}
	if _, _, err := ApplyPoint(g, matches.Side2); apperrors.CodeOf(err) != apperrors.CodeGameOver {
		t.Fatalf("expected GAME_OVER, got %v", err)
	}
	if _, _, err := ApplyPoint(Game{Server: matches.Side1}, matches.Side(3)); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRandomGamesObeyWinRules(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		g := Game{Server: matches.Side(rng.Intn(2) + 1)}
		for {
			side := matches.Side(rng.Intn(2) + 1)
			prev := g
			next, winner, err := ApplyPoint(g, side)
			if err != nil {
				t.Fatalf("game %d: unexpected error: %v", i, err)
			}
			if winner != matches.SideNone {
				own, opp := next.Points.Of(winner), next.Points.Of(winner.Opponent())
				if own < GamePoint || own-opp < WinMargin {
					t.Fatalf("game %d: invalid win at %+v", i, next.Points)
				}
				break
			}
			if next.Points.Total() >= 20 && IsDeuce(next.Points) && next.Server == prev.Server {
				t.Fatalf("game %d: server did not alternate at %+v", i, next.Points)
			}
			g = next
		}
	}
}

func TestApplyRelayPoint(t *testing.T) {
	rules := matches.TeamRelayRules{EncounterFormat: matches.FormatSingle, NumberOfLegs: 2, PointsPerLeg: 5}
	legStart := matches.Points{Side1: 5, Side2: 3}

	res, err := ApplyRelayPoint(rules, 1, legStart, legStart, matches.Side1, matches.Side2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Server != matches.Side1 || res.LegWinner != matches.SideNone {
		t.Fatalf("unexpected result after first leg point: %+v", res)
	}
	res, _ = ApplyRelayPoint(rules, 1, res.Cumulative, legStart, res.Server, matches.Side2)
	if res.Server != matches.Side2 {
		t.Fatalf("expected serve swap after two leg points, got %d", res.Server)
	}

	res, _ = ApplyRelayPoint(rules, 1, matches.Points{Side1: 9, Side2: 8}, legStart, matches.Side1, matches.Side1)
	if res.LegWinner != matches.Side1 || res.MatchWinner != matches.Side1 {
		t.Fatalf("expected side1 to close the final leg, got %+v", res)
	}

	res, _ = ApplyRelayPoint(rules, 0, matches.Points{Side1: 1, Side2: 4}, matches.Points{}, matches.Side1, matches.Side2)
	if res.LegWinner != matches.Side2 || res.MatchWinner != matches.SideNone {
		t.Fatalf("expected side2 to close leg one only, got %+v", res)
	}

	if _, err := ApplyRelayPoint(rules, 0, matches.Points{}, matches.Points{}, matches.Side1, matches.SideNone); err == nil {
		t.Fatalf("expected invalid side error")
	}
}
