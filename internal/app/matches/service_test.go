package matches

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	domain "github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/teams"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/logging"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/metrics"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/scoring"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/store"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return "m" + string(rune('0'+s.n))
}

type recordingArchiver struct {
	mu       sync.Mutex
	archived []domain.Match
}

func (a *recordingArchiver) ArchiveMatch(m domain.Match) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.archived = append(a.archived, m)
	return nil
}

type conflictRepo struct {
	*store.MemoryStore
}

func (c conflictRepo) SaveMatch(_ context.Context, m domain.Match) (domain.Match, error) {
	return domain.Match{}, store.VersionConflict(m.ID, m.Version, m.Version+1)
}

type fixture struct {
	svc      *Service
	mem      *store.MemoryStore
	recorder *metrics.Recorder
	archiver *recordingArchiver
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mem := store.NewMemoryStore()
	ctx := context.Background()
	for _, id := range []string{"p1", "p2", "p3", "p4", "a1", "a2", "a3", "b1", "b2", "b3"} {
		if err := mem.CreatePlayer(ctx, players.Player{ID: id, Name: id, Category: players.CategorySenior}); err != nil {
			t.Fatalf("seed player: %v", err)
		}
	}
	for _, team := range []teams.Team{
		{ID: "t1", Name: "One", PlayerIDs: []string{"a1", "a2", "a3"}},
		{ID: "t2", Name: "Two", PlayerIDs: []string{"b1", "b2", "b3"}},
	} {
		if err := mem.CreateTeam(ctx, team); err != nil {
			t.Fatalf("seed team: %v", err)
		}
	}
	recorder := metrics.NewRecorder()
	archiver := &recordingArchiver{}
	svc := NewService(mem,
		WithMetrics(recorder),
		WithArchiver(archiver),
		WithIDs(&seqIDs{}),
		WithClock(func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }),
		WithDefaults(Defaults{MaxEncountersPerPlayer: 1, AllowPairRepeat: true}),
	)
	return fixture{svc: svc, mem: mem, recorder: recorder, archiver: archiver}
}

func individualInput() CreateInput {
	return CreateInput{
		Kind:           domain.KindIndividual,
		Category:       players.CategorySenior,
		Side1PlayerIDs: []string{"p1"},
		Side2PlayerIDs: []string{"p2"},
		BestOf:         3,
	}
}

func score(t *testing.T, f fixture, matchID string, side domain.Side, n int) Result {
	t.Helper()
	var res Result
	for i := 0; i < n; i++ {
		var err error
		res, err = f.svc.ScorePoint(context.Background(), matchID, side)
		if err != nil {
			t.Fatalf("score point %d: %v", i+1, err)
		}
	}
	return res
}

func TestCreateIndividualFromBestOf(t *testing.T) {
	f := newFixture(t)
	m, err := f.svc.Create(context.Background(), individualInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "m1" || m.Status != domain.StatusUpcoming || m.Version != 1 || m.BestOf.SetsToWin != 2 {
		t.Fatalf("unexpected match %+v", m)
	}
	stored, err := f.svc.Get(context.Background(), "m1")
	if err != nil || stored.Score.Games == nil {
		t.Fatalf("expected stored match with initialized score, got %+v (%v)", stored, err)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	badBestOf := individualInput()
	badBestOf.BestOf = 4
	disagree := individualInput()
	disagree.SetsToWin = 3
	missing := individualInput()
	missing.Side2PlayerIDs = []string{"ghost"}
	noLength := individualInput()
	noLength.BestOf = 0
	sameTeam := CreateInput{Kind: domain.KindTeam, SubType: domain.SubTypeSet, Team1ID: "t1", Team2ID: "t1", EncounterFormat: domain.FormatSingle, NumberOfEncounters: 3}
	unknownTeam := CreateInput{Kind: domain.KindTeam, SubType: domain.SubTypeRelay, Team1ID: "t1", Team2ID: "nope", EncounterFormat: domain.FormatSingle, NumberOfLegs: 2, PointsPerLeg: 5}

	cases := map[string]struct {
		in   CreateInput
		code apperrors.Code
	}{
		"bad bestOf":     {badBestOf, apperrors.CodeInvalidRules},
		"disagreement":   {disagree, apperrors.CodeInvalidRules},
		"no length":      {noLength, apperrors.CodeInvalidRules},
		"missing player": {missing, apperrors.CodeInvalidInput},
		"same team":      {sameTeam, apperrors.CodeInvalidInput},
		"unknown team":   {unknownTeam, apperrors.CodeInvalidInput},
		"unknown kind":   {CreateInput{Kind: "Triple"}, apperrors.CodeInvalidRules},
	}
	for name, tc := range cases {
		if _, err := f.svc.Create(context.Background(), tc.in); apperrors.CodeOf(err) != tc.code {
			t.Fatalf("%s: expected %s, got %v", name, tc.code, err)
		}
	}
	list, _ := f.svc.List(context.Background(), domain.Filter{})
	if len(list) != 0 {
		t.Fatalf("rejected creates must not persist, found %d", len(list))
	}
}

func TestCreateTeamSetAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	repeat := false
	m, err := f.svc.Create(context.Background(), CreateInput{
		Kind:               domain.KindTeam,
		SubType:            domain.SubTypeSet,
		Team1ID:            "t1",
		Team2ID:            "t2",
		EncounterFormat:    domain.FormatSingle,
		NumberOfEncounters: 3,
		AllowPairRepeat:    &repeat,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.TeamSet.MaxEncountersPerPlayer != 1 || m.TeamSet.AllowPairRepeat || m.TeamSet.TiebreakerIgnoresCap {
		t.Fatalf("expected configured defaults with explicit override, got %+v", m.TeamSet)
	}
}

func TestIndividualMatchLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, _ := f.svc.Create(ctx, individualInput())

	res, err := f.svc.Start(ctx, m.ID, domain.Side1)
	if err != nil || res.Outcome != scoring.OutcomeEncounterStarted || res.Match.Status != domain.StatusLive {
		t.Fatalf("unexpected start result %+v (%v)", res, err)
	}
	score(t, f, m.ID, domain.Side1, 11)
	score(t, f, m.ID, domain.Side1, 9)
	score(t, f, m.ID, domain.Side2, 11)
	score(t, f, m.ID, domain.Side2, 9)
	res = score(t, f, m.ID, domain.Side1, 11)

	if res.Outcome != scoring.OutcomeMatchFinished || res.Match.Winner == nil || res.Match.Winner.PlayerID != "p1" {
		t.Fatalf("expected p1 to win, got %s %+v", res.Outcome, res.Match.Winner)
	}
	if res.Match.Version != 1+1+51 {
		t.Fatalf("expected one version per transition, got %d", res.Match.Version)
	}
	if len(f.archiver.archived) != 1 || f.archiver.archived[0].ID != m.ID {
		t.Fatalf("expected finished match archived once, got %d", len(f.archiver.archived))
	}
	totals := f.recorder.Totals()
	if totals.PointsScored != 51 || totals.MatchesFinished != 1 {
		t.Fatalf("unexpected totals %+v", totals)
	}

	undone, err := f.svc.Undo(ctx, m.ID)
	if err != nil || undone.Match.Status != domain.StatusLive {
		t.Fatalf("expected undo to reopen match, got %+v (%v)", undone, err)
	}
	score(t, f, m.ID, domain.Side1, 1)
	if len(f.archiver.archived) != 2 || f.recorder.Totals().MatchesFinished != 2 {
		t.Fatalf("expected refinish to archive again")
	}
	if _, err := f.svc.ScorePoint(ctx, m.ID, domain.Side1); apperrors.CodeOf(err) != apperrors.CodeNotLive {
		t.Fatalf("expected NOT_LIVE after finish, got %v", err)
	}
}

func TestRejectedOperationDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var buf bytes.Buffer
	ctx = logging.WithLogger(ctx, slog.New(slog.NewTextHandler(&buf, nil)))
	m, _ := f.svc.Create(ctx, individualInput())

	if _, err := f.svc.ScorePoint(ctx, m.ID, domain.Side1); apperrors.CodeOf(err) != apperrors.CodeNotLive {
		t.Fatalf("expected NOT_LIVE, got %v", err)
	}
	stored, _ := f.svc.Get(ctx, m.ID)
	if stored.Version != 1 || len(stored.History) != 0 {
		t.Fatalf("rejected point changed the match: v%d", stored.Version)
	}
	if snap := f.recorder.Snapshot(OpScore); snap.Calls != 1 || snap.Errors != 1 {
		t.Fatalf("expected one failed score call, got %+v", snap)
	}
	out := buf.String()
	if !strings.Contains(out, "match operation rejected") || !strings.Contains(out, "error_code=NOT_LIVE") || !strings.Contains(out, "error_kind=state") {
		t.Fatalf("expected warn log with error fields, got %q", out)
	}
}

func TestVersionConflictIsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, _ := f.svc.Create(ctx, individualInput())
	svc := NewService(conflictRepo{f.mem}, WithMetrics(f.recorder))

	_, err := svc.Start(ctx, m.ID, domain.Side1)
	domainErr, ok := apperrors.As(err)
	if !ok || domainErr.Code != apperrors.CodeVersionConflict || !domainErr.Retryable() {
		t.Fatalf("expected retryable VERSION_CONFLICT, got %v", err)
	}
	if f.recorder.Totals().VersionConflicts != 1 {
		t.Fatalf("expected conflict metric")
	}
}

func TestTeamSetRotationThroughService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, err := f.svc.Create(ctx, CreateInput{
		Kind:               domain.KindTeam,
		SubType:            domain.SubTypeSet,
		Team1ID:            "t1",
		Team2ID:            "t2",
		EncounterFormat:    domain.FormatSingle,
		NumberOfEncounters: 3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Start(ctx, m.ID, domain.Side1); apperrors.CodeOf(err) != apperrors.CodeInvalidRules {
		t.Fatalf("expected team start to be rejected, got %v", err)
	}
	if _, err := f.svc.SetupEncounter(ctx, m.ID, scoring.Setup{Index: 0, Side1PlayerIDs: []string{"b1"}, Side2PlayerIDs: []string{"b2"}, InitialServer: domain.Side1}); apperrors.CodeOf(err) != apperrors.CodeNotOnRoster {
		t.Fatalf("expected NOT_ON_ROSTER, got %v", err)
	}
	if _, err := f.svc.SetupEncounter(ctx, m.ID, scoring.Setup{Index: 0, Side1PlayerIDs: []string{"a1"}, Side2PlayerIDs: []string{"b1"}, InitialServer: domain.Side1}); err != nil {
		t.Fatalf("setup encounter 0: %v", err)
	}
	res := score(t, f, m.ID, domain.Side1, 11)
	if res.Match.Status != domain.StatusAwaitingEncounterSetup {
		t.Fatalf("expected awaiting setup, got %s", res.Match.Status)
	}
	before, _ := f.svc.Get(ctx, m.ID)

	_, err = f.svc.SetupEncounter(ctx, m.ID, scoring.Setup{Index: 1, Side1PlayerIDs: []string{"a1"}, Side2PlayerIDs: []string{"b2"}, InitialServer: domain.Side1})
	if apperrors.CodeOf(err) != apperrors.CodeRotationCap {
		t.Fatalf("expected ROTATION_CAP, got %v", err)
	}
	after, _ := f.svc.Get(ctx, m.ID)
	if after.Version != before.Version || after.Status != before.Status {
		t.Fatalf("rejected setup changed the match")
	}
}

func TestDeleteOnlyUpcoming(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	live, _ := f.svc.Create(ctx, individualInput())
	_, _ = f.svc.Start(ctx, live.ID, domain.Side1)
	if err := f.svc.Delete(ctx, live.ID); apperrors.CodeOf(err) != apperrors.CodeInvalidStatus {
		t.Fatalf("expected INVALID_STATUS, got %v", err)
	}
	upcoming, _ := f.svc.Create(ctx, individualInput())
	if err := f.svc.Delete(ctx, upcoming.ID); err != nil {
		t.Fatalf("expected delete, got %v", err)
	}
	if err := f.svc.Delete(ctx, upcoming.ID); apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCancelAndLength(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, _ := f.svc.Create(ctx, individualInput())
	res, err := f.svc.ChangeLength(ctx, m.ID, 3)
	if err != nil || res.Match.BestOf.SetsToWin != 3 || res.Outcome != scoring.OutcomeLengthChanged {
		t.Fatalf("unexpected length change %+v (%v)", res, err)
	}
	res, err = f.svc.Cancel(ctx, m.ID)
	if err != nil || res.Match.Status != domain.StatusCancelled {
		t.Fatalf("unexpected cancel %+v (%v)", res, err)
	}
	if _, err := f.svc.Cancel(ctx, m.ID); apperrors.CodeOf(err) != apperrors.CodeInvalidStatus {
		t.Fatalf("expected INVALID_STATUS cancelling twice, got %v", err)
	}
}

func TestConcurrentPointsAreSerialized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := individualInput()
	in.BestOf = 5
	m, _ := f.svc.Create(ctx, in)
	started, _ := f.svc.Start(ctx, m.ID, domain.Side1)

	const points = 20
	var wg sync.WaitGroup
	errs := make(chan error, points)
	for i := 0; i < points; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.ScorePoint(ctx, m.ID, domain.Side1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}

	final, _ := f.svc.Get(ctx, m.ID)
	if final.Version != started.Match.Version+points {
		t.Fatalf("expected %d versions, got %d", points, final.Version-started.Match.Version)
	}
	if final.Score.Games.SetsWon.Side1 != 1 || final.Score.CurrentGame.Side1 != 9 {
		t.Fatalf("unexpected score %+v", final.Score)
	}
	if f.svc.locks.size() != 0 {
		t.Fatalf("expected lock table to drain")
	}
}

func TestSetupEncounterRequiresSelectionForIndividual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, err := f.svc.Create(ctx, individualInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = f.svc.SetupEncounter(ctx, m.ID, scoring.Setup{Index: 0, InitialServer: domain.Side1})
	if apperrors.CodeOf(err) != apperrors.CodeInvalidSelection {
		t.Fatalf("expected INVALID_SELECTION, got %v", err)
	}
	unchanged, _ := f.svc.Get(ctx, m.ID)
	if unchanged.Status != domain.StatusUpcoming || unchanged.Version != m.Version {
		t.Fatalf("rejected setup changed the match: %s v%d", unchanged.Status, unchanged.Version)
	}
	res, err := f.svc.SetupEncounter(ctx, m.ID, scoring.Setup{Index: 0, Side1PlayerIDs: []string{"p1"}, Side2PlayerIDs: []string{"p2"}, InitialServer: domain.Side2})
	if err != nil {
		t.Fatalf("setup with participants: %v", err)
	}
	if res.Match.Status != domain.StatusLive || res.Match.Score.Server != domain.Side2 {
		t.Fatalf("unexpected start %s server %d", res.Match.Status, res.Match.Score.Server)
	}
}
