// Package matches is the application service around the scoring engine. It
// owns per-match locking, persistence, metrics, tracing and archiving.
package matches

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domain "github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/players"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/domain/teams"
	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/id"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/logging"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/metrics"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/scoring"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/tracing"
)

// Operation names used for logs, metrics and spans.
const (
	OpCreate = "create"
	OpStart  = "start"
	OpSetup  = "setup_encounter"
	OpScore  = "score"
	OpUndo   = "undo"
	OpLength = "change_length"
	OpCancel = "cancel"
	OpDelete = "delete"
)

const (
	attrMatchID = "match.id"
	attrOp      = "match.operation"
)

// Repository is the persistence the service needs.
type Repository interface {
	CreateMatch(ctx context.Context, m domain.Match) error
	GetMatch(ctx context.Context, id string) (domain.Match, error)
	ListMatches(ctx context.Context, filter domain.Filter) ([]domain.Match, error)
	SaveMatch(ctx context.Context, m domain.Match) (domain.Match, error)
	DeleteMatch(ctx context.Context, id string) error
	GetPlayer(ctx context.Context, id string) (players.Player, error)
	GetTeam(ctx context.Context, id string) (teams.Team, error)
}

// Archiver keeps a copy of every finished match.
type Archiver interface {
	ArchiveMatch(m domain.Match) error
}

// Result is a persisted match plus what the operation did to it.
type Result struct {
	Match   domain.Match
	Outcome scoring.Outcome
}

// Service coordinates match operations.
type Service struct {
	repo     Repository
	archiver Archiver
	metrics  *metrics.Recorder
	logger   *slog.Logger
	tracer   trace.Tracer
	ids      id.Generator
	defaults Defaults
	now      func() time.Time
	locks    *keyedMutex
}

// Option customizes a Service.
type Option func(*Service)

// WithArchiver archives matches as they finish.
func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithMetrics records operation metrics.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithIDs overrides id generation.
func WithIDs(g id.Generator) Option {
	return func(s *Service) { s.ids = g }
}

// WithDefaults sets the team match option defaults.
func WithDefaults(d Defaults) Option {
	return func(s *Service) { s.defaults = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a Service over repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		tracer:   tracing.Tracer(),
		ids:      id.UUID{},
		defaults: Defaults{MaxEncountersPerPlayer: 2, AllowPairRepeat: true},
		now:      time.Now,
		locks:    newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates input, checks every reference and stores an Upcoming match.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Match, error) {
	ctx, span := s.tracer.Start(ctx, "matches."+OpCreate, trace.WithAttributes(attribute.String(attrOp, OpCreate)))
	defer span.End()
	start := time.Now()

	m, err := s.create(ctx, in)
	s.finishOp(ctx, span, OpCreate, m, start, err)
	if err != nil {
		return domain.Match{}, err
	}
	logging.Info(s.log(ctx), "match created",
		logging.FieldMatchID, m.ID,
		"shape", m.Shape().String(),
	)
	return m, nil
}

func (s *Service) create(ctx context.Context, in CreateInput) (domain.Match, error) {
	m, err := in.build(s.defaults)
	if err != nil {
		return domain.Match{}, err
	}
	if err := s.checkReferences(ctx, m); err != nil {
		return domain.Match{}, err
	}
	now := s.now().UTC()
	m.ID = s.ids.NewID()
	m.CreatedAt = now
	m.UpdatedAt = now
	m.Version = 1
	if err := s.repo.CreateMatch(ctx, m); err != nil {
		return domain.Match{}, err
	}
	return m, nil
}

// Get returns one match.
func (s *Service) Get(ctx context.Context, matchID string) (domain.Match, error) {
	return s.repo.GetMatch(ctx, matchID)
}

// List returns matches passing filter, newest first.
func (s *Service) List(ctx context.Context, filter domain.Filter) ([]domain.Match, error) {
	return s.repo.ListMatches(ctx, filter)
}

// Start begins an Individual or Dual match. The fixed participants play.
func (s *Service) Start(ctx context.Context, matchID string, initialServer domain.Side) (Result, error) {
	return s.mutate(ctx, OpStart, matchID, func(_ context.Context, m domain.Match, at time.Time) (domain.Match, scoring.Outcome, error) {
		if m.Kind == domain.KindTeam {
			return domain.Match{}, scoring.OutcomeNone, apperrors.New(apperrors.CodeInvalidRules,
				"team matches start through encounter setup")
		}
		return scoring.SetupEncounter(m, scoring.Setup{InitialServer: initialServer}, scoring.Rosters{}, at)
	})
}

// SetupEncounter starts the next set or leg of a team match, or the single
// encounter of an Individual/Dual match when setup.Index is 0. Both sides must
// name their players; Start is the shortcut that takes them from the match.
func (s *Service) SetupEncounter(ctx context.Context, matchID string, setup scoring.Setup) (Result, error) {
	return s.mutate(ctx, OpSetup, matchID, func(ctx context.Context, m domain.Match, at time.Time) (domain.Match, scoring.Outcome, error) {
		if err := scoring.RequireSelection(setup); err != nil {
			return domain.Match{}, scoring.OutcomeNone, err
		}
		rosters, err := s.rosters(ctx, m)
		if err != nil {
			return domain.Match{}, scoring.OutcomeNone, err
		}
		return scoring.SetupEncounter(m, setup, rosters, at)
	})
}

// ScorePoint applies one rally won by side.
func (s *Service) ScorePoint(ctx context.Context, matchID string, side domain.Side) (Result, error) {
	return s.mutate(ctx, OpScore, matchID, func(_ context.Context, m domain.Match, at time.Time) (domain.Match, scoring.Outcome, error) {
		return scoring.ScorePoint(m, side, at)
	})
}

// Undo reverts the most recent point.
func (s *Service) Undo(ctx context.Context, matchID string) (Result, error) {
	return s.mutate(ctx, OpUndo, matchID, func(_ context.Context, m domain.Match, at time.Time) (domain.Match, scoring.Outcome, error) {
		return scoring.Undo(m, at)
	})
}

// ChangeLength sets how many games an Upcoming Individual/Dual match needs.
func (s *Service) ChangeLength(ctx context.Context, matchID string, setsToWin int) (Result, error) {
	return s.mutate(ctx, OpLength, matchID, func(_ context.Context, m domain.Match, at time.Time) (domain.Match, scoring.Outcome, error) {
		return scoring.ChangeLength(m, setsToWin, at)
	})
}

// Cancel withdraws an Upcoming match.
func (s *Service) Cancel(ctx context.Context, matchID string) (Result, error) {
	return s.mutate(ctx, OpCancel, matchID, func(_ context.Context, m domain.Match, at time.Time) (domain.Match, scoring.Outcome, error) {
		return scoring.Cancel(m, at)
	})
}

// Delete removes a match that has not started.
func (s *Service) Delete(ctx context.Context, matchID string) error {
	ctx, span := s.startSpan(ctx, OpDelete, matchID)
	defer span.End()
	start := time.Now()

	unlock := s.locks.Lock(matchID)
	defer unlock()

	m, err := s.repo.GetMatch(ctx, matchID)
	if err == nil && m.Status != domain.StatusUpcoming {
		err = apperrors.WithMetadata(apperrors.CodeInvalidStatus,
			"only upcoming matches can be deleted, match is "+string(m.Status),
			map[string]string{"match_id": matchID, "status": string(m.Status)})
	}
	if err == nil {
		err = s.repo.DeleteMatch(ctx, matchID)
	}
	s.finishOp(ctx, span, OpDelete, m, start, err)
	if err != nil {
		return err
	}
	logging.Info(s.log(ctx), "match deleted", logging.FieldMatchID, matchID)
	return nil
}

type transition func(ctx context.Context, m domain.Match, at time.Time) (domain.Match, scoring.Outcome, error)

// mutate runs load -> transition -> versioned save under the match lock.
// Nothing is written when the transition fails.
func (s *Service) mutate(ctx context.Context, op, matchID string, fn transition) (Result, error) {
	ctx, span := s.startSpan(ctx, op, matchID)
	defer span.End()
	start := time.Now()

	unlock := s.locks.Lock(matchID)
	defer unlock()

	before, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		s.finishOp(ctx, span, op, before, start, err)
		return Result{}, err
	}
	next, outcome, err := fn(ctx, before, s.now().UTC())
	if err != nil {
		s.finishOp(ctx, span, op, before, start, err)
		return Result{}, err
	}
	saved, err := s.repo.SaveMatch(ctx, next)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeVersionConflict {
			s.metrics.RecordVersionConflict(op)
		}
		s.finishOp(ctx, span, op, before, start, err)
		return Result{}, err
	}
	s.finishOp(ctx, span, op, saved, start, nil)
	s.afterSave(ctx, op, before, saved, outcome)
	span.SetAttributes(attribute.String("match.outcome", string(outcome)))
	return Result{Match: saved, Outcome: outcome}, nil
}

func (s *Service) afterSave(ctx context.Context, op string, before, saved domain.Match, outcome scoring.Outcome) {
	shape := saved.Shape().String()
	if op == OpScore {
		s.metrics.RecordPointScored(shape)
	}
	logger := s.log(ctx)
	logging.Info(logger, "match updated",
		logging.FieldMatchID, saved.ID,
		logging.FieldOperation, op,
		logging.FieldOutcome, string(outcome),
		logging.FieldStatus, string(saved.Status),
	)
	if saved.Status != domain.StatusFinished || before.Status == domain.StatusFinished {
		return
	}
	s.metrics.RecordMatchFinished(shape)
	if s.archiver == nil {
		return
	}
	if err := s.archiver.ArchiveMatch(saved); err != nil {
		logging.Error(logger, "match archive failed", err, logging.FieldMatchID, saved.ID)
	}
}

func (s *Service) startSpan(ctx context.Context, op, matchID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "matches."+op, trace.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrMatchID, matchID),
	))
}

// finishOp records metrics, span status and, on failure, a log line. Domain
// rejections log at warn; anything else is an error.
func (s *Service) finishOp(ctx context.Context, span trace.Span, op string, m domain.Match, start time.Time, err error) {
	shape := m.Shape().String()
	if err == nil {
		s.metrics.RecordMatchOperation(op, shape, time.Since(start), "")
		return
	}
	kind := apperrors.KindOf(err)
	s.metrics.RecordMatchOperation(op, shape, time.Since(start), string(kind))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	args := append([]any{logging.FieldOperation, op, logging.FieldMatchID, m.ID}, logging.ErrorFields(err)...)
	if kind == apperrors.KindInternal {
		logging.Error(s.log(ctx), "match operation failed", err, args...)
		return
	}
	logging.Warn(s.log(ctx), "match operation rejected", append(args, "error", err.Error())...)
}

func (s *Service) rosters(ctx context.Context, m domain.Match) (scoring.Rosters, error) {
	if m.Kind != domain.KindTeam {
		return scoring.Rosters{}, nil
	}
	t1, err := s.repo.GetTeam(ctx, m.Participants.Team1)
	if err != nil {
		return scoring.Rosters{}, err
	}
	t2, err := s.repo.GetTeam(ctx, m.Participants.Team2)
	if err != nil {
		return scoring.Rosters{}, err
	}
	return scoring.Rosters{Side1: t1.Roster(), Side2: t2.Roster()}, nil
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}
