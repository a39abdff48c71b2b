package league

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// LeagueService creates and reads leagues.
type LeagueService struct {
	stores  Stores
	opts    *options
	members *MembershipService
}

// CreateLeague creates a league owned by userID. The league row and the
// owner membership commit together or not at all.
func (s *LeagueService) CreateLeague(ctx context.Context, userID uuid.UUID, in CreateLeagueInput) (*League, error) {
	if userID == uuid.Nil {
		return nil, ErrUserRequired
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	ctx, span := s.opts.tracer.Start(ctx, "league.CreateLeague",
		trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer span.End()

	now := s.opts.now().UTC()
	l := &League{
		ID:          uuid.New(),
		SeasonID:    in.SeasonID,
		Name:        in.Name,
		Description: in.Description,
		CreatedByID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.stores.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.stores.Leagues.Create(ctx, tx, l); err != nil {
			return err
		}
		owner, err := s.members.CreateOwner(ctx, tx, userID, l.ID)
		if err != nil {
			return err
		}
		l.Members = []Membership{*owner}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create league")
		return nil, storeError("create league", err)
	}

	span.SetAttributes(attribute.String("league.id", l.ID.String()))
	leaguesCreated.Inc()
	s.opts.log.Info().
		Str("league_id", l.ID.String()).
		Str("season_id", l.SeasonID.String()).
		Str("owner_id", userID.String()).
		Msg("league created")
	s.opts.emit(ctx, SubjectLeagueCreated, userID, l.ID, map[string]any{
		"name":      l.Name,
		"season_id": l.SeasonID.String(),
	})
	return l, nil
}

// GetLeagueByID returns the league with its members loaded.
func (s *LeagueService) GetLeagueByID(ctx context.Context, leagueID uuid.UUID) (*League, error) {
	l, err := s.stores.Leagues.Get(ctx, s.stores.DB, leagueID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLeagueNotFound
	}
	if err != nil {
		return nil, storeError("get league", err)
	}

	members, err := s.stores.Memberships.ListByLeague(ctx, s.stores.DB, leagueID)
	if err != nil {
		return nil, storeError("list members", err)
	}
	l.Members = members
	return l, nil
}

// ListLeaguesForUser returns every league userID belongs to, oldest first.
func (s *LeagueService) ListLeaguesForUser(ctx context.Context, userID uuid.UUID) ([]League, error) {
	if userID == uuid.Nil {
		return nil, ErrUserRequired
	}
	leagues, err := s.stores.Leagues.ListByUser(ctx, s.stores.DB, userID)
	if err != nil {
		return nil, storeError("list leagues", err)
	}
	if len(leagues) == 0 {
		return leagues, nil
	}

	ids := make([]uuid.UUID, 0, len(leagues))
	for _, l := range leagues {
		ids = append(ids, l.ID)
	}
	members, err := s.stores.Memberships.ListByLeagues(ctx, s.stores.DB, ids)
	if err != nil {
		return nil, storeError("list members", err)
	}

	byLeague := make(map[uuid.UUID][]Membership, len(leagues))
	for _, m := range members {
		byLeague[m.LeagueID] = append(byLeague[m.LeagueID], m)
	}
	for i := range leagues {
		leagues[i].Members = byLeague[leagues[i].ID]
	}
	return leagues, nil
}
