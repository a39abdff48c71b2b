package league

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/pkg/db"
)

// MembershipService answers membership questions and creates memberships.
type MembershipService struct {
	stores Stores
	opts   *options
}

// IsMember reports whether userID belongs to leagueID.
func (s *MembershipService) IsMember(ctx context.Context, userID, leagueID uuid.UUID) (bool, error) {
	ok, err := s.stores.Memberships.Exists(ctx, s.stores.DB, userID, leagueID)
	if err != nil {
		return false, storeError("is member", err)
	}
	return ok, nil
}

// GetMember returns the membership of userID in leagueID.
func (s *MembershipService) GetMember(ctx context.Context, userID, leagueID uuid.UUID) (*Membership, error) {
	m, err := s.stores.Memberships.Get(ctx, s.stores.DB, userID, leagueID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, storeError("get member", err)
	}
	return m, nil
}

// CreateMember adds userID to leagueID with role. inviteCodeID records the
// code that admitted the member, if any.
func (s *MembershipService) CreateMember(ctx context.Context, userID, leagueID uuid.UUID, role Role, inviteCodeID *uuid.UUID) (*Membership, error) {
	return s.create(ctx, s.stores.DB, userID, leagueID, role, inviteCodeID)
}

// CreateOwner adds userID as OWNER of leagueID on the caller's transaction.
func (s *MembershipService) CreateOwner(ctx context.Context, tx *gorm.DB, userID, leagueID uuid.UUID) (*Membership, error) {
	return s.create(ctx, tx, userID, leagueID, RoleOwner, nil)
}

// ListMembers returns the members of leagueID in join order.
func (s *MembershipService) ListMembers(ctx context.Context, leagueID uuid.UUID) ([]Membership, error) {
	if _, err := s.stores.Leagues.Get(ctx, s.stores.DB, leagueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, storeError("get league", err)
	}
	members, err := s.stores.Memberships.ListByLeague(ctx, s.stores.DB, leagueID)
	if err != nil {
		return nil, storeError("list members", err)
	}
	return members, nil
}

func (s *MembershipService) create(ctx context.Context, tx *gorm.DB, userID, leagueID uuid.UUID, role Role, inviteCodeID *uuid.UUID) (*Membership, error) {
	if userID == uuid.Nil {
		return nil, ErrUserRequired
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	exists, err := s.stores.Memberships.Exists(ctx, tx, userID, leagueID)
	if err != nil {
		return nil, storeError("check membership", err)
	}
	if exists {
		return nil, ErrAlreadyMember
	}

	m := &Membership{
		ID:           uuid.New(),
		LeagueID:     leagueID,
		UserID:       userID,
		Role:         role,
		JoinedAt:     s.opts.now().UTC(),
		InviteCodeID: inviteCodeID,
	}
	// The unique (league, user) index catches inserts racing past the check above.
	if err := s.stores.Memberships.Create(ctx, tx, m); err != nil {
		if db.IsDuplicate(err) {
			return nil, ErrAlreadyMember
		}
		return nil, storeError("create membership", err)
	}

	s.opts.log.Debug().
		Str("league_id", leagueID.String()).
		Str("user_id", userID.String()).
		Str("role", string(role)).
		Msg("membership created")
	return m, nil
}
