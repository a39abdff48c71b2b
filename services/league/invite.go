package league

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/pkg/db"
)

// InviteCodeService mints and redeems invite codes.
type InviteCodeService struct {
	stores  Stores
	opts    *options
	members *MembershipService
	leagues *LeagueService
}

// InviteCodeListing is an invite code with its status at listing time and
// the membership that created it. Creator is nil when that membership is gone.
type InviteCodeListing struct {
	InviteCode
	Status  InviteCodeStatus `json:"status"`
	Creator *Membership      `json:"created_by,omitempty"`
}

// CreateInviteCode mints a code for leagueID on behalf of creatorUserID,
// replacing any code the creator already holds for that league.
func (s *InviteCodeService) CreateInviteCode(ctx context.Context, leagueID, creatorUserID uuid.UUID) (*InviteCode, error) {
	creator, err := s.requireInviter(ctx, creatorUserID, leagueID)
	if err != nil {
		return nil, err
	}

	ctx, span := s.opts.tracer.Start(ctx, "league.CreateInviteCode",
		trace.WithAttributes(attribute.String("league.id", leagueID.String())))
	defer span.End()

	now := s.opts.now().UTC()
	for attempt := 1; attempt <= s.opts.maxAttempts; attempt++ {
		candidate, err := s.opts.codes.NextCode()
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("draw invite code: %w: %w", ErrUnavailable, err)
		}
		if !ValidCode(candidate) {
			return nil, fmt.Errorf("draw invite code: %w: malformed candidate %q", ErrUnavailable, candidate)
		}

		taken, err := s.stores.InviteCodes.CodeExists(ctx, s.stores.DB, candidate)
		if err != nil {
			return nil, storeError("check invite code", err)
		}
		if taken {
			s.collision(attempt)
			continue
		}

		code := &InviteCode{
			ID:          uuid.New(),
			LeagueID:    leagueID,
			CreatedByID: creator.ID,
			Code:        candidate,
			CreatedAt:   now,
			ExpiresAt:   now.Add(InviteCodeTTL),
		}
		if err := s.stores.InviteCodes.Supersede(ctx, s.stores.DB, code); err != nil {
			if db.IsDuplicate(err) {
				s.collision(attempt)
				continue
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "supersede invite code")
			return nil, storeError("create invite code", err)
		}

		span.SetAttributes(attribute.Int("invite.attempts", attempt))
		inviteCodesMinted.Inc()
		s.opts.log.Info().
			Str("league_id", leagueID.String()).
			Str("creator_id", creator.ID.String()).
			Time("expires_at", code.ExpiresAt).
			Msg("invite code created")
		s.opts.emit(ctx, SubjectInviteCreated, creatorUserID, leagueID, map[string]any{
			"invite_code_id": code.ID.String(),
			"expires_at":     code.ExpiresAt,
		})
		return code, nil
	}

	span.SetStatus(codes.Error, "code space exhausted")
	s.opts.log.Error().
		Str("league_id", leagueID.String()).
		Int("attempts", s.opts.maxAttempts).
		Msg("no unique invite code found")
	return nil, ErrCodeSpaceExhausted
}

func (s *InviteCodeService) collision(attempt int) {
	inviteCodeCollisions.Inc()
	s.opts.log.Warn().Int("attempt", attempt).Msg("invite code collision, redrawing")
}

// UseInviteCode admits userID to the league behind code. The code must match
// exactly and stays redeemable for other users afterwards.
func (s *InviteCodeService) UseInviteCode(ctx context.Context, code string, userID uuid.UUID) (*League, error) {
	if userID == uuid.Nil {
		return nil, ErrUserRequired
	}

	// Strings that cannot be a code never reach the store.
	if !ValidCode(code) {
		inviteRedemptions.WithLabelValues(outcomeInvalid).Inc()
		return nil, ErrInvalidInviteCode
	}

	ic, err := s.stores.InviteCodes.GetByCode(ctx, s.stores.DB, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		inviteRedemptions.WithLabelValues(outcomeInvalid).Inc()
		return nil, ErrInvalidInviteCode
	}
	if err != nil {
		inviteRedemptions.WithLabelValues(outcomeError).Inc()
		return nil, storeError("get invite code", err)
	}

	switch ic.Status(s.opts.now()) {
	case InviteCodeRevoked:
		inviteRedemptions.WithLabelValues(outcomeRevoked).Inc()
		return nil, ErrInviteCodeRevoked
	case InviteCodeExpired:
		inviteRedemptions.WithLabelValues(outcomeExpired).Inc()
		return nil, ErrInviteCodeExpired
	}

	member, err := s.members.IsMember(ctx, userID, ic.LeagueID)
	if err != nil {
		inviteRedemptions.WithLabelValues(outcomeError).Inc()
		return nil, err
	}
	if member {
		inviteRedemptions.WithLabelValues(outcomeIsMember).Inc()
		return nil, ErrAlreadyJoined
	}

	if _, err := s.members.CreateMember(ctx, userID, ic.LeagueID, RoleMember, &ic.ID); err != nil {
		if errors.Is(err, ErrAlreadyMember) {
			inviteRedemptions.WithLabelValues(outcomeIsMember).Inc()
			return nil, ErrAlreadyJoined
		}
		inviteRedemptions.WithLabelValues(outcomeError).Inc()
		return nil, err
	}
	inviteRedemptions.WithLabelValues(outcomeJoined).Inc()

	s.opts.log.Info().
		Str("league_id", ic.LeagueID.String()).
		Str("user_id", userID.String()).
		Str("invite_code_id", ic.ID.String()).
		Msg("member joined via invite code")
	s.opts.emit(ctx, SubjectMemberJoined, userID, ic.LeagueID, map[string]any{
		"invite_code_id": ic.ID.String(),
	})

	return s.leagues.GetLeagueByID(ctx, ic.LeagueID)
}

// GetInviteCodeCreator resolves the membership of an invite code creator.
func (s *InviteCodeService) GetInviteCodeCreator(ctx context.Context, userID, leagueID uuid.UUID) (*Membership, error) {
	return s.members.GetMember(ctx, userID, leagueID)
}

// ListInviteCodes returns the league's codes, newest first. Only owners and
// admins may list them.
func (s *InviteCodeService) ListInviteCodes(ctx context.Context, leagueID, requesterUserID uuid.UUID) ([]InviteCodeListing, error) {
	if _, err := s.requireInviter(ctx, requesterUserID, leagueID); err != nil {
		return nil, err
	}

	list, err := s.stores.InviteCodes.ListByLeague(ctx, s.stores.DB, leagueID)
	if err != nil {
		return nil, storeError("list invite codes", err)
	}

	now := s.opts.now()
	creators := map[uuid.UUID]*Membership{}
	out := make([]InviteCodeListing, 0, len(list))
	for _, c := range list {
		creator, seen := creators[c.CreatedByID]
		if !seen {
			creator, err = s.creatorByID(ctx, c.CreatedByID)
			if err != nil {
				return nil, err
			}
			creators[c.CreatedByID] = creator
		}
		out = append(out, InviteCodeListing{InviteCode: c, Status: c.Status(now), Creator: creator})
	}
	return out, nil
}

func (s *InviteCodeService) creatorByID(ctx context.Context, membershipID uuid.UUID) (*Membership, error) {
	m, err := s.stores.Memberships.GetByID(ctx, s.stores.DB, membershipID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("get invite code creator", err)
	}
	return m, nil
}

func (s *InviteCodeService) requireInviter(ctx context.Context, userID, leagueID uuid.UUID) (*Membership, error) {
	m, err := s.stores.Memberships.Get(ctx, s.stores.DB, userID, leagueID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotLeagueMember
	}
	if err != nil {
		return nil, storeError("get member", err)
	}
	if !m.Role.CanInvite() {
		return nil, ErrInsufficientRole
	}
	return m, nil
}
