// Package league implements league creation, membership, and the invite-code
// lifecycle that admits new members.
package league

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a member's standing within a league.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// IsValid returns true if the role is a known league role.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	default:
		return false
	}
}

// CanInvite reports whether the role may mint invite codes.
func (r Role) CanInvite() bool {
	return r == RoleOwner || r == RoleAdmin
}

// League is a competitive group tied to a season.
type League struct {
	ID          uuid.UUID    `json:"id"`
	SeasonID    uuid.UUID    `json:"season_id"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	CreatedByID uuid.UUID    `json:"created_by_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Members     []Membership `json:"members"`
}

// Owner returns the league's OWNER membership when members are loaded.
func (l League) Owner() (Membership, bool) {
	for _, m := range l.Members {
		if m.Role == RoleOwner {
			return m, true
		}
	}
	return Membership{}, false
}

// Membership ties one user to one league.
type Membership struct {
	ID           uuid.UUID  `json:"id"`
	LeagueID     uuid.UUID  `json:"league_id"`
	UserID       uuid.UUID  `json:"user_id"`
	Role         Role       `json:"role"`
	JoinedAt     time.Time  `json:"joined_at"`
	InviteCodeID *uuid.UUID `json:"invite_code_id,omitempty"`
}

// InviteCodeStatus is the derived lifecycle state of an invite code.
type InviteCodeStatus string

const (
	InviteCodeActive  InviteCodeStatus = "ACTIVE"
	InviteCodeExpired InviteCodeStatus = "EXPIRED"
	InviteCodeRevoked InviteCodeStatus = "REVOKED"
)

// InviteCode admits any number of users to a league until it expires or is revoked.
// CreatedByID references the creator's Membership, not the user.
type InviteCode struct {
	ID          uuid.UUID  `json:"id"`
	LeagueID    uuid.UUID  `json:"league_id"`
	CreatedByID uuid.UUID  `json:"created_by_id"`
	Code        string     `json:"code"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

// Status evaluates the code at now. Revocation wins over expiry, and a code
// is expired from the instant now reaches ExpiresAt.
func (c InviteCode) Status(now time.Time) InviteCodeStatus {
	switch {
	case c.RevokedAt != nil:
		return InviteCodeRevoked
	case !now.Before(c.ExpiresAt):
		return InviteCodeExpired
	default:
		return InviteCodeActive
	}
}

// Business constraints
const (
	MaxLeagueNameLength = 100
	MaxLeagueDescLength = 500
)

// CreateLeagueInput carries the descriptive fields of a new league.
type CreateLeagueInput struct {
	SeasonID    uuid.UUID `json:"season_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

func (in CreateLeagueInput) normalize() (CreateLeagueInput, error) {
	if in.SeasonID == uuid.Nil {
		return CreateLeagueInput{}, ErrSeasonRequired
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return CreateLeagueInput{}, ErrLeagueNameRequired
	}
	if len([]rune(in.Name)) > MaxLeagueNameLength {
		return CreateLeagueInput{}, ErrLeagueNameTooLong
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if len([]rune(desc)) > MaxLeagueDescLength {
			return CreateLeagueInput{}, ErrLeagueDescTooLong
		}
		if desc == "" {
			in.Description = nil
		} else {
			in.Description = &desc
		}
	}
	return in, nil
}
