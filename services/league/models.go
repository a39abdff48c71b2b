package league

import (
	"time"

	"github.com/google/uuid"
)

type leagueModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SeasonID    uuid.UUID `gorm:"type:uuid;not null"`
	Name        string    `gorm:"type:text;not null"`
	Description *string   `gorm:"type:text"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null"`
}

func (leagueModel) TableName() string { return "leagues" }

func newLeagueModel(l *League) leagueModel {
	return leagueModel{
		ID:          l.ID,
		SeasonID:    l.SeasonID,
		Name:        l.Name,
		Description: l.Description,
		CreatedByID: l.CreatedByID,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func (m leagueModel) toLeague() League {
	return League{
		ID:          m.ID,
		SeasonID:    m.SeasonID,
		Name:        m.Name,
		Description: m.Description,
		CreatedByID: m.CreatedByID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type membershipModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LeagueID     uuid.UUID  `gorm:"type:uuid;not null"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null"`
	Role         string     `gorm:"type:text;not null"`
	InviteCodeID *uuid.UUID `gorm:"type:uuid"`
	JoinedAt     time.Time  `gorm:"type:timestamptz;not null"`
}

func (membershipModel) TableName() string { return "memberships" }

func newMembershipModel(m *Membership) membershipModel {
	return membershipModel{
		ID:           m.ID,
		LeagueID:     m.LeagueID,
		UserID:       m.UserID,
		Role:         string(m.Role),
		InviteCodeID: m.InviteCodeID,
		JoinedAt:     m.JoinedAt,
	}
}

func (m membershipModel) toMembership() Membership {
	return Membership{
		ID:           m.ID,
		LeagueID:     m.LeagueID,
		UserID:       m.UserID,
		Role:         Role(m.Role),
		JoinedAt:     m.JoinedAt,
		InviteCodeID: m.InviteCodeID,
	}
}

type inviteCodeModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LeagueID    uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedByID uuid.UUID  `gorm:"type:uuid;not null"`
	Code        string     `gorm:"type:varchar(8);not null"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;not null"`
	ExpiresAt   time.Time  `gorm:"type:timestamptz;not null"`
	RevokedAt   *time.Time `gorm:"type:timestamptz"`
}

func (inviteCodeModel) TableName() string { return "invite_codes" }

func newInviteCodeModel(c *InviteCode) inviteCodeModel {
	return inviteCodeModel{
		ID:          c.ID,
		LeagueID:    c.LeagueID,
		CreatedByID: c.CreatedByID,
		Code:        c.Code,
		CreatedAt:   c.CreatedAt,
		ExpiresAt:   c.ExpiresAt,
		RevokedAt:   c.RevokedAt,
	}
}

func (m inviteCodeModel) toInviteCode() InviteCode {
	return InviteCode{
		ID:          m.ID,
		LeagueID:    m.LeagueID,
		CreatedByID: m.CreatedByID,
		Code:        m.Code,
		CreatedAt:   m.CreatedAt,
		ExpiresAt:   m.ExpiresAt,
		RevokedAt:   m.RevokedAt,
	}
}
