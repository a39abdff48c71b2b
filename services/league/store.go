package league

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Transactor runs fn inside a single store transaction: everything fn does
// through tx commits together or not at all.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// LeagueStore persists league rows. Missing rows are reported as
// gorm.ErrRecordNotFound.
type LeagueStore interface {
	Create(ctx context.Context, tx *gorm.DB, l *League) error
	Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*League, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]League, error)
}

// MembershipStore persists membership rows. Create fails with a duplicate-key
// error when (league, user) already exists.
type MembershipStore interface {
	Create(ctx context.Context, tx *gorm.DB, m *Membership) error
	Get(ctx context.Context, tx *gorm.DB, userID, leagueID uuid.UUID) (*Membership, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Membership, error)
	Exists(ctx context.Context, tx *gorm.DB, userID, leagueID uuid.UUID) (bool, error)
	ListByLeague(ctx context.Context, tx *gorm.DB, leagueID uuid.UUID) ([]Membership, error)
	ListByLeagues(ctx context.Context, tx *gorm.DB, leagueIDs []uuid.UUID) ([]Membership, error)
}

// InviteCodeStore persists invite codes. Supersede replaces every code the
// creator holds for the league with c inside its own transaction, and fails
// with a duplicate-key error when c.Code is already taken.
type InviteCodeStore interface {
	CodeExists(ctx context.Context, tx *gorm.DB, code string) (bool, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*InviteCode, error)
	Supersede(ctx context.Context, tx *gorm.DB, c *InviteCode) error
	ListByLeague(ctx context.Context, tx *gorm.DB, leagueID uuid.UUID) ([]InviteCode, error)
}

// Stores bundles the persistence collaborators of the services.
type Stores struct {
	DB          *gorm.DB
	Tx          Transactor
	Leagues     LeagueStore
	Memberships MembershipStore
	InviteCodes InviteCodeStore
}

// NewORMStores returns GORM-backed stores sharing orm.
func NewORMStores(orm *gorm.DB) Stores {
	return Stores{
		DB:          orm,
		Tx:          ormTransactor{db: orm},
		Leagues:     leagueORM{},
		Memberships: membershipORM{},
		InviteCodes: inviteCodeORM{},
	}
}

type ormTransactor struct {
	db *gorm.DB
}

func (t ormTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if t.db == nil {
		return errors.New("nil orm")
	}
	return t.db.WithContext(ctx).Transaction(fn)
}

type leagueORM struct{}

func (leagueORM) Create(ctx context.Context, tx *gorm.DB, l *League) error {
	model := newLeagueModel(l)
	return tx.WithContext(ctx).Create(&model).Error
}

func (leagueORM) Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*League, error) {
	var model leagueModel
	if err := tx.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, err
	}
	l := model.toLeague()
	return &l, nil
}

func (leagueORM) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]League, error) {
	var models []leagueModel
	err := tx.WithContext(ctx).
		Joins("JOIN memberships ON memberships.league_id = leagues.id").
		Where("memberships.user_id = ?", userID).
		Order("leagues.created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]League, 0, len(models))
	for _, m := range models {
		out = append(out, m.toLeague())
	}
	return out, nil
}

type membershipORM struct{}

func (membershipORM) Create(ctx context.Context, tx *gorm.DB, m *Membership) error {
	model := newMembershipModel(m)
	return tx.WithContext(ctx).Create(&model).Error
}

func (membershipORM) Get(ctx context.Context, tx *gorm.DB, userID, leagueID uuid.UUID) (*Membership, error) {
	var model membershipModel
	err := tx.WithContext(ctx).
		Where("league_id = ? AND user_id = ?", leagueID, userID).
		First(&model).Error
	if err != nil {
		return nil, err
	}
	m := model.toMembership()
	return &m, nil
}

func (membershipORM) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Membership, error) {
	var model membershipModel
	if err := tx.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, err
	}
	m := model.toMembership()
	return &m, nil
}

func (membershipORM) Exists(ctx context.Context, tx *gorm.DB, userID, leagueID uuid.UUID) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&membershipModel{}).
		Where("league_id = ? AND user_id = ?", leagueID, userID).
		Count(&count).Error
	return count > 0, err
}

func (membershipORM) ListByLeague(ctx context.Context, tx *gorm.DB, leagueID uuid.UUID) ([]Membership, error) {
	var models []membershipModel
	err := tx.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("joined_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]Membership, 0, len(models))
	for _, m := range models {
		out = append(out, m.toMembership())
	}
	return out, nil
}

func (membershipORM) ListByLeagues(ctx context.Context, tx *gorm.DB, leagueIDs []uuid.UUID) ([]Membership, error) {
	if len(leagueIDs) == 0 {
		return nil, nil
	}
	var models []membershipModel
	err := tx.WithContext(ctx).
		Where("league_id IN ?", leagueIDs).
		Order("joined_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]Membership, 0, len(models))
	for _, m := range models {
		out = append(out, m.toMembership())
	}
	return out, nil
}

type inviteCodeORM struct{}

func (inviteCodeORM) CodeExists(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&inviteCodeModel{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (inviteCodeORM) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*InviteCode, error) {
	var model inviteCodeModel
	if err := tx.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		return nil, err
	}
	c := model.toInviteCode()
	return &c, nil
}

// Supersede locks the creator's membership row first so concurrent calls for
// the same creator serialize and leave a single code behind.
func (inviteCodeORM) Supersede(ctx context.Context, tx *gorm.DB, c *InviteCode) error {
	model := newInviteCodeModel(c)
	return tx.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		var creator membershipModel
		if err := inner.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&creator, "id = ?", c.CreatedByID).Error; err != nil {
			return err
		}

		if err := inner.
			Where("league_id = ? AND created_by_id = ?", c.LeagueID, c.CreatedByID).
			Delete(&inviteCodeModel{}).Error; err != nil {
			return err
		}

		return inner.Create(&model).Error
	})
}

func (inviteCodeORM) ListByLeague(ctx context.Context, tx *gorm.DB, leagueID uuid.UUID) ([]InviteCode, error) {
	var models []inviteCodeModel
	err := tx.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]InviteCode, 0, len(models))
	for _, m := range models {
		out = append(out, m.toInviteCode())
	}
	return out, nil
}
