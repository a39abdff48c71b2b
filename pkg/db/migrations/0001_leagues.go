package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upLeagues, downLeagues)
}

type League struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SeasonID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:text;not null"`
	Description *string   `gorm:"type:text"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type Membership struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LeagueID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_league_user,priority:1"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_league_user,priority:2;index"`
	Role         string     `gorm:"type:text;not null"`
	InviteCodeID *uuid.UUID `gorm:"type:uuid"`
	JoinedAt     time.Time  `gorm:"type:timestamptz;not null;default:now()"`
	League       League     `gorm:"foreignKey:LeagueID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type InviteCode struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LeagueID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_invite_codes_league_creator,priority:1"`
	CreatedByID uuid.UUID  `gorm:"type:uuid;not null;index:idx_invite_codes_league_creator,priority:2"`
	Code        string     `gorm:"type:varchar(8);uniqueIndex;not null"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;not null;default:now()"`
	ExpiresAt   time.Time  `gorm:"type:timestamptz;not null"`
	RevokedAt   *time.Time `gorm:"type:timestamptz"`
	League      League     `gorm:"foreignKey:LeagueID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedBy   Membership `gorm:"foreignKey:CreatedByID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Audit struct {
	ID      int64             `gorm:"type:bigserial;primaryKey"`
	Actor   string            `gorm:"type:text;not null"`
	Action  string            `gorm:"type:text;not null"`
	Obj     string            `gorm:"type:text"`
	Details datatypes.JSONMap `gorm:"type:jsonb"`
	At      time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (Audit) TableName() string { return "audit" }

func openTx(tx *sql.Tx) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
}

func upLeagues(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := openTx(tx)
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(
		&League{},
		&Membership{},
		&InviteCode{},
		&Audit{},
	); err != nil {
		return err
	}

	return nil
}

func downLeagues(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := openTx(tx)
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).Migrator().DropTable(
		&Audit{},
		&InviteCode{},
		&Membership{},
		&League{},
	)
}
