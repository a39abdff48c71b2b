// Package audit records league events into the audit table.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/pkg/db"
	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/league"
)

const (
	durableName = "league-audit"

	// recordTimeout bounds one audit insert.
	recordTimeout = 10 * time.Second
)

// Entry is one audit row.
type Entry struct {
	ID      int64             `db:"id" json:"id" yaml:"id"`
	Actor   string            `db:"actor" json:"actor" yaml:"actor"`
	Action  string            `db:"action" json:"action" yaml:"action"`
	Obj     string            `db:"obj" json:"obj" yaml:"obj"`
	Details datatypes.JSONMap `db:"details" json:"details" yaml:"details"`
	At      time.Time         `db:"at" json:"at" yaml:"at"`
}

// Subscriber delivers bus messages. pkg/bus.Bus satisfies it.
type Subscriber interface {
	Subscribe(ctx context.Context, subj, durable string, fn func(ctx context.Context, subject string, data []byte) error) (io.Closer, error)
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Store reads and writes the audit table through the pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store over pool.
func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, errors.New("database pool is required")
	}
	return &Store{pool: pool}, nil
}

// Record inserts e. ID and At are assigned by the database when zero.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Details == nil {
		e.Details = datatypes.JSONMap{}
	}
	details, err := json.Marshal(e.Details)
	if err != nil {
		return err
	}

	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err = db.Exec(ctx, s.pool, `
INSERT INTO audit (actor, action, obj, details, at)
VALUES ($1, $2, $3, $4::jsonb, $5)
`, e.Actor, e.Action, e.Obj, string(details), at)
	return err
}

// List returns the newest entries first. An empty obj matches every entry.
func (s *Store) List(ctx context.Context, obj string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Entry
	err := db.Select(ctx, s.pool, &out, `
SELECT id, actor, action, obj, details, at
FROM audit
WHERE $1 = '' OR obj = $1
ORDER BY id DESC
LIMIT $2
`, obj, limit)
	return out, err
}

// Ingestor turns league events from the bus into audit entries.
type Ingestor struct {
	sub Subscriber
	rec Recorder
	log zerolog.Logger

	subMu  sync.Mutex
	closer io.Closer
}

// NewIngestor constructs an Ingestor for the provided dependencies.
func NewIngestor(sub Subscriber, rec Recorder, log zerolog.Logger) (*Ingestor, error) {
	if sub == nil {
		return nil, errors.New("bus is required")
	}
	if rec == nil {
		return nil, errors.New("recorder is required")
	}
	return &Ingestor{sub: sub, rec: rec, log: log}, nil
}

// Start subscribes to every league event and records them until ctx is cancelled.
func (i *Ingestor) Start(ctx context.Context) error {
	if i == nil {
		return errors.New("nil ingestor")
	}

	closer, err := i.sub.Subscribe(ctx, league.SubjectAll, durableName, i.handle)
	if err != nil {
		return err
	}

	i.subMu.Lock()
	i.closer = closer
	i.subMu.Unlock()
	return nil
}

// Close stops the underlying subscription if it was created.
func (i *Ingestor) Close() error {
	if i == nil {
		return nil
	}

	i.subMu.Lock()
	defer i.subMu.Unlock()

	if i.closer == nil {
		return nil
	}
	err := i.closer.Close()
	i.closer = nil
	return err
}

func (i *Ingestor) handle(ctx context.Context, subject string, data []byte) error {
	entry, err := entryFromEvent(subject, data)
	if err != nil {
		// Malformed payloads are dropped rather than redelivered forever.
		i.log.Warn().Err(err).Str("subject", subject).Msg("skip audit event")
		return nil
	}
	err = db.WithTimeout(ctx, recordTimeout, func(ctx context.Context) error {
		return i.rec.Record(ctx, entry)
	})
	if err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	i.log.Debug().Str("action", entry.Action).Str("obj", entry.Obj).Msg("audit recorded")
	return nil
}

// ObjectFor names a league in the obj column.
func ObjectFor(leagueID uuid.UUID) string {
	return "league/" + leagueID.String()
}

func entryFromEvent(subject string, data []byte) (Entry, error) {
	var evt league.Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return Entry{}, err
	}
	if evt.LeagueID == uuid.Nil {
		return Entry{}, errors.New("league_id missing from event")
	}
	if evt.Subject == "" {
		evt.Subject = subject
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	details := datatypes.JSONMap{"event_id": evt.ID.String()}
	for k, v := range evt.Data {
		details[k] = v
	}

	return Entry{
		Actor:   evt.ActorID.String(),
		Action:  evt.Subject,
		Obj:     ObjectFor(evt.LeagueID),
		Details: details,
		At:      evt.At,
	}, nil
}
