package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/pkg/db"
	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/league"
)

func TestIngestorBoundsEachRecord(t *testing.T) {
	bus := &fakeBus{}
	rec := &fakeRecorder{}
	ing, err := NewIngestor(bus, rec, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, ing.Start(context.Background()))

	ev := league.Event{ID: uuid.New(), Subject: league.SubjectLeagueCreated, ActorID: uuid.New(), LeagueID: uuid.New(), At: time.Now()}
	start := time.Now()
	require.NoError(t, bus.handler(context.Background(), ev.Subject, eventBytes(t, ev)))

	require.Len(t, rec.deadlines, 1)
	assert.WithinDuration(t, start.Add(recordTimeout), rec.deadlines[0], 5*time.Second)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

type fakeBus struct {
	subject string
	durable string
	handler func(ctx context.Context, subject string, data []byte) error
	closed  bool
	err     error
}

func (b *fakeBus) Subscribe(_ context.Context, subj, durable string, fn func(ctx context.Context, subject string, data []byte) error) (io.Closer, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.subject, b.durable, b.handler = subj, durable, fn
	return closerFunc(func() error { b.closed = true; return nil }), nil
}

type fakeRecorder struct {
	entries   []Entry
	deadlines []time.Time
	err       error
}

func (r *fakeRecorder) Record(ctx context.Context, e Entry) error {
	if deadline, ok := ctx.Deadline(); ok {
		r.deadlines = append(r.deadlines, deadline)
	}
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, e)
	return nil
}

func eventBytes(t *testing.T, ev league.Event) []byte {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	return data
}

func TestIngestorRecordsEvents(t *testing.T) {
	bus := &fakeBus{}
	rec := &fakeRecorder{}
	ing, err := NewIngestor(bus, rec, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, ing.Start(context.Background()))

	assert.Equal(t, league.SubjectAll, bus.subject)
	assert.Equal(t, durableName, bus.durable)

	actor, leagueID := uuid.New(), uuid.New()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := league.Event{
		ID:       uuid.New(),
		Subject:  league.SubjectMemberJoined,
		ActorID:  actor,
		LeagueID: leagueID,
		At:       at,
		Data:     map[string]any{"invite_code_id": "abc"},
	}

	require.NoError(t, bus.handler(context.Background(), league.SubjectMemberJoined, eventBytes(t, ev)))

	require.Len(t, rec.entries, 1)
	got := rec.entries[0]
	assert.Equal(t, actor.String(), got.Actor)
	assert.Equal(t, league.SubjectMemberJoined, got.Action)
	assert.Equal(t, ObjectFor(leagueID), got.Obj)
	assert.Equal(t, "abc", got.Details["invite_code_id"])
	assert.Equal(t, ev.ID.String(), got.Details["event_id"])
	assert.True(t, at.Equal(got.At))

	require.NoError(t, ing.Close())
	assert.True(t, bus.closed)
}

func TestIngestorDropsMalformedEvents(t *testing.T) {
	bus := &fakeBus{}
	rec := &fakeRecorder{}
	ing, err := NewIngestor(bus, rec, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, ing.Start(context.Background()))

	assert.NoError(t, bus.handler(context.Background(), league.SubjectLeagueCreated, []byte("{not json")))
	assert.NoError(t, bus.handler(context.Background(), league.SubjectLeagueCreated, eventBytes(t, league.Event{ID: uuid.New()})))
	assert.Empty(t, rec.entries)
}

func TestIngestorRetriesOnRecordFailure(t *testing.T) {
	bus := &fakeBus{}
	rec := &fakeRecorder{err: errors.New("db down")}
	ing, err := NewIngestor(bus, rec, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, ing.Start(context.Background()))

	err = bus.handler(context.Background(), league.SubjectLeagueCreated, eventBytes(t, league.Event{
		ID: uuid.New(), LeagueID: uuid.New(),
	}))
	assert.Error(t, err)
}

func TestSubjectFillsMissingAction(t *testing.T) {
	entry, err := entryFromEvent(league.SubjectInviteCreated, eventBytes(t, league.Event{LeagueID: uuid.New()}))
	require.NoError(t, err)
	assert.Equal(t, league.SubjectInviteCreated, entry.Action)
	assert.False(t, entry.At.IsZero())
}

func TestNewIngestorValidates(t *testing.T) {
	_, err := NewIngestor(nil, &fakeRecorder{}, zerolog.Nop())
	require.Error(t, err)
	_, err = NewIngestor(&fakeBus{}, nil, zerolog.Nop())
	require.Error(t, err)

	ing, err := NewIngestor(&fakeBus{err: errors.New("no stream")}, &fakeRecorder{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Error(t, ing.Start(context.Background()))
	assert.NoError(t, ing.Close())
}

func TestStorePostgres(t *testing.T) {
	dsn := os.Getenv("LEAGUE_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("LEAGUE_TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool))

	store, err := NewStore(pool)
	require.NoError(t, err)

	obj := ObjectFor(uuid.New())
	require.NoError(t, store.Record(ctx, Entry{Actor: "tester", Action: league.SubjectLeagueCreated, Obj: obj, Details: map[string]any{"name": "x"}}))

	entries, err := store.List(ctx, obj, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tester", entries[0].Actor)
	assert.Equal(t, "x", entries[0].Details["name"])
}
