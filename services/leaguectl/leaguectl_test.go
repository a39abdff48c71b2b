package leaguectl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/audit"
	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/league"
)

type fakeLeagues struct {
	created league.CreateLeagueInput
	owner   uuid.UUID
	league  *league.League
	err     error
}

func (f *fakeLeagues) CreateLeague(_ context.Context, userID uuid.UUID, in league.CreateLeagueInput) (*league.League, error) {
	f.owner, f.created = userID, in
	return f.league, f.err
}

func (f *fakeLeagues) GetLeagueByID(context.Context, uuid.UUID) (*league.League, error) {
	return f.league, f.err
}

func (f *fakeLeagues) ListLeaguesForUser(context.Context, uuid.UUID) ([]league.League, error) {
	return nil, f.err
}

type fakeInvites struct {
	code     *league.InviteCode
	redeemed string
	league   *league.League
	err      error
}

func (f *fakeInvites) CreateInviteCode(context.Context, uuid.UUID, uuid.UUID) (*league.InviteCode, error) {
	return f.code, f.err
}

func (f *fakeInvites) UseInviteCode(_ context.Context, code string, _ uuid.UUID) (*league.League, error) {
	f.redeemed = code
	return f.league, f.err
}

func (f *fakeInvites) GetInviteCodeCreator(context.Context, uuid.UUID, uuid.UUID) (*league.Membership, error) {
	return nil, f.err
}

func (f *fakeInvites) ListInviteCodes(context.Context, uuid.UUID, uuid.UUID) ([]league.InviteCodeListing, error) {
	return nil, f.err
}

type fakeAudit struct {
	obj   string
	limit int
}

func (f *fakeAudit) List(_ context.Context, obj string, limit int) ([]audit.Entry, error) {
	f.obj, f.limit = obj, limit
	return []audit.Entry{{ID: 1, Actor: "a", Action: league.SubjectLeagueCreated, Obj: obj}}, nil
}

type env struct {
	leagues  *fakeLeagues
	invites  *fakeInvites
	audit    *fakeAudit
	migrated bool
	closed   bool
}

func run(t *testing.T, e *env, args ...string) (string, error) {
	t.Helper()
	connect := func(context.Context, string) (*Backend, error) {
		return &Backend{
			Leagues: e.leagues,
			Invites: e.invites,
			Audit:   e.audit,
			Migrate: func(context.Context) error { e.migrated = true; return nil },
			Close:   func() { e.closed = true },
		}, nil
	}

	var out bytes.Buffer
	cmd := NewRootCommand(connect, &out)
	cmd.SetArgs(append([]string{"--dsn", "postgres://test"}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func newEnv() *env {
	return &env{leagues: &fakeLeagues{}, invites: &fakeInvites{}, audit: &fakeAudit{}}
}

func TestMigrate(t *testing.T) {
	e := newEnv()
	out, err := run(t, e, "migrate")
	require.NoError(t, err)
	assert.True(t, e.migrated)
	assert.True(t, e.closed)
	assert.Contains(t, out, "migrations applied")
}

func TestLeagueCreateYAML(t *testing.T) {
	e := newEnv()
	user, season := uuid.New(), uuid.New()
	e.leagues.league = &league.League{ID: uuid.New(), SeasonID: season, Name: "Island", CreatedByID: user}

	out, err := run(t, e, "league", "create", "--user", user.String(), "--season", season.String(), "--name", "Island", "--description", "vote")
	require.NoError(t, err)

	assert.Equal(t, user, e.leagues.owner)
	require.NotNil(t, e.leagues.created.Description)
	assert.Equal(t, "vote", *e.leagues.created.Description)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Island", doc["name"])
	assert.Equal(t, season.String(), doc["season_id"])
}

func TestLeagueCreateWithoutDescription(t *testing.T) {
	e := newEnv()
	e.leagues.league = &league.League{ID: uuid.New()}

	_, err := run(t, e, "league", "create", "--user", uuid.NewString(), "--season", uuid.NewString(), "--name", "x")
	require.NoError(t, err)
	assert.Nil(t, e.leagues.created.Description)
}

func TestInviteCreateJSON(t *testing.T) {
	e := newEnv()
	e.invites.code = &league.InviteCode{ID: uuid.New(), Code: "ABCD1234", ExpiresAt: time.Now().Add(time.Hour)}

	out, err := run(t, e, "-o", "json", "invite", "create", "--league", uuid.NewString(), "--user", uuid.NewString())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "ABCD1234", doc["code"])
}

func TestInviteUsePassesCodeVerbatim(t *testing.T) {
	e := newEnv()
	e.invites.league = &league.League{ID: uuid.New()}

	_, err := run(t, e, "invite", "use", "--code", "abcd1234", "--user", uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, "abcd1234", e.invites.redeemed)
}

func TestServiceErrorsPropagate(t *testing.T) {
	e := newEnv()
	e.invites.err = league.ErrInsufficientRole

	_, err := run(t, e, "invite", "list", "--league", uuid.NewString(), "--user", uuid.NewString())
	assert.ErrorIs(t, err, league.ErrForbidden)
}

func TestAuditTailFiltersByLeague(t *testing.T) {
	e := newEnv()
	leagueID := uuid.New()

	out, err := run(t, e, "audit", "tail", "--league", leagueID.String(), "--limit", "5")
	require.NoError(t, err)
	assert.Equal(t, audit.ObjectFor(leagueID), e.audit.obj)
	assert.Equal(t, 5, e.audit.limit)
	assert.Contains(t, out, league.SubjectLeagueCreated)
}

func TestArgumentValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad league id", args: []string{"league", "show", "nope"}},
		{name: "missing flag", args: []string{"invite", "create", "--league", uuid.NewString()}},
		{name: "bad output", args: []string{"-o", "xml", "league", "show", uuid.NewString()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			e.leagues.league = &league.League{ID: uuid.New()}
			_, err := run(t, e, tt.args...)
			require.Error(t, err)
		})
	}
}

func TestRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	cmd := NewRootCommand(func(context.Context, string) (*Backend, error) {
		return nil, errors.New("should not connect")
	}, &bytes.Buffer{})
	cmd.SetArgs([]string{"migrate"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "0123456789abcdef")
	out, err := run(t, newEnv(), "token", "--user", uuid.NewString())
	require.NoError(t, err)
	assert.Regexp(t, `^[\w-]+\.[\w-]+\.[\w-]+\n$`, out)
}
