package league

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMember(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	l := f.createLeague(t, owner)

	ok, err := f.svc.Memberships.IsMember(context.Background(), owner, l.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.Memberships.IsMember(context.Background(), uuid.New(), l.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetMember(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	l := f.createLeague(t, owner)

	m, err := f.svc.Memberships.GetMember(context.Background(), owner, l.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, m.Role)

	_, err = f.svc.Memberships.GetMember(context.Background(), uuid.New(), l.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateMember(t *testing.T) {
	f := newFixture(t)
	l := f.createLeague(t, uuid.New())
	user := uuid.New()
	codeID := uuid.New()

	m, err := f.svc.Memberships.CreateMember(context.Background(), user, l.ID, RoleAdmin, &codeID)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, m.Role)
	require.NotNil(t, m.InviteCodeID)
	assert.Equal(t, codeID, *m.InviteCodeID)
	assert.Equal(t, f.clock.Now(), m.JoinedAt)
	assert.Len(t, f.db.membersOf(l.ID), 2)
}

func TestCreateMemberConflict(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	l := f.createLeague(t, owner)

	_, err := f.svc.Memberships.CreateMember(context.Background(), owner, l.ID, RoleMember, nil)
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, f.db.memberCount())
}

func TestCreateMemberRaceTranslatesUniqueViolation(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	l := f.createLeague(t, owner)

	// The pre-check misses the row, as it would for a concurrent insert.
	f.db.hideMembers = true

	_, err := f.svc.Memberships.CreateMember(context.Background(), owner, l.ID, RoleMember, nil)
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, f.db.memberCount())
}

func TestCreateMemberRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	l := f.createLeague(t, uuid.New())

	_, err := f.svc.Memberships.CreateMember(context.Background(), uuid.New(), l.ID, Role("CAPTAIN"), nil)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = f.svc.Memberships.CreateMember(context.Background(), uuid.Nil, l.ID, RoleMember, nil)
	assert.ErrorIs(t, err, ErrUserRequired)
}

func TestCreateMemberStoreFailure(t *testing.T) {
	f := newFixture(t)
	l := f.createLeague(t, uuid.New())
	f.db.failMemberCreate = errors.New("timeout")

	_, err := f.svc.Memberships.CreateMember(context.Background(), uuid.New(), l.ID, RoleMember, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestListMembers(t *testing.T) {
	f := newFixture(t)
	l := f.createLeague(t, uuid.New())
	f.clock.Advance(1)
	joiner := uuid.New()
	_, err := f.svc.Memberships.CreateMember(context.Background(), joiner, l.ID, RoleMember, nil)
	require.NoError(t, err)

	members, err := f.svc.Memberships.ListMembers(context.Background(), l.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, RoleOwner, members[0].Role)
	assert.Equal(t, joiner, members[1].UserID)

	_, err = f.svc.Memberships.ListMembers(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrLeagueNotFound)
}
