package league

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memDB is an in-memory stand-in for the relational store. Transactions
// snapshot the tables and restore them when the callback fails.
type memDB struct {
	mu      sync.Mutex
	leagues map[uuid.UUID]League
	members map[uuid.UUID]Membership
	codes   map[uuid.UUID]InviteCode

	// fault injection
	failLeagueCreate error
	failMemberCreate error
	failSupersede    error
	hideMembers      bool
	hideCodes        bool

	memberBatches int
}

func newMemDB() *memDB {
	return &memDB{
		leagues: map[uuid.UUID]League{},
		members: map[uuid.UUID]Membership{},
		codes:   map[uuid.UUID]InviteCode{},
	}
}

func (m *memDB) stores() Stores {
	return Stores{
		Tx:          memTx{m},
		Leagues:     memLeagues{m},
		Memberships: memMembers{m},
		InviteCodes: memCodes{m},
	}
}

func (m *memDB) snapshot() (map[uuid.UUID]League, map[uuid.UUID]Membership, map[uuid.UUID]InviteCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := make(map[uuid.UUID]League, len(m.leagues))
	for k, v := range m.leagues {
		l[k] = v
	}
	mb := make(map[uuid.UUID]Membership, len(m.members))
	for k, v := range m.members {
		mb[k] = v
	}
	c := make(map[uuid.UUID]InviteCode, len(m.codes))
	for k, v := range m.codes {
		c[k] = v
	}
	return l, mb, c
}

func (m *memDB) restore(l map[uuid.UUID]League, mb map[uuid.UUID]Membership, c map[uuid.UUID]InviteCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leagues, m.members, m.codes = l, mb, c
}

func (m *memDB) membersOf(leagueID uuid.UUID) []Membership {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Membership
	for _, mb := range m.members {
		if mb.LeagueID == leagueID {
			out = append(out, mb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out
}

func (m *memDB) codesBy(leagueID, creatorID uuid.UUID) []InviteCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []InviteCode
	for _, c := range m.codes {
		if c.LeagueID == leagueID && c.CreatedByID == creatorID {
			out = append(out, c)
		}
	}
	return out
}

func (m *memDB) insertCode(c InviteCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[c.ID] = c
}

func (m *memDB) leagueCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.leagues)
}

func (m *memDB) memberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.members)
}

type memTx struct{ db *memDB }

func (t memTx) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	l, mb, c := t.db.snapshot()
	if err := fn(nil); err != nil {
		t.db.restore(l, mb, c)
		return err
	}
	return nil
}

type memLeagues struct{ db *memDB }

func (s memLeagues) Create(_ context.Context, _ *gorm.DB, l *League) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.failLeagueCreate != nil {
		return s.db.failLeagueCreate
	}
	if _, ok := s.db.leagues[l.ID]; ok {
		return gorm.ErrDuplicatedKey
	}
	row := *l
	row.Members = nil
	s.db.leagues[l.ID] = row
	return nil
}

func (s memLeagues) Get(_ context.Context, _ *gorm.DB, id uuid.UUID) (*League, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	l, ok := s.db.leagues[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (s memLeagues) ListByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]League, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []League
	for _, mb := range s.db.members {
		if mb.UserID == userID {
			out = append(out, s.db.leagues[mb.LeagueID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memMembers struct{ db *memDB }

func (s memMembers) Create(_ context.Context, _ *gorm.DB, m *Membership) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.failMemberCreate != nil {
		return s.db.failMemberCreate
	}
	if _, ok := s.db.leagues[m.LeagueID]; !ok {
		return errors.New("foreign key violation: league")
	}
	for _, existing := range s.db.members {
		if existing.LeagueID == m.LeagueID && existing.UserID == m.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	s.db.members[m.ID] = *m
	return nil
}

func (s memMembers) Get(_ context.Context, _ *gorm.DB, userID, leagueID uuid.UUID) (*Membership, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, m := range s.db.members {
		if m.LeagueID == leagueID && m.UserID == userID {
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s memMembers) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*Membership, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m, ok := s.db.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (s memMembers) Exists(_ context.Context, _ *gorm.DB, userID, leagueID uuid.UUID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.hideMembers {
		return false, nil
	}
	for _, m := range s.db.members {
		if m.LeagueID == leagueID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s memMembers) ListByLeague(_ context.Context, _ *gorm.DB, leagueID uuid.UUID) ([]Membership, error) {
	return s.db.membersOf(leagueID), nil
}

func (s memMembers) ListByLeagues(_ context.Context, _ *gorm.DB, leagueIDs []uuid.UUID) ([]Membership, error) {
	s.db.mu.Lock()
	s.db.memberBatches++
	s.db.mu.Unlock()

	var out []Membership
	for _, id := range leagueIDs {
		out = append(out, s.db.membersOf(id)...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

type memCodes struct{ db *memDB }

func (s memCodes) CodeExists(_ context.Context, _ *gorm.DB, code string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.hideCodes {
		return false, nil
	}
	for _, c := range s.db.codes {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s memCodes) GetByCode(_ context.Context, _ *gorm.DB, code string) (*InviteCode, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.codes {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s memCodes) Supersede(_ context.Context, _ *gorm.DB, c *InviteCode) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.failSupersede != nil {
		return s.db.failSupersede
	}

	next := make(map[uuid.UUID]InviteCode, len(s.db.codes))
	for id, existing := range s.db.codes {
		if existing.LeagueID == c.LeagueID && existing.CreatedByID == c.CreatedByID {
			continue
		}
		if existing.Code == c.Code {
			return gorm.ErrDuplicatedKey
		}
		next[id] = existing
	}
	next[c.ID] = *c
	s.db.codes = next
	return nil
}

func (s memCodes) ListByLeague(_ context.Context, _ *gorm.DB, leagueID uuid.UUID) ([]InviteCode, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []InviteCode
	for _, c := range s.db.codes {
		if c.LeagueID == leagueID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// fakeClock advances only when told to.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// seqCodes replays a fixed list of candidates, then repeats the last one.
type seqCodes struct {
	mu    sync.Mutex
	codes []string
	drawn int
}

func (s *seqCodes) NextCode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.drawn
	if i >= len(s.codes) {
		i = len(s.codes) - 1
	}
	s.drawn++
	return s.codes[i], nil
}

func (s *seqCodes) Drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawn
}

type recordedEvent struct {
	subject string
	event   Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, subject, _ string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev, _ := v.(Event)
	p.events = append(p.events, recordedEvent{subject: subject, event: ev})
	return p.err
}

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.subject)
	}
	return out
}
