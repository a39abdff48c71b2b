package league

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// InviteCodeTTL is how long a freshly minted invite code stays redeemable.
	InviteCodeTTL = 30 * time.Minute
	// DefaultMaxCodeAttempts bounds the number of candidates drawn per mint.
	DefaultMaxCodeAttempts = 64
)

const tracerName = "github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/league"

type options struct {
	now         func() time.Time
	log         zerolog.Logger
	codes       CodeSource
	maxAttempts int
	publisher   Publisher
	tracer      trace.Tracer
}

// Option configures the services returned by New.
type Option func(*options)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger used by the services.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithCodeSource replaces the random invite code generator.
func WithCodeSource(src CodeSource) Option {
	return func(o *options) { o.codes = src }
}

// WithMaxCodeAttempts bounds how many candidates CreateInviteCode draws
// before giving up with ErrCodeSpaceExhausted.
func WithMaxCodeAttempts(n int) Option {
	return func(o *options) { o.maxAttempts = n }
}

// WithPublisher enables domain events.
func WithPublisher(p Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// Services groups the league, membership and invite code services over one
// set of stores.
type Services struct {
	Leagues     *LeagueService
	Memberships *MembershipService
	Invites     *InviteCodeService
}

// New wires the services together.
func New(stores Stores, opts ...Option) (*Services, error) {
	if stores.Tx == nil || stores.Leagues == nil || stores.Memberships == nil || stores.InviteCodes == nil {
		return nil, errors.New("league: incomplete stores")
	}

	o := options{
		now:         time.Now,
		log:         zerolog.Nop(),
		maxAttempts: DefaultMaxCodeAttempts,
		publisher:   nopPublisher{},
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now == nil {
		return nil, errors.New("league: nil clock")
	}
	if o.maxAttempts <= 0 {
		return nil, errors.New("league: max code attempts must be positive")
	}
	if o.codes == nil {
		o.codes = NewRandomCodeSource(nil)
	}
	if o.publisher == nil {
		o.publisher = nopPublisher{}
	}

	members := &MembershipService{stores: stores, opts: &o}
	leagues := &LeagueService{stores: stores, opts: &o, members: members}
	invites := &InviteCodeService{stores: stores, opts: &o, members: members, leagues: leagues}

	return &Services{Leagues: leagues, Memberships: members, Invites: invites}, nil
}

// emit publishes after commit. Delivery failures are logged, never returned.
func (o *options) emit(ctx context.Context, subject string, actor, leagueID uuid.UUID, data map[string]any) {
	ev := Event{
		ID:       uuid.New(),
		Subject:  subject,
		ActorID:  actor,
		LeagueID: leagueID,
		At:       o.now().UTC(),
		Data:     data,
	}
	if err := o.publisher.Publish(ctx, subject, ev.ID.String(), ev); err != nil {
		o.log.Warn().Err(err).Str("subject", subject).Str("league_id", leagueID.String()).Msg("publish league event")
	}
}
