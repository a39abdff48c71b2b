package league

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event subjects published after a change commits.
const (
	StreamName = "LEAGUE_EVENTS"

	SubjectLeagueCreated = "league.created"
	SubjectMemberJoined  = "league.member_joined"
	SubjectInviteCreated = "league.invite_created"

	SubjectAll = "league.>"
)

// Publisher delivers domain events. pkg/bus.Bus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, subject, msgID string, v any) error
}

// Event is the payload of every league event.
type Event struct {
	ID       uuid.UUID      `json:"id"`
	Subject  string         `json:"subject"`
	ActorID  uuid.UUID      `json:"actor_id"`
	LeagueID uuid.UUID      `json:"league_id"`
	At       time.Time      `json:"at"`
	Data     map[string]any `json:"data,omitempty"`
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, string, any) error { return nil }
