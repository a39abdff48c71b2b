package league

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	leaguesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "league",
		Name:      "leagues_created_total",
		Help:      "Leagues created together with their owner membership.",
	})
	inviteCodesMinted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "league",
		Name:      "invite_codes_minted_total",
		Help:      "Invite codes persisted.",
	})
	inviteCodeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "league",
		Name:      "invite_code_collisions_total",
		Help:      "Invite code candidates discarded because the code was taken.",
	})
	inviteRedemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "league",
		Name:      "invite_redemptions_total",
		Help:      "Invite code redemptions by outcome.",
	}, []string{"outcome"})
)

const (
	outcomeJoined   = "joined"
	outcomeInvalid  = "invalid"
	outcomeRevoked  = "revoked"
	outcomeExpired  = "expired"
	outcomeIsMember = "already_member"
	outcomeError    = "error"
)
