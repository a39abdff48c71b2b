// Package api exposes leagues, memberships and invite codes over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/league"
)

// Leagues is the league service surface used by the handlers.
type Leagues interface {
	CreateLeague(ctx context.Context, userID uuid.UUID, in league.CreateLeagueInput) (*league.League, error)
	GetLeagueByID(ctx context.Context, leagueID uuid.UUID) (*league.League, error)
	ListLeaguesForUser(ctx context.Context, userID uuid.UUID) ([]league.League, error)
}

// Members is the membership service surface used by the handlers.
type Members interface {
	IsMember(ctx context.Context, userID, leagueID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, leagueID uuid.UUID) ([]league.Membership, error)
}

// Invites is the invite code service surface used by the handlers.
type Invites interface {
	CreateInviteCode(ctx context.Context, leagueID, creatorUserID uuid.UUID) (*league.InviteCode, error)
	UseInviteCode(ctx context.Context, code string, userID uuid.UUID) (*league.League, error)
	GetInviteCodeCreator(ctx context.Context, userID, leagueID uuid.UUID) (*league.Membership, error)
	ListInviteCodes(ctx context.Context, leagueID, requesterUserID uuid.UUID) ([]league.InviteCodeListing, error)
}

// Config controls runtime behaviour for the API handlers.
type Config struct {
	SigningKey     []byte
	AllowedOrigins []string
	Logger         zerolog.Logger
	// Ready reports whether dependencies can serve traffic. Nil means always ready.
	Ready func(ctx context.Context) error
	// Middleware wraps the whole router, typically tracing and request logging.
	Middleware func(http.Handler) http.Handler
}

// API wires the league services into HTTP handlers.
type API struct {
	leagues    Leagues
	members    Members
	invites    Invites
	signingKey []byte
	origins    []string
	log        zerolog.Logger
	ready      func(ctx context.Context) error
	wrap       func(http.Handler) http.Handler
}

// New builds an API over the given services.
func New(leagues Leagues, members Members, invites Invites, cfg Config) (*API, error) {
	if leagues == nil || members == nil || invites == nil {
		return nil, errors.New("league services are required")
	}
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("signing key is required")
	}

	return &API{
		leagues:    leagues,
		members:    members,
		invites:    invites,
		signingKey: cfg.SigningKey,
		origins:    cfg.AllowedOrigins,
		log:        cfg.Logger,
		ready:      cfg.Ready,
		wrap:       cfg.Middleware,
	}, nil
}

// NewFromServices is New over a league.Services bundle.
func NewFromServices(svc *league.Services, cfg Config) (*API, error) {
	if svc == nil {
		return nil, errors.New("league services are required")
	}
	return New(svc.Leagues, svc.Memberships, svc.Invites, cfg)
}

// Routes constructs the chi router containing all API endpoints.
func (a *API) Routes() (http.Handler, error) {
	if a == nil {
		return nil, errors.New("nil api")
	}

	allowed := a.origins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", a.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(a.requireUser)

		r.Post("/leagues", a.handleCreateLeague)
		r.Get("/leagues", a.handleListMyLeagues)
		r.Route("/leagues/{leagueID}", func(r chi.Router) {
			r.Get("/", a.handleGetLeague)
			r.Get("/members", a.handleListMembers)
			r.Post("/invite-codes", a.handleCreateInviteCode)
			r.Get("/invite-codes", a.handleListInviteCodes)
			r.Get("/invite-codes/creators/{userID}", a.handleInviteCodeCreator)
		})
		r.Post("/invite-codes/redeem", a.handleRedeemInviteCode)
	})

	if a.wrap != nil {
		return a.wrap(r), nil
	}
	return r, nil
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if a.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.ready(ctx); err != nil {
			a.log.Warn().Err(err).Msg("readiness check failed")
			respondError(w, http.StatusServiceUnavailable, errors.New("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
