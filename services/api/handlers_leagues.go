package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/league"
)

type createLeagueRequest struct {
	SeasonID    uuid.UUID `json:"season_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
}

func (a *API) handleCreateLeague(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())

	var req createLeagueRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	l, err := a.leagues.CreateLeague(r.Context(), userID, league.CreateLeagueInput{
		SeasonID:    req.SeasonID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"league": l})
}

func (a *API) handleListMyLeagues(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())

	leagues, err := a.leagues.ListLeaguesForUser(r.Context(), userID)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}
	if leagues == nil {
		leagues = []league.League{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"leagues": leagues})
}

func (a *API) handleGetLeague(w http.ResponseWriter, r *http.Request) {
	leagueID, err := uuidParam(r, "leagueID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	l, err := a.leagues.GetLeagueByID(r.Context(), leagueID)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"league": l})
}

func (a *API) handleListMembers(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())
	leagueID, err := uuidParam(r, "leagueID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ok, err := a.members.IsMember(r.Context(), userID, leagueID)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}
	if !ok {
		a.respondServiceError(w, r, league.ErrMembersOnly)
		return
	}

	members, err := a.members.ListMembers(r.Context(), leagueID)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"members": members})
}
