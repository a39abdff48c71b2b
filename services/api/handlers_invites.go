package api

import (
	"errors"
	"net/http"

	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/league"
)

func (a *API) handleCreateInviteCode(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())
	leagueID, err := uuidParam(r, "leagueID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	code, err := a.invites.CreateInviteCode(r.Context(), leagueID, userID)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"invite_code": league.InviteCodeListing{InviteCode: *code, Status: league.InviteCodeActive},
	})
}

func (a *API) handleListInviteCodes(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())
	leagueID, err := uuidParam(r, "leagueID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	codes, err := a.invites.ListInviteCodes(r.Context(), leagueID, userID)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"invite_codes": codes})
}

func (a *API) handleInviteCodeCreator(w http.ResponseWriter, r *http.Request) {
	leagueID, err := uuidParam(r, "leagueID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	creatorID, err := uuidParam(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	m, err := a.invites.GetInviteCodeCreator(r.Context(), creatorID, leagueID)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"creator": m})
}

func (a *API) handleRedeemInviteCode(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())

	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, errors.New("code is required"))
		return
	}

	l, err := a.invites.UseInviteCode(r.Context(), req.Code, userID)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"league": l})
}
