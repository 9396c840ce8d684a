package handlers

import (
	"net/http"

	"github.com/Dosada05/clubhub/services"
)

type SignupHandler struct {
	signupService services.SignupService
}

func NewSignupHandler(ss services.SignupService) *SignupHandler {
	return &SignupHandler{signupService: ss}
}

func signupParams(w http.ResponseWriter, r *http.Request) (tournamentID, playerID string, ok bool) {
	tournamentID, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return "", "", false
	}
	playerID, err = urlParam(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return "", "", false
	}
	return tournamentID, playerID, true
}

// UpsertSignup godoc
// @Summary Записать игрока на турнир
// @Tags signups
// @Description Creates or replaces the player's signup. Only users who represent the player may do this.
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Param playerID path string true "Player ID"
// @Param body body services.SignupInput true "Ответ на турнир"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Нельзя записывать чужого игрока"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/signups/{playerID} [put]
func (h *SignupHandler) UpsertSignup(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	tournamentID, playerID, ok := signupParams(w, r)
	if !ok {
		return
	}
	var input services.SignupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	signup, err := h.signupService.Upsert(r.Context(), actor, tournamentID, playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"signup": signup})
}

func (h *SignupHandler) GetSignup(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	tournamentID, playerID, ok := signupParams(w, r)
	if !ok {
		return
	}

	signup, err := h.signupService.Get(r.Context(), actor, tournamentID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"signup": signup})
}

func (h *SignupHandler) DeleteSignup(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	tournamentID, playerID, ok := signupParams(w, r)
	if !ok {
		return
	}

	if err := h.signupService.Delete(r.Context(), actor, tournamentID, playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSignups godoc
// @Summary Все записи на турнир (тренер)
// @Tags signups
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/signups [get]
func (h *SignupHandler) ListSignups(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	tournamentID, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	signups, err := h.signupService.ListByTournament(r.Context(), actor, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"signups": signups})
}
