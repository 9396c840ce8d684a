package handlers

import (
	"net/http"

	"github.com/Dosada05/clubhub/services"
)

type UserHandler struct {
	userService         services.UserService
	signupService       services.SignupService
	relationshipService services.RelationshipService
}

func NewUserHandler(us services.UserService, ss services.SignupService, rs services.RelationshipService) *UserHandler {
	return &UserHandler{
		userService:         us,
		signupService:       ss,
		relationshipService: rs,
	}
}

// GetMe godoc
// @Summary Текущий пользователь
// @Tags me
// @Description Account, role flags and the signup status of each linked player for the next tournament.
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}

	overview, err := h.signupService.Overview(r.Context(), id.User)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"user": id, "signupStatus": overview})
}

// UpdateMe godoc
// @Summary Изменить профиль
// @Tags me
// @Accept json
// @Produce json
// @Param body body services.UpdateProfileInput true "Поля профиля; role только alumni"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Смена роли запрещена"
// @Security BearerAuth
// @Router /me [patch]
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	var input services.UpdateProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), id.UID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"user": services.NewIdentity(user)})
}

// LinkPlayer godoc
// @Summary Привязать игрока
// @Tags me
// @Description Parents add a child. Coaches replace their favorite player. Players cannot link.
// @Produce json
// @Param playerID path string true "Player ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Игроки не могут привязывать"
// @Failure 404 {object} map[string]string "Игрок не найден"
// @Security BearerAuth
// @Router /me/linked-players/{playerID} [post]
func (h *UserHandler) LinkPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	playerID, err := urlParam(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.relationshipService.LinkPlayer(r.Context(), id.UID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"user": services.NewIdentity(user)})
}

// UnlinkPlayer godoc
// @Summary Отвязать игрока
// @Tags me
// @Description Removes the link on both the user and the player.
// @Produce json
// @Param playerID path string true "Player ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Пользователь не найден"
// @Security BearerAuth
// @Router /me/linked-players/{playerID} [delete]
func (h *UserHandler) UnlinkPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	playerID, err := urlParam(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.relationshipService.UnlinkPlayer(r.Context(), id.UID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"user": services.NewIdentity(user)})
}

// ListUsers godoc
// @Summary Список пользователей (тренер)
// @Tags users
// @Produce json
// @Param role query string false "Фильтр по роли"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"users": users})
}

// GetUser godoc
// @Summary Получить пользователя (тренер)
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Пользователь не найден"
// @Security BearerAuth
// @Router /users/{userID} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	uid, err := urlParam(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	user, err := h.userService.GetByID(r.Context(), uid)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"user": user})
}

// DeleteUser godoc
// @Summary Удалить пользователя (тренер)
// @Tags users
// @Description Deletes the account, its credentials and every player link. A player account takes its player record with it.
// @Param userID path string true "User ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Пользователь не найден"
// @Security BearerAuth
// @Router /users/{userID} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	uid, err := urlParam(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.userService.DeleteUser(r.Context(), uid); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
