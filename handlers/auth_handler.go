package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Dosada05/clubhub/middleware"
	"github.com/Dosada05/clubhub/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignUp godoc
// @Summary Регистрация нового аккаунта
// @Tags auth
// @Description Creates the club account and signs it in. Players get their own player record.
// @Accept json
// @Produce json
// @Param body body services.SignUpInput true "Данные регистрации"
// @Success 201 {object} services.AuthResult
// @Failure 409 {object} map[string]string "Email уже занят"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input services.SignUpInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.authService.SignUp(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusCreated, result)
}

// SignIn godoc
// @Summary Вход по email и паролю
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.SignInInput true "Email и пароль"
// @Success 200 {object} services.AuthResult
// @Failure 401 {object} map[string]string "Неверные данные"
// @Failure 403 {object} map[string]string "Нет аккаунта в клубе"
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input services.SignInInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.authService.SignIn(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, result)
}

type googleSignInInput struct {
	IDToken string `json:"idToken"`
}

// GoogleSignIn godoc
// @Summary Вход через Google
// @Tags auth
// @Accept json
// @Produce json
// @Param body body googleSignInInput true "Google ID token"
// @Success 200 {object} services.AuthResult
// @Failure 403 {object} map[string]string "Нет аккаунта в клубе"
// @Failure 503 {object} map[string]string "Google sign-in не настроен"
// @Router /auth/google [post]
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var input googleSignInInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if strings.TrimSpace(input.IDToken) == "" {
		badRequestResponse(w, r, errors.New("idToken is required"))
		return
	}

	result, err := h.authService.SignInWithGoogle(r.Context(), input.IDToken)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, result)
}

// SignOut godoc
// @Summary Выход
// @Tags auth
// @Description Revokes the current session token and closes live connections of the user.
// @Success 204
// @Security BearerAuth
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.GetClaimsFromContext(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := h.authService.SignOut(r.Context(), claims); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword godoc
// @Summary Смена пароля
// @Tags auth
// @Accept json
// @Param body body services.ChangePasswordInput true "Текущий и новый пароль"
// @Success 204
// @Failure 401 {object} map[string]string "Неверный текущий пароль"
// @Security BearerAuth
// @Router /me/password [put]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	var input services.ChangePasswordInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.authService.ChangePassword(r.Context(), id.UID, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
