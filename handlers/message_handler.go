package handlers

import (
	"net/http"

	"github.com/Dosada05/clubhub/models"
	"github.com/Dosada05/clubhub/services"
)

type MessageHandler struct {
	messagingService services.MessagingService
}

func NewMessageHandler(ms services.MessagingService) *MessageHandler {
	return &MessageHandler{messagingService: ms}
}

// SendMessage godoc
// @Summary Отправить сообщение группам (тренер)
// @Tags messages
// @Description One email goes out with every resolved recipient in Bcc.
// @Accept json
// @Produce json
// @Param body body models.Message true "Группы, тема, текст"
// @Success 200 {object} models.Recipients
// @Failure 422 {object} map[string]string "Нет получателей"
// @Failure 502 {object} map[string]string "Ошибка почтового сервиса"
// @Security BearerAuth
// @Router /messages [post]
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	var msg models.Message
	if err := readJSON(w, r, &msg); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	recipients, err := h.messagingService.Send(r.Context(), actor, msg)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"recipients": recipients})
}

type previewInput struct {
	Groups []models.GroupSelector `json:"groups"`
}

// PreviewRecipients resolves groups without sending anything.
func (h *MessageHandler) PreviewRecipients(w http.ResponseWriter, r *http.Request) {
	var input previewInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	recipients, err := h.messagingService.ResolveRecipients(r.Context(), input.Groups)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"recipients": recipients})
}

// RequestAccess godoc
// @Summary Запросить доступ у тренеров
// @Tags messages
// @Description For people without a club account. Emails every coach.
// @Accept json
// @Param body body models.AccessRequest true "Имя, email, сообщение"
// @Success 202
// @Router /access-requests [post]
func (h *MessageHandler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	var req models.AccessRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.messagingService.RequestAccess(r.Context(), req); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
