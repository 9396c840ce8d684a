package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Dosada05/clubhub/models"
	"github.com/Dosada05/clubhub/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// ListTournaments godoc
// @Summary Список турниров
// @Tags tournaments
// @Description Upcoming tournaments, earliest first. scope=all includes past ones.
// @Produce json
// @Param scope query string false "upcoming (default) или all"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tournaments [get]
func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	var (
		list []*models.Tournament
		err  error
	)
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "upcoming":
		list, err = h.tournamentService.ListUpcoming(r.Context())
	case "all":
		list, err = h.tournamentService.ListAll(r.Context())
	default:
		badRequestResponse(w, r, fmt.Errorf("invalid scope %q", scope))
		return
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"tournaments": list})
}

func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	t, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"tournament": t})
}

// CreateTournament godoc
// @Summary Создать турнир (тренер)
// @Tags tournaments
// @Accept json
// @Produce json
// @Param body body services.TournamentInput true "Данные турнира"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /tournaments [post]
func (h *TournamentHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	var input services.TournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t, err := h.tournamentService.Create(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusCreated, jsonResponse{"tournament": t})
}

func (h *TournamentHandler) UpdateTournament(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.TournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t, err := h.tournamentService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"tournament": t})
}

// DeleteTournament godoc
// @Summary Удалить турнир (тренер)
// @Tags tournaments
// @Description Also deletes every signup and team of the tournament.
// @Param tournamentID path string true "Tournament ID"
// @Success 204
// @Security BearerAuth
// @Router /tournaments/{tournamentID} [delete]
func (h *TournamentHandler) DeleteTournament(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.tournamentService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncCalendar godoc
// @Summary Добавить турнир в календарь клуба
// @Tags tournaments
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} map[string]string "Ошибка Google Calendar"
// @Failure 503 {object} map[string]string "Календарь не настроен"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/calendar [post]
func (h *TournamentHandler) SyncCalendar(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	t, err := h.tournamentService.SyncCalendar(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"tournament": t})
}

// UploadFlyer godoc
// @Summary Загрузить флаер турнира
// @Tags tournaments
// @Accept multipart/form-data
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Param flyer formData file true "Изображение (jpeg, png, gif, webp)"
// @Success 200 {object} map[string]interface{}
// @Failure 413 {object} map[string]string "Файл слишком большой"
// @Failure 415 {object} map[string]string "Неподдерживаемый тип"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/flyer [post]
func (h *TournamentHandler) UploadFlyer(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// запас на заголовки multipart
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxFlyerSize+1<<20)
	if err := r.ParseMultipartForm(services.MaxFlyerSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			mapServiceErrorToHTTP(w, r, services.ErrFileTooLarge)
			return
		}
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("flyer")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get flyer file from form: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content-type header is required for flyer"))
		return
	}

	t, err := h.tournamentService.UploadFlyer(r.Context(), id, file, contentType, header.Size)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"tournament": t})
}
