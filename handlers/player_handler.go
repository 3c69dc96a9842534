package handlers

import (
	"net/http"

	"github.com/Dosada05/commander-ledger/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{
		playerService: ps,
	}
}

type createPlayerInput struct {
	Name string `json:"name"`
}

// CreatePlayer godoc
// @Summary Зарегистрировать игрока
// @Tags players
// @Description Имена уникальны с учётом регистра.
// @Accept json
// @Produce json
// @Param player body createPlayerInput true "Имя игрока"
// @Success 201 {object} map[string]interface{} "Игрок создан"
// @Failure 400 {object} map[string]interface{} "Пустое имя или некорректное тело"
// @Failure 401 {object} map[string]interface{} "Неверный или отсутствующий токен"
// @Failure 409 {object} map[string]interface{} "Игрок уже существует"
// @Security BearerAuth
// @Router /api/players [post]
func (h *PlayerHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var input createPlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Register(r.Context(), input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"success": true, "player": player}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListPlayers godoc
// @Summary Имена всех игроков
// @Tags players
// @Produce json
// @Success 200 {object} map[string]interface{} "names: имена по алфавиту"
// @Router /api/players [get]
func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	names, err := h.playerService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"names": names}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
