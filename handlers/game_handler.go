package handlers

import (
	"net/http"

	"github.com/Dosada05/commander-ledger/models"
	"github.com/Dosada05/commander-ledger/services"
)

type GameHandler struct {
	gameService services.GameService
}

func NewGameHandler(gs services.GameService) *GameHandler {
	return &GameHandler{
		gameService: gs,
	}
}

// CreateGame godoc
// @Summary Записать результат партии
// @Tags games
// @Description Все игроки должны быть зарегистрированы. Ранг 0 у всех игроков означает ничью.
// @Accept json
// @Produce json
// @Param game body models.GameSubmission true "Результат партии"
// @Success 201 {object} map[string]interface{} "Партия записана"
// @Failure 400 {object} map[string]interface{} "Результат отклонён валидатором"
// @Failure 401 {object} map[string]interface{} "Неверный или отсутствующий токен"
// @Failure 422 {object} map[string]interface{} "Неизвестный игрок"
// @Security BearerAuth
// @Router /api/games [post]
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var input models.GameSubmission
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.RecordGame(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"success": true, "game": game}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListGames godoc
// @Summary Все записанные партии
// @Tags games
// @Produce json
// @Success 200 {object} map[string]interface{} "games: список партий, новые первыми"
// @Router /api/games [get]
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameService.ListGames(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if games == nil {
		games = []models.GameView{}
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
