package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Dosada05/commander-ledger/services"
)

// refreshWait - сколько запрос ждёт обновления каталога, прежде чем ответить 202.
// Должно быть меньше WriteTimeout сервера.
const refreshWait = 20 * time.Second

type CommanderHandler struct {
	catalog services.CatalogService
	wait    time.Duration
}

func NewCommanderHandler(cs services.CatalogService) *CommanderHandler {
	return &CommanderHandler{
		catalog: cs,
		wait:    refreshWait,
	}
}

func refreshedAt(snapshot *services.CatalogSnapshot) *time.Time {
	if snapshot.RefreshedAt.IsZero() {
		return nil
	}
	t := snapshot.RefreshedAt
	return &t
}

// ListCommanders godoc
// @Summary Каталог командиров
// @Tags commanders
// @Description Пока каталог не загружен, список пустой.
// @Produce json
// @Success 200 {object} map[string]interface{} "commanders: имена по алфавиту, refreshed_at: время обновления"
// @Router /api/commanders [get]
func (h *CommanderHandler) ListCommanders(w http.ResponseWriter, r *http.Request) {
	snapshot := h.catalog.Current()

	response := jsonResponse{
		"commanders":   snapshot.Commanders,
		"refreshed_at": refreshedAt(snapshot),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RefreshCommanders godoc
// @Summary Обновить каталог командиров из Scryfall
// @Tags commanders
// @Description Если обновление уже идёт, запрос присоединяется к нему. Если оно не
// @Description успело завершиться за время ожидания, ответ 202, а загрузка продолжается.
// @Produce json
// @Success 200 {object} map[string]interface{} "Каталог обновлён"
// @Success 202 {object} map[string]interface{} "Обновление продолжается"
// @Failure 401 {object} map[string]interface{} "Неверный или отсутствующий токен"
// @Failure 502 {object} map[string]interface{} "Scryfall недоступен, прежний каталог сохранён"
// @Security BearerAuth
// @Router /api/commanders/refresh [post]
func (h *CommanderHandler) RefreshCommanders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.wait)
	defer cancel()

	snapshot, err := h.catalog.Refresh(ctx)
	switch {
	case err == nil:
		response := jsonResponse{
			"success":      true,
			"count":        len(snapshot.Commanders),
			"refreshed_at": refreshedAt(snapshot),
		}
		if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
			serverErrorResponse(w, r, err)
		}

	case errors.Is(err, services.ErrCatalogFetchFailed):
		mapServiceErrorToHTTP(w, r, err)

	case errors.Is(err, context.DeadlineExceeded) && r.Context().Err() == nil:
		// Загрузка идёт дальше без этого запроса.
		response := jsonResponse{"success": true, "status": "refreshing"}
		if err := writeJSON(w, http.StatusAccepted, response, nil); err != nil {
			serverErrorResponse(w, r, err)
		}

	case r.Context().Err() != nil:
		// Клиент ушёл, отвечать некому.

	default:
		mapServiceErrorToHTTP(w, r, err)
	}
}
