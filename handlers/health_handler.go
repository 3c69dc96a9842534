package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Dosada05/commander-ledger/services"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type schedulerState interface {
	State() services.SchedulerState
}

type clientCounter interface {
	ClientCount() int
}

type HealthHandler struct {
	db        pinger
	scheduler schedulerState
	feed      clientCounter
}

func NewHealthHandler(db pinger, scheduler schedulerState, feed clientCounter) *HealthHandler {
	return &HealthHandler{db: db, scheduler: scheduler, feed: feed}
}

// Health godoc
// @Summary Проверка состояния
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "status: ok"
// @Failure 503 {object} map[string]interface{} "База данных недоступна"
// @Router /healthz [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			errorResponse(w, r, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}

	response := jsonResponse{"status": "ok"}
	if h.scheduler != nil {
		response["catalog"] = h.scheduler.State()
	}
	if h.feed != nil {
		response["feed_clients"] = h.feed.ClientCount()
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
