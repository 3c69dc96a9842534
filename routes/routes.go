package routes

import (
	"net/http"
	"os"
	"path/filepath"

	_ "github.com/Dosada05/commander-ledger/docs" // регистрирует описание API для /swagger
	"github.com/Dosada05/commander-ledger/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Games      *handlers.GameHandler
	Players    *handlers.PlayerHandler
	Commanders *handlers.CommanderHandler
	WebSocket  *handlers.WebSocketHandler
	Health     *handlers.HealthHandler
}

// SetupRoutes вешает API, ленту, документацию и раздачу статики на router.
// authenticate оборачивает все изменяющие запросы.
func SetupRoutes(router chi.Router, h Handlers, authenticate func(http.Handler) http.Handler, staticDir string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", h.Health.Health)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/ws/feed", h.WebSocket.ServeWs)

	router.Route("/api", func(r chi.Router) {
		// Публичное чтение
		r.Get("/games", h.Games.ListGames)
		r.Get("/players", h.Players.ListPlayers)
		r.Get("/commanders", h.Commanders.ListCommanders)

		// Запись только с общим секретом
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/games", h.Games.CreateGame)
			r.Post("/players", h.Players.CreatePlayer)
			r.Post("/commanders/refresh", h.Commanders.RefreshCommanders)
		})
	})

	router.NotFound(staticHandler(staticDir))
}

// staticHandler раздаёт собранный фронтенд. Неизвестные пути без расширения
// отдают index.html, чтобы работала клиентская маршрутизация.
func staticHandler(dir string) http.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		if dir == "" {
			http.NotFound(w, r)
			return
		}
		path := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if _, err := os.Stat(path); os.IsNotExist(err) && filepath.Ext(path) == "" {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	}
}
