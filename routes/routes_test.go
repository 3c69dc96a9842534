package routes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Dosada05/commander-ledger/broadcast"
	"github.com/Dosada05/commander-ledger/db"
	"github.com/Dosada05/commander-ledger/db/dbtest"
	"github.com/Dosada05/commander-ledger/handlers"
	"github.com/Dosada05/commander-ledger/middleware"
	"github.com/Dosada05/commander-ledger/repositories"
	"github.com/Dosada05/commander-ledger/scryfall"
	"github.com/Dosada05/commander-ledger/services"
	"github.com/go-chi/chi/v5"
)

const testToken = "s3cret"

type stubSource struct {
	err error
}

func (s stubSource) FetchDefaultCards(ctx context.Context, visit func(scryfall.Card) error) error {
	return s.err
}

func newTestServer(t *testing.T, source services.CardSource) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	conn := dbtest.Open(t)
	playerRepo := repositories.NewPlayerRepository(conn, db.SQLite)
	gameRepo := repositories.NewGameRepository(conn, db.SQLite)
	hub := broadcast.NewHub(logger)

	gameService := services.NewGameService(conn, gameRepo, playerRepo, hub, logger)
	playerService := services.NewPlayerService(playerRepo, hub, logger)
	catalogService := services.NewCatalogService(source, nil, hub, 0, logger)
	scheduler := services.NewCatalogScheduler(catalogService, 1, logger)

	auth, err := middleware.NewBearerAuth(testToken, "")
	if err != nil {
		t.Fatalf("auth: %v", err)
	}

	staticDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>ledger</html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	if err := os.WriteFile(filepath.Join(staticDir, "app.js"), []byte("console.log('ledger')"), 0o644); err != nil {
		t.Fatalf("write app.js: %v", err)
	}

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Games:      handlers.NewGameHandler(gameService),
		Players:    handlers.NewPlayerHandler(playerService),
		Commanders: handlers.NewCommanderHandler(catalogService),
		WebSocket:  handlers.NewWebSocketHandler(hub),
		Health:     handlers.NewHealthHandler(conn, scheduler, hub),
	}, auth.Authenticate, staticDir)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

func expect(t *testing.T, status int, body string, wantStatus int, wantBody ...string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("expected status %d, got %d: %s", wantStatus, status, body)
	}
	for _, want := range wantBody {
		if !strings.Contains(body, want) {
			t.Fatalf("expected body to contain %q, got %s", want, body)
		}
	}
}

func TestLedgerAPI(t *testing.T) {
	srv := newTestServer(t, stubSource{})

	status, body := do(t, srv, http.MethodPost, "/api/players", "", `{"name":"Alice"}`)
	expect(t, status, body, http.StatusUnauthorized, `"success":false`, "missing bearer token")

	status, body = do(t, srv, http.MethodPost, "/api/players", "wrong", `{"name":"Alice"}`)
	expect(t, status, body, http.StatusUnauthorized, "incorrect bearer token provided")

	for _, name := range []string{"Alice", "Bob"} {
		status, body = do(t, srv, http.MethodPost, "/api/players", testToken, `{"name":"`+name+`"}`)
		expect(t, status, body, http.StatusCreated, `"success":true`)
	}

	status, body = do(t, srv, http.MethodPost, "/api/players", testToken, `{"name":"Alice"}`)
	expect(t, status, body, http.StatusConflict, "player already exists")

	status, body = do(t, srv, http.MethodPost, "/api/players", testToken, `{"nickname":"Alice"}`)
	expect(t, status, body, http.StatusBadRequest, "unknown key")

	status, body = do(t, srv, http.MethodGet, "/api/players", "", "")
	expect(t, status, body, http.StatusOK, `"names":["Alice","Bob"]`)

	game := `{"start_datetime":"2024-01-11T18:00:00Z","end_datetime":"2024-01-11T19:30:00Z","players":[
		{"name":"Alice","rank":1,"commanders":["Edgar Markov"]},
		{"name":"Bob","rank":2,"commanders":["Tymna the Weaver","Thrasios, Triton Hero"]}]}`
	status, body = do(t, srv, http.MethodPost, "/api/games", testToken, game)
	expect(t, status, body, http.StatusCreated, `"success":true`, `"game"`)

	tied := strings.Replace(game, `"rank":2`, `"rank":1`, 1)
	status, body = do(t, srv, http.MethodPost, "/api/games", testToken, tied)
	expect(t, status, body, http.StatusBadRequest, `"success":false`, "all players tied for first")

	stranger := strings.Replace(game, `"name":"Bob"`, `"name":"Mallory"`, 1)
	status, body = do(t, srv, http.MethodPost, "/api/games", testToken, stranger)
	expect(t, status, body, http.StatusUnprocessableEntity, `unknown player \"Mallory\"`)

	status, body = do(t, srv, http.MethodGet, "/api/games", "", "")
	expect(t, status, body, http.StatusOK, `"games":[{`, "Thrasios, Triton Hero")
	if strings.Count(body, `"start_datetime"`) != 1 {
		t.Fatalf("expected exactly one stored game, got %s", body)
	}
}

func TestCommanderEndpoints(t *testing.T) {
	srv := newTestServer(t, stubSource{err: errors.New("scryfall down")})

	status, body := do(t, srv, http.MethodGet, "/api/commanders", "", "")
	expect(t, status, body, http.StatusOK, `"commanders":[]`, `"refreshed_at":null`)

	status, body = do(t, srv, http.MethodPost, "/api/commanders/refresh", "", "")
	expect(t, status, body, http.StatusUnauthorized)

	status, body = do(t, srv, http.MethodPost, "/api/commanders/refresh", testToken, "")
	expect(t, status, body, http.StatusBadGateway, "commander catalog refresh failed")
}

func TestAuxiliaryRoutes(t *testing.T) {
	srv := newTestServer(t, stubSource{})

	status, body := do(t, srv, http.MethodGet, "/healthz", "", "")
	expect(t, status, body, http.StatusOK, `"status":"ok"`, `"catalog":"idle"`)

	status, body = do(t, srv, http.MethodGet, "/swagger/doc.json", "", "")
	expect(t, status, body, http.StatusOK, "Commander Ledger API")

	status, body = do(t, srv, http.MethodGet, "/app.js", "", "")
	expect(t, status, body, http.StatusOK, "console.log")

	status, body = do(t, srv, http.MethodGet, "/history", "", "")
	expect(t, status, body, http.StatusOK, "<html>ledger</html>")

	status, body = do(t, srv, http.MethodGet, "/missing.css", "", "")
	expect(t, status, body, http.StatusNotFound)
}
