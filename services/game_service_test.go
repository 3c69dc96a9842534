package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Dosada05/commander-ledger/db"
	"github.com/Dosada05/commander-ledger/db/dbtest"
	"github.com/Dosada05/commander-ledger/models"
	"github.com/Dosada05/commander-ledger/repositories"
)

type recordedEvent struct {
	eventType string
	payload   interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{eventType: eventType, payload: payload})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.eventType
	}
	return out
}

type ledger struct {
	conn      *sql.DB
	games     GameService
	players   PlayerService
	publisher *recordingPublisher
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	conn := dbtest.Open(t)
	playerRepo := repositories.NewPlayerRepository(conn, db.SQLite)
	gameRepo := repositories.NewGameRepository(conn, db.SQLite)
	pub := &recordingPublisher{}
	return &ledger{
		conn:      conn,
		games:     NewGameService(conn, gameRepo, playerRepo, pub, nil),
		players:   NewPlayerService(playerRepo, pub, nil),
		publisher: pub,
	}
}

func (l *ledger) register(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := l.players.Register(context.Background(), name); err != nil {
			t.Fatalf("register %q: %v", name, err)
		}
	}
}

func (l *ledger) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := l.conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestRecordGameRoundTrip(t *testing.T) {
	l := newLedger(t)
	l.register(t, "Alice", "Bob", "Carol")
	ctx := context.Background()

	submission := models.GameSubmission{
		StartTime: testStart,
		EndTime:   testEnd,
		Players: []models.SubmittedPlayer{
			{Name: "Carol", Rank: 2, Commanders: []string{"Edgar Markov"}},
			{Name: "Alice", Rank: 1, Commanders: []string{"Tymna the Weaver", "Thrasios, Triton Hero"}},
			{Name: "Bob", Rank: 2, Commanders: []string{"Wilhelt, the Rotcleaver"}},
		},
	}

	view, err := l.games.RecordGame(ctx, submission)
	if err != nil {
		t.Fatalf("record game: %v", err)
	}
	if view.ID == 0 || len(view.Players) != 3 {
		t.Fatalf("unexpected view: %+v", view)
	}

	games, err := l.games.ListGames(ctx)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(games))
	}
	got := games[0]
	if got.ID != view.ID || !got.StartTime.Equal(testStart) || !got.EndTime.Equal(testEnd) {
		t.Fatalf("unexpected game header: %+v", got)
	}

	byName := make(map[string]models.PlayerResult)
	for _, p := range got.Players {
		byName[p.Name] = p
	}
	for _, want := range submission.Players {
		p, ok := byName[want.Name]
		if !ok {
			t.Fatalf("player %q missing from read back", want.Name)
		}
		if p.Rank != want.Rank {
			t.Fatalf("player %q rank: expected %d, got %d", want.Name, want.Rank, p.Rank)
		}
		gotCmd := append([]string(nil), p.Commanders...)
		wantCmd := append([]string(nil), want.Commanders...)
		sort.Strings(gotCmd)
		sort.Strings(wantCmd)
		if strings.Join(gotCmd, "|") != strings.Join(wantCmd, "|") {
			t.Fatalf("player %q commanders: expected %v, got %v", want.Name, wantCmd, gotCmd)
		}
	}

	events := l.publisher.types()
	if events[len(events)-1] != EventGameRecorded {
		t.Fatalf("expected game recorded event last, got %v", events)
	}
}

func TestRecordGameDraw(t *testing.T) {
	l := newLedger(t)
	l.register(t, "Alice", "Bob")

	_, err := l.games.RecordGame(context.Background(), models.GameSubmission{
		StartTime: testStart,
		EndTime:   testEnd,
		Players: []models.SubmittedPlayer{
			{Name: "Alice", Rank: 0, Commanders: []string{"Kenrith, the Returned King"}},
			{Name: "Bob", Rank: 0, Commanders: []string{"Urza, Lord High Artificer"}},
		},
	})
	if err != nil {
		t.Fatalf("record draw: %v", err)
	}
	if n := l.count(t, "games_players"); n != 2 {
		t.Fatalf("expected 2 participations, got %d", n)
	}
}

func TestRecordGameUnknownPlayerRollsBack(t *testing.T) {
	l := newLedger(t)
	l.register(t, "Alice", "Bob")

	_, err := l.games.RecordGame(context.Background(), models.GameSubmission{
		StartTime: testStart,
		EndTime:   testEnd,
		Players: []models.SubmittedPlayer{
			{Name: "Alice", Rank: 1, Commanders: []string{"Tymna the Weaver"}},
			{Name: "Bob", Rank: 2, Commanders: []string{"Edgar Markov"}},
			{Name: "Mallory", Rank: 3, Commanders: []string{"Sisay, Weatherlight Captain"}},
		},
	})
	if !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("expected unknown player error, got %v", err)
	}
	if errors.Is(err, ErrValidationFailed) {
		t.Fatal("unknown player must not be reported as a validation rejection")
	}
	if !strings.Contains(err.Error(), `unknown player "Mallory"`) {
		t.Fatalf("unexpected message: %v", err)
	}

	for _, table := range []string{"games", "games_players", "commanders"} {
		if n := l.count(t, table); n != 0 {
			t.Fatalf("expected %s to be empty after rollback, got %d rows", table, n)
		}
	}
	for _, e := range l.publisher.types() {
		if e == EventGameRecorded {
			t.Fatal("rolled back game must not be published")
		}
	}
}

func TestRecordGameRejectsBeforeTouchingStore(t *testing.T) {
	l := newLedger(t)
	l.register(t, "Alice", "Bob")

	_, err := l.games.RecordGame(context.Background(), submissionWithRanks(1, 1))
	if !errors.Is(err, ErrAllTiedForFirst) {
		t.Fatalf("expected all tied rejection, got %v", err)
	}
	if n := l.count(t, "games"); n != 0 {
		t.Fatalf("expected no games, got %d", n)
	}
}

func TestRegisterPlayer(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	player, err := l.players.Register(ctx, "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if player.ID == 0 || player.Name != "Alice" {
		t.Fatalf("unexpected player: %+v", player)
	}

	if _, err := l.players.Register(ctx, "Alice"); !errors.Is(err, ErrPlayerAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
	if _, err := l.players.Register(ctx, "   "); !errors.Is(err, ErrPlayerNameRequired) {
		t.Fatalf("expected name required, got %v", err)
	}

	found, err := l.players.Lookup(ctx, "Alice")
	if err != nil || found.ID != player.ID {
		t.Fatalf("lookup: %+v %v", found, err)
	}
	if _, err := l.players.Lookup(ctx, "ALICE"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected case-sensitive miss, got %v", err)
	}

	names, err := l.players.List(ctx)
	if err != nil || len(names) != 1 || names[0] != "Alice" {
		t.Fatalf("list: %v %v", names, err)
	}
}

func TestRegisterPlayerConcurrentSameName(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	const callers = 2
	// dbtest держит одно соединение, и вставки шли бы строго по очереди.
	// С отдельным соединением на каждого вызывающего обе вставки доходят до базы
	// одновременно, и исход решает UNIQUE(players.name) под busy_timeout.
	l.conn.SetMaxOpenConns(callers)
	l.conn.SetMaxIdleConns(callers)
	var wg sync.WaitGroup
	errs := make([]error, callers)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = l.players.Register(ctx, "Racer")
		}(i)
	}
	close(start)
	wg.Wait()

	accepted, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, ErrPlayerAlreadyExists):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if accepted != 1 || rejected != 1 {
		t.Fatalf("expected one winner and one loser, got %d/%d", accepted, rejected)
	}
	if n := l.count(t, "players"); n != 1 {
		t.Fatalf("expected a single player row, got %d", n)
	}
}
