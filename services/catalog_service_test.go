package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Dosada05/commander-ledger/scryfall"
	"github.com/Dosada05/commander-ledger/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCardSource struct {
	mu    sync.Mutex
	cards []scryfall.Card
	err   error
	calls atomic.Int32
	gate  chan struct{}
}

func (f *fakeCardSource) set(cards []scryfall.Card, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cards, f.err = cards, err
}

func (f *fakeCardSource) FetchDefaultCards(ctx context.Context, visit func(scryfall.Card) error) error {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	cards, err := f.cards, f.err
	f.mu.Unlock()
	for _, card := range cards {
		if err := visit(card); err != nil {
			return err
		}
	}
	return err
}

type failingStore struct{}

func (failingStore) Load(context.Context) ([]string, time.Time, error) {
	return nil, time.Time{}, storage.ErrSnapshotNotFound
}

func (failingStore) Save(context.Context, []string) error {
	return errors.New("disk full")
}

func newFileStore(t *testing.T) storage.SnapshotStore {
	t.Helper()
	store, err := storage.NewFileSnapshotStore(filepath.Join(t.TempDir(), "commanders.json"))
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	return store
}

func TestCatalogServiceStartsEmpty(t *testing.T) {
	svc := NewCatalogService(&fakeCardSource{}, nil, nil, 0, discardLogger())
	current := svc.Current()
	if current == nil || current.Commanders == nil || len(current.Commanders) != 0 {
		t.Fatalf("expected empty snapshot, got %#v", current)
	}
}

func TestCatalogServiceRefreshPublishesAndPersists(t *testing.T) {
	ctx := context.Background()
	source := &fakeCardSource{}
	source.set([]scryfall.Card{
		legalCard("Zur the Enchanter", "Legendary Creature - Human Wizard"),
		legalCard("Llanowar Elves", "Creature - Elf Druid"),
		legalCard("Animar, Soul of Elements", "Legendary Creature - Elemental"),
	}, nil)
	store := newFileStore(t)
	pub := &recordingPublisher{}
	svc := NewCatalogService(source, store, pub, 0, discardLogger())

	snapshot, err := svc.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	want := []string{"Animar, Soul of Elements", "Zur the Enchanter"}
	if !reflect.DeepEqual(snapshot.Commanders, want) || snapshot.RefreshedAt.IsZero() {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if svc.Current() != snapshot {
		t.Fatal("refreshed snapshot was not published")
	}
	if types := pub.types(); len(types) != 1 || types[0] != EventCatalogRefreshed {
		t.Fatalf("expected catalog refreshed event, got %v", types)
	}

	// Новый экземпляр поднимает сохранённый снимок.
	restored := NewCatalogService(source, store, nil, 0, discardLogger())
	if err := restored.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(restored.Current().Commanders, want) {
		t.Fatalf("expected restored %v, got %v", want, restored.Current().Commanders)
	}
}

func TestCatalogServiceFailedRefreshKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	source := &fakeCardSource{}
	source.set([]scryfall.Card{legalCard("Edgar Markov", "Legendary Creature - Vampire Knight")}, nil)
	pub := &recordingPublisher{}
	svc := NewCatalogService(source, nil, pub, 0, discardLogger())

	good, err := svc.Refresh(ctx)
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	tests := []struct {
		name   string
		cards  []scryfall.Card
		err    error
		reason error
	}{
		{name: "download error", err: scryfall.ErrTransient, reason: scryfall.ErrTransient},
		{name: "partial stream", cards: []scryfall.Card{legalCard("Zur the Enchanter", "Legendary Creature - Human Wizard")}, err: scryfall.ErrBadPayload, reason: scryfall.ErrBadPayload},
		{name: "no commanders", cards: []scryfall.Card{legalCard("Llanowar Elves", "Creature - Elf Druid")}, reason: ErrCatalogEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source.set(tt.cards, tt.err)
			_, err := svc.Refresh(ctx)
			if !errors.Is(err, ErrCatalogFetchFailed) || !errors.Is(err, tt.reason) {
				t.Fatalf("expected fetch failure wrapping %v, got %v", tt.reason, err)
			}
			if svc.Current() != good {
				t.Fatalf("snapshot replaced after failure: %+v", svc.Current())
			}
		})
	}

	if n := len(pub.types()); n != 1 {
		t.Fatalf("expected a single event, got %d", n)
	}
}

func TestCatalogServicePersistFailureStillPublishes(t *testing.T) {
	source := &fakeCardSource{}
	source.set([]scryfall.Card{legalCard("Edgar Markov", "Legendary Creature - Vampire Knight")}, nil)
	svc := NewCatalogService(source, failingStore{}, nil, 0, discardLogger())

	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := svc.Current().Commanders; len(got) != 1 || got[0] != "Edgar Markov" {
		t.Fatalf("expected in-memory snapshot, got %v", got)
	}
}

func TestCatalogServiceConcurrentRefreshSharesDownload(t *testing.T) {
	source := &fakeCardSource{gate: make(chan struct{})}
	source.set([]scryfall.Card{legalCard("Edgar Markov", "Legendary Creature - Vampire Knight")}, nil)
	svc := NewCatalogService(source, nil, nil, 0, discardLogger())

	const callers = 4
	var wg sync.WaitGroup
	results := make([]*CatalogSnapshot, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshot, err := svc.Refresh(context.Background())
			if err != nil {
				t.Errorf("refresh %d: %v", i, err)
				return
			}
			results[i] = snapshot
		}(i)
	}

	// Ждём, пока первая загрузка начнётся, и даём остальным присоединиться.
	for source.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(source.gate)
	wg.Wait()

	if n := source.calls.Load(); n != 1 {
		t.Fatalf("expected one download, got %d", n)
	}
	for i, r := range results {
		if r != results[0] {
			t.Fatalf("caller %d got a different snapshot", i)
		}
	}
}

func TestCatalogServiceLoadIgnoresMissingSnapshot(t *testing.T) {
	svc := NewCatalogService(&fakeCardSource{}, newFileStore(t), nil, 0, discardLogger())
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("expected missing snapshot to be fine, got %v", err)
	}
	if len(svc.Current().Commanders) != 0 {
		t.Fatal("expected empty catalog")
	}
}

func TestCatalogServiceCallerCancelDoesNotAbortSharedRefresh(t *testing.T) {
	source := &fakeCardSource{gate: make(chan struct{})}
	source.set([]scryfall.Card{legalCard("Edgar Markov", "Legendary Creature - Vampire Knight")}, nil)
	svc := NewCatalogService(source, nil, nil, 0, discardLogger())

	requestCtx, cancelRequest := context.WithCancel(context.Background())
	requestErr := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(requestCtx)
		requestErr <- err
	}()

	for source.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	type result struct {
		snapshot *CatalogSnapshot
		err      error
	}
	scheduled := make(chan result, 1)
	go func() {
		snapshot, err := svc.Refresh(context.Background())
		scheduled <- result{snapshot, err}
	}()
	time.Sleep(20 * time.Millisecond)

	// Клиент ушёл: его ожидание прекращается, загрузка нет.
	cancelRequest()
	select {
	case err := <-requestErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected cancelled caller to get context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(source.gate)
	res := <-scheduled
	if res.err != nil {
		t.Fatalf("joined refresh failed: %v", res.err)
	}
	if got := svc.Current().Commanders; len(got) != 1 || got[0] != "Edgar Markov" {
		t.Fatalf("expected published catalog, got %v", got)
	}
	if n := source.calls.Load(); n != 1 {
		t.Fatalf("expected one download, got %d", n)
	}
}

func TestCatalogServiceRefreshOutlivesCaller(t *testing.T) {
	source := &fakeCardSource{gate: make(chan struct{})}
	source.set([]scryfall.Card{legalCard("Edgar Markov", "Legendary Creature - Vampire Knight")}, nil)
	pub := &recordingPublisher{}
	svc := NewCatalogService(source, nil, pub, 0, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := svc.Refresh(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected caller deadline, got %v", err)
	}

	close(source.gate)
	deadline := time.Now().Add(time.Second)
	for len(pub.types()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("refresh did not finish after the caller left")
		}
		time.Sleep(time.Millisecond)
	}
	if len(svc.Current().Commanders) != 1 {
		t.Fatalf("expected published catalog, got %v", svc.Current().Commanders)
	}
}
