package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Dosada05/commander-ledger/scryfall"
	"github.com/Dosada05/commander-ledger/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// CatalogSnapshot - опубликованный список командиров. После публикации не изменяется.
type CatalogSnapshot struct {
	Commanders  []string  `json:"commanders"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// CatalogRefreshedEvent рассылается подписчикам после публикации нового снимка.
type CatalogRefreshedEvent struct {
	Count       int       `json:"count"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// CardSource поставляет карты потоком. Реализуется scryfall.Client.
type CardSource interface {
	FetchDefaultCards(ctx context.Context, visit func(scryfall.Card) error) error
}

type CatalogService interface {
	// Load восстанавливает последний сохранённый снимок. Отсутствие снимка не ошибка.
	Load(ctx context.Context) error
	// Refresh скачивает карты, отбирает командиров, сохраняет и публикует снимок.
	// Параллельные вызовы разделяют одну загрузку. Отмена ctx прекращает только
	// ожидание вызывающего: общая загрузка продолжается и ограничена refreshTimeout.
	Refresh(ctx context.Context) (*CatalogSnapshot, error)
	// Current никогда не возвращает nil.
	Current() *CatalogSnapshot
}

const (
	refreshKey            = "catalog-refresh"
	defaultRefreshTimeout = 30 * time.Minute
)

type catalogService struct {
	source    CardSource
	store     storage.SnapshotStore
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	timeout   time.Duration

	current atomic.Pointer[CatalogSnapshot]
	group   singleflight.Group
}

func NewCatalogService(source CardSource, store storage.SnapshotStore, publisher EventPublisher, refreshTimeout time.Duration, logger *slog.Logger) CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	if refreshTimeout <= 0 {
		refreshTimeout = defaultRefreshTimeout
	}
	s := &catalogService{
		source:    source,
		store:     store,
		publisher: publisherOrNoop(publisher),
		logger:    logger,
		now:       time.Now,
		timeout:   refreshTimeout,
	}
	s.current.Store(&CatalogSnapshot{Commanders: []string{}})
	return s
}

func (s *catalogService) Current() *CatalogSnapshot {
	return s.current.Load()
}

func (s *catalogService) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	commanders, modified, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			s.logger.InfoContext(ctx, "no persisted commander catalog")
			return nil
		}
		return fmt.Errorf("failed to load commander catalog: %w", err)
	}
	if len(commanders) == 0 {
		s.logger.WarnContext(ctx, "persisted commander catalog is empty, ignoring")
		return nil
	}

	s.current.Store(&CatalogSnapshot{Commanders: commanders, RefreshedAt: modified})
	s.logger.InfoContext(ctx, "commander catalog loaded", slog.Int("commanders", len(commanders)), slog.Time("refreshed_at", modified))
	return nil
}

func (s *catalogService) Refresh(ctx context.Context) (*CatalogSnapshot, error) {
	ch := s.group.DoChan(refreshKey, func() (interface{}, error) {
		// Загрузка не привязана к первому вызывающему: его отмена не должна
		// обрывать обновление для остальных.
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.refresh(refreshCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.DebugContext(ctx, "joined in-flight catalog refresh")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*CatalogSnapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// refresh публикует новый снимок только если загрузка и отбор прошли полностью
// и дали непустой список. При любой ошибке остаётся прежний снимок.
func (s *catalogService) refresh(ctx context.Context) (*CatalogSnapshot, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.Refresh", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	started := s.now()
	s.logger.InfoContext(ctx, "commander catalog refresh started")

	var collector CommanderCollector
	cards := 0
	err := s.source.FetchDefaultCards(ctx, func(card scryfall.Card) error {
		cards++
		collector.Add(card)
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "commander catalog refresh failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrCatalogFetchFailed, err)
	}
	if collector.Len() == 0 {
		span.SetStatus(codes.Error, ErrCatalogEmpty.Error())
		s.logger.ErrorContext(ctx, "commander catalog refresh produced no commanders", slog.Int("cards", cards))
		return nil, fmt.Errorf("%w: %w", ErrCatalogFetchFailed, ErrCatalogEmpty)
	}

	snapshot := &CatalogSnapshot{Commanders: collector.Names(), RefreshedAt: s.now().UTC()}
	span.SetAttributes(attribute.Int("catalog.cards", cards), attribute.Int("catalog.commanders", len(snapshot.Commanders)))

	if s.store != nil {
		if err := s.store.Save(ctx, snapshot.Commanders); err != nil {
			// Снимок в памяти публикуется и без сохранённой копии.
			s.logger.ErrorContext(ctx, "failed to persist commander catalog", slog.Any("error", err))
		}
	}

	s.current.Store(snapshot)
	s.logger.InfoContext(ctx, "commander catalog refreshed",
		slog.Int("cards", cards),
		slog.Int("commanders", len(snapshot.Commanders)),
		slog.Duration("took", s.now().Sub(started)),
	)
	s.publisher.Publish(EventCatalogRefreshed, CatalogRefreshedEvent{
		Count:       len(snapshot.Commanders),
		RefreshedAt: snapshot.RefreshedAt,
	})
	return snapshot, nil
}
