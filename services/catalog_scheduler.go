package services

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

type SchedulerState string

const (
	SchedulerIdle       SchedulerState = "idle"
	SchedulerRefreshing SchedulerState = "refreshing"
)

// CatalogScheduler поддерживает каталог командиров актуальным:
// при старте загружает сохранённый снимок, при пустом каталоге сразу обновляет его,
// дальше обновляет раз в interval до отмены контекста.
type CatalogScheduler struct {
	catalog  CatalogService
	interval time.Duration
	logger   *slog.Logger

	refreshing atomic.Bool
}

func NewCatalogScheduler(catalog CatalogService, interval time.Duration, logger *slog.Logger) *CatalogScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogScheduler{catalog: catalog, interval: interval, logger: logger}
}

func (s *CatalogScheduler) State() SchedulerState {
	if s.refreshing.Load() {
		return SchedulerRefreshing
	}
	return SchedulerIdle
}

// Run блокируется до отмены ctx и возвращает nil. Ошибки обновления только логируются.
func (s *CatalogScheduler) Run(ctx context.Context) error {
	if err := s.catalog.Load(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to restore commander catalog, will download", slog.Any("error", err))
	}

	if len(s.catalog.Current().Commanders) == 0 {
		s.logger.InfoContext(ctx, "commander catalog is empty, bootstrapping")
		s.refresh(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("catalog scheduler stopped")
			return nil
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *CatalogScheduler) refresh(ctx context.Context) {
	s.refreshing.Store(true)
	defer s.refreshing.Store(false)

	if _, err := s.catalog.Refresh(ctx); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			s.logger.Info("catalog scheduler stopped waiting for refresh on shutdown")
			return
		}
		s.logger.ErrorContext(ctx, "scheduled catalog refresh failed", slog.Any("error", err))
	}
}
