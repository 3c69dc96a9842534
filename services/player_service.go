package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Dosada05/commander-ledger/models"
	"github.com/Dosada05/commander-ledger/repositories"
)

// PlayerService - справочник игроков: только регистрация и чтение.
type PlayerService interface {
	Register(ctx context.Context, name string) (*models.Player, error)
	Lookup(ctx context.Context, name string) (*models.Player, error)
	List(ctx context.Context) ([]string, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	publisher  EventPublisher
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, publisher EventPublisher, logger *slog.Logger) PlayerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &playerService{
		playerRepo: playerRepo,
		publisher:  publisherOrNoop(publisher),
		logger:     logger,
	}
}

func (s *playerService) Register(ctx context.Context, name string) (*models.Player, error) {
	if strings.TrimSpace(name) == "" {
		return nil, reject(ErrPlayerNameRequired, "player name is required")
	}

	player := &models.Player{Name: name}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "player registered", slog.Int("player_id", player.ID), slog.String("name", player.Name))
	s.publisher.Publish(EventPlayerRegistered, player)
	return player, nil
}

func (s *playerService) Lookup(ctx context.Context, name string) (*models.Player, error) {
	player, err := s.playerRepo.GetByName(ctx, nil, name)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]string, error) {
	names, err := s.playerRepo.ListNames(ctx)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return names, nil
}
