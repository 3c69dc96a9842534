package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/commander-ledger/models"
	"github.com/Dosada05/commander-ledger/repositories"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type GameService interface {
	RecordGame(ctx context.Context, submission models.GameSubmission) (*models.GameView, error)
	ListGames(ctx context.Context) ([]models.GameView, error)
}

type gameService struct {
	db         *sql.DB
	gameRepo   repositories.GameRepository
	playerRepo repositories.PlayerRepository
	publisher  EventPublisher
	logger     *slog.Logger
}

func NewGameService(
	db *sql.DB,
	gameRepo repositories.GameRepository,
	playerRepo repositories.PlayerRepository,
	publisher EventPublisher,
	logger *slog.Logger,
) GameService {
	if logger == nil {
		logger = slog.Default()
	}
	return &gameService{
		db:         db,
		gameRepo:   gameRepo,
		playerRepo: playerRepo,
		publisher:  publisherOrNoop(publisher),
		logger:     logger,
	}
}

// RecordGame проверяет результат и записывает партию, участия и командиров одной транзакцией.
// Отказ валидатора возвращается как *RejectionError; неизвестный игрок - как ErrUnknownPlayer.
func (s *gameService) RecordGame(ctx context.Context, submission models.GameSubmission) (*models.GameView, error) {
	if err := ValidateGameSubmission(submission); err != nil {
		s.logger.InfoContext(ctx, "game submission rejected", slog.String("reason", err.Error()))
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "GameService.RecordGame")
	defer span.End()
	span.SetAttributes(attribute.Int("game.players", len(submission.Players)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	view, err := s.writeGame(ctx, tx, submission)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.ErrorContext(ctx, "failed to roll back game transaction",
				slog.Any("error", rbErr), slog.Any("original_error", err))
		}
		if !errors.Is(err, ErrUnknownPlayer) {
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to commit game transaction: %w", err)
	}

	span.SetAttributes(attribute.Int("game.id", view.ID))
	s.logger.InfoContext(ctx, "game recorded", slog.Int("game_id", view.ID), slog.Int("players", len(view.Players)))
	s.publisher.Publish(EventGameRecorded, view)
	return view, nil
}

func (s *gameService) writeGame(ctx context.Context, tx *sql.Tx, submission models.GameSubmission) (*models.GameView, error) {
	game := &models.Game{StartTime: submission.StartTime, EndTime: submission.EndTime}
	if err := s.gameRepo.Create(ctx, tx, game); err != nil {
		return nil, err
	}

	view := &models.GameView{
		ID:        game.ID,
		StartTime: game.StartTime,
		EndTime:   game.EndTime,
		Players:   make([]models.PlayerResult, 0, len(submission.Players)),
	}

	for _, entry := range submission.Players {
		// Имя разрешается внутри транзакции, а не на этапе валидации,
		// чтобы видеть актуальное состояние справочника игроков.
		player, err := s.playerRepo.GetByName(ctx, tx, entry.Name)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return nil, fmt.Errorf("%w %q", ErrUnknownPlayer, entry.Name)
			}
			return nil, fmt.Errorf("failed to resolve player %q: %w", entry.Name, err)
		}

		participation := &models.Participation{GameID: game.ID, PlayerID: player.ID, Rank: entry.Rank}
		if err := s.gameRepo.CreateParticipation(ctx, tx, participation); err != nil {
			return nil, fmt.Errorf("failed to record participation of %q: %w", entry.Name, err)
		}

		commanders := make([]string, 0, len(entry.Commanders))
		for _, name := range entry.Commanders {
			choice := &models.CommanderChoice{ParticipationID: participation.ID, Commander: name}
			if err := s.gameRepo.CreateCommanderChoice(ctx, tx, choice); err != nil {
				return nil, fmt.Errorf("failed to record commander %q for %q: %w", name, entry.Name, err)
			}
			commanders = append(commanders, name)
		}

		view.Players = append(view.Players, models.PlayerResult{
			Name:       player.Name,
			Rank:       participation.Rank,
			Commanders: commanders,
		})
	}

	return view, nil
}

func (s *gameService) ListGames(ctx context.Context) ([]models.GameView, error) {
	rows, err := s.gameRepo.ListParticipationRows(ctx)
	if err != nil {
		return nil, err
	}
	commanderRows, err := s.gameRepo.ListCommanderRows(ctx)
	if err != nil {
		return nil, err
	}
	return AggregateGames(rows, commanderRows), nil
}
