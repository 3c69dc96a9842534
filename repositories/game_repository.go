package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/commander-ledger/db"
	"github.com/Dosada05/commander-ledger/models"
)

var (
	ErrParticipationConflict  = errors.New("player already participates in this game")
	ErrParticipationInvalid   = errors.New("participation game or player conflict or invalid")
	ErrCommanderChoiceInvalid = errors.New("commander participation conflict or invalid")
)

type GameRepository interface {
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	CreateParticipation(ctx context.Context, exec SQLExecutor, p *models.Participation) error
	CreateCommanderChoice(ctx context.Context, exec SQLExecutor, c *models.CommanderChoice) error
	ListParticipationRows(ctx context.Context) ([]models.ParticipationRow, error)
	ListCommanderRows(ctx context.Context) ([]models.CommanderRow, error)
}

type sqlGameRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewGameRepository(conn *sql.DB, dialect db.Dialect) GameRepository {
	return &sqlGameRepository{db: conn, dialect: dialect}
}

func (r *sqlGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	return pickExecutor(exec, r.db)
}

func (r *sqlGameRepository) Create(ctx context.Context, exec SQLExecutor, game *models.Game) error {
	executor := r.getExecutor(exec)
	query := r.dialect.Rebind(`
		INSERT INTO games (start_datetime, end_datetime)
		VALUES ($1, $2)
		RETURNING id`)

	if err := executor.QueryRowContext(ctx, query, game.StartTime, game.EndTime).Scan(&game.ID); err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (r *sqlGameRepository) CreateParticipation(ctx context.Context, exec SQLExecutor, p *models.Participation) error {
	executor := r.getExecutor(exec)
	query := r.dialect.Rebind(`
		INSERT INTO games_players (game_id, player_id, rank)
		VALUES ($1, $2, $3)
		RETURNING id`)

	err := executor.QueryRowContext(ctx, query, p.GameID, p.PlayerID, p.Rank).Scan(&p.ID)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return ErrParticipationConflict
		case db.IsForeignKeyViolation(err):
			return ErrParticipationInvalid
		}
		return fmt.Errorf("failed to create participation: %w", err)
	}
	return nil
}

func (r *sqlGameRepository) CreateCommanderChoice(ctx context.Context, exec SQLExecutor, c *models.CommanderChoice) error {
	executor := r.getExecutor(exec)
	query := r.dialect.Rebind(`
		INSERT INTO commanders (games_players_id, commander)
		VALUES ($1, $2)
		RETURNING id`)

	err := executor.QueryRowContext(ctx, query, c.ParticipationID, c.Commander).Scan(&c.ID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrCommanderChoiceInvalid
		}
		return fmt.Errorf("failed to create commander choice: %w", err)
	}
	return nil
}

// ListParticipationRows возвращает по строке на каждое участие вместе с окном партии и именем игрока.
func (r *sqlGameRepository) ListParticipationRows(ctx context.Context) ([]models.ParticipationRow, error) {
	query := `
		SELECT g.id, gp.id, g.start_datetime, g.end_datetime, p.name, gp.rank
		FROM games_players gp
		INNER JOIN games g ON gp.game_id = g.id
		INNER JOIN players p ON gp.player_id = p.id
		ORDER BY g.start_datetime DESC, g.id DESC, gp.id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list participation rows: %w", err)
	}
	defer rows.Close()

	result := make([]models.ParticipationRow, 0)
	for rows.Next() {
		var row models.ParticipationRow
		if err := rows.Scan(
			&row.GameID,
			&row.ParticipationID,
			&row.StartTime,
			&row.EndTime,
			&row.PlayerName,
			&row.Rank,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participation row: %w", err)
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participation rows: %w", err)
	}
	return result, nil
}

func (r *sqlGameRepository) ListCommanderRows(ctx context.Context) ([]models.CommanderRow, error) {
	query := `
		SELECT c.games_players_id, c.commander
		FROM commanders c
		INNER JOIN games_players gp ON c.games_players_id = gp.id
		ORDER BY c.id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list commander rows: %w", err)
	}
	defer rows.Close()

	result := make([]models.CommanderRow, 0)
	for rows.Next() {
		var row models.CommanderRow
		if err := rows.Scan(&row.ParticipationID, &row.Commander); err != nil {
			return nil, fmt.Errorf("failed to scan commander row: %w", err)
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commander rows: %w", err)
	}
	return result, nil
}
