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
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerNameConflict = errors.New("player name conflict")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByName(ctx context.Context, exec SQLExecutor, name string) (*models.Player, error)
	ListNames(ctx context.Context) ([]string, error)
}

type sqlPlayerRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewPlayerRepository(conn *sql.DB, dialect db.Dialect) PlayerRepository {
	return &sqlPlayerRepository{db: conn, dialect: dialect}
}

func (r *sqlPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	return pickExecutor(exec, r.db)
}

// Create вставляет игрока. Гонку одинаковых имён разрешает UNIQUE-ограничение базы,
// поэтому предварительной проверки существования нет.
func (r *sqlPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := r.dialect.Rebind(`INSERT INTO players (name) VALUES ($1) RETURNING id`)

	err := r.db.QueryRowContext(ctx, query, player.Name).Scan(&player.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrPlayerNameConflict
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *sqlPlayerRepository) GetByName(ctx context.Context, exec SQLExecutor, name string) (*models.Player, error) {
	executor := r.getExecutor(exec)
	query := r.dialect.Rebind(`SELECT id, name FROM players WHERE name = $1`)

	player := &models.Player{}
	err := executor.QueryRowContext(ctx, query, name).Scan(&player.ID, &player.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by name: %w", err)
	}
	return player, nil
}

func (r *sqlPlayerRepository) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM players ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return names, nil
}
