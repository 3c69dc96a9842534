package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/commander-ledger/repositories"
)

// handleRepositoryError - общий хелпер для ошибок репозитория
func handleRepositoryError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPlayerNameConflict):
		return ErrPlayerAlreadyExists
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	default:
		return fmt.Errorf("repository error: %w", err)
	}
}
