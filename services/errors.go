package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Класс ошибок валидации: входные данные клиента некорректны, повторять запрос как есть бессмысленно.
	ErrValidationFailed = errors.New("validation failed")

	// Причины отклонения результата партии
	ErrTooFewPlayers      = errors.New("too few players")
	ErrDuplicatePlayer    = errors.New("duplicate player")
	ErrEndNotAfterStart   = errors.New("end not after start")
	ErrPartialDraw        = errors.New("partial draw not allowed")
	ErrRankOutOfBounds    = errors.New("rank out of bounds")
	ErrAllTiedForFirst    = errors.New("all players tied for first")
	ErrNoFirstPlace       = errors.New("no first place")
	ErrInvalidRanking     = errors.New("invalid ranking")
	ErrNoCommanders       = errors.New("no commanders")
	ErrEmptyCommander     = errors.New("empty commander")
	ErrPlayerNameRequired = errors.New("player name is required")

	// Ошибки данных: запрос валиден, но не может быть применён к текущему состоянию
	ErrUnknownPlayer       = errors.New("unknown player")
	ErrPlayerAlreadyExists = errors.New("player already exists")
	ErrPlayerNotFound      = errors.New("player not found")

	// Ошибки каталога командиров
	ErrCatalogFetchFailed = errors.New("commander catalog fetch failed")
	ErrCatalogEmpty       = errors.New("commander catalog refresh produced no commanders")
)

// RejectionError - отказ валидатора. Error() возвращает текст для клиента,
// а errors.Is срабатывает и на ErrValidationFailed, и на конкретную причину.
type RejectionError struct {
	Reason error
	Text   string
}

func (e *RejectionError) Error() string {
	return e.Text
}

func (e *RejectionError) Unwrap() []error {
	return []error{ErrValidationFailed, e.Reason}
}

func reject(reason error, text string) *RejectionError {
	return &RejectionError{Reason: reason, Text: text}
}
