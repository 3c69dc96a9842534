package repositories

import (
	"context"
	"database/sql"
)

// SQLExecutor - общий интерфейс *sql.DB и *sql.Tx, чтобы методы можно было вызывать внутри транзакции.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
