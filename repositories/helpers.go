package repositories

import (
	"database/sql"
)

// pickExecutor возвращает транзакцию вызывающего, если она есть, иначе пул соединений.
func pickExecutor(exec SQLExecutor, conn *sql.DB) SQLExecutor {
	if exec != nil {
		return exec
	}
	return conn
}
