// Package dbtest открывает одноразовые SQLite базы с применёнными миграциями для тестов.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dosada05/commander-ledger/db"
)

// Open возвращает базу SQLite во временном каталоге теста.
// Пул ограничен одним соединением, поэтому запросы к базе идут последовательно.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "ledger.db")
	conn, err := db.Connect(db.SQLite, dsn, 5*time.Second)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := db.Migrate(context.Background(), conn, db.SQLite); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}
