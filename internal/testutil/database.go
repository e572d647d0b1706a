package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/go-redis/redis/v8"
)

// SetupTestDB abre la BD de prueba.
// Espera una BD MySQL en localhost:3306 llamada 'storefront_test' (o TEST_MYSQL_DSN).
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		dsn = "root:@tcp(localhost:3306)/storefront_test"
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Verify connection
	err = db.Ping()
	if err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB limpia la BD de prueba
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"CartSnapshots"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables crea las tablas necesarias para los tests
func SetupTestTables(t *testing.T, db *sql.DB) {
	createCartSnapshotsTable := `
	CREATE TABLE IF NOT EXISTS CartSnapshots (
		cartKey VARCHAR(191) NOT NULL PRIMARY KEY,
		payload JSON NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

	if _, err := db.Exec(createCartSnapshotsTable); err != nil {
		t.Logf("failed to create table CartSnapshots: %v", err)
	}
}

// SetupTestRedis conecta a Redis en localhost:6379 (o TEST_REDIS_URL) usando la BD 15.
func SetupTestRedis(t *testing.T) *redis.Client {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/15"
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("failed to parse test redis url: %v", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		t.Skipf("test redis not available: %v", err)
	}

	return rdb
}

// CleanupTestRedis vacía la BD de prueba y cierra el cliente
func CleanupTestRedis(t *testing.T, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	if err := rdb.FlushDB(context.Background()).Err(); err != nil {
		t.Logf("failed to flush test redis: %v", err)
	}
	rdb.Close()
}
