package testhelpers

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/recipe-search/backend/internal/database"
)

const (
	pgUser     = "recipes"
	pgPassword = "recipes"
	pgDatabase = "recipes"
)

// SetupSQLiteDB returns a migrated SQLite database in a file under the
// test's temp dir. The pool is closed when the test ends.
func SetupSQLiteDB(t *testing.T) *database.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "recipes.db")
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}

	return migrateAndWrap(t, gdb)
}

// SetupPostgresDB starts a Postgres container and returns a migrated
// database connected to it. The test is skipped when Docker is not
// available or -short is set.
func SetupPostgresDB(t *testing.T) *database.DB {
	t.Helper()
	requireDocker(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDatabase,
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
					return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
						pgUser, pgPassword, host, port.Port(), pgDatabase)
				}),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, mappedPort.Port(), pgUser, pgPassword, pgDatabase)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	return migrateAndWrap(t, gdb)
}

func migrateAndWrap(t *testing.T, gdb *gorm.DB) *database.DB {
	t.Helper()

	if err := database.RunMigrations(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	db, err := database.Wrap(gdb)
	if err != nil {
		t.Fatalf("failed to get connection pool: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}
}

// loaderSchema is the table layout produced by the external data loader:
// every column is nullable, including nutrients.
const loaderSchema = `CREATE TABLE recipes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	cuisine VARCHAR(255),
	title VARCHAR(255),
	rating FLOAT,
	prep_time INT,
	cook_time INT,
	total_time INT,
	description TEXT,
	nutrients TEXT,
	serves VARCHAR(255)
)`

// SetupLoaderSQLiteDB returns a SQLite database whose recipes table was
// created by the external loader rather than by RunMigrations.
func SetupLoaderSQLiteDB(t *testing.T) *database.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "USA_recipes.db")
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := gdb.Exec(loaderSchema).Error; err != nil {
		t.Fatalf("failed to create loader schema: %v", err)
	}

	db, err := database.Wrap(gdb)
	if err != nil {
		t.Fatalf("failed to get connection pool: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
