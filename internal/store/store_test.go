package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-authgate/accountgate/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestStoreWithSQLite tests store operations with SQLite
func TestStoreWithSQLite(t *testing.T) {
	testBasicOperations(t, "sqlite", nil)
}

// TestStoreWithPostgres tests store operations with PostgreSQL
func TestStoreWithPostgres(t *testing.T) {
	// Skip if running short tests or Docker is not available
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}

	// Recover from panic if Docker is not available
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Skipping PostgreSQL test: Docker not available (panic: %v)", r)
		}
	}()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("Skipping PostgreSQL test: Docker not available (%v)", err)
		return
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	testBasicOperations(t, "postgres", pgContainer)
}

func createFreshStore(t *testing.T, driver string, pgContainer *postgres.PostgresContainer) *Store {
	t.Helper()

	var dsn string
	switch driver {
	case "sqlite":
		dsn = filepath.Join(t.TempDir(), "accountgate.db")
	case "postgres":
		dbName := "test_" + uuid.New().String()[:8]
		ctx := context.Background()

		createDBCmd := fmt.Sprintf("CREATE DATABASE %s", dbName)
		_, _, err := pgContainer.Exec(
			ctx,
			[]string{"psql", "-U", "testuser", "-d", "testdb", "-c", createDBCmd},
		)
		require.NoError(t, err)

		host, err := pgContainer.Host(ctx)
		require.NoError(t, err)
		port, err := pgContainer.MappedPort(ctx, "5432")
		require.NoError(t, err)
		dsn = fmt.Sprintf(
			"host=%s port=%s user=testuser password=testpass dbname=%s sslmode=disable",
			host, port.Port(), dbName,
		)
	default:
		t.Fatalf("unsupported driver: %s", driver)
	}

	s, err := New(driver, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestUser(email string) *models.User {
	return &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: "hash",
		DisplayName:  "Test User",
	}
}

func testBasicOperations(t *testing.T, driver string, pgContainer *postgres.PostgresContainer) {
	ctx := context.Background()

	t.Run("CreateAndGetUser", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)

		user := newTestUser("Alice@Example.com ")
		require.NoError(t, s.CreateUser(ctx, user))
		assert.Equal(t, "alice@example.com", user.Email)

		byEmail, err := s.GetUserByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.False(t, byEmail.IsDisabled())

		byID, err := s.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", byID.Email)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)

		require.NoError(t, s.CreateUser(ctx, newTestUser("bob@example.com")))
		err := s.CreateUser(ctx, newTestUser("BOB@example.com"))
		assert.ErrorIs(t, err, ErrEmailConflict)
	})

	t.Run("GetMissingUser", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)

		_, err := s.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrRecordNotFound)

		_, err = s.GetUserByID(ctx, uuid.New().String())
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("UpdateLastLogin", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)

		user := newTestUser("carol@example.com")
		require.NoError(t, s.CreateUser(ctx, user))

		at := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, s.UpdateLastLogin(ctx, user.ID, at))

		got, err := s.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastLoginAt)
		assert.True(t, got.LastLoginAt.Equal(at))
	})

	t.Run("DeleteUser", func(t *testing.T) {
		s := createFreshStore(t, driver, pgContainer)

		user := newTestUser("dave@example.com")
		require.NoError(t, s.CreateUser(ctx, user))
		require.NoError(t, s.DeleteUser(ctx, user.ID))

		_, err := s.GetUserByID(ctx, user.ID)
		assert.ErrorIs(t, err, ErrRecordNotFound)

		assert.ErrorIs(t, s.DeleteUser(ctx, user.ID), ErrRecordNotFound)
	})
}

func TestGetDialector_Unsupported(t *testing.T) {
	_, err := GetDialector("mysql", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver: mysql")
}
