//go:build integration

package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_DB":       "structura",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%s/structura?sslmode=disable", host, port.Port())

	_, file, _, _ := runtime.Caller(0)
	migrations := filepath.Join(filepath.Dir(file), "..", "..", "migrations")
	m, err := migrate.New("file://"+migrations, dsn)
	require.NoError(t, err)
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrate up: %v", err)
	}
	return dsn
}

func TestPostgresRepository(t *testing.T) {
	dsn := setupPostgres(t)
	ctx := context.Background()

	db, r, err := Open(ctx, DriverPostgres, dsn)
	require.NoError(t, err)
	defer db.Close()

	userID, err := r.CreateUser(ctx, "linus", "linus@example.com", "hash")
	require.NoError(t, err)

	rec := AnalysisRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     "garage",
		Status:    "Safe",
		Request:   json.RawMessage(`{"energy":{"area":40}}`),
		Response:  json.RawMessage(`{"energy":{"category":"Average (C/D)"}}`),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, r.SaveAnalysis(ctx, rec))

	got, err := r.GetAnalysis(ctx, userID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Title, got.Title)
	assert.JSONEq(t, string(rec.Response), string(got.Response))

	list, err := r.ListAnalyses(ctx, userID, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, _, err = r.GetBylogin(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
