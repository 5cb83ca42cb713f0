package repo

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) *SQLRepository {
	t.Helper()
	db, r, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return r
}

func TestRebind(t *testing.T) {
	pg := &SQLRepository{dialect: Postgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := &SQLRepository{dialect: SQLite}
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	r := newSQLite(t)

	id, err := r.CreateUser(ctx, "ada", "ada@example.com", "hash")
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = r.CreateUser(ctx, "ada", "other@example.com", "hash2")
	assert.Error(t, err, "login is unique")

	gotID, hash, err := r.GetBylogin(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "hash", hash)

	_, _, err = r.GetBylogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	u, err := r.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	_, err = r.GetUser(ctx, id+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnalyses(t *testing.T) {
	ctx := context.Background()
	r := newSQLite(t)
	userID, err := r.CreateUser(ctx, "grace", "grace@example.com", "hash")
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		rec := AnalysisRecord{
			ID:        uuid.NewString(),
			UserID:    userID,
			Title:     "plan",
			Status:    "Warning",
			Request:   json.RawMessage(`{"safety":{"span":10}}`),
			Response:  json.RawMessage(`{"safety":{"status":"Warning"}}`),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, r.SaveAnalysis(ctx, rec))
		ids = append(ids, rec.ID)
	}

	list, err := r.ListAnalyses(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID, "newest first")
	assert.Equal(t, ids[1], list[1].ID)

	n, err := r.CountAnalyses(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := r.GetAnalysis(ctx, userID, ids[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"safety":{"span":10}}`, string(got.Request))
	assert.True(t, base.Equal(got.CreatedAt), got.CreatedAt)

	_, err = r.GetAnalysis(ctx, userID+1, ids[0])
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), "oracle", "")
	assert.Error(t, err)
}
