package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkadam-18/LVDI-2D/internal/model"
)

// Runs against a real pgvector-enabled database when TEST_DATABASE_URL is set
func newTestRepository(t *testing.T) *PostgresRepository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	repo, err := NewPostgresRepository(dsn, 2, 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestPostgresTablesRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	version := "Test" + uuid.NewString()[:8]
	set := model.NewTableSet(model.NormalizeVersion(version))
	set.Add(&model.Table{
		Name:    "industry",
		Columns: []string{"Dimension Value", "2024 Avg Rate Jun"},
		Rows:    [][]string{{"Technology", "1000"}, {"Health Care", ""}},
	})
	set.Add(&model.Table{Name: "industry_x_city", Columns: []string{"Dimension1 Value"}, Rows: [][]string{{"Technology"}}})

	saved, err := repo.SaveTables(ctx, set)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	loaded, err := repo.LoadTables(ctx, version)
	require.NoError(t, err)
	industry, ok := loaded.Lookup1D("industry")
	require.True(t, ok)
	assert.Equal(t, set.OneD["industry"].Rows, industry.Rows)
	assert.Len(t, loaded.TwoD, 1)
}

func TestPostgresQueryLogAndCache(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	version := "Cache" + uuid.NewString()[:8]
	entry := &model.QueryLog{
		ID:      uuid.NewString(),
		Version: version,
		Query:   "rate for tech in 2024",
		Route:   model.RouteText,
		Kind:    model.KindText,
		Intent: &model.Intent{
			Dimensions:   []string{"industry"},
			Year:         "2024",
			Metric:       model.MetricAvgRate,
			FilterValues: model.FilterValues{{Dimension: "industry", Value: "tech"}},
		},
		Answer:     "📊 ...",
		Embedding:  []float32{1, 0, 0},
		ResponseMs: 12,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, repo.LogQuery(ctx, entry))

	intent, err := repo.FindSimilarIntent(ctx, []float32{1, 0.01, 0}, 0.05, version)
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, entry.Intent, intent)

	intent, err = repo.FindSimilarIntent(ctx, []float32{0, 1, 0}, 0.05, version)
	require.NoError(t, err)
	assert.Nil(t, intent)

	require.NoError(t, repo.LogFeedback(ctx, entry.ID, true, "spot on"))
	err = repo.LogFeedback(ctx, uuid.NewString(), false, "")
	assert.ErrorIs(t, err, model.ErrAskNotFound)
}
