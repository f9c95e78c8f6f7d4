// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.ArchiveConfig{
		ArchiveDir: filepath.Join(t.TempDir(), "archive"),
		MaxResults: 20,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(topic string) *types.RunRecord {
	return &types.RunRecord{
		Topic:     topic,
		Model:     "gemini-2.5-flash",
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Findings: []types.Finding{
			{Question: "What is it?", Text: "A renewable energy source."},
			{Question: "How much does it cost?", Text: "Research unavailable for this question.", Placeholder: true},
			{Question: "Where is it used?", Text: "Worldwide, led by China and the US."},
		},
		Report: "# Report on " + topic + "\n\nSolar power converts sunlight into electricity.",
	}
}

func TestSaveAndGetRun(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	run := sampleRun("Benefits of solar energy")
	require.NoError(t, store.SaveRun(ctx, run))
	require.NotZero(t, run.ID)

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, run.Topic, got.Topic)
	assert.Equal(t, run.Model, got.Model)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, run.Report, got.Report)
	require.Len(t, got.Findings, 3)
	assert.Equal(t, run.Findings, got.Findings)
	assert.True(t, got.Findings[1].Placeholder)
}

func TestGetRunNotFound(t *testing.T) {
	store := testStore(t)

	_, err := store.GetRun(context.Background(), 999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListRunsNewestFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, topic := range []string{"solar energy", "wind power", "geothermal heat"} {
		require.NoError(t, store.SaveRun(ctx, sampleRun(topic)))
	}

	summaries, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, "geothermal heat", summaries[0].Topic)
	assert.Equal(t, "wind power", summaries[1].Topic)
	assert.Equal(t, "solar energy", summaries[2].Topic)
	assert.Equal(t, 3, summaries[0].Questions)
}

func TestListRunsLimit(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, topic := range []string{"one", "two", "three"} {
		require.NoError(t, store.SaveRun(ctx, sampleRun(topic)))
	}

	summaries, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}

func TestSearchMatchesTopicAndReport(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	solar := sampleRun("Benefits of solar energy")
	require.NoError(t, store.SaveRun(ctx, solar))

	wind := sampleRun("Offshore wind farms")
	wind.Report = "# Report\n\nTurbines in shallow water generate steady output."
	require.NoError(t, store.SaveRun(ctx, wind))

	// Match on topic.
	results, err := store.Search(ctx, "solar", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, solar.ID, results[0].ID)
	assert.NotEmpty(t, results[0].Snippet)

	// Match on report body.
	results, err = store.Search(ctx, "turbines", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, wind.ID, results[0].ID)

	// No match.
	results, err = store.Search(ctx, "nuclear", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchEmptyQuery(t *testing.T) {
	store := testStore(t)

	_, err := store.Search(context.Background(), "", 0)
	require.Error(t, err)
}

func TestExportYAML(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, sampleRun("solar energy")))
	require.NoError(t, store.SaveRun(ctx, sampleRun("wind power")))

	path, err := store.ExportYAML(ctx)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var runs []types.RunRecord
	require.NoError(t, yaml.Unmarshal(data, &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, "wind power", runs[0].Topic)
	assert.Len(t, runs[0].Findings, 3)
}

func TestExportJSON(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, sampleRun("solar energy")))

	path, err := store.ExportJSON(ctx)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var runs []types.RunRecord
	require.NoError(t, json.Unmarshal(data, &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "solar energy", runs[0].Topic)
}

func TestStoreReopens(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "archive")
	cfg := types.ArchiveConfig{ArchiveDir: dir}

	store, err := NewStore(cfg)
	require.NoError(t, err)
	run := sampleRun("persistent topic")
	require.NoError(t, store.SaveRun(context.Background(), run))
	require.NoError(t, store.Close())

	reopened, err := NewStore(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, "persistent topic", got.Topic)
}
