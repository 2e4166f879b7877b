package ingest

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/lead-reports/internal/config"
	"github.com/AngelCh415/lead-reports/internal/models"
	"github.com/AngelCh415/lead-reports/internal/store"
)

const callCSV = `Owner,Call Duration,Lead Stage,CreatedOn
Telecaller 3,0h:1m:0s,New,2024-05-06 10:15:00
Telecaller 5,1m:0s,Hot,2024-05-06 10:40:00
Admin ,,New,2024-05-06 11:05:00
X,0h:0m:30s,Cold,2024-05-06 11:10:00
Telecaller 3,garbage,Hot,2024-05-06 13:00:00
`

// first two data rows of callCSV
var shortCSV = strings.Join(strings.SplitAfter(callCSV, "\n")[:3], "")

func newTestETL(maxBytes int64) (*ETL, *store.MemoryStore) {
	st := store.NewMemoryStore(time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{MaxUploadBytes: maxBytes}
	return NewETL(newTestNormalizer(), st, log, cfg), st
}

func TestUploadStoresNormalizedDataset(t *testing.T) {
	etl, st := newTestETL(1 << 20)
	id := st.Create()

	res, err := etl.Upload(context.Background(), id, "calls.csv", strings.NewReader(callCSV))
	require.NoError(t, err)
	assert.Equal(t, 5, res.Rows)
	assert.True(t, res.Normalized)
	assert.Equal(t, 1, res.TotalIssues)
	assert.Contains(t, res.Columns, models.ColGroup)

	snap, err := st.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "calls.csv", snap.Filename)
	assert.Equal(t, models.Str("Admin"), snap.Dataset.Value(2, models.ColGroup))
	assert.True(t, snap.Dataset.Value(2, models.ColDurationSeconds).IsNull())
	assert.Equal(t, models.Int(0), snap.Dataset.Value(4, models.ColDurationSeconds))
	assert.Equal(t, models.KindTime, snap.Dataset.Value(0, models.ColCreatedOn).Kind())
}

func TestUploadInputErrorsKeepCache(t *testing.T) {
	etl, st := newTestETL(256)
	id := st.Create()
	_, err := etl.Upload(context.Background(), id, "calls.csv", strings.NewReader(shortCSV))
	require.NoError(t, err)
	before, err := st.Get(id)
	require.NoError(t, err)

	_, err = etl.Upload(context.Background(), id, "calls.pdf", strings.NewReader(shortCSV))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = etl.Upload(context.Background(), id, "calls.csv", strings.NewReader("Owner\n"))
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = etl.Upload(context.Background(), id, "calls.csv", strings.NewReader("Owner,Lead Stage\n,\n,\n"))
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = etl.Upload(context.Background(), id, "calls.csv", strings.NewReader(strings.Repeat("x", 257)))
	assert.ErrorIs(t, err, ErrTooLarge)

	after, err := st.Get(id)
	require.NoError(t, err)
	assert.Equal(t, before.Dataset, after.Dataset)
	assert.Equal(t, before.LoadedAt, after.LoadedAt)
}

func TestUploadCanceled(t *testing.T) {
	etl, st := newTestETL(1 << 20)
	id := st.Create()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := etl.Upload(ctx, id, "calls.csv", strings.NewReader(callCSV))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = st.Get(id)
	assert.ErrorIs(t, err, store.ErrEmpty)
}
