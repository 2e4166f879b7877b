package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/lead-reports/internal/models"
)

func TestSessionLifecycle(t *testing.T) {
	st := NewMemoryStore(time.Hour)
	id := st.Create()
	assert.True(t, st.Exists(id))

	_, err := st.Get(id)
	assert.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, st.Put(id, "a.csv", sample()))
	snap, err := st.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, snap.SessionID)
	assert.Equal(t, "a.csv", snap.Filename)
	assert.Equal(t, 3, snap.Dataset.Len())

	next := models.Dataset{Columns: []string{"A"}, Rows: []models.Record{{"A": models.Int(1)}}}
	require.NoError(t, st.Put(id, "b.csv", next))
	snap, err = st.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "b.csv", snap.Filename)
	assert.Equal(t, []string{"A"}, snap.Dataset.Columns, "replaced wholesale")

	assert.True(t, st.Delete(id))
	assert.False(t, st.Delete(id))
	_, err = st.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetReturnsPrivateCopy(t *testing.T) {
	st := NewMemoryStore(time.Hour)
	id := st.Create()
	require.NoError(t, st.Put(id, "a.csv", sample()))

	snap, err := st.Get(id)
	require.NoError(t, err)
	snap.Dataset.Rows[0]["Owner"] = models.Str("mutated")
	snap.Dataset.Rows = snap.Dataset.Rows[:1]

	again, err := st.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Dataset.Len())
	assert.Equal(t, models.Str("Admin "), again.Dataset.Value(0, "Owner"))
}

func TestPutRejectsBadID(t *testing.T) {
	st := NewMemoryStore(time.Hour)
	err := st.Put("not-a-uuid", "a.csv", sample())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, st.Len())
}

func TestPutCreatesSession(t *testing.T) {
	st := NewMemoryStore(time.Hour)
	id := NewSessionID()
	require.NoError(t, st.Put(id, "a.csv", sample()))
	assert.True(t, st.Exists(id))
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewMemoryStore(30 * time.Minute)
	st.now = func() time.Time { return now }

	idle := st.Create()
	busy := st.Create()

	now = now.Add(20 * time.Minute)
	_, _ = st.Get(busy)

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, st.Sweep())
	assert.False(t, st.Exists(idle))
	assert.True(t, st.Exists(busy))
	assert.Equal(t, 1, st.Len())
}

func TestSweepDisabledWithoutTTL(t *testing.T) {
	st := NewMemoryStore(0)
	st.Create()
	assert.Equal(t, 0, st.Sweep())
	assert.Equal(t, 1, st.Len())
}
