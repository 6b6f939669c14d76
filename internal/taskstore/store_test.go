package taskstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowProgress(t *testing.T) {
	tests := []struct {
		name      string
		processed int
		total     int
		want      int
	}{
		{"zero total", 0, 0, 5},
		{"negative total", 0, -1, 5},
		{"before first row", 0, 10, 5},
		{"halfway", 5, 10, 50},
		{"last row pending", 9, 10, 86},
		{"all rows done", 10, 10, 95},
		{"overshoot clamps", 11, 10, 95},
		{"single row start", 0, 1, 5},
		{"single row done", 1, 1, 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RowProgress(tt.processed, tt.total))
		})
	}
}

func TestRowProgressMonotonic(t *testing.T) {
	// Progress never decreases as rows complete and stays inside [5, 95].
	const total = 37
	prev := -1
	for processed := 0; processed <= total; processed++ {
		p := RowProgress(processed, total)
		assert.GreaterOrEqual(t, p, 5)
		assert.LessOrEqual(t, p, 95)
		assert.GreaterOrEqual(t, p, prev)
		prev = p
	}
}

func TestTaskFinished(t *testing.T) {
	assert.False(t, Task{Status: StatusStarting}.Finished())
	assert.False(t, Task{Status: StatusProcessing}.Finished())
	assert.True(t, Task{Status: StatusDone}.Finished())
	assert.True(t, Task{Status: StatusFailed}.Finished())
}

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	defer store.Close()

	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	task := Task{ID: "t1", Status: StatusProcessing, Progress: 42}
	require.NoError(t, store.Put(ctx, task))

	got, ok, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, task, got)

	// Updates overwrite in place.
	task.Status = StatusDone
	task.Progress = 100
	task.ArchiveName = "Research-01-01-2026-at-10-00.zip"
	require.NoError(t, store.Put(ctx, task))

	got, ok, err = store.Get(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, task, got)
}

func TestMemoryStoreEviction(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, Task{ID: "done", Status: StatusDone, Progress: 100}))
	require.NoError(t, store.Put(ctx, Task{ID: "failed", Status: StatusFailed, Progress: 100}))
	require.NoError(t, store.Put(ctx, Task{ID: "running", Status: StatusProcessing, Progress: 30}))

	// Before the TTL elapses nothing is evicted.
	store.evict(time.Now())
	_, ok, _ := store.Get(ctx, "done")
	assert.True(t, ok)

	// Past the TTL only finished tasks go; running tasks are never evicted.
	store.evict(time.Now().Add(2 * time.Minute))

	_, ok, _ = store.Get(ctx, "done")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "failed")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "running")
	assert.True(t, ok)
}
