package taskstore

import "context"

// Status of a background run task.
type Status string

const (
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Task is the shared status record between the run worker (writer) and the
// polling API (reader). A briefly stale progress value is acceptable.
type Task struct {
	ID          string `json:"task_id"`
	Status      Status `json:"status"`
	Progress    int    `json:"progress"`
	ArchiveName string `json:"archive_name,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Finished reports whether the task reached a terminal state.
func (t Task) Finished() bool {
	return t.Status == StatusDone || t.Status == StatusFailed
}

// Store holds task records. Implementations must evict finished tasks after
// a TTL; the registry must not grow without bound.
type Store interface {
	Put(ctx context.Context, task Task) error
	Get(ctx context.Context, id string) (Task, bool, error)
}

// setupOffset is the progress reported once the run root exists but before
// any row has been processed.
const setupOffset = 5

// RowProgress maps rows processed to a 0-100 progress value: a fixed setup
// offset, a linear climb across rows, and the final jump to 100 happens when
// the task is marked done.
func RowProgress(processed, total int) int {
	if total <= 0 {
		return setupOffset
	}
	if processed >= total {
		return 95
	}
	return setupOffset + (95-setupOffset)*processed/total
}
