package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverdueScan reports entries past due that are still pendente.
	TaskOverdueScan = "finance:overdue_scan"
	// TaskReportsWarmup precomputes the dashboard snapshot into the cache.
	TaskReportsWarmup = "finance:reports_warmup"
)

// OverdueScanPayload scopes the scan to a reference date. A zero date means
// today.
type OverdueScanPayload struct {
	AsOf time.Time `json:"as_of"`
}

// NewOverdueScanTask constructs the overdue scan task.
func NewOverdueScanTask(payload OverdueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, data), nil
}

// NewReportsWarmupTask constructs the warmup task. It carries no payload.
func NewReportsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskReportsWarmup, nil)
}

// DecodeOverdueScan parses an overdue scan payload, defaulting AsOf.
func DecodeOverdueScan(t *asynq.Task, now func() time.Time) (OverdueScanPayload, error) {
	var payload OverdueScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return OverdueScanPayload{}, asynq.SkipRetry
		}
	}
	if payload.AsOf.IsZero() {
		payload.AsOf = now()
	}
	return payload, nil
}
