package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskGLIntegrity verifies journal entry totals against their lines.
	TaskGLIntegrity = "gl:integrity"
	// TaskReportWarmup primes the report cache for the current year.
	TaskReportWarmup = "reports:warmup"
)

// GLIntegrityPayload scopes the integrity scan. CompanyID zero scans
// every company; FiscalYear zero scans all years.
type GLIntegrityPayload struct {
	CompanyID  int64 `json:"companyId"`
	FiscalYear int   `json:"fiscalYear"`
}

// NewGLIntegrityTask constructs the integrity scan task.
func NewGLIntegrityTask(payload GLIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGLIntegrity, data), nil
}

// NewReportWarmupTask constructs the cache warmup task.
func NewReportWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskReportWarmup, nil)
}
