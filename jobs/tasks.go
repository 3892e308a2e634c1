package jobs

import (
	"encoding/json"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskListWarmup re-populates the cached first page of admin tables.
	TaskListWarmup = "list:warmup"
	// AllTables asks a warmup run to cover every registered table.
	AllTables = "all"
)

// ListWarmupPayload names the table to warm. An empty table or AllTables
// warms every table the worker knows.
type ListWarmupPayload struct {
	Table string `json:"table"`
}

// NewListWarmupTask constructs a warmup task for table.
func NewListWarmupTask(table string) (*asynq.Task, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		table = AllTables
	}
	data, err := json.Marshal(ListWarmupPayload{Table: table})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskListWarmup, data), nil
}
