package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-cms/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// TableWarmer loads the default page of one table into the list cache and
// reports how many pages it touched.
type TableWarmer interface {
	Warm(ctx context.Context) (int, error)
}

// ListWarmupJob handles list:warmup tasks.
type ListWarmupJob struct {
	Tables  map[string]TableWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewListWarmupJob wires the warmers keyed by table name.
func NewListWarmupJob(tables map[string]TableWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ListWarmupJob {
	return &ListWarmupJob{Tables: tables, Logger: logger, Metrics: metrics, Timeout: 20 * time.Second}
}

// Handle processes list warmup tasks.
func (j *ListWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("list warmup: handler not configured")
	}
	var payload ListWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	return j.Run(ctx, payload.Table)
}

// Run warms table, or every table for AllTables.
func (j *ListWarmupJob) Run(ctx context.Context, table string) error {
	targets, err := j.targets(table)
	if err != nil {
		j.logger().Warn("skip list warmup", slog.String("table", table), slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	tracker := j.metrics().Track(TaskListWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := time.Now()
	for _, name := range targets {
		pages, err := j.warm(ctx, name)
		if err != nil {
			resultErr = err
			j.logger().Error("warm table", slog.String("table", name), slog.Any("error", err))
			return resultErr
		}
		j.metrics().AddWarmed(name, pages)
	}
	j.logger().Info("completed list warmup", slog.Int("tables", len(targets)), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ListWarmupJob) warm(ctx context.Context, table string) (int, error) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	tableCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return j.Tables[table].Warm(tableCtx)
}

func (j *ListWarmupJob) targets(table string) ([]string, error) {
	if table == "" || table == AllTables {
		names := make([]string, 0, len(j.Tables))
		for name := range j.Tables {
			names = append(names, name)
		}
		sort.Strings(names)
		return names, nil
	}
	if _, ok := j.Tables[table]; !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return []string{table}, nil
}

func (j *ListWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskListWarmup))
	}
	return slog.Default().With(slog.String("job", TaskListWarmup))
}

func (j *ListWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
