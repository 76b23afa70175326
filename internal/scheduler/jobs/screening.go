package jobs

import (
	"context"

	"github.com/wonny/kquant/internal/export"
	"github.com/wonny/kquant/internal/screening"
	"github.com/wonny/kquant/pkg/logger"
)

// ScreeningJob runs the daily screening pipeline and publishes the snapshot.
// 단위 판정 실패는 재시도로 해결되지 않으므로 그대로 에러 반환.
type ScreeningJob struct {
	engine       *screening.Engine
	materializer *screening.Materializer
	exporter     *export.Exporter
	schedule     string
	logger       *logger.Logger
}

// NewScreeningJob creates the daily screening job. exporter may be nil to
// skip CSV output.
func NewScreeningJob(engine *screening.Engine, mat *screening.Materializer, exporter *export.Exporter, schedule string, log *logger.Logger) *ScreeningJob {
	return &ScreeningJob{
		engine:       engine,
		materializer: mat,
		exporter:     exporter,
		schedule:     schedule,
		logger:       log,
	}
}

// Name returns the job name
func (j *ScreeningJob) Name() string {
	return "daily_screening"
}

// Schedule returns the cron schedule expression
func (j *ScreeningJob) Schedule() string {
	return j.schedule
}

// Run executes one screening pass end to end.
func (j *ScreeningJob) Run(ctx context.Context) error {
	snap, err := j.engine.Run(ctx)
	if err != nil {
		return err
	}

	diff, err := j.materializer.Publish(ctx, snap)
	if err != nil {
		return err
	}

	for _, d := range diff.Strategies {
		if len(d.Added) == 0 && len(d.Removed) == 0 {
			continue
		}
		j.logger.WithFields(map[string]interface{}{
			"strategy": d.Strategy,
			"added":    d.Added,
			"removed":  d.Removed,
		}).Info("Strategy membership changed")
	}

	if j.exporter != nil {
		if _, err := j.exporter.ExportAll(snap); err != nil {
			// 내보내기 실패는 스냅샷 발행을 되돌리지 않음
			j.logger.WithError(err).Warn("CSV export failed")
		}
	}

	return nil
}
