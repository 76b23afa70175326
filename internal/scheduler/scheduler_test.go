package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/kquant/pkg/config"
	"github.com/wonny/kquant/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
}

type stubJob struct {
	name     string
	schedule string
	runs     int
	err      error
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestAddJob(t *testing.T) {
	s := New(testLogger())
	job := &stubJob{name: "test_job", schedule: "0 30 16 * * 1-5"}

	require.NoError(t, s.AddJob(job))

	// 같은 이름은 중복 등록 불가
	err := s.AddJob(&stubJob{name: "test_job", schedule: "0 0 0 * * *"})
	assert.Error(t, err)
}

func TestAddJobInvalidSchedule(t *testing.T) {
	s := New(testLogger())

	err := s.AddJob(&stubJob{name: "bad", schedule: "not-a-cron"})
	assert.Error(t, err)
}

func TestRunJobNotFound(t *testing.T) {
	s := New(testLogger())

	err := s.RunJob("missing")
	assert.Error(t, err)
}

func TestRunJobRecordsHistory(t *testing.T) {
	s := New(testLogger())
	job := &stubJob{name: "test_job", schedule: "0 30 16 * * 1-5"}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, 1, job.runs)

	history := s.History("test_job")
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.Empty(t, history[0].Error)
}
