package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int32
	err  error
}

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func (j *countingJob) Name() string { return j.name }

func newTestScheduler() *Scheduler {
	return New(zerolog.New(nil).Level(zerolog.Disabled))
}

func TestScheduler_AddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob("0 */5 * * * *", &countingJob{name: "a"}))
	assert.Error(t, s.AddJob("0 */5 * * * *", &countingJob{name: "a"}), "duplicate name")
	assert.Error(t, s.AddJob("not a schedule", &countingJob{name: "b"}))

	status := s.Status()
	require.Len(t, status, 1)
	assert.Equal(t, "a", status[0].Name)
	assert.Equal(t, "0 */5 * * * *", status[0].Schedule)
	assert.Zero(t, status[0].Runs)
}

func TestScheduler_RunNowRecordsOutcome(t *testing.T) {
	s := newTestScheduler()
	ok := &countingJob{name: "ok"}
	failing := &countingJob{name: "failing", err: errors.New("boom")}
	require.NoError(t, s.AddJob("@hourly", ok))
	require.NoError(t, s.AddJob("@hourly", failing))

	require.NoError(t, s.RunNow(ok))
	require.NoError(t, s.RunByName("ok"))
	assert.EqualError(t, s.RunByName("failing"), "boom")
	assert.Error(t, s.RunByName("missing"))

	status := s.Status()
	require.Len(t, status, 2)
	assert.Equal(t, "failing", status[0].Name)
	assert.Equal(t, "boom", status[0].LastError)
	assert.Equal(t, 1, status[0].Runs)
	assert.Equal(t, "ok", status[1].Name)
	assert.Equal(t, 2, status[1].Runs)
	assert.Empty(t, status[1].LastError)
	assert.False(t, status[1].LastRun.IsZero())
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "tick"}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	assert.False(t, s.Status()[0].Next.IsZero())
}
