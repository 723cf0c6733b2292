package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddJob_InvalidSpec_ReturnsError(t *testing.T) {
	s := New()

	err := s.AddJob(Job{Name: "bad", Spec: "not a cron spec", Run: func(ctx context.Context) error { return nil }})

	assert.Error(t, err)
}

func TestScheduler_RunsJobAndReportsResult(t *testing.T) {
	s := New()
	results := make(chan error, 1)
	s.OnResult = func(job Job, err error) {
		results <- err
	}

	err := s.AddJob(Job{
		Name: "tick",
		Spec: "@every 10ms",
		Run:  func(ctx context.Context) error { return nil },
	})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case err := <-results:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run in time")
	}
}

func TestScheduler_ReportsJobError(t *testing.T) {
	s := New()
	results := make(chan error, 1)
	s.OnResult = func(job Job, err error) {
		results <- err
	}

	boom := assertError{"boom"}
	err := s.AddJob(Job{
		Name: "failing",
		Spec: "@every 10ms",
		Run:  func(ctx context.Context) error { return boom },
	})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case err := <-results:
		assert.Equal(t, boom, err)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run in time")
	}
}

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }
