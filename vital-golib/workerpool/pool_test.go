package workerpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
)

func Test_RunJobs(t *testing.T) {
	pool := New(5)
	defer pool.Stop()

	var jobs []Job
	var completed int32
	for i := 0; i < 15; i++ {
		jobs = append(jobs, func() error {
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&completed, 1)
			return nil
		})
	}

	pool.Add(jobs)
	require.NoError(t, pool.Wait())
	require.EqualValues(t, len(jobs), completed, "expected all jobs to be completed")
}

func Test_Errors(t *testing.T) {
	pool := New(3)
	defer pool.Stop()

	pool.Add([]Job{
		func() error { return nil },
		func() error { return errors.New("shard 1 failed") },
		func() error { panic("shard 2 blew up") },
	})

	err := pool.Wait()
	require.Error(t, err)
	errs, ok := err.(errors.Errors)
	require.True(t, ok)
	assert.Equal(t, 2, errs.Len())
}

func Test_StopWait(t *testing.T) {
	pool := New(5)

	var jobs []Job
	var started int32
	for i := 0; i < 15; i++ {
		jobs = append(jobs, func() error {
			atomic.AddInt32(&started, 1)
			time.Sleep(50 * time.Millisecond)
			return nil
		})
	}

	pool.Add(jobs)
	<-time.After(20 * time.Millisecond)
	pool.Stop()
	require.NoError(t, pool.Wait())
	assert.True(t, atomic.LoadInt32(&started) < int32(len(jobs)), "unstarted jobs should be dropped")
}

func Test_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewWithCtx(ctx, 2)
	var ran int32
	pool.Add([]Job{func() error {
		atomic.AddInt32(&ran, 1)
		return nil
	}})
	require.NoError(t, pool.Wait())
	assert.EqualValues(t, 0, atomic.LoadInt32(&ran))
}
