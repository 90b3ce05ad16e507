package pool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteRunsAllTasks(t *testing.T) {
	p := New(4, 100, nil)
	var count atomic.Int64
	for i := 0; i < 50; i++ {
		p.Execute(func() { count.Add(1) })
	}
	p.Finish()
	assert.Equal(t, int64(50), count.Load())
}

func TestFinishIsReusable(t *testing.T) {
	p := New(2, 10, nil)
	var count atomic.Int64
	for i := 0; i < 5; i++ {
		p.Execute(func() { count.Add(1) })
	}
	p.Finish()
	for i := 0; i < 5; i++ {
		p.Execute(func() { count.Add(1) })
	}
	p.Finish()
	assert.Equal(t, int64(10), count.Load())
}

func TestReentrantExecuteCountedBeforeDecrement(t *testing.T) {
	p := New(2, 10, nil)
	var count atomic.Int64
	var submit func(n int)
	submit = func(n int) {
		if n > 0 {
			p.Execute(func() { submit(n - 1) })
		}
		count.Add(1)
	}
	p.Execute(func() { submit(5) })
	p.Finish()
	assert.Equal(t, int64(6), count.Load())
}

func TestReentrantExecuteDoesNotDeadlockOnFullQueue(t *testing.T) {
	p := New(2, 2, nil)
	var count atomic.Int64

	var fanOut func(n int)
	fanOut = func(n int) {
		count.Add(1)
		if n <= 0 {
			return
		}
		for i := 0; i < 20; i++ {
			p.Execute(func() { fanOut(n - 1) })
		}
	}
	p.Execute(func() { fanOut(2) })

	done := make(chan struct{})
	go func() {
		p.Finish()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		require.Fail(t, "pool deadlocked on re-entrant Execute against a full queue")
	}
	assert.Equal(t, int64(1+20+20*20), count.Load())
}

func TestTaskPanicIsLoggedAndPoolSurvives(t *testing.T) {
	logger := &captureLogger{}
	p := New(2, 10, logger)

	p.Execute(func() { panic("boom") })
	p.Finish()

	var ran bool
	p.Execute(func() { ran = true })
	p.Finish()

	assert.True(t, ran)
	assert.NotEmpty(t, logger.messages)
}

func TestClampsWorkerAndQueueCountToOne(t *testing.T) {
	p := New(-1, -1, nil)
	var ran bool
	p.Execute(func() { ran = true })
	p.Finish()
	assert.True(t, ran)
}

func TestShutdownDrainsThenStops(t *testing.T) {
	p := New(2, 10, nil)
	var count atomic.Int64
	for i := 0; i < 10; i++ {
		p.Execute(func() {
			time.Sleep(time.Millisecond)
			count.Add(1)
		})
	}
	p.Shutdown()
	assert.Equal(t, int64(10), count.Load())

	ok := p.Execute(func() {})
	assert.False(t, ok)
}

func TestShutdownIsIdempotent(t *testing.T) {
	p := New(2, 10, nil)
	p.Shutdown()
	p.Shutdown()
}

func TestJoinWaitsThenShutsDown(t *testing.T) {
	p := New(2, 10, nil)
	done := make(chan struct{})
	p.Execute(func() { close(done) })
	p.Join()

	select {
	case <-done:
	default:
		require.Fail(t, "task did not run before Join returned")
	}
	assert.False(t, p.Execute(func() {}))
}

type captureLogger struct {
	messages []string
}

func (c *captureLogger) Errorf(format string, args ...any) {
	c.messages = append(c.messages, format)
}
