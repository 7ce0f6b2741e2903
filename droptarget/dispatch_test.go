package droptarget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsTasksInOrder(t *testing.T) {
	q := NewQueue()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		q.Post(func() { got = append(got, i) })
	}
	q.Close()

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestQueuePostReturnsBeforeTaskRuns(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	release := make(chan struct{})
	ran := make(chan struct{})

	// Occupy the runner so the next post cannot have run by the time
	// Post returns.
	q.Post(func() { <-release })
	q.Post(func() { close(ran) })

	select {
	case <-ran:
		t.Fatal("task ran before the runner was released")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestQueueCloseWaitsForPostedTasks(t *testing.T) {
	q := NewQueue()

	done := false
	q.Post(func() { time.Sleep(10 * time.Millisecond); done = true })
	q.Close()

	assert.True(t, done)
}

func TestQueuePostAfterCloseIsNoOp(t *testing.T) {
	q := NewQueue()
	q.Close()

	assert.NotPanics(t, func() {
		q.Post(func() { t.Error("task ran after close") })
	})
}

func TestQueueCloseTwice(t *testing.T) {
	q := NewQueue()
	assert.NotPanics(t, func() {
		q.Close()
		q.Close()
	})
}

func TestQueueNilTask(t *testing.T) {
	q := NewQueue()
	defer q.Close()
	assert.NotPanics(t, func() { q.Post(nil) })
}
