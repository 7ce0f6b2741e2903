package droptarget

import "sync"

// Queue is a single-goroutine FIFO task runner that stands in for a
// window's UI execution context. Post hands a task to the runner and
// returns without waiting for it to execute; tasks run one at a time in
// the order posted.
type Queue struct {
	mu     sync.Mutex
	tasks  chan func()
	done   chan struct{}
	closed bool
}

// NewQueue starts the runner goroutine.
func NewQueue() *Queue {
	q := &Queue{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for task := range q.tasks {
		task()
	}
}

// Post queues a task. Posting after Close, or a nil task, is a no-op.
func (q *Queue) Post(task func()) {
	if task == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.tasks <- task
}

// Close stops intake, runs every task posted so far, then stops the
// runner. Safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()
	<-q.done
}
