package workers

import (
	"context"
	"errors"
	"sync"

	"video-renditions/internal/logging"
	"video-renditions/internal/metrics"
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// Task is a unit of work run by the pool.
type Task func(ctx context.Context)

// Pool runs at most Size tasks at once. Tasks beyond that wait and start
// in submission order. Submit never blocks.
type Pool struct {
	size int

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Task
	busy   int
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool starts a pool of size workers. size < 1 is treated as 1.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		size:   size,
		ctx:    ctx,
		cancel: cancel,
	}
	p.cond = sync.NewCond(&p.mu)

	metrics.WorkerPoolSize.Set(float64(size))

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Size is the concurrency bound.
func (p *Pool) Size() int {
	return p.size
}

// Submit queues t.
func (p *Pool) Submit(t Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.queue = append(p.queue, t)
	p.cond.Signal()
	return nil
}

// Pending returns the number of queued tasks not yet started.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Busy returns the number of running tasks.
func (p *Pool) Busy() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// Close stops accepting tasks and waits for queued and running tasks to
// finish.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		task := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.busy++
		metrics.WorkerPoolBusy.Set(float64(p.busy))
		p.mu.Unlock()

		p.run(task)

		p.mu.Lock()
		p.busy--
		metrics.WorkerPoolBusy.Set(float64(p.busy))
		p.mu.Unlock()
	}
}

func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("worker task panicked: %v", r)
		}
	}()
	task(p.ctx)
}
