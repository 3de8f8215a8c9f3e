package simp

import (
	"sync"

	"github.com/sasha-s/go-deadlock"
)

// Job is a unit of work handed to a worker. workerID is stable within the
// pool, in 0..N-1, and exists only so a job can index into its own
// thread-local scratch buffer (spec.md §4.1 / design notes "thread-local
// scratch").
type Job func(workerID int)

// Pool is the WorkerPool of spec.md §4.1: a fixed-size set of goroutines
// driven by a single coordinator through two primitives, doWork and
// doWorkForEach. join() blocks until the queue is empty and every worker
// is idle; interrupt() makes the next join() return ErrInterrupted instead
// of nil.
type Pool struct {
	mu          deadlock.Mutex
	hasWork     *sync.Cond // signaled when a job is queued
	becameIdle  *sync.Cond // signaled when a worker goes idle
	queue       []Job
	n           int
	waiting     int
	terminate   bool
	interrupted bool
}

// NewPool starts n worker goroutines and returns the coordinator handle.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{n: n}
	p.hasWork = sync.NewCond(&p.mu)
	p.becameIdle = sync.NewCond(&p.mu)
	for id := 0; id < n; id++ {
		go p.worker(id)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.n }

func (p *Pool) worker(id int) {
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.terminate {
			p.waiting++
			p.becameIdle.Broadcast()
			p.hasWork.Wait()
			p.waiting--
		}
		if len(p.queue) == 0 && p.terminate {
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		job(id)
	}
}

// doWork pushes n copies of job, one per worker, and blocks until all have
// run (via join).
func (p *Pool) doWork(job Job) {
	p.mu.Lock()
	for i := 0; i < p.n; i++ {
		p.queue = append(p.queue, job)
	}
	p.hasWork.Broadcast()
	p.mu.Unlock()
	p.join()
}

// doWorkForEach partitions [begin,end) into contiguous batches whose base
// size is ceil((end-begin)/n), capped at maxBatch; the remainder is
// distributed one extra unit to the first `remainder` batches. Each batch
// runs job(i) for every i in its range, on one worker.
func (p *Pool) doWorkForEach(begin, end, maxBatch int, job func(i int)) {
	total := end - begin
	if total <= 0 {
		return
	}
	base := (total + p.n - 1) / p.n
	if base > maxBatch {
		base = maxBatch
	}
	if base < 1 {
		base = 1
	}
	remainder := total % p.n
	if remainder < 0 {
		remainder = 0
	}

	p.mu.Lock()
	lo := begin
	batchIdx := 0
	for lo < end {
		size := base
		if batchIdx < remainder {
			size++
		}
		hi := lo + size
		if hi > end {
			hi = end
		}
		batchLo, batchHi := lo, hi // capture for the closure below
		p.queue = append(p.queue, func(_ int) {
			for i := batchLo; i < batchHi; i++ {
				job(i)
			}
		})
		lo = hi
		batchIdx++
	}
	p.hasWork.Broadcast()
	p.mu.Unlock()
	p.join()
}

// join blocks until the queue is empty and every worker is idle. If
// interrupt() was called, it raises ErrInterrupted to the caller instead
// of returning normally.
func (p *Pool) join() error {
	p.mu.Lock()
	for !(len(p.queue) == 0 && p.waiting == p.n) {
		p.becameIdle.Wait()
	}
	interrupted := p.interrupted
	p.mu.Unlock()
	if interrupted {
		return errInterrupted
	}
	return nil
}

// Interrupt sets the cancellation flag checked by the next join().
func (p *Pool) Interrupt() {
	p.mu.Lock()
	p.interrupted = true
	p.mu.Unlock()
}

// Close terminates every worker goroutine. The pool must not be used
// afterwards.
func (p *Pool) Close() {
	p.mu.Lock()
	p.terminate = true
	p.hasWork.Broadcast()
	p.mu.Unlock()
}
