package jobpool

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Job is a unit of work. Jobs sharing a Key run sequentially on the same worker.
type Job struct {
	Key     string
	Handler func(ctx context.Context) error
}

// PoolStats is a snapshot of the pool counters.
type PoolStats struct {
	NumWorkers      int           `json:"num_workers"`
	QueueSize       int           `json:"queue_size"`
	ActiveWorkers   int           `json:"active_workers"`
	TotalDispatched int64         `json:"total_dispatched"`
	TotalProcessed  int64         `json:"total_processed"`
	TotalDropped    int64         `json:"total_dropped"`
	TotalErrors     int64         `json:"total_errors"`
	WorkerStats     []WorkerStats `json:"worker_stats"`
}

type WorkerStats struct {
	WorkerID      int   `json:"worker_id"`
	QueueDepth    int   `json:"queue_depth"`
	IsProcessing  bool  `json:"is_processing"`
	JobsProcessed int64 `json:"jobs_processed"`
}

// Pool is a fixed set of workers with one queue each. A job is routed to
// the worker chosen by hashing its key.
type Pool struct {
	name       string
	numWorkers int
	queueSize  int
	workers    []*worker
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopped    int32

	totalDispatched int64
	totalProcessed  int64
	totalDropped    int64
	totalErrors     int64
}

type worker struct {
	id            int
	jobQueue      chan Job
	ctx           context.Context
	isProcessing  int32
	jobsProcessed int64
	pool          *Pool
}

func NewPool(name string, numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	return &Pool{
		name:       name,
		numWorkers: numWorkers,
		queueSize:  queueSize,
		workers:    make([]*worker, numWorkers),
	}
}

// Start launches the workers. Jobs receive ctx (or a context derived from it).
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		w := &worker{
			id:       i,
			jobQueue: make(chan Job, p.queueSize),
			ctx:      ctx,
			pool:     p,
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(&p.wg)
	}

	logrus.Infof("[%s] Started with %d workers, queue size: %d", p.name, p.numWorkers, p.queueSize)
}

// TryDispatch enqueues job without blocking and reports whether it was accepted.
func (p *Pool) TryDispatch(job Job) bool {
	if atomic.LoadInt32(&p.stopped) == 1 {
		atomic.AddInt64(&p.totalDropped, 1)
		return false
	}

	shard := p.shardFor(job.Key)
	atomic.AddInt64(&p.totalDispatched, 1)

	sent := func() (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		select {
		case p.workers[shard].jobQueue <- job:
			return true
		default:
			return false
		}
	}()

	if sent {
		return true
	}

	atomic.AddInt64(&p.totalDropped, 1)
	logrus.Warnf("[%s] Worker %d queue full (or stopped), dropping job for %s", p.name, shard, job.Key)
	return false
}

// Stop refuses new jobs, lets every queued and running job finish, then returns.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		atomic.StoreInt32(&p.stopped, 1)
		logrus.Infof("[%s] Stopping workers...", p.name)

		for _, w := range p.workers {
			if w != nil {
				close(w.jobQueue)
			}
		}
		p.wg.Wait()

		logrus.Infof("[%s] All workers stopped", p.name)
	})
}

func (p *Pool) shardFor(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(p.numWorkers))
}

func (p *Pool) GetStats() PoolStats {
	workerStats := make([]WorkerStats, 0, len(p.workers))
	activeWorkers := 0

	for _, w := range p.workers {
		if w == nil {
			continue
		}
		isProcessing := atomic.LoadInt32(&w.isProcessing) == 1
		if isProcessing {
			activeWorkers++
		}
		workerStats = append(workerStats, WorkerStats{
			WorkerID:      w.id,
			QueueDepth:    len(w.jobQueue),
			IsProcessing:  isProcessing,
			JobsProcessed: atomic.LoadInt64(&w.jobsProcessed),
		})
	}

	return PoolStats{
		NumWorkers:      p.numWorkers,
		QueueSize:       p.queueSize,
		ActiveWorkers:   activeWorkers,
		TotalDispatched: atomic.LoadInt64(&p.totalDispatched),
		TotalProcessed:  atomic.LoadInt64(&p.totalProcessed),
		TotalDropped:    atomic.LoadInt64(&p.totalDropped),
		TotalErrors:     atomic.LoadInt64(&p.totalErrors),
		WorkerStats:     workerStats,
	}
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	logrus.Debugf("[%s] Worker %d started", w.pool.name, w.id)

	// the queue is drained until Stop closes it, even if ctx is already cancelled
	for job := range w.jobQueue {
		w.execute(job)
	}

	logrus.Debugf("[%s] Worker %d shutting down", w.pool.name, w.id)
}

func (w *worker) execute(job Job) {
	atomic.StoreInt32(&w.isProcessing, 1)
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&w.pool.totalErrors, 1)
			logrus.Errorf("[%s] Worker %d panic for %s: %v", w.pool.name, w.id, job.Key, r)
		}
		atomic.StoreInt32(&w.isProcessing, 0)
		atomic.AddInt64(&w.jobsProcessed, 1)
		atomic.AddInt64(&w.pool.totalProcessed, 1)
	}()

	if err := job.Handler(w.ctx); err != nil {
		atomic.AddInt64(&w.pool.totalErrors, 1)
		logrus.WithError(err).Errorf("[%s] Worker %d job failed for %s", w.pool.name, w.id, job.Key)
	}
}
