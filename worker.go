package ditherfx

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrWorkerClosed is returned for jobs submitted after Close.
var ErrWorkerClosed = errors.New("ditherfx: worker closed")

// Job is one frame handed to a Worker. Ownership of Pix moves to the
// worker on Submit and comes back with the Result.
type Job struct {
	Pix    []byte
	Width  int
	Height int
	Config Config
	// Palette, when non-nil, is installed before the frame is processed.
	Palette Palette
}

// Result carries a processed frame back to the submitter.
type Result struct {
	Pix      []byte
	Width    int
	Height   int
	Err      error
	Duration time.Duration
}

type request struct {
	ctx    context.Context
	job    Job
	result chan<- Result
}

// Worker runs a Processor on its own goroutine so a host can keep drawing
// while frames are transformed. Jobs are processed one at a time in
// submission order.
type Worker struct {
	proc *Processor
	jobs chan request
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewWorker starts a worker that owns p. The caller must not use p again
// until Close has returned. queue is the number of jobs that may wait
// before Submit blocks.
func NewWorker(p *Processor, queue int) *Worker {
	w := &Worker{
		proc: p,
		jobs: make(chan request, max(queue, 0)),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Submit hands job to the worker. The returned channel receives exactly
// one Result. The caller must not read or write job.Pix until then. If ctx
// ends before the job starts, the buffer comes back unmodified with the
// context's error.
func (w *Worker) Submit(ctx context.Context, job Job) <-chan Result {
	out := make(chan Result, 1)

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		out <- failed(job, ErrWorkerClosed)
		return out
	}
	select {
	case w.jobs <- request{ctx: ctx, job: job, result: out}:
	case <-ctx.Done():
		out <- failed(job, ctx.Err())
	}
	return out
}

// Close stops accepting jobs, waits for queued jobs to finish and stops
// the worker goroutine. It is safe to call more than once.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()
	for req := range w.jobs {
		if err := req.ctx.Err(); err != nil {
			req.result <- failed(req.job, err)
			continue
		}
		req.result <- w.process(req.job)
	}
}

func (w *Worker) process(job Job) Result {
	start := time.Now()
	if job.Palette != nil {
		w.proc.SetPalette(job.Palette)
	}
	err := w.proc.Process(job.Pix, job.Width, job.Height, job.Config)
	if err != nil {
		w.proc.logger.Warn("frame rejected", "width", job.Width, "height", job.Height, "error", err)
	}
	return Result{
		Pix:      job.Pix,
		Width:    job.Width,
		Height:   job.Height,
		Err:      err,
		Duration: time.Since(start),
	}
}

func failed(job Job, err error) Result {
	return Result{Pix: job.Pix, Width: job.Width, Height: job.Height, Err: err}
}
