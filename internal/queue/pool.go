package queue

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/watchsub/watchsub/internal/media"
)

// Semaphore is a simple counting semaphore built on a buffered channel,
// used for the two nested resource caps of spec §4.3 (whole-job,
// ffmpeg subprocess).
type Semaphore struct {
	slots chan struct{}
}

func NewSemaphore(n int) *Semaphore {
	return &Semaphore{slots: make(chan struct{}, n)}
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Semaphore) Release() { <-s.slots }

// InstallFFmpegGate wires sem as the nested FFMPEG_CONCURRENCY cap every
// media subprocess call blocks on (spec §4.3), independent of the
// whole-job semaphore a worker already holds.
func InstallFFmpegGate(sem *Semaphore) {
	media.FFmpegGate = func() (release func()) {
		_ = sem.Acquire(context.Background())
		return sem.Release
	}
}

// Limiters bundles the per-external-service token-bucket rate limiters
// named in spec §4.3; a limiter is nil (unlimited) when its configured
// rps is zero.
type Limiters struct {
	ASR      *rate.Limiter
	LLM      *rate.Limiter
	Metadata *rate.Limiter
}

func NewLimiters(asrRPS, llmRPS, metadataRPS float64) *Limiters {
	return &Limiters{
		ASR:      newLimiter(asrRPS),
		LLM:      newLimiter(llmRPS),
		Metadata: newLimiter(metadataRPS),
	}
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// JobFunc runs the full pipeline for one admitted path.
type JobFunc func(ctx context.Context, path string)

// Pool is the bounded worker pool: WorkerConcurrency goroutines consume
// the priority queue, each holding the job semaphore for its entire
// pipeline run.
type Pool struct {
	queue      *PriorityQueue
	jobSem     *Semaphore
	concurrency int
	run        JobFunc
	log        zerolog.Logger
}

func NewPool(q *PriorityQueue, concurrency int, jobSem *Semaphore, run JobFunc, log zerolog.Logger) *Pool {
	return &Pool{queue: q, jobSem: jobSem, concurrency: concurrency, run: run, log: log}
}

// Start launches the worker goroutines; it returns immediately. Call Wait
// to block until ctx is cancelled and all in-flight workers exit.
func (p *Pool) Start(ctx context.Context) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < p.concurrency; i++ {
		wg.Add(1)
		go p.worker(ctx, i, &wg)
	}
	return &wg
}

func (p *Pool) worker(ctx context.Context, id int, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		item, ok := p.queue.Pop()
		if !ok {
			return
		}
		if err := p.jobSem.Acquire(ctx); err != nil {
			return
		}
		func() {
			defer p.jobSem.Release()
			p.log.Debug().Int("worker", id).Str("path", item.Path).Msg("job started")
			p.run(ctx, item.Path)
		}()

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}
