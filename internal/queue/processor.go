package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// MaxRetries is the maximum number of attempts for one archive job.
	MaxRetries = 3
	// RetryDelay is the base delay between retries (exponential backoff).
	RetryDelay = 5 * time.Second
)

// Processor runs archive jobs from the queue on a pool of workers.
type Processor struct {
	queue        *MemoryQueue
	archiver     Archiver
	log          *zap.Logger
	workerCount  int
	retryDelay   time.Duration
	onDone       func(job ArchiveJob, err error)
	wg           sync.WaitGroup
	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithRetryDelay overrides the base backoff delay.
func WithRetryDelay(d time.Duration) ProcessorOption {
	return func(p *Processor) { p.retryDelay = d }
}

// WithCompletionHook registers fn to run once per job when it succeeds or is
// given up on.
func WithCompletionHook(fn func(job ArchiveJob, err error)) ProcessorOption {
	return func(p *Processor) { p.onDone = fn }
}

// NewProcessor creates a new archive job processor.
func NewProcessor(queue *MemoryQueue, archiver Archiver, log *zap.Logger, workerCount int, opts ...ProcessorOption) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Processor{
		queue:       queue,
		archiver:    archiver,
		log:         log.Named("archive"),
		workerCount: workerCount,
		retryDelay:  RetryDelay,
		onDone:      func(ArchiveJob, error) {},
		shutdownCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins processing jobs with the configured number of workers.
func (p *Processor) Start(ctx context.Context) {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.log.Info("archive processor started", zap.Int("workers", p.workerCount))
}

// Stop closes the queue and waits for workers to archive the jobs already in
// it. Cancel the Start context only after Stop returns; a cancelled context
// makes workers exit with jobs still queued.
func (p *Processor) Stop() {
	p.shutdownOnce.Do(func() {
		close(p.shutdownCh)
		p.queue.Close()
	})
	p.wg.Wait()
	p.log.Info("archive processor stopped")
}

func (p *Processor) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || errors.Is(err, context.Canceled) {
				p.log.Debug("worker shutting down", zap.Int("worker", id))
				return
			}
			continue
		}
		p.processJob(ctx, job)
	}
}

func (p *Processor) processJob(ctx context.Context, job ArchiveJob) {
	log := p.log.With(
		zap.String("job_id", job.ID),
		zap.String("day", job.Day),
		zap.Int("attempt", job.RetryCount+1),
	)

	if err := p.archiver.Archive(ctx, job); err != nil {
		log.Warn("archive failed", zap.Error(err))
		p.handleFailure(job, err)
		return
	}

	log.Info("rides archived", zap.Int("rides", len(job.Rides)))
	p.onDone(job, nil)
}

func (p *Processor) handleFailure(job ArchiveJob, cause error) {
	job.RetryCount++

	if job.RetryCount >= MaxRetries {
		p.log.Error("archive job abandoned after max retries",
			zap.String("job_id", job.ID),
			zap.String("day", job.Day),
			zap.Error(cause),
		)
		p.onDone(job, cause)
		return
	}

	delay := p.retryDelay * time.Duration(1<<uint(job.RetryCount-1))

	// Retries wait on shutdownCh rather than ctx so a pending retry is
	// resolved during graceful shutdown.
	go func() {
		select {
		case <-p.shutdownCh:
			p.log.Error("shutdown during retry delay, archive job dropped", zap.String("job_id", job.ID))
			p.onDone(job, cause)
		case <-time.After(delay):
			if err := p.queue.Enqueue(job); err != nil {
				p.log.Error("failed to re-enqueue archive job", zap.String("job_id", job.ID), zap.Error(err))
				p.onDone(job, err)
			}
		}
	}()
}
