// Package cleanup deletes served temp files after a delay. Deletions run on
// a bounded worker pool rather than detached goroutines so the process can
// drain them on shutdown.
package cleanup

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	logrus "github.com/sirupsen/logrus"
)

// Options configures a Janitor. Zero values get sensible defaults.
type Options struct {
	// Delay is the initial wait before the first deletion attempt. It doubles
	// after every failed attempt.
	Delay time.Duration
	// MaxRetries bounds the number of deletion attempts per file.
	MaxRetries int
	// Workers is the pool size.
	Workers int
	// QueueSize bounds pending jobs; an overflowing Schedule still never
	// blocks, it runs the job on its own tracked goroutine instead.
	QueueSize int
	Log       *logrus.Logger

	// Remove overrides os.Remove, for tests.
	Remove func(string) error
}

// Janitor owns deletion of files handed to Schedule. The request that served
// a file must not wait on it: Schedule returns immediately and failures are
// only logged.
type Janitor struct {
	delay      time.Duration
	maxRetries int
	remove     func(string) error
	log        *logrus.Entry

	jobs   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// New starts a Janitor and its workers.
func New(opts Options) *Janitor {
	if opts.Delay <= 0 {
		opts.Delay = 5 * time.Second
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 5
	}
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 64
	}
	if opts.Remove == nil {
		opts.Remove = os.Remove
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &Janitor{
		delay:      opts.Delay,
		maxRetries: opts.MaxRetries,
		remove:     opts.Remove,
		log:        log.WithField("component", "cleanup"),
		jobs:       make(chan string, opts.QueueSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	for i := 0; i < opts.Workers; i++ {
		j.wg.Add(1)
		go j.worker()
	}
	return j
}

// Schedule queues path for delayed deletion and returns immediately. After
// Stop it is a no-op.
func (j *Janitor) Schedule(path string) {
	j.mu.Lock()
	if j.stopped {
		j.mu.Unlock()
		return
	}
	select {
	case j.jobs <- path:
		j.mu.Unlock()
	default:
		// Queue full. Still must not block the response path.
		j.wg.Add(1)
		j.mu.Unlock()
		go func() {
			defer j.wg.Done()
			j.clean(path)
		}()
	}
}

// Stop prevents new work, cancels pending delays (each pending file gets one
// final immediate deletion attempt) and waits for workers until ctx expires.
func (j *Janitor) Stop(ctx context.Context) error {
	j.mu.Lock()
	if j.stopped {
		j.mu.Unlock()
		return nil
	}
	j.stopped = true
	close(j.jobs)
	j.mu.Unlock()

	j.cancel()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *Janitor) worker() {
	defer j.wg.Done()
	for path := range j.jobs {
		j.clean(path)
	}
}

// clean attempts the delayed delete with linearly counted, exponentially
// backed-off retries. A vanished file counts as success.
func (j *Janitor) clean(path string) {
	delay := j.delay
	log := j.log.WithField("path", path)

	for attempt := 1; attempt <= j.maxRetries; attempt++ {
		if !j.sleep(delay) {
			// Shutting down: one last immediate try, then give up.
			if err := j.removeIfPresent(path); err != nil {
				log.WithError(err).Warn("cleanup abandoned at shutdown")
			}
			return
		}

		err := j.removeIfPresent(path)
		if err == nil {
			log.WithField("attempts", attempt).Info("cleaned up temporary file")
			return
		}

		log.WithError(err).WithField("attempt", attempt).Warn("could not delete temporary file, retrying")
		delay *= 2
	}

	log.WithField("attempts", j.maxRetries).Error("giving up on temporary file cleanup")
}

func (j *Janitor) removeIfPresent(path string) error {
	err := j.remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// sleep waits for d or until shutdown; it reports whether the full delay
// elapsed.
func (j *Janitor) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-j.ctx.Done():
		return false
	}
}
