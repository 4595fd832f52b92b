// Package drain implements a worker pipeline that winds down
// cooperatively: workers receive jobs through a stop-bounded stream, so
// a shutdown lands between jobs and a job that has been picked up is
// always finished.
package drain

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stopkit/stop"
	"github.com/stopkit/stop/pkg/log"
	"github.com/stopkit/stop/pkg/stopgroup"
)

func init() {
	prometheus.MustRegister(promJobDurationMilliseconds)
}

var promJobDurationMilliseconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "drain_job_duration_milliseconds",
		Help:    "The duration of time it takes a worker to handle one job",
		Buckets: prometheus.ExponentialBuckets(9.375, 2, 10),
	},
	[]string{"error"},
)

// recordJobDuration records the duration of handling one job in
// milliseconds.
func recordJobDuration(err error, duration time.Duration) {
	var errString string
	if err != nil {
		errString = err.Error()
	}

	promJobDurationMilliseconds.
		WithLabelValues(errString).
		Observe(float64(duration.Nanoseconds()) / float64(time.Millisecond))
}

// ErrShutdownTimeout is returned by Stop when workers did not drain
// within the configured shutdown timeout.
var ErrShutdownTimeout = errors.New("drain: shutdown timed out")

// Config represents all of the configurable options for a Pipeline.
type Config struct {
	Workers         int           `yaml:"workers"`
	QueueSize       int           `yaml:"queue_size"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Pipeline runs a fixed set of workers over a queue of jobs. Every
// worker consumes the queue through a stream bounded by the pipeline's
// stop signal.
type Pipeline[T any] struct {
	cfg    Config
	handle func(T) error

	src  *stop.Source
	jobs chan T
	wg   sync.WaitGroup
}

// New allocates a new Pipeline and starts its workers. A zero worker
// count means one worker.
func New[T any](cfg Config, handle func(T) error) *Pipeline[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	p := &Pipeline[T]{
		cfg:    cfg,
		handle: handle,
		src:    stop.NewSource(),
		jobs:   make(chan T, cfg.QueueSize),
	}

	for i := 0; i < cfg.Workers; i++ {
		p.wg.Add(1)
		go p.work()
	}

	return p
}

// Token derives an observer of the pipeline's stop signal.
func (p *Pipeline[T]) Token() stop.Token {
	return p.src.Token()
}

// Submit enqueues a job, blocking while the queue is full. It returns
// stop.ErrStopped once the pipeline is stopping.
func (p *Pipeline[T]) Submit(job T) error {
	if p.src.Stopped() {
		return stop.ErrStopped
	}

	select {
	case p.jobs <- job:
		return nil
	case <-p.src.Token().Done():
		return stop.ErrStopped
	}
}

func (p *Pipeline[T]) work() {
	defer p.wg.Done()

	work := stop.NewStream(p.src.Token().Deadline(), p.jobs)
	for job := range work.C() {
		start := time.Now()
		err := p.handle(job)
		recordJobDuration(err, time.Since(start))
		if err != nil {
			log.Error("failed to handle job", log.Err(errors.Wrap(err, "drain")))
		}
	}
}

// Stop triggers the pipeline's stop signal and waits for the workers to
// finish their in-flight jobs, bounded by the configured shutdown
// timeout.
func (p *Pipeline[T]) Stop() stopgroup.Result {
	c := make(stopgroup.Channel)
	go func() {
		p.src.Stop()

		drained := make(chan struct{}, 1)
		go func() {
			p.wg.Wait()
			drained <- struct{}{}
		}()

		timeout := p.cfg.ShutdownTimeout
		if timeout <= 0 {
			<-drained
			c.Done()
			return
		}

		d := stop.After(timeout)
		defer d.Stop()
		if _, err := stop.Race(d, drained); err != nil {
			c.Done(ErrShutdownTimeout)
			return
		}
		c.Done()
	}()

	return c.Result()
}
