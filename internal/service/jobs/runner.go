// Package jobs runs ingestion of submitted files in the background.
package jobs

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/pkg/constants"
	"github.com/ougirez/certzone/internal/pkg/logger"
	"github.com/ougirez/certzone/internal/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

type FileHandler interface {
	HandleResult(ctx context.Context, file, schema, loggerName, loggerFile string) domain.FileResult
}

type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
)

type Job struct {
	ID          string              `json:"id"`
	Status      Status              `json:"status"`
	Files       []string            `json:"files"`
	Results     []domain.FileResult `json:"results"`
	OK          bool                `json:"ok"`
	Archive     string              `json:"archive,omitempty"`
	SubmittedAt time.Time           `json:"submitted_at"`
	FinishedAt  *time.Time          `json:"finished_at,omitempty"`
}

type Options struct {
	Schema     string
	LogDir     string
	Workers    int
	QueueSize  int
	ArchiveLog bool
}

type Runner struct {
	handler FileHandler
	opts    Options
	metrics *metrics

	queue chan string
	eg    *errgroup.Group

	mu     sync.RWMutex
	jobs   map[string]*Job
	closed bool

	now func() time.Time
}

func NewRunner(h FileHandler, opts Options, reg prometheus.Registerer) *Runner {
	if opts.Workers < 1 {
		opts.Workers = constants.DefaultWorkers
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 64
	}
	return &Runner{
		handler: h,
		opts:    opts,
		metrics: newMetrics(reg),
		queue:   make(chan string, opts.QueueSize),
		jobs:    make(map[string]*Job),
		now:     time.Now,
	}
}

// Start launches the workers. They stop after Close once the queue is drained, or when ctx ends.
func (r *Runner) Start(ctx context.Context) {
	r.eg, ctx = errgroup.WithContext(ctx)
	for i := 0; i < r.opts.Workers; i++ {
		worker := i
		r.eg.Go(func() error {
			r.work(ctx, worker)
			return nil
		})
	}
	logger.Infof(ctx, "job runner started with %d workers", r.opts.Workers)
}

// Submit queues the files as one job and returns its id.
func (r *Runner) Submit(ctx context.Context, files []string) (string, error) {
	if len(files) == 0 {
		return "", constants.ErrEmptyFiles
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", constants.ErrRunnerClosed
	}

	job := &Job{
		ID:          uuid.NewString(),
		Status:      StatusQueued,
		Files:       append([]string(nil), files...),
		SubmittedAt: r.now(),
	}

	select {
	case r.queue <- job.ID:
	default:
		return "", constants.ErrQueueFull
	}

	r.jobs[job.ID] = job
	r.metrics.jobsQueued.Inc()
	logger.Infof(ctx, "job %s queued with %d files", job.ID, len(files))
	return job.ID, nil
}

// Get returns a copy of the job.
func (r *Runner) Get(id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return Job{}, constants.ErrJobNotFound
	}
	cp := *job
	cp.Files = append([]string(nil), job.Files...)
	cp.Results = append([]domain.FileResult(nil), job.Results...)
	return cp, nil
}

// Close stops accepting jobs and waits for the queued ones to finish.
func (r *Runner) Close() error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	if r.eg == nil {
		return nil
	}
	return r.eg.Wait()
}

func (r *Runner) work(ctx context.Context, worker int) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-r.queue:
			if !ok {
				return
			}
			r.metrics.jobsQueued.Dec()
			r.run(ctx, worker, id)
		}
	}
}

func (r *Runner) run(ctx context.Context, worker int, id string) {
	job := r.update(id, func(j *Job) { j.Status = StatusRunning })
	logger.Infof(ctx, "worker %d took job %s", worker, id)

	results := make([]domain.FileResult, 0, len(job.Files))
	logs := make([]string, 0, len(job.Files))
	allOK := true

	// файлы одной задачи обрабатываются строго по очереди
	for _, file := range job.Files {
		start := r.now()
		logFile, err := utils.ReserveLogFile(r.opts.LogDir, filepath.Base(file), start)
		if err != nil {
			// обработчик сам сообщит, что лог не открылся
			logger.Errorf(ctx, "job %s: %s", id, err.Error())
		}

		res := r.handler.HandleResult(ctx, file, r.opts.Schema, "job."+id, logFile)

		result := "ok"
		if !res.OK {
			result = string(res.Failure)
			allOK = false
		}
		r.metrics.observeFile(result, start)

		results = append(results, res)
		logs = append(logs, logFile)
		r.update(id, func(j *Job) { j.Results = append(j.Results, res) })
	}

	archive := ""
	if r.opts.ArchiveLog {
		var err error
		if archive, err = utils.ReserveArchive(r.opts.LogDir, r.now()); err == nil {
			err = utils.ZipFiles(archive, logs)
		}
		if err != nil {
			logger.Errorf(ctx, "job %s: archive logs: %s", id, err.Error())
			archive = ""
		}
	}

	finished := r.now()
	r.update(id, func(j *Job) {
		j.Status = StatusDone
		j.OK = allOK
		j.Archive = archive
		j.FinishedAt = &finished
	})
	logger.Infof(ctx, "job %s done, ok=%t, %d files", id, allOK, len(results))
}

// update applies fn under the lock and returns a copy of the job afterwards.
func (r *Runner) update(id string, fn func(j *Job)) Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	job := r.jobs[id]
	fn(job)
	cp := *job
	cp.Files = append([]string(nil), job.Files...)
	return cp
}
