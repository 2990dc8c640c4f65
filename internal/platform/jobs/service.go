package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const JobSessionSweep = "session_sweep"

// Service runs background jobs on a single worker. Scheduled jobs enqueue
// themselves on a ticker; a full queue drops the run.
type Service struct {
	queue chan job

	mu       sync.Mutex
	schedule []scheduled
	runs     map[string]Run
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

type scheduled struct {
	Type     string
	Interval time.Duration
	Run      func(context.Context) (any, error)
}

// Run is the outcome of the latest run of one job type.
type Run struct {
	Status      string    `json:"status"`
	Details     any       `json:"details,omitempty"`
	Error       string    `json:"error,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

func New() *Service {
	return &Service{
		queue: make(chan job, 128),
		runs:  map[string]Run{},
	}
}

// Every registers a job to run each interval once Start is called.
func (s *Service) Every(jobType string, interval time.Duration, run func(context.Context) (any, error)) {
	if interval <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule = append(s.schedule, scheduled{Type: jobType, Interval: interval, Run: run})
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.schedule {
		go s.tick(ctx, entry)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// LastRuns reports the latest outcome per job type.
func (s *Service) LastRuns() map[string]Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Run, len(s.runs))
	for k, v := range s.runs {
		out[k] = v
	}
	return out
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	details, err := j.Run(ctx)
	run := Run{Status: "completed", Details: details, CompletedAt: time.Now().UTC()}
	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
	}
	s.mu.Lock()
	s.runs[j.Type] = run
	s.mu.Unlock()
	return details, err
}

func (s *Service) tick(ctx context.Context, entry scheduled) {
	ticker := time.NewTicker(entry.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(entry.Type, entry.Run)
		}
	}
}
