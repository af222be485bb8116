package engine

import (
	"context"
	"sync"

	"range-breakout/internal/model"
	"range-breakout/internal/strategy"

	"go.uber.org/zap"
)

// Job is one point of a parameter sweep.
type Job struct {
	Params   strategy.Params `json:"params"`
	Settings Settings        `json:"settings"`
}

type Result struct {
	Index  int                   `json:"index"`
	Report *model.BacktestReport `json:"report,omitempty"`
	Err    error                 `json:"-"`
}

// WorkerPool runs independent backtests over one shared, read-only bar slice.
type WorkerPool struct {
	workerCount int
	logger      *zap.Logger
}

func NewWorkerPool(workerCount int, logger *zap.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{workerCount: workerCount, logger: logger}
}

// RunAll executes every job and returns the results in job order. Jobs not
// yet started when ctx is done get ctx.Err() as their error.
func (p *WorkerPool) RunAll(ctx context.Context, bars []model.Bar, jobs []Job, opts RunOptions) []Result {
	results := make([]Result, len(jobs))
	queue := make(chan int)

	workers := p.workerCount
	if workers > len(jobs) {
		workers = len(jobs)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.worker(ctx, id, queue, bars, jobs, opts, results)
		}(i)
	}
	p.logger.Info("started worker pool", zap.Int("workers", workers), zap.Int("jobs", len(jobs)))

	for i := range jobs {
		queue <- i
	}
	close(queue)
	wg.Wait()
	return results
}

func (p *WorkerPool) worker(ctx context.Context, id int, queue <-chan int, bars []model.Bar, jobs []Job, opts RunOptions, results []Result) {
	for idx := range queue {
		if err := ctx.Err(); err != nil {
			results[idx] = Result{Index: idx, Err: err}
			continue
		}
		results[idx] = p.process(id, idx, bars, jobs[idx], opts)
	}
}

func (p *WorkerPool) process(workerID, idx int, bars []model.Bar, job Job, opts RunOptions) Result {
	p.logger.Debug("worker processing job", zap.Int("worker_id", workerID), zap.Int("job", idx))

	strat, err := strategy.NewRangeBreakoutStrategy(job.Params, p.logger)
	if err != nil {
		return Result{Index: idx, Err: err}
	}
	opts.IncludeSeries = false
	report, err := RunBacktest(bars, strat, job.Settings, opts, p.logger)
	if err != nil {
		return Result{Index: idx, Err: err}
	}
	return Result{Index: idx, Report: report}
}
