package windows

import (
	"context"
	"fmt"
	"time"

	"github.com/sbwhitecap/tqdm"
	"github.com/sbwhitecap/tqdm/iterators"
	"go.uber.org/zap"

	"github.com/vitalwatch/vitalwatch/local-pipelines/mbp-windows/internal/cases"
	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
	"github.com/vitalwatch/vitalwatch/vital-golib/workerpool"
)

// Options for an Engine.
type Options struct {
	Config Config
	Traces cases.TraceSource
	Store  FutureStore
	Logger *zap.Logger
	// Progress shows a progress bar over completed shards on stderr.
	Progress bool
}

// Engine runs one scan job per shard of the case table and merges their results.
type Engine struct {
	opts    Options
	scanner *Scanner
}

// NewEngine validates opts and returns an engine.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Traces == nil || opts.Store == nil {
		return nil, errors.Errorf("engine needs a trace source and a future store")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		opts:    opts,
		scanner: NewScanner(opts.Config, opts.Store),
	}, nil
}

// ShardResult holds the samples of one shard in scan order.
type ShardResult struct {
	Shard     Shard
	Cases     int
	Samples   []Sample
	Counters  Counters
	Events    int
	NonEvents int
}

func (r *ShardResult) add(c CaseResult) {
	r.Cases++
	r.Samples = append(r.Samples, c.Samples...)
	r.Counters = r.Counters.Add(c.Counters)
	r.Events += c.Events
	r.NonEvents += c.NonEvents
}

type dirEnsurer interface {
	EnsureDir() error
}

// Run scans cs. It returns once every shard job has finished; a cancelled run returns ctx.Err() and no
// output, and failed shards are reported together.
func (e *Engine) Run(ctx context.Context, cs []cases.Case) (Output, error) {
	start := time.Now()

	if d, ok := e.opts.Store.(dirEnsurer); ok {
		if err := d.EnsureDir(); err != nil {
			return Output{}, err
		}
	}

	shards := Partition(len(cs), e.opts.Config.NumWorkers)
	results := make([]ShardResult, len(shards))
	done := make(chan struct{}, len(shards))

	pool := workerpool.NewWithCtx(ctx, e.opts.Config.NumWorkers)
	defer pool.Stop()

	var jobs []workerpool.Job
	for _, shard := range shards {
		shard := shard
		jobs = append(jobs, func() error {
			defer func() { done <- struct{}{} }()
			res, err := e.scanShard(ctx, shard, cs[shard.Lo:shard.Hi])
			results[shard.Index] = res
			return errors.WrapfOrNil(err, "shard %d", shard.Index)
		})
	}
	pool.Add(jobs)

	if e.opts.Progress {
		tqdm.With(iterators.Interval(0, len(shards)), "shards", func(v interface{}) (brk bool) {
			select {
			case <-done:
				return false
			case <-ctx.Done():
				return true
			}
		})
	}

	err := pool.Wait()
	if ctx.Err() != nil {
		return Output{}, ctx.Err()
	}
	if err != nil {
		return Output{}, err
	}

	out := Aggregate(results)
	out.Elapsed = time.Since(start)
	return out, nil
}

func (e *Engine) scanShard(ctx context.Context, shard Shard, cs []cases.Case) (ShardResult, error) {
	res := ShardResult{
		Shard:    shard,
		Counters: make(Counters),
	}
	for _, c := range cs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		trace, err := e.opts.Traces.Load(c.CaseID)
		if err != nil {
			if !cases.IsUnreadable(err) {
				return res, errors.Wrapf(err, "error loading case %s", c.CaseID)
			}
			e.opts.Logger.Warn("skipping case", zap.String("caseid", c.CaseID), zap.Error(err))
			res.Cases++
			res.Counters.Inc(ReasonCaseUnreadable)
			continue
		}

		cr, err := e.scanner.ScanCase(ctx, c, trace)
		if err != nil {
			return res, err
		}
		res.add(cr)

		if n := len(cr.Samples); n > 0 {
			e.opts.Logger.Info(fmt.Sprintf("%s: %d (%.1f%%)", c.CaseID, n, cr.EventPct()),
				zap.String("caseid", c.CaseID),
				zap.Int("events", cr.Events),
				zap.Int("non_events", cr.NonEvents))
		}
	}
	return res, nil
}
