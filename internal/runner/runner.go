package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/checks"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/logger"
	"atlas-checks/internal/metrics"
)

// DefaultWorkers 未配置并发度时同时执行的检查数
const DefaultWorkers = 4

// Result 一次运行的产物
type Result struct {
	RunID     uuid.UUID
	Country   string
	Atlas     string
	Started   time.Time
	Finished  time.Time
	Container *flag.Container
}

// Runner：同一时刻只执行一份运行，检查实例的已标记集合在运行间复用
type Runner struct {
	Manager *Manager
	Workers int

	mu sync.Mutex
}

func (r *Runner) workers() int {
	if r.Workers <= 0 {
		return DefaultWorkers
	}
	return r.Workers
}

// Run 对单份图执行全部适用于该国家的检查
func (r *Runner) Run(ctx context.Context, a *atlas.Atlas, country string) (*Result, error) {
	res := &Result{RunID: uuid.New(), Country: country, Started: time.Now(), Container: flag.NewContainer()}
	if a != nil {
		res.Atlas = a.Name()
	}
	if err := r.runInto(ctx, a, country, res.Container); err != nil {
		return nil, err
	}
	res.Finished = time.Now()
	return res, nil
}

// RunFiles 依次载入同一国家的多份图并合并结果
func (r *Runner) RunFiles(ctx context.Context, country string, paths []string) (*Result, error) {
	res := &Result{RunID: uuid.New(), Country: country, Started: time.Now(), Container: flag.NewContainer()}
	for _, p := range paths {
		a, err := atlas.LoadFile(p)
		if err != nil {
			return nil, fmt.Errorf("load atlas %s: %w", p, err)
		}
		if res.Atlas == "" {
			res.Atlas = a.Name()
		} else {
			res.Atlas += "," + a.Name()
		}
		if err := r.runInto(ctx, a, country, res.Container); err != nil {
			return nil, err
		}
	}
	res.Finished = time.Now()
	return res, nil
}

func (r *Runner) runInto(ctx context.Context, a *atlas.Atlas, country string, out *flag.Container) error {
	if a == nil {
		return fmt.Errorf("run %s: nil atlas", country)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l := logger.L()
	var active []checks.Check
	for _, c := range r.Manager.Checks() {
		if country == "" || c.ValidCheckForCountry(country) {
			active = append(active, c)
		}
	}
	l.Info("check_run_begin", "atlas", a.Name(), "country", country, "checks", len(active), "entities", a.Size())
	entities := a.Entities()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for _, c := range active {
		c := c
		g.Go(func() error {
			return r.runCheck(gctx, c, entities, out)
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		l.Error("check_run_error", "atlas", a.Name(), "country", country, "err", err)
		return err
	}
	metrics.RunsTotal.WithLabelValues("ok").Inc()
	l.Info("check_run_done", "atlas", a.Name(), "country", country, "flags", out.Len())
	return nil
}

// runCheck：在实体之间检查 ctx
func (r *Runner) runCheck(ctx context.Context, c checks.Check, entities []atlas.Entity, out *flag.Container) error {
	name := c.Name()
	t0 := time.Now()
	c.Clear()
	flags := 0
	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			r.Manager.record(name, flags, time.Since(t0), false)
			return err
		}
		f, ok := c.Check(e)
		if !ok {
			continue
		}
		if f.ChallengeName == "" {
			f.ChallengeName = c.Challenge().Name
		}
		if out.Add(name, f) {
			flags++
			logger.ForCheck(name).Debug("check_flag", "identifier", f.Identifier)
		}
	}
	dur := time.Since(t0)
	metrics.CheckObjectsTotal.WithLabelValues(name).Add(float64(len(entities)))
	metrics.CheckFlagsTotal.WithLabelValues(name).Add(float64(flags))
	metrics.CheckDurationMs.WithLabelValues(name).Observe(float64(dur.Milliseconds()))
	r.Manager.record(name, flags, dur, true)
	return nil
}

// RunCountries：按国家名顺序运行解析出的图文件，每个国家完成后回调 fn
// 约束：单个国家失败时记录日志并继续，ctx 结束时立即返回
func (r *Runner) RunCountries(ctx context.Context, resolved map[string][]string, fn func(*Result) error) error {
	countries := make([]string, 0, len(resolved))
	for c := range resolved {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	failed := 0
	for _, country := range countries {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := r.RunFiles(ctx, country, resolved[country])
		if err == nil && fn != nil {
			err = fn(res)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			logger.L().Error("country_run_error", "country", country, "err", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d countries failed", failed, len(countries))
	}
	return nil
}
