package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Stage is one rung of the escalation ladder. Delay is how long the
// previous stage may run before this one starts alongside it.
type Stage struct {
	Engine Engine
	Delay  time.Duration
}

// Dispatcher loads pages by racing engines in escalating stages. The first
// engine to succeed wins and cancels the rest. A stage that fails before
// its successor's delay expires hands over immediately.
type Dispatcher struct {
	stages []Stage
	memory *DomainMemory
}

// NewDispatcher pairs engines[i] with delays[i]; missing delays are zero.
func NewDispatcher(engines []Engine, delays []time.Duration, memory *DomainMemory) *Dispatcher {
	stages := make([]Stage, len(engines))
	for i, e := range engines {
		stages[i].Engine = e
		if i < len(delays) {
			stages[i].Delay = delays[i]
		}
	}
	return &Dispatcher{stages: stages, memory: memory}
}

// Engines returns the engine names in escalation order.
func (d *Dispatcher) Engines() []string {
	names := make([]string, len(d.stages))
	for i, s := range d.stages {
		names[i] = s.Engine.Name()
	}
	return names
}

// Dispatch loads req.URL. A remembered engine for the host is tried alone
// first; when it fails the full ladder runs. With req.Stealth set, only
// the stealth engine is used.
func (d *Dispatcher) Dispatch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if len(d.stages) == 0 {
		return nil, errors.New("dispatcher: no engines configured")
	}
	host := hostOf(req.URL)

	stages := d.stages
	if req.Stealth {
		stages = d.only(NameRodStealth)
	}

	if name := d.memory.Get(host); name != "" && !req.Stealth {
		if s := d.only(name); len(s) == 1 {
			res, err := s[0].Engine.Fetch(ctx, req)
			if err == nil {
				slog.Debug("dispatcher: remembered engine succeeded", "host", host, "engine", name)
				return res, nil
			}
			slog.Info("dispatcher: remembered engine failed, escalating",
				"host", host, "engine", name, "error", err)
			d.memory.Forget(host)
		}
	}

	res, err := d.race(ctx, req, stages)
	if err != nil {
		return nil, err
	}
	d.memory.Set(host, res.EngineName)
	return res, nil
}

func (d *Dispatcher) only(name string) []Stage {
	for _, s := range d.stages {
		if s.Engine.Name() == name {
			return []Stage{{Engine: s.Engine}}
		}
	}
	return d.stages
}

type attempt struct {
	engine string
	result *FetchResult
	err    error
}

func (d *Dispatcher) race(ctx context.Context, req *FetchRequest, stages []Stage) (*FetchResult, error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan attempt, len(stages))
	next, running := 0, 0
	launch := func() {
		eng := stages[next].Engine
		next++
		running++
		slog.Debug("dispatcher: engine starting", "engine", eng.Name(), "url", req.URL)
		go func() {
			res, err := eng.Fetch(raceCtx, req)
			results <- attempt{engine: eng.Name(), result: res, err: err}
		}()
	}

	var errs []error
	launch()
	for {
		var escalate <-chan time.Time
		var timer *time.Timer
		if next < len(stages) {
			if running == 0 {
				launch()
				continue
			}
			timer = time.NewTimer(stages[next].Delay)
			escalate = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			return nil, ctx.Err()
		case <-escalate:
			launch()
		case a := <-results:
			stopTimer(timer)
			running--
			if a.err == nil {
				slog.Info("dispatcher: engine won", "engine", a.engine, "url", req.URL)
				return a.result, nil
			}
			slog.Debug("dispatcher: engine failed", "engine", a.engine, "url", req.URL, "error", a.err)
			errs = append(errs, a.err)
			if running == 0 && next == len(stages) {
				return nil, fmt.Errorf("dispatcher: all engines failed for %s: %w", req.URL, errors.Join(errs...))
			}
		}
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
