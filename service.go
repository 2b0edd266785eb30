// Package skel generates skeleton loading specifications from rendered
// or parsed visual trees.
//
// The Service wires the scanner, classification engine, registry/cache
// and optional event log into one passed-around instance — there is no
// ambient global state. Multiple independent services can coexist in a
// process.
//
// Usage:
//
//	svc, err := skel.New(cfg, logger)
//	defer svc.Close()
//	s, err := svc.Generate(ctx, "product-card", htmlBytes, nil)
package skel

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shimware/skel/classify"
	"github.com/shimware/skel/dbopen"
	"github.com/shimware/skel/generate"
	"github.com/shimware/skel/observability"
	"github.com/shimware/skel/registry"
	"github.com/shimware/skel/scan"
	"github.com/shimware/skel/spec"
	"github.com/shimware/skel/staticdom"
)

// Service is the orchestrator: one generator, one registry, one optional
// event log.
type Service struct {
	cfg    *Config
	logger *slog.Logger
	rules  []classify.Rule

	gen    *generate.Generator
	reg    *registry.Registry
	events *observability.EventLog
	db     *sql.DB
}

// New creates a Service. When cfg.EventsDB is set, the observability
// database is opened (and created) there; otherwise event logging is a
// no-op.
func New(cfg *Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	gen := generate.New(logger)
	gen.Scanner.Budget = scan.Budget{
		MaxNodes: cfg.Scan.MaxNodes,
		MaxDepth: cfg.Scan.MaxDepth,
		MaxTime:  cfg.Scan.MaxTime,
	}

	reg, err := registry.New(gen, cfg.CacheCapacity, logger)
	if err != nil {
		return nil, err
	}

	svc := &Service{cfg: cfg, logger: logger, gen: gen, reg: reg}

	// The config is caller-owned; rule sets accumulate on the service.
	svc.rules = append(svc.rules, cfg.Rules...)
	if cfg.RulesFile != "" {
		rules, err := LoadRulesFile(cfg.RulesFile)
		if err != nil {
			reg.Close()
			return nil, fmt.Errorf("skel: load rules: %w", err)
		}
		svc.rules = append(svc.rules, rules...)
	}

	if cfg.EventsDB != "" {
		db, err := dbopen.Open(cfg.EventsDB,
			dbopen.WithMkdirAll(),
			dbopen.WithSchema(observability.Schema),
		)
		if err != nil {
			reg.Close()
			return nil, fmt.Errorf("skel: open events db: %w", err)
		}
		svc.db = db
		svc.events = observability.NewEventLog(db, logger)
	}

	return svc, nil
}

// Close shuts down the service.
func (s *Service) Close() error {
	s.reg.Close()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Registry exposes the underlying registry for direct access (testing,
// predefined spec registration).
func (s *Service) Registry() *registry.Registry {
	return s.reg
}

// Generator exposes the underlying generator for callers that bring
// their own sources (live pages).
func (s *Service) Generator() *generate.Generator {
	return s.gen
}

// Generate produces (or returns the memoized) spec for named static
// HTML. Custom rules from the call are merged ahead of the configured
// and default ones.
func (s *Service) Generate(ctx context.Context, name string, html []byte, params map[string]any, rules ...classify.Rule) (*spec.Spec, error) {
	return s.GenerateFrom(ctx, staticdom.NewSource(name, html), params, "static", rules...)
}

// GenerateFrom runs generation for an arbitrary source through the
// cache and the event log. Live page sources pass mode "live".
func (s *Service) GenerateFrom(ctx context.Context, source generate.Source, params map[string]any, mode string, rules ...classify.Rule) (*spec.Spec, error) {
	name := source.Name()
	merged := make([]classify.Rule, 0, len(rules)+len(s.rules))
	merged = append(merged, rules...)
	merged = append(merged, s.rules...)
	opts := generate.Options{Rules: merged, Layout: s.cfg.Layout}

	key := registry.Key(name, params)
	start := time.Now()
	result, hit, err := s.reg.GetOrGenerate(ctx, source, params, opts)
	if hit {
		s.events.Record(ctx, observability.GenerationEvent{
			Component: name, CacheKey: key, SourceMode: mode,
			Outcome: observability.OutcomeCacheHit, Primitives: len(result.Children),
		})
		return result, nil
	}

	ev := observability.GenerationEvent{
		Component:  name,
		CacheKey:   key,
		SourceMode: mode,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		ev.Outcome = observability.OutcomeFailure
		ev.Error = err.Error()
	} else {
		ev.Outcome = observability.OutcomeSuccess
		ev.Primitives = len(result.Children)
	}
	s.events.Record(ctx, ev)

	return result, err
}

// GenerateWithFallback never fails: on generation error it substitutes
// fallback, or a minimal one-rectangle spec when fallback is nil.
func (s *Service) GenerateWithFallback(ctx context.Context, name string, html []byte, params map[string]any, fallback *spec.Spec, rules ...classify.Rule) *spec.Spec {
	result, err := s.Generate(ctx, name, html, params, rules...)
	if err == nil {
		return result
	}
	s.logger.Warn("skel: generation failed, serving fallback", "component", name, "error", err)
	s.events.Record(ctx, observability.GenerationEvent{
		Component: name, SourceMode: "static",
		Outcome: observability.OutcomeFallback, Error: err.Error(),
	})
	if fallback != nil {
		return fallback
	}
	return spec.Minimal()
}

// ValidateJSON structurally validates a serialized spec, reporting every
// violation. A payload that is not JSON at all is the single violation.
func (s *Service) ValidateJSON(data []byte) spec.Result {
	var parsed spec.Spec
	if err := json.Unmarshal(data, &parsed); err != nil {
		return spec.Result{Errors: []string{fmt.Sprintf("not valid JSON: %v", err)}}
	}
	return spec.Validate(&parsed)
}

// Stats aggregates registry counters and event totals.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.events.CountByOutcome(ctx)
	if err != nil {
		return nil, fmt.Errorf("skel: event counts: %w", err)
	}
	return &Stats{Registry: s.reg.StatsSnapshot(), Events: counts}, nil
}

// Stats is the service-level statistics snapshot.
type Stats struct {
	Registry registry.Stats   `json:"registry"`
	Events   map[string]int64 `json:"events,omitempty"`
}
