// Package audit evaluates a lesson log against the weather record and the
// applicable minimums, producing the list of non-compliant takeoffs.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/takeoff-audit/internal/domain"
	"github.com/couchcryptid/takeoff-audit/internal/observability"
)

// MinimumsResolver returns the minimums governing a takeoff.
type MinimumsResolver interface {
	MinimumsFor(rec domain.TakeoffRecord, takeoff time.Time) (domain.Minimums, error)
}

// Auditor runs audits. It holds no per-run state and is safe for
// concurrent use.
type Auditor struct {
	resolver MinimumsResolver
	logger   *slog.Logger
	metrics  *observability.Metrics
	workers  int
	loc      *time.Location
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithWorkers evaluates up to n records concurrently. n <= 1 runs sequentially.
func WithWorkers(n int) Option {
	return func(a *Auditor) { a.workers = n }
}

// WithLocation sets the zone for lesson timestamps that carry no UTC offset.
func WithLocation(loc *time.Location) Option {
	return func(a *Auditor) { a.loc = loc }
}

// New creates an Auditor backed by resolver.
func New(resolver MinimumsResolver, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Auditor {
	a := &Auditor{
		resolver: resolver,
		logger:   logger,
		metrics:  metrics,
		workers:  1,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run audits records against log and returns the violations in input
// order. Any malformed record aborts the run; no partial result is returned.
func (a *Auditor) Run(ctx context.Context, records []domain.TakeoffRecord, log *domain.ObservationLog) ([]domain.ViolationRecord, error) {
	start := domain.Now()
	a.logger.Info("audit started", "records", len(records), "observations", log.Len(), "workers", a.workers)
	a.metrics.AuditRunning.Set(1)
	defer a.metrics.AuditRunning.Set(0)

	labels, err := a.evaluate(ctx, records, log)
	if err != nil {
		a.metrics.AuditErrors.Inc()
		a.logger.Error("audit aborted", "error", err)
		return nil, err
	}

	var out []domain.ViolationRecord
	for i, label := range labels {
		if label == domain.Compliant {
			continue
		}
		a.metrics.Violations.WithLabelValues(string(label)).Inc()
		out = append(out, domain.ViolationRecord{TakeoffRecord: records[i], Reason: label})
	}

	a.metrics.RecordsAudited.Add(float64(len(records)))
	a.metrics.AuditDuration.Observe(domain.Since(start).Seconds())
	a.logger.Info("audit finished", "records", len(records), "violations", len(out), "duration", domain.Since(start))
	return out, nil
}

// evaluate labels every record. Each result lands in its own slot, so the
// concurrent order of completion never affects the output.
func (a *Auditor) evaluate(ctx context.Context, records []domain.TakeoffRecord, log *domain.ObservationLog) ([]domain.ViolationLabel, error) {
	labels := make([]domain.ViolationLabel, len(records))

	if a.workers <= 1 {
		for i, rec := range records {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			label, err := a.check(rec, log)
			if err != nil {
				return nil, recordError(i, rec, err)
			}
			labels[i] = label
		}
		return labels, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			label, err := a.check(rec, log)
			if err != nil {
				return recordError(i, rec, err)
			}
			labels[i] = label
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}

// check classifies a single takeoff.
func (a *Auditor) check(rec domain.TakeoffRecord, log *domain.ObservationLog) (domain.ViolationLabel, error) {
	takeoff, err := domain.ParseTimestamp(rec.Takeoff, a.loc)
	if err != nil {
		return "", err
	}
	minimums, err := a.resolver.MinimumsFor(rec, takeoff)
	if err != nil {
		return "", err
	}

	obs, path := log.ResolveDetailed(takeoff)
	a.metrics.ObservationLookups.WithLabelValues(string(path)).Inc()
	if obs == nil {
		a.logger.Debug("no weather report for takeoff", "student", rec.Student, "takeoff", rec.Takeoff)
	}
	label := domain.Classify(obs, minimums)
	if obs != nil && label != domain.Compliant {
		a.logger.Debug("takeoff below minimums",
			"student", rec.Student, "takeoff", rec.Takeoff, "reason", label, "weather", *obs)
	}
	return label, nil
}

func recordError(i int, rec domain.TakeoffRecord, err error) error {
	return fmt.Errorf("lesson %d (student %s): %w", i+1, rec.Student, err)
}
