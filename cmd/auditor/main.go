// Command auditor checks a flight school's lesson log against recorded
// weather and reports every takeoff made below the applicable minimums.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	kafkaadapter "github.com/couchcryptid/takeoff-audit/internal/adapter/kafka"
	"github.com/couchcryptid/takeoff-audit/internal/audit"
	"github.com/couchcryptid/takeoff-audit/internal/config"
	"github.com/couchcryptid/takeoff-audit/internal/dataset"
	"github.com/couchcryptid/takeoff-audit/internal/domain"
	"github.com/couchcryptid/takeoff-audit/internal/observability"
	"github.com/couchcryptid/takeoff-audit/internal/report"
	"github.com/couchcryptid/takeoff-audit/internal/selfcheck"
)

const usageLine = "Usage: auditor dataset [output.csv]"

// defaultOutput is the report path used when only a dataset is given.
const defaultOutput = "output.csv"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(exitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{
		cfg:     cfg,
		logger:  observability.NewLogger(cfg.LogLevel, cfg.LogFormat),
		metrics: observability.NewMetrics(),
		stdout:  os.Stdout,
	}
	code := a.run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// app carries the process-wide dependencies of one invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	stdout  io.Writer

	// publish overrides Kafka publishing in tests.
	publish func(ctx context.Context, vs []domain.ViolationRecord) error
}

func (a *app) run(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("auditor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	test := fs.Bool("test", false, "run the built-in self-check")
	if err := fs.Parse(args); err != nil {
		a.usage()
		return exitUsage
	}

	rest := fs.Args()
	switch {
	case *test && len(rest) == 0:
		if selfcheck.Report(a.stdout, selfcheck.Run()) {
			return exitOK
		}
		return exitFailure
	case *test, len(rest) == 0, len(rest) > 2, hasTestFlag(rest):
		a.usage()
		return exitUsage
	}

	output := defaultOutput
	if len(rest) == 2 {
		output = rest[1]
	}
	if err := a.audit(ctx, rest[0], output); err != nil {
		a.logger.Error("audit failed", "dataset", rest[0], "error", err)
		a.usage()
		return exitFailure
	}
	return exitOK
}

// hasTestFlag catches --test given after a positional argument, where flag
// parsing has already stopped.
func hasTestFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--test" || arg == "-test" {
			return true
		}
	}
	return false
}

func (a *app) usage() {
	_, _ = fmt.Fprintln(a.stdout, usageLine)
}

func (a *app) audit(ctx context.Context, dir, output string) error {
	ds, err := dataset.Load(dir, a.cfg.Timezone)
	if err != nil {
		return err
	}
	a.logger.Info("dataset loaded", "dir", dir, "lessons", len(ds.Lessons), "observations", ds.Observations.Len(), "students", len(ds.Students))

	auditor := audit.New(ds.Resolver(), a.logger, a.metrics,
		audit.WithWorkers(a.cfg.Workers),
		audit.WithLocation(a.cfg.Timezone),
	)
	violations, err := auditor.Run(ctx, ds.Lessons, ds.Observations)
	if err != nil {
		return err
	}

	if err := report.WriteFile(output, violations); err != nil {
		return err
	}
	a.logger.Info("report written", "path", output, "rows", len(violations))

	if a.cfg.KafkaEnabled {
		if err := a.publishViolations(ctx, violations); err != nil {
			return err
		}
	}

	if a.cfg.MetricsTextfile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
			a.logger.Warn("metrics textfile not written", "path", a.cfg.MetricsTextfile, "error", err)
		}
	}

	_, _ = fmt.Fprintln(a.stdout, report.Summary(len(violations)))
	return nil
}

func (a *app) publishViolations(ctx context.Context, vs []domain.ViolationRecord) error {
	if a.publish != nil {
		return a.publish(ctx, vs)
	}
	pub := kafkaadapter.NewPublisher(a.cfg, a.logger, a.metrics)
	defer func() {
		if err := pub.Close(); err != nil {
			a.logger.Error("kafka publisher close error", "error", err)
		}
	}()
	return pub.Publish(ctx, vs)
}
