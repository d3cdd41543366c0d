package audit_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/takeoff-audit/internal/audit"
	"github.com/couchcryptid/takeoff-audit/internal/domain"
	"github.com/couchcryptid/takeoff-audit/internal/observability"
)

// --- mocks ---

var errNoRow = errors.New("no row")

type stubResolver struct {
	minimums domain.Minimums
	failFor  string
}

func (s *stubResolver) MinimumsFor(rec domain.TakeoffRecord, _ time.Time) (domain.Minimums, error) {
	if rec.Student == s.failFor {
		return domain.Minimums{}, errNoRow
	}
	return s.minimums, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var standardMinimums = domain.Minimums{CeilingFt: 2000, VisibilitySM: 5, MaxWindKt: 20, MaxCrosswindKt: 8}

func mustVisibility(t *testing.T, sm float64) domain.Visibility {
	t.Helper()
	v, err := domain.ReportedVisibility(sm, domain.StatuteMiles)
	require.NoError(t, err)
	return v
}

func mustWind(t *testing.T, kt float64) domain.Wind {
	t.Helper()
	w, err := domain.ReportedWind(kt, domain.Knots)
	require.NoError(t, err)
	return w
}

func mustOvercast(t *testing.T, ft float64) domain.Ceiling {
	t.Helper()
	layer, err := domain.NewCloudLayer(domain.Overcast, ft)
	require.NoError(t, err)
	return domain.LayeredCeiling(layer)
}

// newLog builds hourly reports on 2017-01-08 (-05:00): 09:00 low visibility,
// 10:00 good, 11:00 windy with a low overcast, 12:00 good.
func newLog(t *testing.T) *domain.ObservationLog {
	t.Helper()
	good := domain.Observation{Visibility: mustVisibility(t, 10), Wind: mustWind(t, 8), Ceiling: domain.ClearCeiling()}
	foggy := good
	foggy.Visibility = mustVisibility(t, 1)
	stormy := good
	stormy.Wind = mustWind(t, 35)
	stormy.Ceiling = mustOvercast(t, 800)

	log, err := domain.NewObservationLog(map[string]domain.Observation{
		"2017-01-08T09:00:00-05:00": foggy,
		"2017-01-08T10:00:00-05:00": good,
		"2017-01-08T11:00:00-05:00": stormy,
		"2017-01-08T12:00:00-05:00": good,
	}, nil)
	require.NoError(t, err)
	return log
}

func lesson(student, takeoff string) domain.TakeoffRecord {
	return domain.TakeoffRecord{
		Student: student, Airplane: "548QR", Takeoff: takeoff,
		Landing: takeoff, Filed: "VFR", Area: "Pattern",
	}
}

// --- tests ---

func TestAuditor_Run(t *testing.T) {
	records := []domain.TakeoffRecord{
		lesson("S1", "2017-01-08T09:00:00-05:00"), // exact, foggy
		lesson("S2", "2017-01-08T10:30:00-05:00"), // fallback to 10:00, good
		lesson("S3", "2017-01-08T11:15:00-05:00"), // fallback to 11:00, stormy
		lesson("S4", "2017-01-08T08:00:00-05:00"), // before any report
		lesson("S5", "2017-01-08T12:00:00-05:00"), // exact, good
	}
	metrics := observability.NewMetricsForTesting()
	a := audit.New(&stubResolver{minimums: standardMinimums}, discardLogger(), metrics)

	got, err := a.Run(context.Background(), records, newLog(t))
	require.NoError(t, err)

	want := []domain.ViolationRecord{
		{TakeoffRecord: records[0], Reason: domain.ViolationVisibility},
		{TakeoffRecord: records[2], Reason: domain.ViolationWeather},
		{TakeoffRecord: records[3], Reason: domain.ViolationUnknown},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}

	assert.InDelta(t, 5, testutil.ToFloat64(metrics.RecordsAudited), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.ObservationLookups.WithLabelValues("exact")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.ObservationLookups.WithLabelValues("fallback")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ObservationLookups.WithLabelValues("missing")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Violations.WithLabelValues("Unknown")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.AuditRunning), 0)
}

func TestAuditor_LogsWeatherForViolations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := audit.New(&stubResolver{minimums: standardMinimums}, logger, observability.NewMetricsForTesting())

	_, err := a.Run(context.Background(), []domain.TakeoffRecord{
		lesson("S3", "2017-01-08T11:15:00-05:00"),
		lesson("S5", "2017-01-08T12:00:00-05:00"),
	}, newLog(t))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "takeoff below minimums")
	assert.Contains(t, out, "student=S3")
	assert.Contains(t, out, "weather.key=2017-01-08T11:00:00-05:00")
	assert.Contains(t, out, "weather.layers=1")
	assert.Contains(t, out, "weather.ceiling_ft=800")
	assert.NotContains(t, out, "student=S5")
}

func TestAuditor_ParallelMatchesSequential(t *testing.T) {
	log := newLog(t)
	var records []domain.TakeoffRecord
	for i := range 200 {
		minute := i % 60
		hour := 8 + (i/60)%5
		records = append(records, lesson(fmt.Sprintf("S%03d", i), fmt.Sprintf("2017-01-08T%02d:%02d:00-05:00", hour, minute)))
	}
	resolver := &stubResolver{minimums: standardMinimums}

	sequential, err := audit.New(resolver, discardLogger(), observability.NewMetricsForTesting()).
		Run(context.Background(), records, log)
	require.NoError(t, err)
	require.NotEmpty(t, sequential)

	for _, workers := range []int{2, 8, 64} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			a := audit.New(resolver, discardLogger(), observability.NewMetricsForTesting(), audit.WithWorkers(workers))
			for range 3 {
				got, err := a.Run(context.Background(), records, log)
				require.NoError(t, err)
				if diff := cmp.Diff(sequential, got); diff != "" {
					t.Fatalf("parallel result differs (-sequential +parallel):\n%s", diff)
				}
			}
		})
	}
}

func TestAuditor_AtMostOneRowPerRecord(t *testing.T) {
	records := []domain.TakeoffRecord{
		lesson("S1", "2017-01-08T11:00:00-05:00"),
		lesson("S1", "2017-01-08T11:00:00-05:00"),
	}
	a := audit.New(&stubResolver{minimums: standardMinimums}, discardLogger(), observability.NewMetricsForTesting())

	got, err := a.Run(context.Background(), records, newLog(t))
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, v := range got {
		assert.Equal(t, domain.ViolationWeather, v.Reason)
	}
}

func TestAuditor_ResolverErrorAbortsRun(t *testing.T) {
	records := []domain.TakeoffRecord{
		lesson("S1", "2017-01-08T09:00:00-05:00"),
		lesson("S2", "2017-01-08T10:00:00-05:00"),
		lesson("S3", "2017-01-08T11:00:00-05:00"),
	}

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			metrics := observability.NewMetricsForTesting()
			a := audit.New(&stubResolver{minimums: standardMinimums, failFor: "S2"}, discardLogger(), metrics, audit.WithWorkers(workers))

			got, err := a.Run(context.Background(), records, newLog(t))
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, errNoRow)
			assert.Contains(t, err.Error(), "lesson 2")
			assert.Contains(t, err.Error(), "S2")
			assert.InDelta(t, 1, testutil.ToFloat64(metrics.AuditErrors), 0)
		})
	}
}

func TestAuditor_BadTakeoffTimestamp(t *testing.T) {
	records := []domain.TakeoffRecord{lesson("S1", "last tuesday")}
	a := audit.New(&stubResolver{minimums: standardMinimums}, discardLogger(), observability.NewMetricsForTesting())

	_, err := a.Run(context.Background(), records, newLog(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lesson 1")
}

func TestAuditor_NaiveTakeoffUsesLocation(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	records := []domain.TakeoffRecord{lesson("S1", "2017-01-08T09:30:00")}
	a := audit.New(&stubResolver{minimums: standardMinimums}, discardLogger(), observability.NewMetricsForTesting(),
		audit.WithLocation(newYork))

	got, err := a.Run(context.Background(), records, newLog(t))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ViolationVisibility, got[0].Reason)
}

func TestAuditor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []domain.TakeoffRecord{lesson("S1", "2017-01-08T09:00:00-05:00")}
	for _, workers := range []int{1, 4} {
		a := audit.New(&stubResolver{minimums: standardMinimums}, discardLogger(), observability.NewMetricsForTesting(), audit.WithWorkers(workers))
		_, err := a.Run(ctx, records, newLog(t))
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestAuditor_EmptyInputs(t *testing.T) {
	a := audit.New(&stubResolver{minimums: standardMinimums}, discardLogger(), observability.NewMetricsForTesting())

	got, err := a.Run(context.Background(), nil, newLog(t))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = a.Run(context.Background(), []domain.TakeoffRecord{lesson("S1", "2017-01-08T09:00:00-05:00")}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ViolationUnknown, got[0].Reason)
}
