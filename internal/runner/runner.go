package runner

import (
	"context"
	"listingscraper/internal/catalog"
	"listingscraper/internal/components/chrono"
	"listingscraper/internal/components/telemetry"
	"listingscraper/internal/listing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_run       = "runner.run"
	report_pairs     = "runner.pairs-attempted"
	report_failed    = "runner.pairs-failed"
	report_rows      = "runner.rows-written"
	report_cancelled = "runner.cancelled"
)

const DefaultDelay = 1200 * time.Millisecond

// PairProcessor is implemented by listing.Extractor.
type PairProcessor interface {
	FetchAndExtract(ctx context.Context, loc catalog.Location, cat catalog.Category) listing.PairResult
}

// Stats aggregates the results of a run.
type Stats struct {
	Pairs     int
	Attempted int
	Succeeded int
	Failed    int
	Rows      int
	Skipped   int
	Duration  time.Duration
}

func (s *Stats) add(result listing.PairResult) {
	s.Attempted++
	if result.Ok() {
		s.Succeeded++
	} else {
		s.Failed++
	}
	s.Rows += result.Rows
	s.Skipped += result.Skipped
}

type Options struct {
	// Delay is waited after every pair, including the last one.
	Delay   time.Duration
	Console Console
}

type instruments struct {
	tracer    trace.Tracer
	attempted metric.Int64Counter
	failed    metric.Int64Counter
	rows      metric.Int64Counter
}

func newInstruments() instruments {
	meter := otel.Meter("listingscraper/runner")
	attempted, _ := meter.Int64Counter("pairs_attempted")
	failed, _ := meter.Int64Counter("pairs_failed")
	rows, _ := meter.Int64Counter("rows_written")
	return instruments{
		tracer:    otel.Tracer("listingscraper/runner"),
		attempted: attempted,
		failed:    failed,
		rows:      rows,
	}
}

// Runner is the driver loop, it processes every (location, category) pair
// strictly one after the other.
type Runner struct {
	processor PairProcessor
	time      chrono.API
	tel       telemetry.API
	opts      Options
	inst      instruments
}

func NewRunner(processor PairProcessor, time chrono.API, tel telemetry.API, opts Options) Runner {
	return Runner{
		processor: processor,
		time:      time,
		tel:       telemetry.NewScopedAPI("runner", tel),
		opts:      opts,
		inst:      newInstruments(),
	}
}

// Run processes every location (outer) against every category (inner). It
// only returns an error when ctx is cancelled, the stats gathered up to that
// point are still returned.
func (r Runner) Run(ctx context.Context, locations []catalog.Location, categories []catalog.Category) (Stats, error) {
	ctx, span := r.inst.tracer.Start(ctx, "runner:Run")
	defer span.End()

	start := r.time.Now()
	stats := Stats{Pairs: len(locations) * len(categories)}
	r.tel.ReportDebug(report_run, len(locations), len(categories))

	var err error
loop:
	for _, loc := range locations {
		for _, cat := range categories {
			if err = ctx.Err(); err != nil {
				break loop
			}

			result := r.processPair(ctx, loc, cat)
			stats.add(result)
			r.opts.Console.Report(result)

			err = r.time.Sleep(ctx, r.opts.Delay)
			if err != nil {
				break loop
			}
		}
	}
	stats.Duration = r.time.Now().Sub(start)

	r.tel.ReportCount(report_pairs, int64(stats.Attempted))
	r.tel.ReportCount(report_failed, int64(stats.Failed))
	r.tel.ReportCount(report_rows, int64(stats.Rows))
	span.SetAttributes(
		attribute.Int("pairs.attempted", stats.Attempted),
		attribute.Int("pairs.failed", stats.Failed),
		attribute.Int("rows.written", stats.Rows),
	)

	if err != nil {
		r.tel.ReportWarning(report_cancelled, err, stats.Attempted, stats.Pairs)
		span.SetStatus(codes.Error, err.Error())
		return stats, err
	}
	return stats, nil
}

func (r Runner) processPair(ctx context.Context, loc catalog.Location, cat catalog.Category) listing.PairResult {
	attrs := []attribute.KeyValue{
		attribute.String("location.lat", loc.Latitude),
		attribute.String("location.lon", loc.Longitude),
		attribute.String("category.l1_id", cat.L1ID),
		attribute.String("category.l2_id", cat.L2ID),
	}
	ctx, span := r.inst.tracer.Start(ctx, "runner:pair", trace.WithAttributes(attrs...))
	defer span.End()

	result := r.processor.FetchAndExtract(ctx, loc, cat)

	r.inst.attempted.Add(ctx, 1)
	r.inst.rows.Add(ctx, int64(result.Rows))
	span.SetAttributes(attribute.Int("rows", result.Rows))
	if !result.Ok() {
		r.inst.failed.Add(ctx, 1)
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Reason())
	}
	return result
}
