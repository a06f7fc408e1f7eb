package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shearops/shear/internal/store"
)

const storeScopeName = "github.com/shearops/shear/store"

// InstrumentedStore wraps store.Client with OTel tracing and metrics.
// Every request gets a span and is counted in shear.store.* metrics.
// Use WrapStore to create one; it returns the original client unchanged
// when telemetry is disabled.
type InstrumentedStore struct {
	inner   store.Client
	tracer  trace.Tracer
	ops     metric.Int64Counter
	dur     metric.Float64Histogram
	errs    metric.Int64Counter
	deleted metric.Int64Counter
}

// WrapStore returns c decorated with OTel instrumentation.
// When telemetry is disabled, c is returned as-is with zero overhead.
func WrapStore(c store.Client) store.Client {
	if !Enabled() {
		return c
	}
	m := Meter(storeScopeName)
	ops, _ := m.Int64Counter("shear.store.operations",
		metric.WithDescription("Total store requests issued"),
	)
	dur, _ := m.Float64Histogram("shear.store.operation.duration",
		metric.WithDescription("Store request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("shear.store.errors",
		metric.WithDescription("Total failed store requests"),
	)
	deleted, _ := m.Int64Counter("shear.versions.deleted",
		metric.WithDescription("Versions deleted by the store"),
	)
	return &InstrumentedStore{
		inner:   c,
		tracer:  Tracer(storeScopeName),
		ops:     ops,
		dur:     dur,
		errs:    errs,
		deleted: deleted,
	}
}

// op starts a span and records a metric for the named store operation.
func (s *InstrumentedStore) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("store.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "store."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedStore) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

func (s *InstrumentedStore) Libraries(ctx context.Context) ([]store.Library, error) {
	ctx, span, t := s.op(ctx, "Libraries")
	v, err := s.inner.Libraries(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStore) Items(ctx context.Context, lib store.Library, pageToken string) (store.ItemPage, error) {
	attrs := []attribute.KeyValue{attribute.String("shear.library", lib.Title)}
	ctx, span, t := s.op(ctx, "Items", attrs...)
	v, err := s.inner.Items(ctx, lib, pageToken)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStore) Versions(ctx context.Context, item store.Item) ([]store.Version, error) {
	attrs := []attribute.KeyValue{attribute.String("shear.library", item.LibraryTitle)}
	ctx, span, t := s.op(ctx, "Versions", attrs...)
	v, err := s.inner.Versions(ctx, item)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStore) DeleteVersions(ctx context.Context, item store.Item, versionIDs []int) error {
	attrs := []attribute.KeyValue{
		attribute.String("shear.library", item.LibraryTitle),
		attribute.Int("shear.version.count", len(versionIDs)),
	}
	ctx, span, t := s.op(ctx, "DeleteVersions", attrs...)
	err := s.inner.DeleteVersions(ctx, item, versionIDs)
	s.done(ctx, span, t, err, attrs...)
	if err == nil {
		s.deleted.Add(ctx, int64(len(versionIDs)), metric.WithAttributes(attrs...))
	}
	return err
}

func (s *InstrumentedStore) LibraryStorageBytes(ctx context.Context, lib store.Library) (int64, error) {
	attrs := []attribute.KeyValue{attribute.String("shear.library", lib.Title)}
	ctx, span, t := s.op(ctx, "LibraryStorageBytes", attrs...)
	v, err := s.inner.LibraryStorageBytes(ctx, lib)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStore) Policy(ctx context.Context) (store.TenantPolicy, error) {
	ctx, span, t := s.op(ctx, "Policy")
	v, err := s.inner.Policy(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStore) UpdatePolicy(ctx context.Context, p store.TenantPolicy) error {
	ctx, span, t := s.op(ctx, "UpdatePolicy")
	err := s.inner.UpdatePolicy(ctx, p)
	s.done(ctx, span, t, err)
	return err
}

func (s *InstrumentedStore) BaseURL() string {
	return s.inner.BaseURL()
}
