package persistence

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OperationRecorder receives one observation per store call.
type OperationRecorder interface {
	RecordStoreOperation(operation, index string, duration time.Duration, err error)
}

// InstrumentedStore records metrics and a span for every store call.
type InstrumentedStore struct {
	inner    Store
	recorder OperationRecorder
	tracer   trace.Tracer
	table    string
}

func NewInstrumentedStore(inner Store, recorder OperationRecorder, tracer trace.Tracer, table string) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, recorder: recorder, tracer: tracer, table: table}
}

func (s *InstrumentedStore) observe(ctx context.Context, operation, index string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "store."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs,
			attribute.String("db.system", "dynamodb"),
			attribute.String("db.collection.name", s.table),
			attribute.String("db.index", index))...),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if s.recorder != nil {
			s.recorder.RecordStoreOperation(operation, index, time.Since(start), err)
		}
	}
}

func (s *InstrumentedStore) Get(ctx context.Context, key Key) (Item, error) {
	ctx, done := s.observe(ctx, "get", "table")
	item, err := s.inner.Get(ctx, key)
	done(err)
	return item, err
}

func (s *InstrumentedStore) Put(ctx context.Context, item Item, cond Condition) error {
	ctx, done := s.observe(ctx, "put", "table", attribute.String("db.condition", cond.Kind.String()))
	err := s.inner.Put(ctx, item, cond)
	done(err)
	return err
}

func (s *InstrumentedStore) Update(ctx context.Context, key Key, update Update, cond Condition) error {
	ctx, done := s.observe(ctx, "update", "table", attribute.String("db.condition", cond.Kind.String()))
	err := s.inner.Update(ctx, key, update, cond)
	done(err)
	return err
}

func (s *InstrumentedStore) Delete(ctx context.Context, key Key, cond Condition) error {
	ctx, done := s.observe(ctx, "delete", "table", attribute.String("db.condition", cond.Kind.String()))
	err := s.inner.Delete(ctx, key, cond)
	done(err)
	return err
}

func (s *InstrumentedStore) Query(ctx context.Context, query Query) (*QueryResult, error) {
	ctx, done := s.observe(ctx, "query", query.Index.Label(), attribute.Int("db.limit", int(query.Limit)))
	result, err := s.inner.Query(ctx, query)
	done(err)
	return result, err
}

func (s *InstrumentedStore) BatchGet(ctx context.Context, keys []Key) ([]Item, error) {
	ctx, done := s.observe(ctx, "batch_get", "table", attribute.Int("db.keys", len(keys)))
	items, err := s.inner.BatchGet(ctx, keys)
	done(err)
	return items, err
}
