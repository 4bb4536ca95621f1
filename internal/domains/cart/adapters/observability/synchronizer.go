package observability

import (
	"context"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/llmndev/perfume-storefront/internal/domains/cart/domain"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/ports"
)

const tracerName = "github.com/llmndev/perfume-storefront/internal/domains/cart/adapters/observability/synchronizer"

// Synchronizer decorates a cart synchronizer with tracing, logging, and metrics.
type Synchronizer struct {
	inner   ports.Synchronizer
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics synchronizerMetrics
}

type Option func(*Synchronizer)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Synchronizer) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create synchronizer instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Synchronizer) {
		s.metrics = newSynchronizerMetrics(m)
	}
}

// New wires a decorator around the core synchronizer.
func New(inner ports.Synchronizer, opts ...Option) ports.Synchronizer {
	s := &Synchronizer{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newSynchronizerMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Synchronizer) UserID() int64 {
	return s.inner.UserID()
}

// Refresh reloads the cart with instrumentation.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Synchronizer.Refresh")
	defer span.End()

	if err := s.inner.Refresh(ctx); err != nil {
		return s.handleError(ctx, span, "refresh", err, "failed to refresh cart")
	}
	s.annotate(ctx, span, "cart refreshed")
	return nil
}

// AddItem adds a product with instrumentation.
func (s *Synchronizer) AddItem(ctx context.Context, productID int64, quantity int) error {
	attrs := []attribute.KeyValue{attribute.Int64("product.id", productID), attribute.Int("cart.item.quantity", quantity)}
	ctx, span := s.startSpan(ctx, "Synchronizer.AddItem", attrs...)
	defer span.End()

	s.logInfo(ctx, "adding product to cart", slog.Int64("product.id", productID), slog.Int("quantity", quantity))
	if err := s.inner.AddItem(ctx, productID, quantity); err != nil {
		return s.handleError(ctx, span, "add_item", err, "failed to add product to cart", slog.Int64("product.id", productID))
	}
	s.metrics.recordMutation(ctx, "add_item")
	s.annotate(ctx, span, "product added to cart")
	return nil
}

// UpdateQuantity changes a line item quantity with instrumentation.
func (s *Synchronizer) UpdateQuantity(ctx context.Context, lineItemID int64, quantity int) error {
	ctx, span := s.startSpan(ctx, "Synchronizer.UpdateQuantity",
		attribute.Int64("cart.item.id", lineItemID),
		attribute.Int("cart.item.quantity", quantity),
	)
	defer span.End()

	s.logInfo(ctx, "updating cart item", slog.Int64("cart.item.id", lineItemID), slog.Int("quantity", quantity))
	if err := s.inner.UpdateQuantity(ctx, lineItemID, quantity); err != nil {
		return s.handleError(ctx, span, "update_quantity", err, "failed to update cart item", slog.Int64("cart.item.id", lineItemID))
	}
	s.metrics.recordMutation(ctx, "update_quantity")
	s.annotate(ctx, span, "cart item updated")
	return nil
}

// RemoveItem deletes a line item with instrumentation.
func (s *Synchronizer) RemoveItem(ctx context.Context, lineItemID int64) error {
	ctx, span := s.startSpan(ctx, "Synchronizer.RemoveItem", attribute.Int64("cart.item.id", lineItemID))
	defer span.End()

	s.logInfo(ctx, "removing cart item", slog.Int64("cart.item.id", lineItemID))
	if err := s.inner.RemoveItem(ctx, lineItemID); err != nil {
		return s.handleError(ctx, span, "remove_item", err, "failed to remove cart item", slog.Int64("cart.item.id", lineItemID))
	}
	s.metrics.recordMutation(ctx, "remove_item")
	s.annotate(ctx, span, "cart item removed")
	return nil
}

// Clear empties the cart with instrumentation.
func (s *Synchronizer) Clear(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Synchronizer.Clear", attribute.Int("cart.items.before", s.inner.Cart().LineCount()))
	defer span.End()

	s.logInfo(ctx, "clearing cart")
	if err := s.inner.Clear(ctx); err != nil {
		return s.handleError(ctx, span, "clear", err, "failed to clear cart")
	}
	s.metrics.recordMutation(ctx, "clear")
	s.annotate(ctx, span, "cart cleared")
	return nil
}

func (s *Synchronizer) Cart() *domain.Cart {
	return s.inner.Cart()
}

func (s *Synchronizer) Subtotal() decimal.Decimal {
	return s.inner.Subtotal()
}

func (s *Synchronizer) ItemCount() int {
	return s.inner.ItemCount()
}

func (s *Synchronizer) Loading() bool {
	return s.inner.Loading()
}

func (s *Synchronizer) Phase() ports.Phase {
	return s.inner.Phase()
}

func (s *Synchronizer) annotate(ctx context.Context, span trace.Span, msg string) {
	count := s.inner.ItemCount()
	subtotal := s.inner.Subtotal().StringFixed(2)
	span.SetAttributes(
		attribute.Int("cart.item_count", count),
		attribute.String("cart.subtotal", subtotal),
	)
	s.logInfo(ctx, msg, slog.Int("item_count", count), slog.String("subtotal", subtotal))
}

func (s *Synchronizer) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	attrs = append(attrs, attribute.Int64("user.id", s.inner.UserID()))
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Synchronizer) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	attrs = append(attrs, slog.Int64("user.id", s.inner.UserID()))
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Synchronizer) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	attrs = append(attrs, slog.Int64("user.id", s.inner.UserID()))
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Synchronizer) handleError(ctx context.Context, span trace.Span, operation string, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.metrics.recordFailure(ctx, operation)
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type synchronizerMetrics struct {
	mutations metric.Int64Counter
	failures  metric.Int64Counter
}

func newSynchronizerMetrics(m metric.Meter) synchronizerMetrics {
	if m == nil {
		return synchronizerMetrics{}
	}
	mutations, _ := m.Int64Counter("cart.synchronizer.mutations", metric.WithDescription("Number of successful cart mutations"))
	failures, _ := m.Int64Counter("cart.synchronizer.failures", metric.WithDescription("Number of failed cart operations"))
	return synchronizerMetrics{mutations: mutations, failures: failures}
}

func (m synchronizerMetrics) recordMutation(ctx context.Context, operation string) {
	addCounter(ctx, m.mutations, 1, attribute.String("cart.operation", operation))
}

func (m synchronizerMetrics) recordFailure(ctx context.Context, operation string) {
	addCounter(ctx, m.failures, 1, attribute.String("cart.operation", operation))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Synchronizer = (*Synchronizer)(nil)
