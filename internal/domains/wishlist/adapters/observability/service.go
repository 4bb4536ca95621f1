package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/domain"
	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/ports"
)

const tracerName = "github.com/llmndev/perfume-storefront/internal/domains/wishlist/adapters/observability/service"

// Service decorates the wishlist service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	changes metric.Int64Counter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

// WithMeter registers the wishlist.service.changes counter on m.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m == nil {
			return
		}
		s.changes, _ = m.Int64Counter("wishlist.service.changes", metric.WithDescription("Number of wishlist changes by kind"))
	}
}

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{inner: inner}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) Add(ctx context.Context, userID int64, item domain.Item) (*domain.Wishlist, error) {
	ctx, span := s.start(ctx, "WishlistService.Add", userID, attribute.Int64("product.id", item.ProductID))
	defer span.End()

	list, err := s.inner.Add(ctx, userID, item)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add wishlist item", userID, item.ProductID)
	}
	s.recordChange(ctx, "add")
	span.SetAttributes(attribute.Int("wishlist.size", list.Len()))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "wishlist item added",
		slog.Int64("user.id", userID), slog.Int64("product.id", item.ProductID), slog.Int("size", list.Len()))
	return list, nil
}

func (s *Service) Remove(ctx context.Context, userID, productID int64) (*domain.Wishlist, error) {
	ctx, span := s.start(ctx, "WishlistService.Remove", userID, attribute.Int64("product.id", productID))
	defer span.End()

	list, err := s.inner.Remove(ctx, userID, productID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to remove wishlist item", userID, productID)
	}
	s.recordChange(ctx, "remove")
	s.logger.LogAttrs(ctx, slog.LevelInfo, "wishlist item removed",
		slog.Int64("user.id", userID), slog.Int64("product.id", productID), slog.Int("size", list.Len()))
	return list, nil
}

func (s *Service) Toggle(ctx context.Context, userID int64, item domain.Item) (bool, error) {
	ctx, span := s.start(ctx, "WishlistService.Toggle", userID, attribute.Int64("product.id", item.ProductID))
	defer span.End()

	on, err := s.inner.Toggle(ctx, userID, item)
	if err != nil {
		return false, s.handleError(ctx, span, err, "failed to toggle wishlist item", userID, item.ProductID)
	}
	kind := "remove"
	if on {
		kind = "add"
	}
	s.recordChange(ctx, kind)
	span.SetAttributes(attribute.Bool("wishlist.present", on))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "wishlist item toggled",
		slog.Int64("user.id", userID), slog.Int64("product.id", item.ProductID), slog.Bool("present", on))
	return on, nil
}

func (s *Service) Contains(ctx context.Context, userID int64, productIDs []int64) (map[int64]bool, error) {
	ctx, span := s.start(ctx, "WishlistService.Contains", userID, attribute.Int("product.count", len(productIDs)))
	defer span.End()

	present, err := s.inner.Contains(ctx, userID, productIDs)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to check wishlist", userID, 0)
	}
	return present, nil
}

func (s *Service) List(ctx context.Context, userID int64) (*domain.Wishlist, error) {
	ctx, span := s.start(ctx, "WishlistService.List", userID)
	defer span.End()

	list, err := s.inner.List(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list wishlist", userID, 0)
	}
	span.SetAttributes(attribute.Int("wishlist.size", list.Len()))
	return list, nil
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	ctx, span := s.start(ctx, "WishlistService.Clear", userID)
	defer span.End()

	if err := s.inner.Clear(ctx, userID); err != nil {
		return s.handleError(ctx, span, err, "failed to clear wishlist", userID, 0)
	}
	s.recordChange(ctx, "clear")
	s.logger.LogAttrs(ctx, slog.LevelInfo, "wishlist cleared", slog.Int64("user.id", userID))
	return nil
}

func (s *Service) start(ctx context.Context, name string, userID int64, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.Int64("user.id", userID))
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) recordChange(ctx context.Context, kind string) {
	if s.changes == nil {
		return
	}
	s.changes.Add(ctx, 1, metric.WithAttributes(attribute.String("wishlist.change", kind)))
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, userID, productID int64) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs := []slog.Attr{slog.Int64("user.id", userID), slog.String("error", err.Error())}
	if productID > 0 {
		attrs = append(attrs, slog.Int64("product.id", productID))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

var _ ports.Service = (*Service)(nil)
