package telemetry

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/auth"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/config"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const httpRouteKey contextKey = "http.route"

// WithHTTPRoute adds the HTTP route to the context
func WithHTTPRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, httpRouteKey, route)
}

// HTTPRouteFromContext extracts the HTTP route from context
func HTTPRouteFromContext(ctx context.Context) string {
	route, _ := ctx.Value(httpRouteKey).(string)
	return route
}

// requestContextHandler stamps every record with what the context knows
// about the request being served: trace, route, request id and actor.
type requestContextHandler struct {
	next slog.Handler
}

func (h *requestContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *requestContextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(requestAttrs(ctx)...)
	return h.next.Handle(ctx, r)
}

func (h *requestContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &requestContextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *requestContextHandler) WithGroup(name string) slog.Handler {
	return &requestContextHandler{next: h.next.WithGroup(name)}
}

func requestAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	if route := HTTPRouteFromContext(ctx); route != "" {
		attrs = append(attrs, slog.String("http.route", route))
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		attrs = append(attrs, slog.String("request_id", reqID))
	}
	if actor, ok := auth.ActorFromContext(ctx); ok {
		attrs = append(attrs,
			slog.String("actor.id", actor.ID),
			slog.String("actor.role", actor.Role),
		)
	}
	return attrs
}

// NewLogger builds a JSON logger writing to w. Records logged with a request
// context carry its trace, route, request id and actor.
func NewLogger(w io.Writer, cfg *config.OTLPConfig) *slog.Logger {
	handler := &requestContextHandler{
		next: slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
	return slog.New(handler).With(
		slog.String("service.name", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)
}
