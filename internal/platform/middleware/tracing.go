package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vouch/pkg/requestcontext"
)

// Tracing opens a server span per request. Span export is configured by the
// host process; with no SDK installed this is a no-op tracer.
func Tracing(next http.Handler) http.Handler {
	tracer := otel.Tracer("vouch/transport")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
			attribute.String("request.id", requestcontext.RequestID(ctx)),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
