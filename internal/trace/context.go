package trace

import "context"

type ctxKey struct{}

// FromContext extracts the Tracer from context, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches a Tracer to context.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// SpanContext is what a child span inherits: the parent span and the build
// log the work belongs to.
type SpanContext struct {
	SpanID uint64
	Log    string
}

type spanCtxKey struct{}

// CurrentSpan retrieves the span context, zero when none was attached.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	if sc, ok := ctx.Value(spanCtxKey{}).(SpanContext); ok {
		return sc
	}
	return SpanContext{}
}

// WithSpanContext attaches span context.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	if ctx == nil {
		return nil
	}
	return context.WithValue(ctx, spanCtxKey{}, sc)
}

// WithLog tags every span started below ctx with the build log path.
func WithLog(ctx context.Context, log string) context.Context {
	sc := CurrentSpan(ctx)
	sc.Log = log
	return WithSpanContext(ctx, sc)
}

// Start begins a span under the span in ctx using the tracer in ctx and
// returns a context that makes it the parent of nested spans.
//
//	ctx, span := trace.Start(ctx, trace.ScopePass, "parse")
//	defer span.End("")
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	sc := CurrentSpan(ctx)
	span := begin(FromContext(ctx), scope, name, sc.SpanID, sc.Log)
	if span.id == 0 {
		// отфильтрованный span не становится родителем
		return ctx, span
	}
	return WithSpanContext(ctx, SpanContext{SpanID: span.id, Log: sc.Log}), span
}
