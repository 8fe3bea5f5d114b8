package postgres

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/go-core/log"
)

// context keys for query metadata.
type ctxKey string

const (
	ctxKeyQuery      ctxKey = "pgx.query"
	ctxKeyHTTPMethod ctxKey = "http.method"
)

// slowQuery is the threshold above which successful queries log at warn.
const slowQuery = 250 * time.Millisecond

var queryObserver atomic.Pointer[queryObserverHolder]

type queryObserverHolder struct{ QueryObserver }

// QueryObserver receives per-query metrics (wired by main for Prometheus).
type QueryObserver interface {
	ObserveQuery(ctx context.Context, method, route, outcome string, dur time.Duration)
}

// QueryObserverFunc adapts a plain function to QueryObserver.
type QueryObserverFunc func(ctx context.Context, method, route, outcome string, dur time.Duration)

// ObserveQuery implements QueryObserver.
func (f QueryObserverFunc) ObserveQuery(ctx context.Context, method, route, outcome string, dur time.Duration) {
	f(ctx, method, route, outcome, dur)
}

// SetQueryObserver sets the global query observer. nil clears it.
func SetQueryObserver(o QueryObserver) {
	if o == nil {
		queryObserver.Store(nil)
		return
	}
	queryObserver.Store(&queryObserverHolder{QueryObserver: o})
}

func getQueryObserver() QueryObserver {
	h := queryObserver.Load()
	if h == nil {
		return nil
	}
	return h.QueryObserver
}

// WithHTTPMethod stores the HTTP method in the context for query metrics labelling.
func WithHTTPMethod(ctx context.Context, method string) context.Context {
	if method == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyHTTPMethod, method)
}

// HTTPMethodMiddleware stashes the request method for query metrics.
func HTTPMethodMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithHTTPMethod(r.Context(), r.Method)))
	})
}

func httpMethodFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyHTTPMethod).(string); ok {
		return v
	}
	return "UNKNOWN"
}

func routePatternFromContext(ctx context.Context) string {
	if rc := chi.RouteContext(ctx); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unknown"
}

// queryInfo is stashed between TraceQueryStart and TraceQueryEnd.
type queryInfo struct {
	sql    string
	start  time.Time
	caller string
}

// loggingTracer wraps another pgx.QueryTracer (otelpgx in production) and
// adds a structured log line plus an observer callback for every query.
type loggingTracer struct {
	inner pgx.QueryTracer
}

func wrapQueryTracer(inner pgx.QueryTracer) pgx.QueryTracer {
	return loggingTracer{inner: inner}
}

func (t loggingTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	qi := &queryInfo{
		sql:    data.SQL,
		start:  time.Now(),
		caller: findDBCaller(),
	}

	// inner tracer first so its span is current
	if t.inner != nil {
		ctx = t.inner.TraceQueryStart(ctx, conn, data)
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() && qi.caller != "" {
		span.SetAttributes(attribute.String("db.caller", qi.caller))
	}

	return context.WithValue(ctx, ctxKeyQuery, qi)
}

func (t loggingTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	if t.inner != nil {
		t.inner.TraceQueryEnd(ctx, conn, data)
	}

	qi, _ := ctx.Value(ctxKeyQuery).(*queryInfo)
	if qi == nil {
		return
	}
	dur := time.Since(qi.start)

	outcome := "ok"
	if data.Err != nil {
		outcome = "error"
	}
	if obs := getQueryObserver(); obs != nil {
		obs.ObserveQuery(ctx, httpMethodFromContext(ctx), routePatternFromContext(ctx), outcome, dur)
	}

	fields := []any{
		"db.statement", compactSQL(qi.sql),
		"db.duration", dur.Seconds(),
	}
	if tag := strings.TrimSpace(data.CommandTag.String()); tag != "" {
		fields = append(fields, "pg.command_tag", tag, "db.rows", data.CommandTag.RowsAffected())
	}
	if qi.caller != "" {
		fields = append(fields, "db.caller", qi.caller)
	}

	L := log.FromContext(ctx)
	if data.Err != nil {
		var pgErr *pgconn.PgError
		if errors.As(data.Err, &pgErr) {
			fields = append(fields, "db.error_code", pgErr.Code)
		}
		L.Error(ctx, data.Err, "db query failed", fields...)
		return
	}
	if dur >= slowQuery {
		L.Warn(ctx, "slow db query", fields...)
	}
}

// findDBCaller walks the stack to the first frame outside pgx, otelpgx and
// this package.
func findDBCaller() string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	for {
		fr, more := frames.Next()
		fn := fr.Function
		if fn != "" &&
			!strings.HasPrefix(fn, "runtime.") &&
			!strings.Contains(fn, "github.com/jackc/pgx/v5") &&
			!strings.Contains(fn, "github.com/exaring/otelpgx") &&
			!strings.Contains(fn, "github.com/linnemanlabs/carepath/internal/postgres.") {
			return shortenFuncName(fn)
		}
		if !more {
			return ""
		}
	}
}

func shortenFuncName(fn string) string {
	if i := strings.LastIndex(fn, "/"); i >= 0 && i+1 < len(fn) {
		fn = fn[i+1:]
	}
	if dot := strings.Index(fn, "."); dot >= 0 && dot+1 < len(fn) {
		fn = fn[dot+1:]
	}
	return fn
}

// compactSQL collapses whitespace so multi-line statements log on one line.
func compactSQL(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
