package router

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/stepup/internal/pkg/config"
	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
	"github.com/shandysiswandi/stepup/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const maxLoggedBodyBytes = 16 * 1024

// responseCapture records what the handler wrote so it can be logged and measured.
type responseCapture struct {
	http.ResponseWriter
	status    int
	size      int
	body      bytes.Buffer
	truncated bool
	err       error
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(p []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}

	if room := maxLoggedBodyBytes - c.body.Len(); room >= len(p) {
		c.body.Write(p)
	} else {
		c.body.Write(p[:max(room, 0)])
		c.truncated = true
	}

	n, err := c.ResponseWriter.Write(p)
	c.size += n
	return n, err
}

// SetError receives the handler error from Router.endpoint.
func (c *responseCapture) SetError(err error) { c.err = err }

// Unwrap lets http.ResponseController reach the underlying writer.
func (c *responseCapture) Unwrap() http.ResponseWriter { return c.ResponseWriter }

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func (c *responseCapture) errorCode() string {
	var gerr *goerror.Error
	if c.err != nil && errors.As(c.err, &gerr) {
		return gerr.Code().String()
	}
	return ""
}

type httpTelemetry struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
	maskKeys map[string]struct{}
}

func newHTTPTelemetry(cfg config.Config, ins instrument.Instrumentation) *httpTelemetry {
	fields := append([]string{}, instrument.DefaultMaskFields...)
	if cfg != nil {
		fields = append(fields, cfg.GetArray("instrument.log_mask_fields")...)
	}

	meter := ins.Meter("http.server")
	t := &httpTelemetry{tracer: ins.Tracer("http.server"), maskKeys: instrument.MaskKeys(fields...)}

	var err error
	if t.requests, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests received")); err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}
	if t.failures, err = meter.Int64Counter("http.server.failures",
		metric.WithDescription("Number of HTTP requests answered with an error code")); err != nil {
		slog.Error("failed to create http failure counter", "error", err)
	}
	if t.duration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration in milliseconds"), metric.WithUnit("ms")); err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return t
}

// describe renders a body for logs: masked JSON when possible, otherwise text or a placeholder.
func (t *httpTelemetry) describe(body []byte, truncated bool) any {
	if len(body) == 0 {
		return nil
	}

	var out any
	switch masked, ok := instrument.MaskJSON(body, t.maskKeys); {
	case ok:
		out = masked
	case utf8.Valid(body):
		out = string(body)
	default:
		out = "<binary body omitted>"
	}

	if truncated {
		return map[string]any{"body": out, "truncated": true}
	}
	return out
}

// peekBody reads up to the log limit and restores the body for the handler.
func peekBody(r *http.Request) ([]byte, bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, false
	}

	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes+1))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}

	if len(head) > maxLoggedBodyBytes {
		return head[:maxLoggedBodyBytes], true
	}
	return head, false
}

func maskHeaders(h http.Header, keys map[string]struct{}) http.Header {
	out := h.Clone()
	for k := range out {
		if _, ok := keys[strings.ToLower(k)]; ok {
			out.Set(k, "***")
		}
	}
	return out
}

func routePattern(r *http.Request) string {
	if p := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); p != "" {
		return p
	}
	return r.URL.Path
}

func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	t := newHTTPTelemetry(cfg, ins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := routePattern(r)

			ctx, span := t.tracer.Start(r.Context(), r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
					semconv.ClientAddressKey.String(r.RemoteAddr),
					semconv.UserAgentOriginalKey.String(r.UserAgent()),
				),
			)
			defer span.End()

			reqBody, reqTruncated := peekBody(r)
			slog.InfoContext(ctx, "request received",
				"method", r.Method,
				"path", route,
				"remote_ip", r.RemoteAddr,
				"headers", maskHeaders(r.Header, t.maskKeys),
				"body", t.describe(reqBody, reqTruncated),
			)

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.statusCode()
			errCode := rec.errorCode()
			latency := time.Since(start)

			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			}
			if errCode != "" {
				attrs = append(attrs, attribute.String("error.code", errCode))
			}

			if rec.err != nil {
				span.RecordError(rec.err)
			}
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			span.SetAttributes(append(attrs, semconv.HTTPResponseBodySizeKey.Int(rec.size))...)

			opt := metric.WithAttributes(attrs...)
			if t.requests != nil {
				t.requests.Add(ctx, 1, opt)
			}
			if t.failures != nil && errCode != "" {
				t.failures.Add(ctx, 1, opt)
			}
			if t.duration != nil {
				t.duration.Record(ctx, float64(latency.Microseconds())/1000, opt)
			}

			slog.InfoContext(ctx, "response sent",
				"method", r.Method,
				"path", route,
				"status", status,
				"bytes", rec.size,
				"latency_ms", latency.Milliseconds(),
				"error_code", errCode,
				"body", t.describe(rec.body.Bytes(), rec.truncated),
			)
		})
	}
}
