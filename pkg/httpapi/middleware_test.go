package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestID_GeneratedWhenMissing(t *testing.T) {
	h := newHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestRequestID_Propagated(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := h.do(req)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := newHarnessWithLogger(t, zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/recipe/99/show", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	h.do(req)

	rejected := logs.FilterMessage("request rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, "req-7", rejected[0].ContextMap()["request_id"])

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/recipe/99/show", fields["path"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, "req-7", fields["request_id"])
}

func TestRecovery_RendersServerError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	renderer := &recordingRenderer{}
	srv, err := New(Services{}, zap.New(core), WithRenderer(renderer))
	require.NoError(t, err)

	handler := srv.withRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/explode", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ViewServerError, renderer.view)
	assert.Equal(t, "internal error: boom", renderer.model["exception"])
	assert.Equal(t, 1, logs.FilterMessage("handler panicked").Len())
}

func TestRecovery_KeepsStartedResponse(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	renderer := &recordingRenderer{}
	srv, err := New(Services{}, zap.New(core), WithRenderer(renderer))
	require.NoError(t, err)

	handler := srv.withRecovery(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("partial"))
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/explode", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
	assert.Empty(t, renderer.view)
	entries := logs.FilterMessage("handler panicked").All()
	require.Len(t, entries, 1)
	assert.Equal(t, true, entries[0].ContextMap()["response_started"])
}

func TestRecovery_RepanicsOnAbort(t *testing.T) {
	srv, err := New(Services{}, zap.NewNop(), WithRenderer(&recordingRenderer{}))
	require.NoError(t, err)

	handler := srv.withRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestTracing_RecordsServerSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prevProvider, prevPropagator := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
	})

	h := newHarness(t)
	h.recipes.findErr = assert.AnError

	req := httptest.NewRequest(http.MethodGet, "/recipe/1/show", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	h.do(req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /recipe/{id}/show", span.Name())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", span.SpanContext().TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", span.Parent().SpanID().String())
	assert.Equal(t, codes.Error, span.Status().Code)
}

func TestTracing_NamesSpansAfterRoutePattern(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prevProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevProvider)
	})

	h := newHarness(t)
	h.do(httptest.NewRequest(http.MethodGet, "/recipe/1/show", nil))
	h.do(httptest.NewRequest(http.MethodGet, "/recipe/2/show", nil))
	h.do(httptest.NewRequest(http.MethodGet, "/no/such/page", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "GET /recipe/{id}/show", spans[0].Name())
	assert.Equal(t, spans[0].Name(), spans[1].Name())
	assert.Contains(t, spans[1].Attributes(), attribute.String("http.route", "GET /recipe/{id}/show"))
	assert.Equal(t, "GET", spans[2].Name())
}
