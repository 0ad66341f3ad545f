// Package telemetry instruments outbound HTTP clients with OpenTelemetry spans.
package telemetry

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentResty starts a client span per request and ends it when the
// response or error arrives. Headers are not recorded: they carry API tokens.
func InstrumentResty(client *resty.Client, tracerName string) *resty.Client {
	tracer := otel.Tracer(tracerName)
	client.OnBeforeRequest(onBeforeRequest(tracer))
	client.OnAfterResponse(onAfterResponse)
	client.OnError(onError)
	return client
}

func onBeforeRequest(tracer trace.Tracer) resty.RequestMiddleware {
	return func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), "http "+req.Method,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("url.template", req.URL),
			),
		)
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
		req.SetContext(ctx)
		return nil
	}
}

func onAfterResponse(_ *resty.Client, res *resty.Response) error {
	span := trace.SpanFromContext(res.Request.Context())
	defer span.End()

	span.SetAttributes(
		attribute.Int("http.response.status_code", res.StatusCode()),
		attribute.Int64("http.response.body.size", res.Size()),
	)
	if res.Request.RawRequest != nil {
		span.SetAttributes(attribute.String("server.address", res.Request.RawRequest.URL.Host))
	}
	if res.IsError() {
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", res.StatusCode()))
	}
	return nil
}

func onError(req *resty.Request, err error) {
	span := trace.SpanFromContext(req.Context())
	defer span.End()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
