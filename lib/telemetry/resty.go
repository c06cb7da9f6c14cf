package telemetry

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// headers whose values never end up in span attributes
var redactedHeaders = map[string]bool{
	"cookie":        true,
	"authorization": true,
	"set-cookie":    true,
}

// InstrumentResty starts a client span for every request made by client.
func InstrumentResty(client *resty.Client, tracerName string) {
	tracer := otel.Tracer(tracerName)

	client.OnBeforeRequest(onBeforeRequest(tracer))
	client.OnAfterResponse(onAfterResponse)
	client.OnError(onError)
}

func onBeforeRequest(tracer trace.Tracer) resty.RequestMiddleware {
	return func(cli *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(
			req.Context(),
			fmt.Sprintf("http %s", req.Method),
			trace.WithSpanKind(trace.SpanKindClient),
		)
		req.SetContext(ctx)
		return nil
	}
}

func headerAttributes(prefix string, headers http.Header) []attribute.KeyValue {
	var out []attribute.KeyValue
	for header, values := range headers {
		value := strings.Join(values, ", ")
		if redactedHeaders[strings.ToLower(header)] {
			value = "<redacted>"
		}
		out = append(out, attribute.String(
			fmt.Sprintf("%s/header: %s", prefix, header),
			value,
		))
	}
	return out
}

func requestAttributes(req *resty.Request) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.HTTPRequestMethodKey.String(req.Method),
		semconv.URLFull(req.URL),
	}
	return append(attrs, headerAttributes("request", req.Header)...)
}

func onAfterResponse(_ *resty.Client, res *resty.Response) error {
	span := trace.SpanFromContext(res.Request.Context())
	defer span.End()

	span.SetAttributes(requestAttributes(res.Request)...)
	span.SetAttributes(semconv.HTTPResponseStatusCode(res.StatusCode()))
	span.SetAttributes(headerAttributes("response", res.Header())...)
	span.SetAttributes(attribute.Int("response/body_size", len(res.Body())))

	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
	}
	return nil
}

func onError(req *resty.Request, err error) {
	span := trace.SpanFromContext(req.Context())
	defer span.End()

	span.SetAttributes(requestAttributes(req)...)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
