package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
)

const instrumentationPrefix = "github.com/emperorhan/multichain-ingestor/"

// Span attribute keys shared by the pipeline stages.
const (
	AttrChainID   = attribute.Key("chain.id")
	AttrChainName = attribute.Key("chain.name")
	AttrCycleID   = attribute.Key("cycle.id")
	AttrBlock     = attribute.Key("block.number")
)

type Options struct {
	ServiceName string
	Enabled     bool
	Endpoint    string
	Insecure    bool
	// SampleRatio outside (0,1) samples every trace.
	SampleRatio float64
}

// Init installs the global tracer provider and returns its shutdown func.
// A disabled config, or one without an endpoint, installs a no-op provider.
func Init(ctx context.Context, opts Options) (func(context.Context) error, error) {
	if !opts.Enabled || opts.Endpoint == "" {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	exporterOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(opts.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(opts.SampleRatio)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

func sampler(ratio float64) sdktrace.Sampler {
	if ratio > 0 && ratio < 1 {
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
	return sdktrace.AlwaysSample()
}

// Tracer returns the tracer of one pipeline component.
func Tracer(component string) trace.Tracer {
	return otel.Tracer(instrumentationPrefix + component)
}

// StartChainSpan opens a span for work scoped to one chain.
func StartChainSpan(ctx context.Context, component, name string, c model.Chain, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := make([]attribute.KeyValue, 0, len(attrs)+2)
	all = append(all, AttrChainID.Int64(int64(c.ID)), AttrChainName.String(c.Label()))
	all = append(all, attrs...)
	return Tracer(component).Start(ctx, name, trace.WithAttributes(all...))
}

// Fail marks span as failed with err. A nil err is a no-op.
func Fail(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
