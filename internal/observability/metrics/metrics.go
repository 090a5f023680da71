package metrics

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	pricingRuns       metric.Int64Counter
	snapshots         metric.Int64Counter
	proposalResponses metric.Int64Counter
	paymentEvents     metric.Int64Counter
	csvExports        metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
	if cfg.ExporterEndpoint != "" {
		opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.ExporterEndpoint))
	}
	exporter, err := otlpmetricgrpc.New(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized", zap.String("endpoint", cfg.ExporterEndpoint))

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "specbook"
	}
	meter := provider.Meter(name)

	pricingRuns, err := meter.Int64Counter("specbook_pricing_runs_total")
	if err != nil {
		return nil, err
	}
	snapshots, err := meter.Int64Counter("specbook_bom_snapshots_total")
	if err != nil {
		return nil, err
	}
	proposalResponses, err := meter.Int64Counter("specbook_proposal_responses_total")
	if err != nil {
		return nil, err
	}
	paymentEvents, err := meter.Int64Counter("specbook_payment_events_total")
	if err != nil {
		return nil, err
	}
	csvExports, err := meter.Int64Counter("specbook_bom_csv_exports_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		pricingRuns:       pricingRuns,
		snapshots:         snapshots,
		proposalResponses: proposalResponses,
		paymentEvents:     paymentEvents,
		csvExports:        csvExports,
	}, nil
}

// RecordPricingRun increments project totals computations.
func (m *Metrics) RecordPricingRun(ctx context.Context) {
	if m == nil {
		return
	}
	m.pricingRuns.Add(ctx, 1)
}

// RecordSnapshot increments BOM snapshot creations.
func (m *Metrics) RecordSnapshot(ctx context.Context) {
	if m == nil {
		return
	}
	m.snapshots.Add(ctx, 1)
}

// RecordProposalResponse increments proposal accept/decline counts.
func (m *Metrics) RecordProposalResponse(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.proposalResponses.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPaymentEvent increments payment event counts.
func (m *Metrics) RecordPaymentEvent(ctx context.Context, provider, eventType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("provider", strings.TrimSpace(provider)),
		attribute.String("event_type", strings.TrimSpace(eventType)),
	)
	m.paymentEvents.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCSVExport increments BOM CSV export counts.
func (m *Metrics) RecordCSVExport(ctx context.Context) {
	if m == nil {
		return
	}
	m.csvExports.Add(ctx, 1)
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"status":     {},
	"provider":   {},
	"event_type": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
