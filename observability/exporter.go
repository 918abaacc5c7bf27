package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xrbtree/lib/kv"
)

const treeMapInstrumentPrefix = "kv.treemap."

// treeMapView drops the kv.treemap.* streams of every tree map whose
// stats name is not listed. An empty list exports all of them.
func treeMapView(treeMaps []string) metric.View {
	scopes := lo.Map(treeMaps, func(name string, _ int) string {
		return kv.TreeMapStatsName + "/" + name
	})
	return func(inst metric.Instrument) (metric.Stream, bool) {
		if len(scopes) == 0 ||
			!strings.HasPrefix(inst.Name, treeMapInstrumentPrefix) ||
			lo.Contains(scopes, inst.Scope.Name) {
			return metric.Stream{}, false
		}
		return metric.Stream{
			Name:        inst.Name,
			Description: inst.Description,
			Unit:        inst.Unit,
			Aggregation: metric.AggregationDrop{},
		}, true
	}
}

func installMeterProvider(reader metric.Reader, treeMaps []string) func(ctx context.Context) error {
	mp := metric.NewMeterProvider(
		metric.WithReader(reader),
		metric.WithView(treeMapView(treeMaps)),
	)
	otel.SetMeterProvider(mp)
	return mp.Shutdown
}

// NewConsoleMetricsExporter pushes the stats of the named tree maps to
// stdout periodically. Serves for test/dev environment.
// The returned callback flushes and shuts the provider down.
func NewConsoleMetricsExporter(
	interval, timeout time.Duration,
	treeMaps []string,
	opts ...stdoutmetric.Option,
) (func(ctx context.Context) error, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	return installMeterProvider(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	), treeMaps), nil
}

// NewPrometheusMetricsExporter serves the stats of the named tree maps
// through the prometheus default registry. Serves for the product
// environment.
func NewPrometheusMetricsExporter(treeMaps []string, opts ...prometheus.Option) (func(ctx context.Context) error, error) {
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, err
	}
	return installMeterProvider(exporter, treeMaps), nil
}
