package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xrbtree/lib/kv"
)

func TestConsoleMetricsExporter_TreeMapStats(t *testing.T) {
	buf := &bytes.Buffer{}
	shutdown, err := NewConsoleMetricsExporter(time.Hour, time.Second,
		[]string{"console"},
		stdoutmetric.WithWriter(buf),
	)
	require.NoError(t, err)

	m := kv.NewTreeMap[int, string](kv.WithTreeMapStats("console"), kv.WithTreeMapCapacity(128))
	ignored := kv.NewTreeMap[int, string](kv.WithTreeMapStats("ignored"))
	for i := 0; i < 100; i++ {
		require.NoError(t, m.Put(i, "v"))
		require.NoError(t, ignored.Put(i, "v"))
	}
	_, err = m.Remove(1)
	require.NoError(t, err)

	require.NoError(t, shutdown(context.Background()))
	out := buf.String()
	require.Contains(t, out, kv.TreeMapStatsName+"/console")
	require.NotContains(t, out, kv.TreeMapStatsName+"/ignored")
	require.Contains(t, out, "kv.treemap.size")
	require.Contains(t, out, "kv.treemap.remove.count")
}

func TestPrometheusMetricsExporter_TreeMapStats(t *testing.T) {
	shutdown, err := NewPrometheusMetricsExporter([]string{"prometheus"})
	require.NoError(t, err)
	defer func() {
		_ = shutdown(context.Background())
	}()

	s := kv.NewTreeSet[string](kv.WithTreeMapStats("prometheus"))
	require.True(t, s.Add("a"))
	require.True(t, s.Add("b"))
	ignored := kv.NewTreeSet[string](kv.WithTreeMapStats("ignored"))
	require.True(t, ignored.Add("a"))

	families, err := promclient.DefaultGatherer.Gather()
	require.NoError(t, err)
	found := false
	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), "kv_treemap_insert_count") {
			continue
		}
		found = true
		require.Len(t, family.GetMetric(), 1)
		require.Equal(t, 2.0, family.GetMetric()[0].GetCounter().GetValue())
		for _, label := range family.GetMetric()[0].GetLabel() {
			if label.GetName() == "otel_scope_name" {
				require.Equal(t, kv.TreeMapStatsName+"/prometheus", label.GetValue())
			}
		}
	}
	require.True(t, found)
}

func TestTreeMapView(t *testing.T) {
	view := treeMapView(nil)
	_, ok := view(metric.Instrument{Name: "kv.treemap.size"})
	require.False(t, ok)

	view = treeMapView([]string{"a"})
	_, ok = view(metric.Instrument{
		Name:  "kv.treemap.size",
		Scope: instrumentation.Scope{Name: kv.TreeMapStatsName + "/a"},
	})
	require.False(t, ok)
	_, ok = view(metric.Instrument{
		Name:  "other.size",
		Scope: instrumentation.Scope{Name: kv.TreeMapStatsName + "/b"},
	})
	require.False(t, ok)
	stream, ok := view(metric.Instrument{
		Name:  "kv.treemap.size",
		Scope: instrumentation.Scope{Name: kv.TreeMapStatsName + "/b"},
	})
	require.True(t, ok)
	require.Equal(t, "kv.treemap.size", stream.Name)
	require.IsType(t, metric.AggregationDrop{}, stream.Aggregation)
}
