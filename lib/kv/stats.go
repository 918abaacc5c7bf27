package kv

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	TreeMapStatsName = "xrbtree/kv"
)

type treeMapStats struct {
	size        metric.Int64UpDownCounter
	insertCount metric.Int64Counter
	updateCount metric.Int64Counter
	removeCount metric.Int64Counter
}

func (stats *treeMapStats) RecordSize(delta int64) {
	if stats == nil {
		return
	}
	stats.size.Add(context.Background(), delta)
}

func (stats *treeMapStats) IncreaseInsertCount() {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1)
}

func (stats *treeMapStats) IncreaseUpdateCount() {
	if stats == nil {
		return
	}
	stats.updateCount.Add(context.Background(), 1)
}

func (stats *treeMapStats) IncreaseRemoveCount() {
	if stats == nil {
		return
	}
	stats.removeCount.Add(context.Background(), 1)
}

func newTreeMapStats(name string) *treeMapStats {
	meterName := fmt.Sprintf("%s/%s", TreeMapStatsName, name)
	return &treeMapStats{
		size: lo.Must[metric.Int64UpDownCounter](otel.Meter(meterName).
			Int64UpDownCounter(
				"kv.treemap.size",
				metric.WithDescription("The number of entries in the tree map."),
			),
		),
		insertCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"kv.treemap.insert.count",
				metric.WithDescription("The number of entries inserted into the tree map."),
			),
		),
		updateCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"kv.treemap.update.count",
				metric.WithDescription("The number of values replaced in place."),
			),
		),
		removeCount: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"kv.treemap.remove.count",
				metric.WithDescription("The number of entries removed from the tree map."),
			),
		),
	}
}
