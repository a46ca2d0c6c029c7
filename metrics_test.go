//
//  Copyright 2024 The zenfs-core authors
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//  	http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package zenfs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var m dto.Metric

	require.NoError(t, c.Write(&m))

	return m.GetCounter().GetValue()
}

func TestMetricsNilIsNoOp(t *testing.T) {
	var m *Metrics

	m.hit()
	m.miss()
	m.fdOpened()
	m.fdClosed()
}

func TestMetricsCacheHitMiss(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.miss()
	m.hit()
	m.hit()

	require.InDelta(t, 2, counterValue(t, m.CacheHits), 0)
	require.InDelta(t, 1, counterValue(t, m.CacheMisses), 0)
}

func TestMetricsOpcacheIntegration(t *testing.T) {
	reg := prometheus.NewRegistry()
	SetGlobalMetrics(NewMetrics(reg))

	t.Cleanup(func() { SetGlobalMetrics(nil) })

	c := newOpCache()
	c.storeStat("/a", Stats{NameField: "a"})

	_, ok := c.cachedStat("/a")
	require.True(t, ok)

	_, ok = c.cachedStat("/missing")
	require.False(t, ok)

	require.InDelta(t, 1, counterValue(t, GlobalMetrics.CacheHits), 0)
	require.InDelta(t, 1, counterValue(t, GlobalMetrics.CacheMisses), 0)
}

func TestFDTableMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	SetGlobalMetrics(NewMetrics(reg))

	t.Cleanup(func() { SetGlobalMetrics(nil) })

	table := NewFDTable()
	fd := table.Alloc(&Handle{})

	require.NoError(t, table.Release(fd))
}
