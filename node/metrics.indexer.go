// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gitlab.com/jaxnet/headermmr/node/indexer"
)

const metricsNamespace = "headermmr"

type statsProvider interface {
	Stats() indexer.Stats
}

type indexerMetrics struct {
	sync.Mutex
	logger     zerolog.Logger
	registerer prometheus.Registerer
	source     statsProvider
	net        string

	gauges   map[string]prometheus.Gauge
	counters map[string]prometheus.Counter
	last     map[string]uint64
}

// IndexerMetrics exports the progress of an indexer.
func IndexerMetrics(source statsProvider, net string, registerer prometheus.Registerer, logger zerolog.Logger) IMetric {
	return &indexerMetrics{
		logger:     logger.With().Str("ctx", "metrics").Logger(),
		registerer: registerer,
		source:     source,
		net:        net,
		gauges:     make(map[string]prometheus.Gauge),
		counters:   make(map[string]prometheus.Counter),
		last:       make(map[string]uint64),
	}
}

func (s *indexerMetrics) Read() {
	s.Lock()
	defer s.Unlock()

	stats := s.source.Stats()
	if stats.HasLeaf {
		s.updateGauge("leaf_index", float64(stats.LastLeaf))
		s.updateGauge("mmr_size", float64(stats.MMRSize))
	}
	s.updateCounter("nodes_written_total", stats.NodesWritten)
	s.updateCounter("append_errors_total", stats.AppendErrors)
}

func (s *indexerMetrics) updateGauge(name string, value float64) {
	m, ok := s.gauges[name]
	if !ok {
		m = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   "indexer",
			Name:        name,
			ConstLabels: prometheus.Labels{"net_name": s.net},
		})
		if err := s.registerer.Register(m); err != nil {
			s.logger.Error().Err(err).Str("metric", name).Msg("can't register metric")
		}
		s.gauges[name] = m
	}
	m.Set(value)
}

// updateCounter advances the counter by the growth of total since the
// previous read.
func (s *indexerMetrics) updateCounter(name string, total uint64) {
	m, ok := s.counters[name]
	if !ok {
		m = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   "indexer",
			Name:        name,
			ConstLabels: prometheus.Labels{"net_name": s.net},
		})
		if err := s.registerer.Register(m); err != nil {
			s.logger.Error().Err(err).Str("metric", name).Msg("can't register metric")
		}
		s.counters[name] = m
	}

	if prev := s.last[name]; total > prev {
		m.Add(float64(total - prev))
	}
	s.last[name] = total
}
