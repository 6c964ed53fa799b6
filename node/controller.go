// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/node/indexer"
	"gitlab.com/jaxnet/headermmr/node/mmr"
)

const defaultMetricsInterval = 10 * time.Second

type nodeController struct {
	logger zerolog.Logger
	cfg    *Config

	db       database.DB
	acc      *mmr.Accumulator
	indexer  *indexer.Indexer
	metrics  IMetricManager
	registry prometheus.Registerer
	gatherer prometheus.Gatherer

	requestShutdown func(reason string)
}

func Controller(logger zerolog.Logger) *nodeController {
	return &nodeController{
		logger:   logger,
		registry: prometheus.DefaultRegisterer,
		gatherer: prometheus.DefaultGatherer,
	}
}

// OnShutdownRequest sets the function called when a background subsystem of
// the controller fails and the daemon should stop.
func (ctl *nodeController) OnShutdownRequest(fn func(reason string)) *nodeController {
	ctl.requestShutdown = fn
	return ctl
}

// Run opens the node database, builds the accumulator for the configured
// checkpoint and indexes blocks until the source is exhausted or ctx is done.
func (ctl *nodeController) Run(ctx context.Context, cfg *Config) error {
	ctl.cfg = cfg

	checkpoint, err := cfg.Node.Checkpoint()
	if err != nil {
		return err
	}
	hasher, err := cfg.Node.MerkleHasher()
	if err != nil {
		return err
	}
	ctl.logger.Info().
		Str("checkpoint", checkpoint.Name).
		Uint64("start", checkpoint.StartLeafIndex).
		Str("hasher", fmt.Sprintf("%T", hasher)).
		Msg("Starting mountain range indexer")

	dbCtl := DBCtl{logger: ctl.logger}
	ctl.db, err = dbCtl.LoadNodeDB(cfg.DataDir, checkpoint.Name, cfg.Node)
	if err != nil {
		return errors.Wrap(err, "unable to load node database")
	}
	defer func() {
		if err := ctl.db.Close(); err != nil {
			ctl.logger.Error().Err(err).Msg("Unable to close node database")
		}
	}()

	ctl.acc, err = mmr.New(ctl.db, checkpoint.AccumulatorConfig(hasher, cfg.Node.StrictOrder))
	if err != nil {
		return err
	}

	source, err := NewBlockSource(cfg.Node.Source)
	if err != nil {
		return err
	}

	ctl.indexer, err = indexer.New(indexer.Config{
		Source:           source,
		Accumulator:      ctl.acc,
		Store:            ctl.db,
		Retries:          cfg.Node.Source.Retries,
		ProgressInterval: cfg.Node.Source.ProgressInterval,
	})
	if err != nil {
		return err
	}

	if cfg.Metrics.Enable {
		ctl.runMetrics(ctx, checkpoint.Name)
	}

	if err := ctl.indexer.Run(ctx); err != nil {
		return err
	}

	stats := ctl.indexer.Stats()
	if !stats.HasLeaf {
		return nil
	}
	root, err := ctl.acc.Root(ctx, stats.LastLeaf)
	if err != nil {
		ctl.logger.Warn().Err(err).Uint64("leaf", stats.LastLeaf).Msg("Unable to compute root")
		return nil
	}
	ctl.logger.Info().
		Uint64("leaf", stats.LastLeaf).
		Uint64("mmr_size", stats.MMRSize).
		Str("root", root.String()).
		Msg("Mountain range is up to date")
	return nil
}

func (ctl *nodeController) runMetrics(ctx context.Context, net string) {
	interval := time.Duration(ctl.cfg.Metrics.Interval) * time.Second
	if interval <= 0 {
		interval = defaultMetricsInterval
	}

	ctl.metrics = Metrics(ctx, interval, ctl.gatherer)
	ctl.metrics.Add(IndexerMetrics(ctl.indexer, net, ctl.registry, ctl.logger))

	go func() {
		if err := ctl.metrics.Listen(ctx, "/metrics", ctl.cfg.Metrics.Port); err != nil {
			ctl.logger.Error().Err(err).Msg("listen metrics server")
			if ctl.requestShutdown != nil {
				ctl.requestShutdown("metrics endpoint failed: " + err.Error())
			}
		}
	}()
}

// NewBlockSource builds the configured block source.
func NewBlockSource(cfg SourceConfig) (indexer.BlockSource, error) {
	switch strings.ToLower(cfg.Kind) {
	case "csv":
		if cfg.CSVFile == "" {
			return nil, errors.New("csv block source needs a file")
		}
		return indexer.NewCSVSource(cfg.CSVFile), nil

	case "rpc":
		if cfg.RPCURL == "" {
			return nil, errors.New("rpc block source needs an url")
		}
		return indexer.NewRPCSource(cfg.RPCURL, cfg.Follow, cfg.PollInterval), nil
	}
	return nil, errors.Errorf("unknown block source %q", cfg.Kind)
}
