// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gitlab.com/jaxnet/headermmr/corelog"
	"gitlab.com/jaxnet/headermmr/node/mmr"
	"gitlab.com/jaxnet/headermmr/types/chaincfg"
)

type Config struct {
	ConfigFile  string `toml:"-" yaml:"-" short:"C" long:"configfile" description:"Path to configuration file"`
	ShowVersion bool   `toml:"-" yaml:"-" short:"V" long:"version" description:"Display version information and exit"`

	Node      InstanceConfig `yaml:"node" toml:"node"`
	LogConfig corelog.Config `yaml:"log_config" toml:"log_config"`
	Metrics   MetricsConfig  `yaml:"metrics" toml:"metrics"`

	DataDir    string `yaml:"data_dir" toml:"data_dir" short:"b" long:"datadir" description:"Directory to store data"`
	LogDir     string `yaml:"log_dir" toml:"log_dir" long:"logdir" description:"Directory to log output."`
	Profile    string `yaml:"profile" toml:"profile" long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
	CPUProfile string `yaml:"cpu_profile" toml:"cpu_profile" long:"cpuprofile" description:"Write CPU profile to the specified file"`
	DebugLevel string `yaml:"debug_level" toml:"debug_level" short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
}

type MetricsConfig struct {
	Enable   bool   `yaml:"enable" toml:"enable" long:"metrics" description:"Serve prometheus metrics"`
	Interval int    `yaml:"interval" toml:"interval" long:"metricsinterval" description:"Seconds between two metric reads"`
	Port     uint16 `yaml:"port" toml:"port" long:"metricsport" description:"Port of the metrics endpoint"`
}

type InstanceConfig struct {
	DbType         string       `yaml:"db_type" toml:"db_type" long:"dbtype" description:"Database backend to use for the mountain range nodes"`
	Net            string       `yaml:"net" toml:"net" long:"net" description:"Built-in checkpoint to start from {genesis, pangolin}"`
	CheckpointFile string       `yaml:"checkpoint_file" toml:"checkpoint_file" long:"checkpointfile" description:"YAML or TOML checkpoint file, overrides --net"`
	Hasher         string       `yaml:"hasher" toml:"hasher" long:"hasher" description:"Merge hash function {blake2b, sha256}"`
	MergeEncoding  string       `yaml:"merge_encoding" toml:"merge_encoding" long:"mergeencoding" description:"Serialization of the child pair before hashing {raw, scale}"`
	StrictOrder    bool         `yaml:"strict_order" toml:"strict_order" long:"strictorder" description:"Reject blocks that skip or rewind leaf indexes"`
	Source         SourceConfig `yaml:"source" toml:"source" group:"Block source" namespace:"source"`
}

type SourceConfig struct {
	Kind             string        `yaml:"kind" toml:"kind" long:"kind" description:"Where blocks come from {csv, rpc}"`
	CSVFile          string        `yaml:"csv_file" toml:"csv_file" long:"csvfile" description:"CSV file with number,hash rows"`
	RPCURL           string        `yaml:"rpc_url" toml:"rpc_url" long:"rpcurl" description:"HTTP JSON-RPC endpoint of a node"`
	Follow           bool          `yaml:"follow" toml:"follow" long:"follow" description:"Keep polling the node for new blocks"`
	PollInterval     time.Duration `yaml:"poll_interval" toml:"poll_interval" long:"pollinterval" description:"Delay between two polls for an unknown block"`
	Retries          int           `yaml:"retries" toml:"retries" long:"retries" description:"Retries of a failed append"`
	ProgressInterval uint64        `yaml:"progress_interval" toml:"progress_interval" long:"progressinterval" description:"Blocks between two progress log lines"`
}

// Checkpoint resolves the starting point: the checkpoint file when given,
// the built-in checkpoint named by Net otherwise.
func (cfg *InstanceConfig) Checkpoint() (chaincfg.Checkpoint, error) {
	if cfg.CheckpointFile != "" {
		return chaincfg.LoadCheckpointFile(cfg.CheckpointFile)
	}

	cp, err := chaincfg.CheckpointByName(cfg.Net)
	if err != nil {
		return cp, err
	}
	return cp, cp.Validate()
}

// MerkleHasher builds the configured merge function.
func (cfg *InstanceConfig) MerkleHasher() (mmr.Hasher, error) {
	enc, err := mmr.ParseMergeEncoding(cfg.MergeEncoding)
	if err != nil {
		return nil, errors.Wrap(err, "invalid merge encoding")
	}
	hasher, err := mmr.HasherByName(cfg.Hasher, enc)
	return hasher, errors.Wrap(err, "invalid hasher")
}

func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}
