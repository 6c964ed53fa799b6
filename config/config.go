// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"gitlab.com/jaxnet/headermmr/corelog"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/node"
	"gitlab.com/jaxnet/headermmr/node/indexer"
	"gitlab.com/jaxnet/headermmr/types/chaincfg"
	"gitlab.com/jaxnet/headermmr/version"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFilename = "headermmrd.toml"
	defaultLogLevel       = "info"
	defaultDBType         = "leveldb"
	defaultNet            = "pangolin"
	defaultHasher         = "blake2b"
	defaultMergeEncoding  = "raw"
	defaultSourceKind     = "csv"
	defaultRetries        = 3
	defaultProgress       = 1000
	defaultMetricsPort    = 2112
	defaultMetricsSeconds = 10
)

var defaultHomeDir = appDataDir("headermmrd")

// appDataDir returns the per-user directory for application data.
func appDataDir(appName string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "." + appName
	}
	return filepath.Join(homeDir, "."+appName)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(defaultHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	_, ok := corelog.ParseLevel(logLevel)
	return ok
}

// supportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func supportedSubsystems() []string {
	subsystems := make([]string, 0, len(unitLogs))
	for subsysID := range unitLogs {
		subsystems = append(subsystems, subsysID)
	}

	// Sort the subsystems for stable display.
	sort.Strings(subsystems)
	return subsystems
}

// parseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly.  An appropriate error is returned if anything is
// invalid.
func parseAndSetDebugLevels(debugLevel string, logConfig corelog.Config) error {
	// When the specified string doesn't have any delimters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		if !validLogLevel(debugLevel) {
			return fmt.Errorf("the specified debug level [%v] is invalid", debugLevel)
		}

		setLogLevels(debugLevel, logConfig)
		setLoggers()
		return nil
	}

	// Split the specified string into subsystem/level pairs while detecting
	// issues and update the log levels accordingly.
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			return fmt.Errorf("the specified debug level contains an invalid "+
				"subsystem/level pair [%v]", logLevelPair)
		}

		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]

		if _, exists := unitLogs[subsysID]; !exists {
			return fmt.Errorf("the specified subsystem [%v] is invalid -- "+
				"supported subsytems %v", subsysID, supportedSubsystems())
		}

		if !validLogLevel(logLevel) {
			return fmt.Errorf("the specified debug level [%v] is invalid", logLevel)
		}

		setLogLevel(subsysID, logLevel, logConfig)
	}

	setLoggers()
	return nil
}

// validDBType returns whether or not dbType is a supported database type.
func validDBType(dbType string) bool {
	for _, knownType := range database.SupportedDrivers() {
		if dbType == knownType {
			return true
		}
	}

	return false
}

// defaultConfig returns a config that runs the indexer without any
// user-provided settings besides a block source.
func defaultConfig(dataDir string) node.Config {
	return node.Config{
		ConfigFile: filepath.Join(dataDir, defaultConfigFilename),
		DataDir:    dataDir,
		DebugLevel: defaultLogLevel,
		LogConfig:  corelog.Config{}.Default(),
		Metrics: node.MetricsConfig{
			Interval: defaultMetricsSeconds,
			Port:     defaultMetricsPort,
		},
		Node: node.InstanceConfig{
			DbType:        defaultDBType,
			Net:           defaultNet,
			Hasher:        defaultHasher,
			MergeEncoding: defaultMergeEncoding,
			Source: node.SourceConfig{
				Kind:             defaultSourceKind,
				PollInterval:     indexer.DefaultPollInterval,
				Retries:          defaultRetries,
				ProgressInterval: defaultProgress,
			},
		},
	}
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
// 	1) Start with a default config with sane settings
// 	2) Pre-parse the command line to check for an alternative config file
// 	3) Load configuration file overwriting defaults with any specified options
// 	4) Parse CLI options and overwrite/add any specified options
//
// The above results in headermmrd functioning properly without any config
// file while still allowing the user to override settings with config files
// and command line options.  Command line options always take precedence.
func LoadConfig() (*node.Config, []string, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*node.Config, []string, error) {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = defaultHomeDir
	}
	cfg := defaultConfig(dataDir)

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(0)
		}
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", version.GetVersion())
		os.Exit(0)
	}

	// Load additional config from file.  A missing default config file is
	// not an error; an explicitly named one is.
	var configFileError error
	cfgFile, err := os.Open(preCfg.ConfigFile)
	switch {
	case err == nil:
		configFileError = decodeConfigFile(cfgFile, preCfg.ConfigFile, &cfg)
		cfgFile.Close()
		if errors.Is(configFileError, errUnknownFormat) {
			fmt.Fprintln(os.Stderr, configFileError)
			return nil, nil, configFileError
		}
	case os.IsNotExist(err) && preCfg.ConfigFile == cfg.ConfigFile:
	default:
		fmt.Fprintf(os.Stderr, "Error opening config file: %v\n", err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	// Parse command line options again to ensure they take precedence.
	parser := flags.NewParser(&cfg, flags.Default)
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, nil, err
	}

	// Create the home directory if it doesn't already exist.
	funcName := "loadConfig"
	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	err = os.MkdirAll(cfg.DataDir, 0o700)
	if err != nil {
		// Show a nicer error message if it's because a symlink is
		// linked to a directory that does not exist (probably because
		// it's not mounted).
		if e, ok := err.(*os.PathError); ok && os.IsExist(err) {
			if link, lerr := os.Readlink(e.Path); lerr == nil {
				err = fmt.Errorf("is symlink %s -> %s mounted?", e.Path, link)
			}
		}

		err := fmt.Errorf("%s: failed to create home directory: %v", funcName, err)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	if cfg.LogDir == "" {
		cfg.LogDir = path.Join(cfg.DataDir, "logs")
	}
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	if cfg.LogConfig.FileLoggingEnabled {
		cfg.LogConfig.Directory = cfg.LogDir
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel, cfg.LogConfig); err != nil {
		err := fmt.Errorf("%s: %v", funcName, err)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	if err := validateConfig(&cfg); err != nil {
		err := fmt.Errorf("%s: %v", funcName, err)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	// Warn about a broken config file only after all other configuration is
	// done.  This prevents the warning on help messages and invalid
	// options.
	if configFileError != nil {
		Log.Warn().Err(configFileError).Msg("config file ignored")
	}

	return &cfg, remainingArgs, nil
}

var errUnknownFormat = errors.New("invalid config file extension, must be .toml or .yaml")

func decodeConfigFile(r io.Reader, name string, cfg *node.Config) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		return toml.NewDecoder(r).Decode(cfg)
	case ".yaml", ".yml":
		return yaml.NewDecoder(r).Decode(cfg)
	default:
		return errors.Wrap(errUnknownFormat, name)
	}
}

// validateConfig checks the settings that go-flags can not check by itself.
func validateConfig(cfg *node.Config) error {
	if !validDBType(cfg.Node.DbType) {
		return errors.Errorf("the specified database type [%v] is invalid -- "+
			"supported types %v", cfg.Node.DbType, database.SupportedDrivers())
	}

	if cfg.Node.CheckpointFile != "" {
		cfg.Node.CheckpointFile = cleanAndExpandPath(cfg.Node.CheckpointFile)
	} else if _, err := chaincfg.CheckpointByName(cfg.Node.Net); err != nil {
		return err
	}

	if _, err := cfg.Node.MerkleHasher(); err != nil {
		return err
	}

	src := &cfg.Node.Source
	switch src.Kind {
	case "csv":
		if src.CSVFile == "" {
			return errors.New("the csv block source needs --source.csvfile")
		}
		src.CSVFile = cleanAndExpandPath(src.CSVFile)
	case "rpc":
		if src.RPCURL == "" {
			return errors.New("the rpc block source needs --source.rpcurl")
		}
	default:
		return errors.Errorf("the specified block source [%v] is invalid -- "+
			"supported sources [csv rpc]", src.Kind)
	}
	if src.Retries < 0 {
		return errors.New("--source.retries can not be negative")
	}
	if src.PollInterval <= 0 {
		src.PollInterval = indexer.DefaultPollInterval
	}

	// Validate profile port number.
	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return errors.New("the profile port must be between 1024 and 65535")
		}
	}

	if cfg.Metrics.Enable && cfg.Metrics.Interval <= 0 {
		return errors.New("--metricsinterval must be positive")
	}

	return nil
}
