package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/mergedag/infrastructure/config"
	"github.com/kaspanet/mergedag/infrastructure/logger"
	"github.com/pkg/errors"
)

const (
	defaultDatabaseCacheSizeMiB = 64
)

type configFlags struct {
	DataDir           string `short:"b" long:"datadir" description:"Directory to store the block DAG"`
	LogDir            string `long:"logdir" description:"Directory to log output"`
	DebugLevel        string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	DatabaseCacheSize int    `long:"dbcachesize" description:"Size of the leveldb block cache in MiB"`
	MetricsListen     string `long:"metricslisten" description:"Serve prometheus metrics on this interface/port, e.g. localhost:9090"`
	Simulate          int    `long:"simulate" description:"Build and submit this many blocks, round-robin between the genesis validators, on a fresh data directory"`
	DumpTip           bool   `long:"dumptip" description:"Dump the merge result of the tip at debug level"`
	config.NetworkFlags
}

func parseConfig() (*configFlags, error) {
	cfg := &configFlags{
		DataDir:           config.DefaultDataDir,
		LogDir:            config.DefaultLogDir,
		DebugLevel:        config.DefaultLogLevel,
		DatabaseCacheSize: defaultDatabaseCacheSizeMiB,
	}
	parser := flags.NewParser(cfg, flags.HelpFlag)
	_, err := parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		return nil, err
	}

	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}

	if cfg.DebugLevel == "show" {
		fmt.Printf("Supported subsystems %s\n", strings.Join(logger.SupportedSubsystems(), ", "))
		os.Exit(0)
	}

	if cfg.Simulate < 0 {
		return nil, errors.Errorf("--simulate must not be negative, got %d", cfg.Simulate)
	}
	if cfg.DatabaseCacheSize <= 0 {
		return nil, errors.Errorf("--dbcachesize must be positive, got %d", cfg.DatabaseCacheSize)
	}

	// Data and logs are namespaced per network.
	cfg.DataDir = config.NetworkDir(config.CleanAndExpandPath(cfg.DataDir), &cfg.NetworkFlags)
	cfg.LogDir = config.NetworkDir(config.CleanAndExpandPath(cfg.LogDir), &cfg.NetworkFlags)

	return cfg, nil
}

func (cfg *configFlags) logFile() string {
	return filepath.Join(cfg.LogDir, config.DefaultLogFilename)
}

func (cfg *configFlags) errLogFile() string {
	return filepath.Join(cfg.LogDir, config.DefaultErrLogFilename)
}
