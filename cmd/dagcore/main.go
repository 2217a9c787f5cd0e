package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/kaspanet/mergedag/domain/consensus"
	"github.com/kaspanet/mergedag/domain/statestore"
	"github.com/kaspanet/mergedag/infrastructure/db/database/ldb"
	"github.com/kaspanet/mergedag/infrastructure/logger"
	"github.com/kaspanet/mergedag/infrastructure/metrics"
	"github.com/kaspanet/mergedag/infrastructure/os/signal"
	"github.com/kaspanet/mergedag/util/panics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	defer panics.HandlePanic(log, nil)
	interrupt := signal.InterruptListener()

	cfg, err := parseConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}

	logger.InitLog(cfg.logFile(), cfg.errLogFile())
	err = logger.ParseAndSetLogLevels(cfg.DebugLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	err = run(cfg, interrupt)
	if err != nil {
		panics.Exit(log, fmt.Sprintf("%+v", err))
	}
}

func run(cfg *configFlags, interrupt <-chan struct{}) error {
	params := cfg.NetParams()
	log.Infof("Loading the %s block DAG from %s", params.Name, cfg.DataDir)

	db, err := ldb.NewLevelDB(cfg.DataDir, cfg.DatabaseCacheSize)
	if err != nil {
		return errors.Wrapf(err, "failed to open the database at %s", cfg.DataDir)
	}
	defer func() {
		log.Infof("Closing the database")
		closeErr := db.Close()
		if closeErr != nil {
			log.Errorf("Failed to close the database: %s", closeErr)
		}
	}()

	registry := prometheus.NewRegistry()
	consensusMetrics, err := metrics.New(registry)
	if err != nil {
		return err
	}
	if cfg.MetricsListen != "" {
		serveMetrics(cfg.MetricsListen, registry)
	}

	stateStore := statestore.New()
	c, err := consensus.NewFactory().NewConsensus(&consensus.Config{
		Params:     params,
		StateStore: stateStore,
		Executor:   statestore.NewExecutor(stateStore),
		Metrics:    consensusMetrics,
	}, db)
	if err != nil {
		return err
	}

	if cfg.Simulate > 0 {
		sim, err := newSimulator(c, stateStore, params)
		if err != nil {
			return err
		}
		err = sim.run(cfg.Simulate, interrupt)
		if err != nil {
			return err
		}
	}

	tip, err := c.CurrentTip()
	if err != nil {
		return err
	}
	tips, err := c.Tips()
	if err != nil {
		return err
	}
	fringe, err := c.FinalizedFringe()
	if err != nil {
		return err
	}
	equivocators, err := c.Equivocators()
	if err != nil {
		return err
	}
	log.Infof("Tip %s, %d DAG tips, %d finalized blocks, %d equivocators",
		tip, len(tips), len(fringe), len(equivocators))
	log.Infof("Last finalized block %s", fringe[len(fringe)-1])

	if cfg.DumpTip {
		mergeResult, err := c.MergeResultFor(tip)
		if err != nil {
			return err
		}
		log.Debugf("Merge result of the tip: %s", logger.NewLogClosure(func() string {
			return spew.Sdump(mergeResult)
		}))
	}

	if cfg.MetricsListen != "" && !signal.InterruptRequested(interrupt) {
		log.Infof("Serving metrics until interrupted")
		<-interrupt
	}
	return nil
}

func serveMetrics(listen string, registry *prometheus.Registry) {
	server := &http.Server{
		Addr:    listen,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	spawn(func() {
		log.Infof("Serving prometheus metrics on %s", listen)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server stopped: %s", err)
		}
	})
}
