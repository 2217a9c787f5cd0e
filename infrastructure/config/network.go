package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/mergedag/domain/dagconfig"
	"github.com/pkg/errors"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Simnet                bool   `long:"simnet" description:"Use the simulation test network"`
	Devnet                bool   `long:"devnet" description:"Use the development test network"`
	OverrideDAGParamsFile string `long:"override-dag-params-file" description:"Overrides DAG params (allowed only on devnet)"`

	ActiveNetParams *dagconfig.Params
}

type overrideDAGParamsConfig struct {
	FaultTolerance          *float64 `json:"faultTolerance"`
	MaxBlockParents         *int     `json:"maxBlockParents"`
	MaxDeploysPerBlock      *int     `json:"maxDeploysPerBlock"`
	MaxExactMergeCandidates *int     `json:"maxExactMergeCandidates"`
	ConflictWorkers         *int     `json:"conflictWorkers"`
	CacheSize               *int     `json:"cacheSize"`
	SkipSignatureChecks     *bool    `json:"skipSignatureChecks"`
}

// ResolveNetwork parses the network command line argument and sets ActiveNetParams accordingly.
// It returns error if more than one network was selected, nil otherwise.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser) error {
	// Default net is devnet
	networkFlags.ActiveNetParams = &dagconfig.DevnetParams
	// Multiple networks can't be selected simultaneously.
	numNets := 0
	if networkFlags.Simnet {
		numNets++
		networkFlags.ActiveNetParams = &dagconfig.SimnetParams
	}
	if networkFlags.Devnet {
		numNets++
		networkFlags.ActiveNetParams = &dagconfig.DevnetParams
	}
	if numNets > 1 {
		message := "Multiple networks parameters (simnet, devnet) cannot be used " +
			"together. Please choose only one network"
		err := errors.Errorf(message)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return err
	}

	err := networkFlags.overrideDAGParams()
	if err != nil {
		return err
	}

	return networkFlags.ActiveNetParams.Validate()
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *dagconfig.Params {
	return networkFlags.ActiveNetParams
}

func (networkFlags *NetworkFlags) overrideDAGParams() error {

	if networkFlags.OverrideDAGParamsFile == "" {
		return nil
	}

	if networkFlags.Simnet {
		return errors.Errorf("override-dag-params-file is allowed only when using devnet")
	}

	overrideDAGParamsFile, err := os.Open(networkFlags.OverrideDAGParamsFile)
	if err != nil {
		return errors.WithStack(err)
	}
	defer overrideDAGParamsFile.Close()

	decoder := json.NewDecoder(overrideDAGParamsFile)
	decoder.DisallowUnknownFields()
	config := &overrideDAGParamsConfig{}
	err = decoder.Decode(config)
	if err != nil {
		return errors.Wrapf(err, "failed to parse %s", networkFlags.OverrideDAGParamsFile)
	}

	// Work on a copy so that the registered devnet parameters stay intact
	params := *networkFlags.ActiveNetParams
	networkFlags.ActiveNetParams = &params

	if config.FaultTolerance != nil {
		params.FaultTolerance = *config.FaultTolerance
	}

	if config.MaxBlockParents != nil {
		params.MaxBlockParents = *config.MaxBlockParents
	}

	if config.MaxDeploysPerBlock != nil {
		params.MaxDeploysPerBlock = *config.MaxDeploysPerBlock
	}

	if config.MaxExactMergeCandidates != nil {
		params.MaxExactMergeCandidates = *config.MaxExactMergeCandidates
	}

	if config.ConflictWorkers != nil {
		params.ConflictWorkers = *config.ConflictWorkers
	}

	if config.CacheSize != nil {
		params.CacheSize = *config.CacheSize
	}

	if config.SkipSignatureChecks != nil {
		params.SkipSignatureChecks = *config.SkipSignatureChecks
	}

	return nil
}
