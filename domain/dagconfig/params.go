package dagconfig

import (
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
	"github.com/pkg/errors"
)

const (
	defaultFaultTolerance          = 0.1
	defaultMaxBlockParents         = 10
	defaultMaxDeploysPerBlock      = 1000
	defaultMaxExactMergeCandidates = 16
	defaultConflictWorkers         = 8
	defaultCacheSize               = 10_000
)

// Params defines a network by its genesis and the parameters of its
// consensus rules
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// GenesisBlock defines the first block of the DAG. Its bonds are the
	// initial validator set.
	GenesisBlock *externalapi.DomainBlock

	// GenesisHash is the hash of GenesisBlock.
	GenesisHash *externalapi.DomainHash

	// FaultTolerance is the fraction of the total stake a block's agreeing
	// validators may fall short of before the block can no longer finalize.
	FaultTolerance float64

	// MaxBlockParents is the maximum number of parents a block may have
	MaxBlockParents int

	// MaxDeploysPerBlock is the maximum number of deploys a block may carry
	MaxDeploysPerBlock int

	// MaxExactMergeCandidates is the largest number of merge candidates
	// for which the merger searches for the optimal selection. Larger
	// groups are merged greedily.
	MaxExactMergeCandidates int

	// ConflictWorkers is the number of goroutines checking deploy pairs
	// for conflicts
	ConflictWorkers int

	// CacheSize is the number of entries each store keeps in memory
	CacheSize int

	// SkipSignatureChecks disables block signature verification
	SkipSignatureChecks bool
}

// Validate returns an error if the parameters cannot run a consensus
func (p *Params) Validate() error {
	if p.GenesisBlock == nil || p.GenesisHash == nil {
		return errors.Errorf("network %s has no genesis", p.Name)
	}
	if !consensushashing.BlockHash(p.GenesisBlock).Equal(p.GenesisHash) {
		return errors.Errorf("network %s: genesis hash %s does not match the genesis block", p.Name, p.GenesisHash)
	}
	if p.FaultTolerance < 0 || p.FaultTolerance > 1 {
		return errors.Errorf("network %s: fault tolerance %f is out of the range [0, 1]", p.Name, p.FaultTolerance)
	}
	if p.MaxExactMergeCandidates < 0 {
		return errors.Errorf("network %s: negative MaxExactMergeCandidates", p.Name)
	}
	if p.ConflictWorkers <= 0 {
		return errors.Errorf("network %s: ConflictWorkers must be positive", p.Name)
	}
	if p.CacheSize <= 0 {
		return errors.Errorf("network %s: CacheSize must be positive", p.Name)
	}
	return nil
}

// DevnetParams defines the network parameters for the development network.
var DevnetParams = Params{
	Name:                    "devnet",
	GenesisBlock:            devnetGenesisBlock,
	GenesisHash:             devnetGenesisHash,
	FaultTolerance:          defaultFaultTolerance,
	MaxBlockParents:         defaultMaxBlockParents,
	MaxDeploysPerBlock:      defaultMaxDeploysPerBlock,
	MaxExactMergeCandidates: defaultMaxExactMergeCandidates,
	ConflictWorkers:         defaultConflictWorkers,
	CacheSize:               defaultCacheSize,
}

// SimnetParams defines the network parameters for the simulation test
// network. It has a single validator and does not check signatures.
var SimnetParams = Params{
	Name:                    "simnet",
	GenesisBlock:            simnetGenesisBlock,
	GenesisHash:             simnetGenesisHash,
	FaultTolerance:          0,
	MaxBlockParents:         defaultMaxBlockParents,
	MaxDeploysPerBlock:      defaultMaxDeploysPerBlock,
	MaxExactMergeCandidates: defaultMaxExactMergeCandidates,
	ConflictWorkers:         defaultConflictWorkers,
	CacheSize:               defaultCacheSize,
	SkipSignatureChecks:     true,
}

var (
	// ErrDuplicateNet describes an error where the parameters for a
	// network could not be set due to the network already being a standard
	// network or previously-registered into this package.
	ErrDuplicateNet = errors.New("duplicate network")

	// ErrUnknownNet describes an error where the parameters of a network
	// were requested but never registered.
	ErrUnknownNet = errors.New("unknown network")
)

var registeredNets = make(map[string]*Params)

// Register registers the network parameters for a network. This may error
// with ErrDuplicateNet if the network is already registered (either due to a
// previous Register call, or the network being one of the default networks).
func Register(params *Params) error {
	if _, ok := registeredNets[params.Name]; ok {
		return ErrDuplicateNet
	}
	registeredNets[params.Name] = params
	return nil
}

// ParamsByName returns the parameters of the registered network with the
// given name
func ParamsByName(name string) (*Params, error) {
	params, ok := registeredNets[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownNet, "network %s", name)
	}
	return params, nil
}

// mustRegister performs the same function as Register except it panics if there
// is an error. This should only be called from package init functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

func init() {
	// Register all default networks when the package is initialized.
	mustRegister(&DevnetParams)
	mustRegister(&SimnetParams)
}
